// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Package auth defines the account lifecycle of the Vitalink platform:
// registration, activation codes, credential and social login, and the
// refresh-token session bookkeeping.
//
// # Architecture
//
// Entities in this package represent the "Truth" of the system.
// They have no dependencies on outer layers (like databases, APIs, or libraries).
// This makes the core logic highly testable and resilient to technology changes.
package auth

import (
	"time"
)

// # Account State

// UserStatus is the lifecycle state stored on a user row.
type UserStatus int

const (
	UserCreated UserStatus = 0 // Signed up, email not confirmed yet.
	UserActive  UserStatus = 1 // Confirmed and allowed to log in.
	UserBlocked UserStatus = 2 // Suspended by an administrator.
	UserDeleted UserStatus = 3 // Soft-deleted; row kept for integrity.
)

// User represents a registered member of the Vitalink platform.
//
// # Rules
//   - Username is unique; social signups get a generated one.
//   - Email is unique across credential and social accounts.
//   - PasswordHash is generated via Bcrypt exclusively via the auth Service.
//   - Type 1 (doctor) accounts must carry a Subject (speciality).
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	FacebookID   string     `json:"-"`
	GoogleID     string     `json:"-"`
	AppleID      string     `json:"-"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Explicitly omitted from JSON for security.
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Type         int        `json:"type"` // 0 = patient, 1 = doctor
	PhoneNumber  string     `json:"phonenumber,omitempty"`
	Subject      string     `json:"subject,omitempty"` // Doctor speciality.
	Photo        string     `json:"photo,omitempty"`
	Address      string     `json:"address,omitempty"`
	About        string     `json:"about,omitempty"`
	StripeID     string     `json:"-"` // Stripe customer reference.
	Status       UserStatus `json:"status"`
	CreateDate   time.Time  `json:"create_date"`
	UpdateDate   time.Time  `json:"update_date"`
}

// # Sessions

// SessionStatus tracks how a login session ended up in its current state.
// The ordering matters: anything above SessionRefreshed is terminal.
type SessionStatus int

const (
	SessionLoggedIn  SessionStatus = 0 // Fresh login, token pair issued.
	SessionRefreshed SessionStatus = 1 // Token pair rotated at least once.
	SessionTimedOut  SessionStatus = 2 // Refresh attempted after expiry.
	SessionLoggedOut SessionStatus = 3 // Explicit logout or superseded login.
)

// Terminal reports whether the session can no longer be refreshed.
func (s SessionStatus) Terminal() bool { return s > SessionRefreshed }

// LoginChannel distinguishes concurrent web and mobile sessions.
// A user may hold one active session per channel.
type LoginChannel int

const (
	ChannelWeb    LoginChannel = 0
	ChannelMobile LoginChannel = 1
)

// Session represents one row of the refresh-token ledger.
//
// # Security Concept
//
// Access Tokens (JWT) are stateless and cannot be revoked easily before they
// expire. Vitalink pairs short-lived JWTs with Session rows in the database:
// refreshing requires the presented token to match the stored row exactly,
// so a stolen-but-rotated token is useless and a logout kills the channel.
type Session struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	Channel      LoginChannel  `json:"login_type"`
	RefreshToken string        `json:"-"` // Omitted for security.
	LoginAt      time.Time     `json:"login_date"`
	RefreshAt    *time.Time    `json:"refresh_date,omitempty"`
	LogoutAt     *time.Time    `json:"logout_date,omitempty"`
	Status       SessionStatus `json:"status"`
}

// # Activation & Reset Codes

// CodeStatus is the lifecycle state of an activation / reset-password code.
type CodeStatus int

const (
	CodePending  CodeStatus = 0
	CodeConsumed CodeStatus = 1
	CodeExpired  CodeStatus = 2
)

// Activation is a short numeric code mailed to the user, wrapped in a signed
// envelope so links can carry it safely. The same table backs both the email
// confirmation flow and the reset-password flow; in both cases only the most
// recent pending code for an account is honored.
type Activation struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Code       string     `json:"-"`
	Hash       string     `json:"-"` // Signed envelope binding code + email.
	Link       string     `json:"-"` // Full activation URL sent by mail.
	Status     CodeStatus `json:"status"`
	CreateDate time.Time  `json:"create_date"`
}

// FullName renders the display name used in notification mail.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsDoctor reports whether the account is listed in the care directory.
func (u *User) IsDoctor() bool { return u.Type == 1 }

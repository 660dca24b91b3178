// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Package admin implements the back-office principal: administrator accounts,
// their session ledger, and the user-management console operations.
//
// Administrators are a separate principal kind from end users. They never mix
// tables or tokens with the member base: an admin token carries
// [sec.KindAdmin] and is rejected by every member-facing endpoint.
package admin

import (
	"time"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/sec"
)

// Status is the lifecycle state of an administrator account.
type Status int

const (
	// StatusActive admins can log into the console.
	StatusActive Status = iota
	// StatusDisabled admins are locked out but kept for the audit trail.
	StatusDisabled
)

// Admin is a back-office operator account.
type Admin struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	Username     string         `json:"username"`
	PasswordHash string         `json:"-"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Photo        string         `json:"photo"`
	Level        sec.AdminLevel `json:"level"`
	Status       Status         `json:"status"`
	CreateDate   time.Time      `json:"create_date"`
	UpdateDate   time.Time      `json:"update_date"`
}

// FullName returns the display name for console views and notices.
func (a *Admin) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Session is one row of the admin refresh-token ledger.
//
// It follows the same lifecycle as the member ledger ([auth.Session]), so the
// channel and status enums are shared; only the owning table differs.
type Session struct {
	ID           int64              `json:"id"`
	AdminID      int64              `json:"admin_id"`
	Channel      auth.LoginChannel  `json:"login_type"`
	RefreshToken string             `json:"-"`
	LoginAt      time.Time          `json:"login_date"`
	RefreshAt    *time.Time         `json:"refresh_date"`
	LogoutAt     *time.Time         `json:"logout_date"`
	Status       auth.SessionStatus `json:"status"`
}

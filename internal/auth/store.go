// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package auth

import (
	"context"
)

// UserRepository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently by the team.
//
// # Implementations
//
// The canonical implementation for Vitalink is PostgreSQL (store_postgres.go).
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given username.
	//
	// Returns [apperr.NotFound] if the username is available.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByStripeID returns the account holding this Stripe customer
	// reference. Used by the billing webhook reconciler.
	//
	// Returns [apperr.NotFound] if no account carries it.
	FindByStripeID(ctx context.Context, stripeID string) (*User, error)

	// FindBySocialID returns the account bound to the given provider identity.
	// Provider is one of "facebook", "google", "apple".
	//
	// Returns [apperr.NotFound] if no account carries this identity.
	FindBySocialID(ctx context.Context, provider, providerID string) (*User, error)

	// Create persists a brand-new user account and assigns its ID.
	Create(ctx context.Context, user *User) error

	// Update persists changes to mutable profile fields (names, photo, etc).
	// Passwords must be updated via [UpdatePassword].
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces only the user's password hash.
	// This is separate from [Update] to prevent accidental overwrites
	// during unrelated profile updates.
	UpdatePassword(ctx context.Context, userID int64, newHash string) error

	// UpdateStatus transitions the account lifecycle state.
	UpdateStatus(ctx context.Context, userID int64, status UserStatus) error

	// BindSocialID attaches a provider identity to an existing account,
	// merging a social login into a previously registered email.
	BindSocialID(ctx context.Context, userID int64, provider, providerID string) error

	// UpdateStripeID stores the Stripe customer reference for the account.
	UpdateStripeID(ctx context.Context, userID int64, stripeID string) error

	// List returns accounts of the given type ordered by creation date,
	// excluding soft-deleted rows. Used by the care directory and admin CMS.
	List(ctx context.Context, accountType int, limit, offset int) ([]*User, int, error)
}

// SessionRepository defines the data access contract for the refresh-token
// ledger.
//
// # Domain Ownership
//
// This is kept alongside [UserRepository] because sessions are owned entirely
// by the account domain, despite serving authentication security.
type SessionRepository interface {
	// Create persists a new tracking session for an authenticated login.
	// The caller must call [ExpireActive] first to uphold the one-active-
	// session-per-channel rule.
	Create(ctx context.Context, session *Session) error

	// ExpireActive marks every non-terminal session of (userID, channel) as
	// logged out with a logout timestamp. Called before each new login and
	// on explicit logout.
	ExpireActive(ctx context.Context, userID int64, channel LoginChannel) error

	// FindByRefreshToken returns the session holding exactly this refresh
	// token for the user, regardless of its status.
	//
	// Returns [apperr.NotFound] if no such row exists.
	FindByRefreshToken(ctx context.Context, userID int64, token string) (*Session, error)

	// MarkRefreshed rotates the stored token and stamps the refresh time,
	// moving the session to [SessionRefreshed].
	MarkRefreshed(ctx context.Context, sessionID int64, newToken string) error

	// MarkTimedOut transitions the session to [SessionTimedOut] with a
	// logout timestamp. Used when a refresh arrives after token expiry.
	MarkTimedOut(ctx context.Context, sessionID int64) error
}

// ActivationRepository defines the contract for activation / reset codes.
type ActivationRepository interface {
	// Create persists a freshly issued code and assigns its ID.
	Create(ctx context.Context, activation *Activation) error

	// FindLatestPending returns the most recently created pending code for
	// the user matching the given value.
	//
	// Returns [apperr.NotFound] if the code never existed or was already
	// consumed or expired.
	FindLatestPending(ctx context.Context, userID int64, code string) (*Activation, error)

	// MarkStatus transitions a code row.
	MarkStatus(ctx context.Context, activationID int64, status CodeStatus) error

	// Consume atomically marks the code consumed AND the account active.
	// Both updates happen in one transaction: a crash in between must not
	// leave an activated user with a reusable code.
	Consume(ctx context.Context, activationID, userID int64) error
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package admin

import (
	"context"

	"github.com/vitalink/vitalink/internal/auth"
)

// AdminRepository defines the data access contract for administrator accounts.
type AdminRepository interface {
	// FindByID returns the administrator with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id int64) (*Admin, error)

	// FindByLogin returns the administrator matching the given email or
	// username.
	//
	// Returns [apperr.NotFound] if no match exists.
	FindByLogin(ctx context.Context, login string) (*Admin, error)

	// Create persists a new administrator and assigns its ID.
	Create(ctx context.Context, admin *Admin) error

	// UpdatePassword replaces only the administrator's password hash.
	UpdatePassword(ctx context.Context, adminID int64, newHash string) error
}

// SessionRepository defines the data access contract for the admin
// refresh-token ledger. It mirrors the member ledger contract over the
// admin_logins table.
type SessionRepository interface {
	// Create persists a new tracking session for an authenticated login.
	Create(ctx context.Context, session *Session) error

	// ExpireActive marks every non-terminal session of (adminID, channel) as
	// logged out.
	ExpireActive(ctx context.Context, adminID int64, channel auth.LoginChannel) error

	// FindByRefreshToken returns the session holding exactly this refresh
	// token for the administrator, regardless of its status.
	//
	// Returns [apperr.NotFound] if no such row exists.
	FindByRefreshToken(ctx context.Context, adminID int64, token string) (*Session, error)

	// MarkRefreshed rotates the stored token and stamps the refresh time.
	MarkRefreshed(ctx context.Context, sessionID int64, newToken string) error

	// MarkTimedOut transitions the session to timed out with a logout stamp.
	MarkTimedOut(ctx context.Context, sessionID int64) error
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// PostgreSQL implementations of the admin storage contracts over the
// admins and admin_logins tables.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/apperr"
)

const adminColumns = `
	id, email, username, password_hash, first_name, last_name, photo,
	level, status, create_date, update_date`

// PostgresAdminRepository implements the AdminRepository interface using pgx.
type PostgresAdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new PostgreSQL implementation of AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *PostgresAdminRepository {
	return &PostgresAdminRepository{pool: pool}
}

func scanAdmin(row pgx.Row) (*Admin, error) {
	admin := &Admin{}
	err := row.Scan(
		&admin.ID,
		&admin.Email,
		&admin.Username,
		&admin.PasswordHash,
		&admin.FirstName,
		&admin.LastName,
		&admin.Photo,
		&admin.Level,
		&admin.Status,
		&admin.CreateDate,
		&admin.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// FindByID retrieves an administrator by their unique ID.
func (repository *PostgresAdminRepository) FindByID(ctx context.Context, id int64) (*Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`

	admin, err := scanAdmin(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Administrator")
		}
		return nil, fmt.Errorf("postgres_admin_repo_find_by_id_failed: %w", err)
	}

	return admin, nil
}

// FindByLogin retrieves an administrator by email or username.
func (repository *PostgresAdminRepository) FindByLogin(ctx context.Context, login string) (*Admin, error) {
	query := `SELECT ` + adminColumns + `
		FROM admins
		WHERE lower(email) = lower($1) OR lower(username) = lower($1)
		LIMIT 1`

	admin, err := scanAdmin(repository.pool.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Administrator")
		}
		return nil, fmt.Errorf("postgres_admin_repo_find_by_login_failed: %w", err)
	}

	return admin, nil
}

// Create persists a new administrator record and assigns the generated ID.
func (repository *PostgresAdminRepository) Create(ctx context.Context, admin *Admin) error {
	const query = `
		INSERT INTO admins (
			email, username, password_hash, first_name, last_name, photo,
			level, status, create_date, update_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	now := time.Now()
	if admin.CreateDate.IsZero() {
		admin.CreateDate = now
	}
	admin.UpdateDate = now

	err := repository.pool.QueryRow(ctx, query,
		admin.Email,
		admin.Username,
		admin.PasswordHash,
		admin.FirstName,
		admin.LastName,
		admin.Photo,
		admin.Level,
		admin.Status,
		admin.CreateDate,
		admin.UpdateDate,
	).Scan(&admin.ID)

	if err != nil {
		return fmt.Errorf("postgres_admin_repo_create_failed: %w", err)
	}

	return nil
}

// UpdatePassword updates only the password hash for an administrator.
func (repository *PostgresAdminRepository) UpdatePassword(ctx context.Context, adminID int64, newHash string) error {
	const query = `
		UPDATE admins
		SET password_hash = $2, update_date = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, adminID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_admin_repo_update_password_failed: %w", err)
	}

	return nil
}

// ── Session Repository ───────────────────────────────────────────────────────

// PostgresSessionRepository implements the SessionRepository interface over
// the admin_logins table.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create persists a new session record into the admin_logins table.
func (repository *PostgresSessionRepository) Create(ctx context.Context, session *Session) error {
	const query = `
		INSERT INTO admin_logins (
			admin_id, login_type, refresh_token, login_date, status
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if session.LoginAt.IsZero() {
		session.LoginAt = time.Now()
	}

	err := repository.pool.QueryRow(ctx, query,
		session.AdminID,
		session.Channel,
		session.RefreshToken,
		session.LoginAt,
		session.Status,
	).Scan(&session.ID)

	if err != nil {
		return fmt.Errorf("postgres_admin_session_repo_create_failed: %w", err)
	}

	return nil
}

// ExpireActive closes every non-terminal session of (adminID, channel).
func (repository *PostgresSessionRepository) ExpireActive(ctx context.Context, adminID int64, channel auth.LoginChannel) error {
	const query = `
		UPDATE admin_logins
		SET status = $3, logout_date = $4
		WHERE admin_id = $1 AND login_type = $2 AND status < $5`

	_, err := repository.pool.Exec(ctx, query,
		adminID, channel, auth.SessionLoggedOut, time.Now(), auth.SessionTimedOut)
	if err != nil {
		return fmt.Errorf("postgres_admin_session_repo_expire_active_failed: %w", err)
	}

	return nil
}

// FindByRefreshToken retrieves a session holding exactly this token.
func (repository *PostgresSessionRepository) FindByRefreshToken(ctx context.Context, adminID int64, token string) (*Session, error) {
	const query = `
		SELECT id, admin_id, login_type, refresh_token, login_date, refresh_date, logout_date, status
		FROM admin_logins
		WHERE admin_id = $1 AND refresh_token = $2
		ORDER BY login_date DESC
		LIMIT 1`

	session := &Session{}
	err := repository.pool.QueryRow(ctx, query, adminID, token).Scan(
		&session.ID,
		&session.AdminID,
		&session.Channel,
		&session.RefreshToken,
		&session.LoginAt,
		&session.RefreshAt,
		&session.LogoutAt,
		&session.Status,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("postgres_admin_session_repo_find_failed: %w", err)
	}

	return session, nil
}

// MarkRefreshed rotates the stored token and stamps the refresh time.
func (repository *PostgresSessionRepository) MarkRefreshed(ctx context.Context, sessionID int64, newToken string) error {
	const query = `
		UPDATE admin_logins
		SET refresh_token = $2, refresh_date = $3, status = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, sessionID, newToken, time.Now(), auth.SessionRefreshed)
	if err != nil {
		return fmt.Errorf("postgres_admin_session_repo_mark_refreshed_failed: %w", err)
	}

	return nil
}

// MarkTimedOut transitions the session to timed-out with a logout timestamp.
func (repository *PostgresSessionRepository) MarkTimedOut(ctx context.Context, sessionID int64) error {
	const query = `
		UPDATE admin_logins
		SET status = $2, logout_date = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, sessionID, auth.SessionTimedOut, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_admin_session_repo_mark_timed_out_failed: %w", err)
	}

	return nil
}

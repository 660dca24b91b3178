// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// PostgreSQL implementations of the auth storage contracts.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement the interfaces in store.go using the [pgxpool.Pool] connection
// manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

const userColumns = `
	id, email, facebook_id, google_id, apple_id, username, password_hash,
	first_name, last_name, type, phonenumber, subject, photo, address, about,
	stripe_id, status, create_date, update_date`

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FacebookID,
		&user.GoogleID,
		&user.AppleID,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Type,
		&user.PhoneNumber,
		&user.Subject,
		&user.Photo,
		&user.Address,
		&user.About,
		&user.StripeID,
		&user.Status,
		&user.CreateDate,
		&user.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create persists a new user record and assigns the generated ID.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			email, facebook_id, google_id, apple_id, username, password_hash,
			first_name, last_name, type, phonenumber, subject, photo, address,
			about, stripe_id, status, create_date, update_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`

	now := time.Now()
	if user.CreateDate.IsZero() {
		user.CreateDate = now
	}
	user.UpdateDate = now

	err := repository.pool.QueryRow(ctx, query,
		user.Email,
		user.FacebookID,
		user.GoogleID,
		user.AppleID,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Type,
		user.PhoneNumber,
		user.Subject,
		user.Photo,
		user.Address,
		user.About,
		user.StripeID,
		user.Status,
		user.CreateDate,
		user.UpdateDate,
	).Scan(&user.ID)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a user record by their unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND status <> 3`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves a user record by their unique email address.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND status <> 3`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

// FindByUsername retrieves a user record by their unique username.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1) AND status <> 3`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

// FindByStripeID retrieves the user holding this Stripe customer reference.
func (repository *PostgresUserRepository) FindByStripeID(ctx context.Context, stripeID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_id = $1 AND status <> 3`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, stripeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_stripe_failed: %w", err)
	}

	return user, nil
}

// FindBySocialID retrieves a user bound to the given provider identity.
func (repository *PostgresUserRepository) FindBySocialID(ctx context.Context, provider, providerID string) (*User, error) {
	column, err := socialColumn(provider)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1 AND status <> 3`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, providerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_social_failed: %w", err)
	}

	return user, nil
}

// Update persists changes to a user's mutable profile fields.
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users
		SET email = $2, username = $3, first_name = $4, last_name = $5,
		    phonenumber = $6, subject = $7, photo = $8, address = $9,
		    about = $10, update_date = $11
		WHERE id = $1 AND status <> 3`

	user.UpdateDate = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Subject,
		user.Photo,
		user.Address,
		user.About,
		user.UpdateDate,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	return nil
}

// UpdatePassword updates only the password hash for a specific user.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, userID int64, newHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, update_date = $3
		WHERE id = $1 AND status <> 3`

	_, err := repository.pool.Exec(ctx, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

// UpdateStatus transitions the account lifecycle state.
func (repository *PostgresUserRepository) UpdateStatus(ctx context.Context, userID int64, status UserStatus) error {
	const query = "UPDATE users SET status = $2, update_date = $3 WHERE id = $1"

	_, err := repository.pool.Exec(ctx, query, userID, status, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_status_failed: %w", err)
	}

	return nil
}

// BindSocialID attaches a provider identity to an existing account.
func (repository *PostgresUserRepository) BindSocialID(ctx context.Context, userID int64, provider, providerID string) error {
	column, err := socialColumn(provider)
	if err != nil {
		return err
	}

	query := "UPDATE users SET " + column + " = $2, update_date = $3 WHERE id = $1"

	_, err = repository.pool.Exec(ctx, query, userID, providerID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_bind_social_failed: %w", err)
	}

	return nil
}

// UpdateStripeID stores the Stripe customer reference for the account.
func (repository *PostgresUserRepository) UpdateStripeID(ctx context.Context, userID int64, stripeID string) error {
	const query = "UPDATE users SET stripe_id = $2, update_date = $3 WHERE id = $1"

	_, err := repository.pool.Exec(ctx, query, userID, stripeID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_stripe_failed: %w", err)
	}

	return nil
}

// List returns non-deleted accounts of the given type, newest first.
func (repository *PostgresUserRepository) List(ctx context.Context, accountType int, limit, offset int) ([]*User, int, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE type = $1 AND status <> 3
		ORDER BY create_date DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, accountType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", err)
	}

	const countQuery = "SELECT count(*) FROM users WHERE type = $1 AND status <> 3"
	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, accountType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	return users, total, nil
}

func socialColumn(provider string) (string, error) {
	// Column names are whitelisted here; provider strings never reach SQL raw.
	switch provider {
	case "facebook":
		return "facebook_id", nil
	case "google":
		return "google_id", nil
	case "apple":
		return "apple_id", nil
	default:
		return "", fmt.Errorf("postgres_user_repo_unknown_provider: %q", provider)
	}
}

// ── Session Repository ───────────────────────────────────────────────────────

// PostgresSessionRepository implements the SessionRepository interface.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create persists a new session record into the user_logins table.
func (repository *PostgresSessionRepository) Create(ctx context.Context, session *Session) error {
	const query = `
		INSERT INTO user_logins (
			user_id, login_type, refresh_token, login_date, status
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if session.LoginAt.IsZero() {
		session.LoginAt = time.Now()
	}

	err := repository.pool.QueryRow(ctx, query,
		session.UserID,
		session.Channel,
		session.RefreshToken,
		session.LoginAt,
		session.Status,
	).Scan(&session.ID)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}

	return nil
}

// ExpireActive closes every non-terminal session of (userID, channel).
func (repository *PostgresSessionRepository) ExpireActive(ctx context.Context, userID int64, channel LoginChannel) error {
	const query = `
		UPDATE user_logins
		SET status = $3, logout_date = $4
		WHERE user_id = $1 AND login_type = $2 AND status < $5`

	_, err := repository.pool.Exec(ctx, query,
		userID, channel, SessionLoggedOut, time.Now(), SessionTimedOut)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_expire_active_failed: %w", err)
	}

	return nil
}

// FindByRefreshToken retrieves a session holding exactly this token.
func (repository *PostgresSessionRepository) FindByRefreshToken(ctx context.Context, userID int64, token string) (*Session, error) {
	const query = `
		SELECT id, user_id, login_type, refresh_token, login_date, refresh_date, logout_date, status
		FROM user_logins
		WHERE user_id = $1 AND refresh_token = $2
		ORDER BY login_date DESC
		LIMIT 1`

	session := &Session{}
	err := repository.pool.QueryRow(ctx, query, userID, token).Scan(
		&session.ID,
		&session.UserID,
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
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", err)
	}

	return session, nil
}

// MarkRefreshed rotates the stored token and stamps the refresh time.
func (repository *PostgresSessionRepository) MarkRefreshed(ctx context.Context, sessionID int64, newToken string) error {
	const query = `
		UPDATE user_logins
		SET refresh_token = $2, refresh_date = $3, status = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, sessionID, newToken, time.Now(), SessionRefreshed)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_mark_refreshed_failed: %w", err)
	}

	return nil
}

// MarkTimedOut transitions the session to timed-out with a logout timestamp.
func (repository *PostgresSessionRepository) MarkTimedOut(ctx context.Context, sessionID int64) error {
	const query = `
		UPDATE user_logins
		SET status = $2, logout_date = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, sessionID, SessionTimedOut, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_session_repo_mark_timed_out_failed: %w", err)
	}

	return nil
}

// ── Activation Repository ────────────────────────────────────────────────────

// PostgresActivationRepository implements the ActivationRepository interface.
type PostgresActivationRepository struct {
	pool *pgxpool.Pool
}

// NewActivationRepository creates a new PostgreSQL implementation of ActivationRepository.
func NewActivationRepository(pool *pgxpool.Pool) *PostgresActivationRepository {
	return &PostgresActivationRepository{pool: pool}
}

// Create persists a freshly issued code row.
func (repository *PostgresActivationRepository) Create(ctx context.Context, activation *Activation) error {
	const query = `
		INSERT INTO activations (user_id, code, hash, link, status, create_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if activation.CreateDate.IsZero() {
		activation.CreateDate = time.Now()
	}

	err := repository.pool.QueryRow(ctx, query,
		activation.UserID,
		activation.Code,
		activation.Hash,
		activation.Link,
		activation.Status,
		activation.CreateDate,
	).Scan(&activation.ID)

	if err != nil {
		return fmt.Errorf("postgres_activation_repo_create_failed: %w", err)
	}

	return nil
}

// FindLatestPending returns the newest pending code matching the given value.
func (repository *PostgresActivationRepository) FindLatestPending(ctx context.Context, userID int64, code string) (*Activation, error) {
	const query = `
		SELECT id, user_id, code, hash, link, status, create_date
		FROM activations
		WHERE user_id = $1 AND code = $2 AND status = $3
		ORDER BY create_date DESC
		LIMIT 1`

	activation := &Activation{}
	err := repository.pool.QueryRow(ctx, query, userID, code, CodePending).Scan(
		&activation.ID,
		&activation.UserID,
		&activation.Code,
		&activation.Hash,
		&activation.Link,
		&activation.Status,
		&activation.CreateDate,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Activation code")
		}
		return nil, fmt.Errorf("postgres_activation_repo_find_failed: %w", err)
	}

	return activation, nil
}

// MarkStatus transitions a code row.
func (repository *PostgresActivationRepository) MarkStatus(ctx context.Context, activationID int64, status CodeStatus) error {
	const query = "UPDATE activations SET status = $2 WHERE id = $1"

	_, err := repository.pool.Exec(ctx, query, activationID, status)
	if err != nil {
		return fmt.Errorf("postgres_activation_repo_mark_status_failed: %w", err)
	}

	return nil
}

// Consume marks the code consumed and the account active in one transaction.
func (repository *PostgresActivationRepository) Consume(ctx context.Context, activationID, userID int64) error {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_activation_repo_consume_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	if _, err := transaction.Exec(ctx,
		"UPDATE activations SET status = $2 WHERE id = $1",
		activationID, CodeConsumed,
	); err != nil {
		return fmt.Errorf("postgres_activation_repo_consume_code_failed: %w", err)
	}

	if _, err := transaction.Exec(ctx,
		"UPDATE users SET status = $2, update_date = $3 WHERE id = $1",
		userID, UserActive, time.Now(),
	); err != nil {
		return fmt.Errorf("postgres_activation_repo_consume_user_failed: %w", err)
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_activation_repo_consume_commit_failed: %w", err)
	}

	return nil
}

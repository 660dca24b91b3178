// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Back-office use cases: console authentication and member management.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/sec"
	"github.com/vitalink/vitalink/internal/platform/validate"
)

// TokenProvider mints and checks console tokens. Implemented by
// [sec.TokenService]; shared with the member token flow.
type TokenProvider interface {
	GenerateToken(claims sec.AuthClaims, timeToLive time.Duration) (string, error)
	VerifyExpiredToken(tokenString string) (*sec.AuthClaims, error)
}

// Purger removes one domain's data for a member being deleted.
//
// # Contract
//
// Purging is best-effort: a failing purger is logged and skipped so one
// misbehaving subsystem cannot leave the member half-visible everywhere else.
// Each domain (social, health, care, billing, chat) registers its own purger
// at wiring time.
type Purger interface {
	PurgeUserData(ctx context.Context, userID int64) error
}

// Transaction is a flattened payment provider charge record for the console.
type Transaction struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreateDate  time.Time `json:"create_date"`
}

// PaymentGateway exposes the payment provider lookups the console needs.
type PaymentGateway interface {
	// Transactions lists the charge history of a provider customer,
	// newest first.
	Transactions(ctx context.Context, stripeCustomerID string) ([]Transaction, error)
}

// Options carries the console token lifetimes. Console tokens are typically
// shorter-lived than member tokens.
type Options struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service implements the back-office use cases.
type Service struct {
	admins   AdminRepository
	sessions SessionRepository
	users    auth.UserRepository
	tokens   TokenProvider
	gateway  PaymentGateway
	purgers  map[string]Purger
	options  Options
	logger   *slog.Logger

	now func() time.Time
}

// NewService constructs the admin [Service] with its dependencies.
// The purgers map keys name the owning domain for cascade logging.
func NewService(
	admins AdminRepository,
	sessions SessionRepository,
	users auth.UserRepository,
	tokens TokenProvider,
	gateway PaymentGateway,
	purgers map[string]Purger,
	options Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		admins:   admins,
		sessions: sessions,
		users:    users,
		tokens:   tokens,
		gateway:  gateway,
		purgers:  purgers,
		options:  options,
		logger:   logger,
		now:      time.Now,
	}
}

// TokenPair is the result of a successful console login or refresh.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Admin        *Admin `json:"admin"`
}

// # Console Authentication

// Login authenticates an administrator and issues a console token pair.
func (service *Service) Login(ctx context.Context, login, password string, channel auth.LoginChannel) (*TokenPair, error) {
	admin, err := service.admins.FindByLogin(ctx, login)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !sec.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if admin.Status == StatusDisabled {
		return nil, apperr.Forbidden("This account has been disabled")
	}

	return service.openSession(ctx, admin, channel)
}

// openSession mints a console token pair and records the session, enforcing
// the one-active-session-per-channel rule over the admin ledger.
func (service *Service) openSession(ctx context.Context, admin *Admin, channel auth.LoginChannel) (*TokenPair, error) {
	claims := service.claimsFor(admin)

	accessToken, err := service.tokens.GenerateToken(claims, service.options.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("admin_service_token_generation_failed: %w", err)
	}

	refreshToken, err := service.tokens.GenerateToken(claims, service.options.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("admin_service_refresh_token_failed: %w", err)
	}

	if err := service.sessions.ExpireActive(ctx, admin.ID, channel); err != nil {
		return nil, fmt.Errorf("admin_service_session_expire_failed: %w", err)
	}

	session := &Session{
		AdminID:      admin.ID,
		Channel:      channel,
		RefreshToken: refreshToken,
		LoginAt:      service.now(),
		Status:       auth.SessionLoggedIn,
	}
	if err := service.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("admin_service_session_creation_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Admin:        admin,
	}, nil
}

func (service *Service) claimsFor(admin *Admin) sec.AuthClaims {
	return sec.AuthClaims{
		UserID:    admin.ID,
		Email:     admin.Email,
		Username:  admin.Username,
		FirstName: admin.FirstName,
		LastName:  admin.LastName,
		Photo:     admin.Photo,
		Kind:      sec.KindAdmin,
		Level:     int(admin.Level),
	}
}

// Logout closes the administrator's active session on the given channel.
func (service *Service) Logout(ctx context.Context, adminID int64, channel auth.LoginChannel) error {
	if err := service.sessions.ExpireActive(ctx, adminID, channel); err != nil {
		return fmt.Errorf("admin_service_logout_failed: %w", err)
	}
	return nil
}

// Refresh rotates a console token pair. It mirrors the member refresh
// failure taxonomy over the admin ledger.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := service.tokens.VerifyExpiredToken(refreshToken)
	if err != nil || claims.Kind != sec.KindAdmin {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	session, err := service.sessions.FindByRefreshToken(ctx, claims.UserID, refreshToken)
	if err != nil {
		return nil, apperr.Forbidden("No account found with this refresh token")
	}
	if session.Status.Terminal() {
		return nil, apperr.Forbidden("This refresh token is no longer valid")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(service.now()) {
		if err := service.sessions.MarkTimedOut(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("admin_service_refresh_timeout_failed: %w", err)
		}
		return nil, apperr.Unauthorized("Refresh token expired")
	}

	admin, err := service.admins.FindByID(ctx, session.AdminID)
	if err != nil {
		return nil, apperr.Unauthorized("Administrator not found")
	}

	newClaims := service.claimsFor(admin)
	accessToken, err := service.tokens.GenerateToken(newClaims, service.options.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("admin_service_refresh_access_token_failed: %w", err)
	}
	newRefreshToken, err := service.tokens.GenerateToken(newClaims, service.options.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("admin_service_refresh_token_failed: %w", err)
	}

	if err := service.sessions.MarkRefreshed(ctx, session.ID, newRefreshToken); err != nil {
		return nil, fmt.Errorf("admin_service_refresh_rotation_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		Admin:        admin,
	}, nil
}

// Me returns the current administrator profile.
func (service *Service) Me(ctx context.Context, adminID int64) (*Admin, error) {
	return service.admins.FindByID(ctx, adminID)
}

// ChangePassword replaces the administrator's own password after verifying
// the current one, then closes all console sessions.
func (service *Service) ChangePassword(ctx context.Context, adminID int64, current, newPassword string) error {
	validator := &validate.Validator{}
	validator.
		MinLen("password", newPassword, 3).
		MaxLen("password", newPassword, 30)
	if err := validator.Err(); err != nil {
		return err
	}

	admin, err := service.admins.FindByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !sec.CheckPasswordHash(current, admin.PasswordHash) {
		return apperr.Forbidden("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("admin_service_password_hash_failed: %w", err)
	}
	if err := service.admins.UpdatePassword(ctx, adminID, hashedPassword); err != nil {
		return fmt.Errorf("admin_service_password_update_failed: %w", err)
	}

	for _, channel := range []auth.LoginChannel{auth.ChannelWeb, auth.ChannelMobile} {
		if err := service.sessions.ExpireActive(ctx, adminID, channel); err != nil {
			return fmt.Errorf("admin_service_password_session_expire_failed: %w", err)
		}
	}

	return nil
}

// # Member Management

// ListUsers returns member accounts of the given type for the console.
func (service *Service) ListUsers(ctx context.Context, accountType, limit, offset int) ([]*auth.User, int, error) {
	validator := &validate.Validator{}
	validator.Range("type", accountType, 0, 1)
	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	return service.users.List(ctx, accountType, limit, offset)
}

// SetUserStatus transitions a member account's lifecycle state.
//
// # Cascade
//
// Status 3 (deleted) triggers the cross-domain cleanup: every registered
// [Purger] runs best-effort, then the account row is flagged deleted. The
// row itself stays so its ID remains referenceable in historical logs. Any
// other status is a plain transition.
func (service *Service) SetUserStatus(ctx context.Context, userID int64, status int) error {
	validator := &validate.Validator{}
	validator.Range("status", status, 0, 3)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if auth.UserStatus(status) != auth.UserDeleted {
		if err := service.users.UpdateStatus(ctx, user.ID, auth.UserStatus(status)); err != nil {
			return fmt.Errorf("admin_service_status_update_failed: %w", err)
		}
		return nil
	}

	service.purgeUser(ctx, user.ID)

	if err := service.users.UpdateStatus(ctx, user.ID, auth.UserDeleted); err != nil {
		return fmt.Errorf("admin_service_user_delete_failed: %w", err)
	}

	return nil
}

// purgeUser runs every registered domain purger in a stable order.
func (service *Service) purgeUser(ctx context.Context, userID int64) {
	domains := make([]string, 0, len(service.purgers))
	for domain := range service.purgers {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	for _, domain := range domains {
		if err := service.purgers[domain].PurgeUserData(ctx, userID); err != nil {
			service.logger.Warn("user purge step failed",
				slog.String("domain", domain),
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// TransactionHistory returns the payment provider charge history of a member.
// Members who never touched billing have no provider customer and yield an
// empty list.
func (service *Service) TransactionHistory(ctx context.Context, userID int64) ([]Transaction, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.StripeID == "" {
		return []Transaction{}, nil
	}

	transactions, err := service.gateway.Transactions(ctx, user.StripeID)
	if err != nil {
		return nil, fmt.Errorf("admin_service_transaction_history_failed: %w", err)
	}
	return transactions, nil
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Account lifecycle use cases: signup, activation, credential and social
// login, token refresh, and password reset.
//
// # Architecture
//
// The service orchestrates domain entities and interacts with repositories
// through interfaces. It is technology-agnostic and does not know about
// HTTP or SQL.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/sec"
	"github.com/vitalink/vitalink/internal/platform/validate"
	"github.com/vitalink/vitalink/pkg/uuidv7"
)

// TokenProvider defines the contract for minting and checking security tokens.
type TokenProvider interface {
	// GenerateToken creates a signed JWT carrying the profile snapshot.
	GenerateToken(claims sec.AuthClaims, timeToLive time.Duration) (string, error)

	// VerifyExpiredToken checks only the signature; expiry enforcement is
	// left to the session ledger.
	VerifyExpiredToken(tokenString string) (*sec.AuthClaims, error)

	// GenerateCodeEnvelope signs an activation-code envelope.
	GenerateCodeEnvelope(code, email string, timeToLive time.Duration) (string, error)

	// VerifyCodeEnvelope checks an envelope's signature and returns its claims.
	VerifyCodeEnvelope(envelope string) (*sec.CodeClaims, error)
}

// Notifier delivers account mail. Implemented by [mail.Mailer]; delivery is
// best-effort and never fails the triggering request.
type Notifier interface {
	SendActivationCode(ctx context.Context, to, firstName, code, envelope string)
	SendResetCode(ctx context.Context, to, firstName, code string)
	SendJoinNotice(ctx context.Context, username, email string)
}

// Options carries the tunable lifetimes of the token and code flows.
type Options struct {
	// AccessTTL bounds the access token lifetime.
	AccessTTL time.Duration
	// RefreshTTL bounds the refresh token lifetime.
	RefreshTTL time.Duration
	// CodeTTL bounds how long an activation / reset code stays redeemable.
	CodeTTL time.Duration
	// CodeDigits is the length of generated numeric codes.
	CodeDigits int
	// SiteURL is the public base for activation links.
	SiteURL string
}

// Service implements account authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, session,
// or activation logic must be reviewed by the security team.
type Service struct {
	users       UserRepository
	sessions    SessionRepository
	activations ActivationRepository
	tokens      TokenProvider
	notifier    Notifier
	social      SocialVerifier
	options     Options

	// now is injectable so expiry arithmetic is testable.
	now func() time.Time
}

// NewService constructs the auth [Service] with its dependencies.
func NewService(
	users UserRepository,
	sessions SessionRepository,
	activations ActivationRepository,
	tokens TokenProvider,
	notifier Notifier,
	social SocialVerifier,
	options Options,
) *Service {
	if options.CodeDigits <= 0 {
		options.CodeDigits = 6
	}
	return &Service{
		users:       users,
		sessions:    sessions,
		activations: activations,
		tokens:      tokens,
		notifier:    notifier,
		social:      social,
		options:     options,
		now:         time.Now,
	}
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// # Registration

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Type      int
	Subject   string
}

// Signup validates, hashes, and persists a brand new account, then issues
// its first activation code.
//
// # Business Rules
//   - Emails and usernames must be unique.
//   - Doctor accounts (type 1) must name a speciality subject.
//   - New accounts start in [UserCreated] and cannot log in until activated.
func (service *Service) Signup(ctx context.Context, input SignupInput) (*User, error) {
	// ── 1. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.
		Required("email", input.Email).
		MinLen("email", input.Email, 3).
		MaxLen("email", input.Email, 30).
		Email("email", input.Email).
		Username("username", input.Username).
		MinLen("password", input.Password, 3).
		MaxLen("password", input.Password, 30).
		MaxLen("first_name", input.FirstName, 15).
		MaxLen("last_name", input.LastName, 15).
		Range("type", input.Type, 0, 1).
		Custom("subject", input.Type == 1 && strings.TrimSpace(input.Subject) == "", "Doctors must provide a speciality")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Uniqueness Checks ──────────────────────────────────────────────

	if _, err := service.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Forbidden("An account already exists with this email address")
	}
	if _, err := service.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperr.Forbidden("This username is already taken")
	}

	// ── 3. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 4. Entity Construction & Persistence ──────────────────────────────

	user := &User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Type:         input.Type,
		Subject:      input.Subject,
		Status:       UserCreated,
	}

	if err := service.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_signup_failed: %w", err)
	}

	// ── 5. Activation Code & Notices ──────────────────────────────────────

	if err := service.issueCode(ctx, user, true); err != nil {
		return nil, err
	}
	service.notifier.SendJoinNotice(ctx, user.Username, user.Email)

	return user, nil
}

// issueCode creates a fresh numeric code with its signed envelope, persists
// it, and mails it. The activation flavor also carries a one-click link.
func (service *Service) issueCode(ctx context.Context, user *User, activation bool) error {
	code, err := sec.GenerateNumericCode(service.options.CodeDigits)
	if err != nil {
		return fmt.Errorf("auth_service_code_generation_failed: %w", err)
	}

	envelope, err := service.tokens.GenerateCodeEnvelope(code, user.Email, service.options.CodeTTL)
	if err != nil {
		return fmt.Errorf("auth_service_code_envelope_failed: %w", err)
	}

	record := &Activation{
		UserID:     user.ID,
		Code:       code,
		Hash:       envelope,
		Status:     CodePending,
		CreateDate: service.now(),
	}
	if activation {
		record.Link = fmt.Sprintf("%s/activate?hash=%s", service.options.SiteURL, envelope)
	}

	if err := service.activations.Create(ctx, record); err != nil {
		return fmt.Errorf("auth_service_code_persist_failed: %w", err)
	}

	if activation {
		service.notifier.SendActivationCode(ctx, user.Email, user.FirstName, code, envelope)
	} else {
		service.notifier.SendResetCode(ctx, user.Email, user.FirstName, code)
	}

	return nil
}

// # Activation

// Activate redeems a numeric code for the given email.
//
// # Flow
//  1. Only the most recent pending code for the account is honored.
//  2. A code older than its TTL is transitioned to expired, not consumed.
//  3. Consumption flips code and account state in one transaction.
func (service *Service) Activate(ctx context.Context, email, code string) (*User, error) {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Forbidden("No account found with this email address")
	}
	if user.Status == UserActive {
		return nil, apperr.Forbidden("This account is already active")
	}

	activation, err := service.activations.FindLatestPending(ctx, user.ID, code)
	if err != nil {
		return nil, apperr.Forbidden("Invalid activation code")
	}

	if service.now().Sub(activation.CreateDate) > service.options.CodeTTL {
		if err := service.activations.MarkStatus(ctx, activation.ID, CodeExpired); err != nil {
			return nil, fmt.Errorf("auth_service_activation_expire_failed: %w", err)
		}
		return nil, apperr.Forbidden("This activation code has expired")
	}

	if err := service.activations.Consume(ctx, activation.ID, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_activation_consume_failed: %w", err)
	}

	user.Status = UserActive
	return user, nil
}

// ActivateByEnvelope redeems the signed envelope carried by activation links.
func (service *Service) ActivateByEnvelope(ctx context.Context, envelope string) (*User, error) {
	claims, err := service.tokens.VerifyCodeEnvelope(envelope)
	if err != nil {
		return nil, apperr.Forbidden("Invalid activation link")
	}
	return service.Activate(ctx, claims.Email, claims.Code)
}

// RequestActivation issues a fresh activation code for a not-yet-active account.
func (service *Service) RequestActivation(ctx context.Context, email string) error {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Forbidden("No account found with this email address")
	}
	if user.Status == UserActive {
		return apperr.Forbidden("This account is already active")
	}

	return service.issueCode(ctx, user, true)
}

// # Login & Sessions

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Email or username.
	Password string
	Channel  LoginChannel
}

// Login validates user credentials and issues a token pair.
//
// # Flow
//  1. Lookup user by login (email or username).
//  2. Verify password hash using Bcrypt.
//  3. Close prior sessions on the channel and open a fresh one.
func (service *Service) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	// ── 1. Fetch User Profile ─────────────────────────────────────────────

	// Flexible login: the client may present either email or username.
	user, err := service.users.FindByEmail(ctx, input.Login)
	if err != nil {
		user, err = service.users.FindByUsername(ctx, input.Login)
	}

	// Generic unauthorized error to prevent account enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	switch user.Status {
	case UserCreated:
		return nil, apperr.Forbidden("Please confirm your email address before logging in")
	case UserBlocked:
		return nil, apperr.Forbidden("This account has been blocked")
	case UserDeleted:
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 3. Session Issuance ───────────────────────────────────────────────

	return service.openSession(ctx, user, input.Channel)
}

// openSession mints a token pair and records the session, enforcing the
// one-active-session-per-channel rule.
func (service *Service) openSession(ctx context.Context, user *User, channel LoginChannel) (*TokenPair, error) {
	claims := service.claimsFor(user)

	accessToken, err := service.tokens.GenerateToken(claims, service.options.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := service.tokens.GenerateToken(claims, service.options.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Supersede whatever session the channel held before.
	if err := service.sessions.ExpireActive(ctx, user.ID, channel); err != nil {
		return nil, fmt.Errorf("auth_service_session_expire_failed: %w", err)
	}

	session := &Session{
		UserID:       user.ID,
		Channel:      channel,
		RefreshToken: refreshToken,
		LoginAt:      service.now(),
		Status:       SessionLoggedIn,
	}
	if err := service.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// claimsFor builds the profile snapshot embedded in issued tokens.
func (service *Service) claimsFor(user *User) sec.AuthClaims {
	return sec.AuthClaims{
		UserID:      user.ID,
		Email:       user.Email,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Type:        user.Type,
		Status:      int(user.Status),
		Photo:       user.Photo,
		PhoneNumber: user.PhoneNumber,
		Subject:     user.Subject,
		Kind:        sec.KindUser,
	}
}

// Logout closes the user's active session on the given channel.
// Logging out twice is a no-op, not an error.
func (service *Service) Logout(ctx context.Context, userID int64, channel LoginChannel) error {
	if err := service.sessions.ExpireActive(ctx, userID, channel); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// Refresh rotates a token pair.
//
// # Failure Taxonomy
//   - Bad signature                       → 401, no state change.
//   - No session row holds the token      → 403 (stolen or already rotated).
//   - Session already terminal            → 403.
//   - Embedded expiry in the past         → 401 and the session times out.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	// ── 1. Signature Check (expiry handled below) ─────────────────────────

	claims, err := service.tokens.VerifyExpiredToken(refreshToken)
	if err != nil || claims.Kind != sec.KindUser {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// ── 2. Ledger Check ───────────────────────────────────────────────────

	session, err := service.sessions.FindByRefreshToken(ctx, claims.UserID, refreshToken)
	if err != nil {
		return nil, apperr.Forbidden("No account found with this refresh token")
	}
	if session.Status.Terminal() {
		return nil, apperr.Forbidden("This refresh token is no longer valid")
	}

	// ── 3. Expiry Check ───────────────────────────────────────────────────

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(service.now()) {
		if err := service.sessions.MarkTimedOut(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("auth_service_refresh_timeout_failed: %w", err)
		}
		return nil, apperr.Unauthorized("Refresh token expired")
	}

	// ── 4. Rotation ───────────────────────────────────────────────────────

	user, err := service.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	newClaims := service.claimsFor(user)
	accessToken, err := service.tokens.GenerateToken(newClaims, service.options.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}
	newRefreshToken, err := service.tokens.GenerateToken(newClaims, service.options.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.sessions.MarkRefreshed(ctx, session.ID, newRefreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_rotation_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         user,
	}, nil
}

// Me returns the current account profile.
func (service *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return service.users.FindByID(ctx, userID)
}

// # Password Reset

// RequestResetPassword issues a reset code for the account.
func (service *Service) RequestResetPassword(ctx context.Context, email string) error {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Forbidden("No account found with this email address")
	}

	return service.issueCode(ctx, user, false)
}

// ResetPassword redeems a reset code and replaces the password. All sessions
// are closed afterwards so stolen refresh tokens die with the old password.
func (service *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	validator := &validate.Validator{}
	validator.
		MinLen("password", newPassword, 3).
		MaxLen("password", newPassword, 30)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Forbidden("No account found with this email address")
	}

	activation, err := service.activations.FindLatestPending(ctx, user.ID, code)
	if err != nil {
		return apperr.Forbidden("Invalid reset code")
	}
	if service.now().Sub(activation.CreateDate) > service.options.CodeTTL {
		if err := service.activations.MarkStatus(ctx, activation.ID, CodeExpired); err != nil {
			return fmt.Errorf("auth_service_reset_expire_failed: %w", err)
		}
		return apperr.Forbidden("This reset code has expired")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}
	if err := service.users.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}
	if err := service.activations.MarkStatus(ctx, activation.ID, CodeConsumed); err != nil {
		return fmt.Errorf("auth_service_reset_consume_failed: %w", err)
	}

	for _, channel := range []LoginChannel{ChannelWeb, ChannelMobile} {
		if err := service.sessions.ExpireActive(ctx, user.ID, channel); err != nil {
			return fmt.Errorf("auth_service_reset_session_expire_failed: %w", err)
		}
	}

	return nil
}

// # Social Login

// LoginWithFacebook exchanges a Facebook access token for a session.
func (service *Service) LoginWithFacebook(ctx context.Context, accessToken string, channel LoginChannel) (*TokenPair, error) {
	profile, err := service.social.FacebookProfile(ctx, accessToken)
	if err != nil {
		return nil, apperr.Unauthorized("Facebook login could not be verified")
	}
	return service.socialSession(ctx, "facebook", profile, channel)
}

// LoginWithGoogle exchanges a Google access token for a session.
func (service *Service) LoginWithGoogle(ctx context.Context, accessToken string, channel LoginChannel) (*TokenPair, error) {
	profile, err := service.social.GoogleProfile(ctx, accessToken)
	if err != nil {
		return nil, apperr.Unauthorized("Google login could not be verified")
	}
	return service.socialSession(ctx, "google", profile, channel)
}

// LoginWithApple signs in with the identity relayed by Sign in with Apple.
// Apple only discloses the email on the first authorization, so subsequent
// logins carry just the stable user identifier.
func (service *Service) LoginWithApple(ctx context.Context, input AppleLoginInput, channel LoginChannel) (*TokenPair, error) {
	if strings.TrimSpace(input.AppleID) == "" {
		return nil, apperr.Unauthorized("Apple login could not be verified")
	}
	profile := &SocialProfile{
		ProviderID: input.AppleID,
		Email:      input.Email,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
	}
	return service.socialSession(ctx, "apple", profile, channel)
}

// AppleLoginInput is the client-relayed Apple identity payload.
type AppleLoginInput struct {
	AppleID   string
	Email     string
	FirstName string
	LastName  string
}

// socialSession finds or creates the account bound to a provider identity.
//
// # Merge Rule
//
// If the provider identity is new but its email matches an existing account,
// the identity is bound to that account instead of creating a duplicate.
func (service *Service) socialSession(ctx context.Context, provider string, profile *SocialProfile, channel LoginChannel) (*TokenPair, error) {
	user, err := service.users.FindBySocialID(ctx, provider, profile.ProviderID)

	if err != nil && profile.Email != "" {
		if existing, lookupErr := service.users.FindByEmail(ctx, profile.Email); lookupErr == nil {
			if bindErr := service.users.BindSocialID(ctx, existing.ID, provider, profile.ProviderID); bindErr != nil {
				return nil, fmt.Errorf("auth_service_social_bind_failed: %w", bindErr)
			}
			user, err = existing, nil
		}
	}

	if err != nil {
		user, err = service.createSocialUser(ctx, provider, profile)
		if err != nil {
			return nil, err
		}
	}

	if user.Status == UserBlocked {
		return nil, apperr.Forbidden("This account has been blocked")
	}

	return service.openSession(ctx, user, channel)
}

// createSocialUser enrolls a new pre-activated account for a provider identity.
func (service *Service) createSocialUser(ctx context.Context, provider string, profile *SocialProfile) (*User, error) {
	username, err := service.generateUsername(ctx, profile)
	if err != nil {
		return nil, err
	}

	// Social accounts never use password login; store an unguessable hash.
	hashedPassword, err := sec.HashPassword(uuidv7.New())
	if err != nil {
		return nil, fmt.Errorf("auth_service_social_hash_failed: %w", err)
	}

	user := &User{
		Email:        profile.Email,
		Username:     username,
		PasswordHash: hashedPassword,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Status:       UserActive, // The provider already verified the identity.
	}
	switch provider {
	case "facebook":
		user.FacebookID = profile.ProviderID
	case "google":
		user.GoogleID = profile.ProviderID
	case "apple":
		user.AppleID = profile.ProviderID
	}

	if err := service.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_social_create_failed: %w", err)
	}

	service.notifier.SendJoinNotice(ctx, user.Username, user.Email)
	return user, nil
}

// generateUsername derives a unique handle from the profile name or email,
// appending a counter until an unused one is found.
func (service *Service) generateUsername(ctx context.Context, profile *SocialProfile) (string, error) {
	base := strings.ToLower(profile.FirstName + profile.LastName)
	if base == "" && profile.Email != "" {
		base = strings.ToLower(strings.SplitN(profile.Email, "@", 2)[0])
	}
	base = sanitizeHandle(base)
	if len(base) < 4 {
		base = "member" + base
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		if _, err := service.users.FindByUsername(ctx, candidate); err != nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
		if suffix > 500 {
			return "", apperr.Internal(fmt.Errorf("auth_service_username_space_exhausted for %q", base))
		}
	}
}

// sanitizeHandle strips everything a username may not contain.
func sanitizeHandle(s string) string {
	var builder strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// # Profile

// UpdateProfileInput carries the mutable profile fields. Nil pointers mean
// "leave unchanged", allowing partial updates from the settings screens.
type UpdateProfileInput struct {
	Email       *string
	Username    *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Subject     *string
	Photo       *string
	Address     *string
	About       *string
}

// UpdateProfile applies a partial profile update with duplication checks on
// the unique identity fields.
func (service *Service) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		validator := &validate.Validator{}
		if err := validator.Email("email", *input.Email).Err(); err != nil {
			return nil, err
		}
		if _, err := service.users.FindByEmail(ctx, *input.Email); err == nil {
			return nil, apperr.Forbidden("An account already exists with this email address")
		}
		user.Email = *input.Email
	}

	if input.Username != nil && *input.Username != user.Username {
		validator := &validate.Validator{}
		if err := validator.Username("username", *input.Username).Err(); err != nil {
			return nil, err
		}
		if _, err := service.users.FindByUsername(ctx, *input.Username); err == nil {
			return nil, apperr.Forbidden("This username is already taken")
		}
		user.Username = *input.Username
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}
	if input.Subject != nil {
		user.Subject = *input.Subject
	}
	if input.Photo != nil {
		user.Photo = *input.Photo
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.About != nil {
		user.About = *input.About
	}

	if err := service.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_profile_update_failed: %w", err)
	}

	return user, nil
}

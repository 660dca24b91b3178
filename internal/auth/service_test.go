// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/sec"
)

// ── In-memory fakes ──────────────────────────────────────────────────────────

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]*User{}}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*User, error) {
	if user, ok := r.users[id]; ok && user.Status != UserDeleted {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) && user.Status != UserDeleted {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Username, username) && user.Status != UserDeleted {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByStripeID(_ context.Context, stripeID string) (*User, error) {
	for _, user := range r.users {
		if user.StripeID == stripeID {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindBySocialID(_ context.Context, provider, providerID string) (*User, error) {
	for _, user := range r.users {
		var bound string
		switch provider {
		case "facebook":
			bound = user.FacebookID
		case "google":
			bound = user.GoogleID
		case "apple":
			bound = user.AppleID
		}
		if bound != "" && bound == providerID && user.Status != UserDeleted {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID int64, newHash string) error {
	r.users[userID].PasswordHash = newHash
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, userID int64, status UserStatus) error {
	r.users[userID].Status = status
	return nil
}

func (r *fakeUserRepo) BindSocialID(_ context.Context, userID int64, provider, providerID string) error {
	switch provider {
	case "facebook":
		r.users[userID].FacebookID = providerID
	case "google":
		r.users[userID].GoogleID = providerID
	case "apple":
		r.users[userID].AppleID = providerID
	}
	return nil
}

func (r *fakeUserRepo) UpdateStripeID(_ context.Context, userID int64, stripeID string) error {
	r.users[userID].StripeID = stripeID
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, accountType int, limit, offset int) ([]*User, int, error) {
	var users []*User
	for _, user := range r.users {
		if user.Type == accountType && user.Status != UserDeleted {
			copied := *user
			users = append(users, &copied)
		}
	}
	return users, len(users), nil
}

type fakeSessionRepo struct {
	nextID   int64
	sessions []*Session
}

func (r *fakeSessionRepo) Create(_ context.Context, session *Session) error {
	r.nextID++
	session.ID = r.nextID
	copied := *session
	r.sessions = append(r.sessions, &copied)
	return nil
}

func (r *fakeSessionRepo) ExpireActive(_ context.Context, userID int64, channel LoginChannel) error {
	now := time.Now()
	for _, session := range r.sessions {
		if session.UserID == userID && session.Channel == channel && !session.Status.Terminal() {
			session.Status = SessionLoggedOut
			session.LogoutAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) FindByRefreshToken(_ context.Context, userID int64, token string) (*Session, error) {
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].UserID == userID && r.sessions[i].RefreshToken == token {
			copied := *r.sessions[i]
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (r *fakeSessionRepo) MarkRefreshed(_ context.Context, sessionID int64, newToken string) error {
	for _, session := range r.sessions {
		if session.ID == sessionID {
			now := time.Now()
			session.RefreshToken = newToken
			session.RefreshAt = &now
			session.Status = SessionRefreshed
		}
	}
	return nil
}

func (r *fakeSessionRepo) MarkTimedOut(_ context.Context, sessionID int64) error {
	for _, session := range r.sessions {
		if session.ID == sessionID {
			now := time.Now()
			session.Status = SessionTimedOut
			session.LogoutAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) active(userID int64, channel LoginChannel) []*Session {
	var result []*Session
	for _, session := range r.sessions {
		if session.UserID == userID && session.Channel == channel && !session.Status.Terminal() {
			result = append(result, session)
		}
	}
	return result
}

type fakeActivationRepo struct {
	nextID int64
	codes  []*Activation
	users  *fakeUserRepo
}

func (r *fakeActivationRepo) Create(_ context.Context, activation *Activation) error {
	r.nextID++
	activation.ID = r.nextID
	copied := *activation
	r.codes = append(r.codes, &copied)
	return nil
}

func (r *fakeActivationRepo) FindLatestPending(_ context.Context, userID int64, code string) (*Activation, error) {
	for i := len(r.codes) - 1; i >= 0; i-- {
		row := r.codes[i]
		if row.UserID == userID && row.Code == code && row.Status == CodePending {
			copied := *row
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Activation code")
}

func (r *fakeActivationRepo) MarkStatus(_ context.Context, activationID int64, status CodeStatus) error {
	for _, row := range r.codes {
		if row.ID == activationID {
			row.Status = status
		}
	}
	return nil
}

func (r *fakeActivationRepo) Consume(_ context.Context, activationID, userID int64) error {
	for _, row := range r.codes {
		if row.ID == activationID {
			row.Status = CodeConsumed
		}
	}
	r.users.users[userID].Status = UserActive
	return nil
}

type recordingNotifier struct {
	activationCodes []string
	resetCodes      []string
	joinNotices     int
}

func (n *recordingNotifier) SendActivationCode(_ context.Context, _, _, code, _ string) {
	n.activationCodes = append(n.activationCodes, code)
}

func (n *recordingNotifier) SendResetCode(_ context.Context, _, _, code string) {
	n.resetCodes = append(n.resetCodes, code)
}

func (n *recordingNotifier) SendJoinNotice(_ context.Context, _, _ string) {
	n.joinNotices++
}

type stubSocialVerifier struct {
	profile *SocialProfile
	err     error
}

func (v *stubSocialVerifier) FacebookProfile(context.Context, string) (*SocialProfile, error) {
	return v.profile, v.err
}

func (v *stubSocialVerifier) GoogleProfile(context.Context, string) (*SocialProfile, error) {
	return v.profile, v.err
}

// ── Test harness ─────────────────────────────────────────────────────────────

type authFixture struct {
	service     *Service
	users       *fakeUserRepo
	sessions    *fakeSessionRepo
	activations *fakeActivationRepo
	notifier    *recordingNotifier
	social      *stubSocialVerifier
	tokens      *sec.TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tokens, err := sec.NewTokenService("test-secret", "test")
	require.NoError(t, err)

	users := newFakeUserRepo()
	sessions := &fakeSessionRepo{}
	activations := &fakeActivationRepo{users: users}
	notifier := &recordingNotifier{}
	social := &stubSocialVerifier{}

	service := NewService(users, sessions, activations, tokens, notifier, social, Options{
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 12 * time.Hour,
		CodeTTL:    24 * time.Hour,
		CodeDigits: 6,
		SiteURL:    "https://app.example.com",
	})

	return &authFixture{
		service:     service,
		users:       users,
		sessions:    sessions,
		activations: activations,
		notifier:    notifier,
		social:      social,
		tokens:      tokens,
	}
}

func (f *authFixture) signupAndActivate(t *testing.T) *User {
	t.Helper()

	user, err := f.service.Signup(context.Background(), SignupInput{
		Email:    "kim@example.com",
		Username: "kim.walker",
		Password: "secret1",
	})
	require.NoError(t, err)

	code := f.notifier.activationCodes[len(f.notifier.activationCodes)-1]
	activated, err := f.service.Activate(context.Background(), user.Email, code)
	require.NoError(t, err)
	return activated
}

// ── Signup & Activation ──────────────────────────────────────────────────────

/*
TestSignupValidation verifies the boundary rules on registration input.
*/
func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name  string
		input SignupInput
	}{
		{"bad_email", SignupInput{Email: "nope", Username: "good.name", Password: "secret1"}},
		{"short_username", SignupInput{Email: "a@b.io", Username: "ab", Password: "secret1"}},
		{"separator_username", SignupInput{Email: "a@b.io", Username: "_kimwalker", Password: "secret1"}},
		{"short_password", SignupInput{Email: "a@b.io", Username: "good.name", Password: "ab"}},
		{"doctor_without_subject", SignupInput{Email: "a@b.io", Username: "good.name", Password: "secret1", Type: 1}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			fixture := newAuthFixture(t)
			_, err := fixture.service.Signup(context.Background(), testCase.input)
			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

func TestSignupIssuesActivationCode(t *testing.T) {
	fixture := newAuthFixture(t)

	user, err := fixture.service.Signup(context.Background(), SignupInput{
		Email:    "kim@example.com",
		Username: "kim.walker",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, UserCreated, user.Status)
	require.Len(t, fixture.notifier.activationCodes, 1)
	assert.Len(t, fixture.notifier.activationCodes[0], 6)
	assert.Equal(t, 1, fixture.notifier.joinNotices)

	// Duplicate email is a business rejection, not a validation error.
	_, err = fixture.service.Signup(context.Background(), SignupInput{
		Email:    "KIM@example.com",
		Username: "other.name",
		Password: "secret1",
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestActivateConsumesCode(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.signupAndActivate(t)

	assert.Equal(t, UserActive, user.Status)
	assert.Equal(t, CodeConsumed, fixture.activations.codes[0].Status)

	// A consumed code cannot be replayed.
	_, err := fixture.service.Activate(context.Background(), user.Email, fixture.activations.codes[0].Code)
	require.Error(t, err)
}

func TestActivateWrongCode(t *testing.T) {
	fixture := newAuthFixture(t)
	_, err := fixture.service.Signup(context.Background(), SignupInput{
		Email:    "kim@example.com",
		Username: "kim.walker",
		Password: "secret1",
	})
	require.NoError(t, err)

	_, err = fixture.service.Activate(context.Background(), "kim@example.com", "000000x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid activation code")
}

func TestActivateExpiredCodeTransitionsRow(t *testing.T) {
	fixture := newAuthFixture(t)
	_, err := fixture.service.Signup(context.Background(), SignupInput{
		Email:    "kim@example.com",
		Username: "kim.walker",
		Password: "secret1",
	})
	require.NoError(t, err)

	// Jump the clock past the code TTL.
	fixture.service.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	code := fixture.notifier.activationCodes[0]
	_, err = fixture.service.Activate(context.Background(), "kim@example.com", code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
	assert.Equal(t, CodeExpired, fixture.activations.codes[0].Status)
}

// ── Login & Sessions ─────────────────────────────────────────────────────────

func TestLoginRequiresActivation(t *testing.T) {
	fixture := newAuthFixture(t)
	_, err := fixture.service.Signup(context.Background(), SignupInput{
		Email:    "kim@example.com",
		Username: "kim.walker",
		Password: "secret1",
	})
	require.NoError(t, err)

	_, err = fixture.service.Login(context.Background(), LoginInput{
		Login:    "kim@example.com",
		Password: "secret1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirm your email")
}

func TestLoginSupersedesChannelSession(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.signupAndActivate(t)

	first, err := fixture.service.Login(context.Background(), LoginInput{
		Login: "kim.walker", Password: "secret1", Channel: ChannelMobile,
	})
	require.NoError(t, err)

	second, err := fixture.service.Login(context.Background(), LoginInput{
		Login: "kim@example.com", Password: "secret1", Channel: ChannelMobile,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Exactly one live session per channel.
	assert.Len(t, fixture.sessions.active(user.ID, ChannelMobile), 1)

	// A web login does not disturb the mobile session.
	_, err = fixture.service.Login(context.Background(), LoginInput{
		Login: "kim@example.com", Password: "secret1", Channel: ChannelWeb,
	})
	require.NoError(t, err)
	assert.Len(t, fixture.sessions.active(user.ID, ChannelMobile), 1)
	assert.Len(t, fixture.sessions.active(user.ID, ChannelWeb), 1)
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.signupAndActivate(t)

	pair, err := fixture.service.Login(context.Background(), LoginInput{
		Login: "kim@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	rotated, err := fixture.service.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The superseded token no longer matches any ledger row.
	_, err = fixture.service.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No account found with this refresh token")
}

func TestRefreshAfterLogoutRejected(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.signupAndActivate(t)

	pair, err := fixture.service.Login(context.Background(), LoginInput{
		Login: "kim@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, fixture.service.Logout(context.Background(), user.ID, ChannelWeb))

	_, err = fixture.service.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer valid")
}

func TestRefreshExpiredTokenTimesOutSession(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.signupAndActivate(t)

	pair, err := fixture.service.Login(context.Background(), LoginInput{
		Login: "kim@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	// Move past the embedded refresh expiry.
	fixture.service.now = func() time.Time { return time.Now().Add(13 * time.Hour) }

	_, err = fixture.service.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	assert.Empty(t, fixture.sessions.active(user.ID, ChannelWeb))
	assert.Equal(t, SessionTimedOut, fixture.sessions.sessions[0].Status)
}

func TestRefreshGarbageTokenRejected(t *testing.T) {
	fixture := newAuthFixture(t)
	_, err := fixture.service.Refresh(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

// ── Password Reset ───────────────────────────────────────────────────────────

func TestResetPasswordClosesSessions(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.signupAndActivate(t)

	_, err := fixture.service.Login(context.Background(), LoginInput{
		Login: "kim@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, fixture.service.RequestResetPassword(context.Background(), user.Email))
	require.Len(t, fixture.notifier.resetCodes, 1)

	code := fixture.notifier.resetCodes[0]
	require.NoError(t, fixture.service.ResetPassword(context.Background(), user.Email, code, "newpass"))

	// Old password no longer works, sessions are gone.
	_, err = fixture.service.Login(context.Background(), LoginInput{
		Login: "kim@example.com", Password: "secret1",
	})
	require.Error(t, err)
	assert.Empty(t, fixture.sessions.active(user.ID, ChannelWeb))

	pair, err := fixture.service.Login(context.Background(), LoginInput{
		Login: "kim@example.com", Password: "newpass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

// ── Social Login ─────────────────────────────────────────────────────────────

func TestSocialLoginCreatesAccount(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.social.profile = &SocialProfile{
		ProviderID: "fb-123",
		Email:      "sasha@example.com",
		FirstName:  "Sasha",
		LastName:   "Reyes",
	}

	pair, err := fixture.service.LoginWithFacebook(context.Background(), "provider-token", ChannelMobile)
	require.NoError(t, err)

	assert.Equal(t, "sasha@example.com", pair.User.Email)
	assert.Equal(t, UserActive, pair.User.Status)
	assert.Equal(t, "sashareyes", pair.User.Username)

	// Same identity logs into the same account.
	again, err := fixture.service.LoginWithFacebook(context.Background(), "provider-token", ChannelMobile)
	require.NoError(t, err)
	assert.Equal(t, pair.User.ID, again.User.ID)
}

func TestSocialLoginMergesByEmail(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.signupAndActivate(t)

	fixture.social.profile = &SocialProfile{
		ProviderID: "g-789",
		Email:      user.Email,
		FirstName:  "Kim",
	}

	pair, err := fixture.service.LoginWithGoogle(context.Background(), "provider-token", ChannelWeb)
	require.NoError(t, err)
	assert.Equal(t, user.ID, pair.User.ID)
	assert.Equal(t, "g-789", fixture.users.users[user.ID].GoogleID)
}

func TestSocialUsernameCollisionAddsSuffix(t *testing.T) {
	fixture := newAuthFixture(t)

	fixture.social.profile = &SocialProfile{ProviderID: "fb-1", FirstName: "Sasha", LastName: "Reyes"}
	first, err := fixture.service.LoginWithFacebook(context.Background(), "t", ChannelWeb)
	require.NoError(t, err)

	fixture.social.profile = &SocialProfile{ProviderID: "fb-2", FirstName: "Sasha", LastName: "Reyes"}
	second, err := fixture.service.LoginWithFacebook(context.Background(), "t", ChannelWeb)
	require.NoError(t, err)

	assert.Equal(t, "sashareyes", first.User.Username)
	assert.Equal(t, "sashareyes1", second.User.Username)
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package admin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/sec"
)

type fakeAdminRepo struct {
	admins map[int64]*Admin
}

func (r *fakeAdminRepo) FindByID(_ context.Context, id int64) (*Admin, error) {
	if admin, ok := r.admins[id]; ok {
		copied := *admin
		return &copied, nil
	}
	return nil, apperr.NotFound("Administrator")
}

func (r *fakeAdminRepo) FindByLogin(_ context.Context, login string) (*Admin, error) {
	for _, admin := range r.admins {
		if strings.EqualFold(admin.Email, login) || strings.EqualFold(admin.Username, login) {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Administrator")
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *Admin) error {
	admin.ID = int64(len(r.admins) + 1)
	copied := *admin
	r.admins[admin.ID] = &copied
	return nil
}

func (r *fakeAdminRepo) UpdatePassword(_ context.Context, adminID int64, newHash string) error {
	r.admins[adminID].PasswordHash = newHash
	return nil
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

func (r *fakeSessionRepo) ExpireActive(_ context.Context, adminID int64, channel auth.LoginChannel) error {
	now := time.Now()
	for _, session := range r.sessions {
		if session.AdminID == adminID && session.Channel == channel && !session.Status.Terminal() {
			session.Status = auth.SessionLoggedOut
			session.LogoutAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) FindByRefreshToken(_ context.Context, adminID int64, token string) (*Session, error) {
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].AdminID == adminID && r.sessions[i].RefreshToken == token {
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
			session.Status = auth.SessionRefreshed
		}
	}
	return nil
}

func (r *fakeSessionRepo) MarkTimedOut(_ context.Context, sessionID int64) error {
	for _, session := range r.sessions {
		if session.ID == sessionID {
			now := time.Now()
			session.Status = auth.SessionTimedOut
			session.LogoutAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) active(adminID int64) []*Session {
	var result []*Session
	for _, session := range r.sessions {
		if session.AdminID == adminID && !session.Status.Terminal() {
			result = append(result, session)
		}
	}
	return result
}

// fakeUserRepo carries only what the console operations touch.
type fakeUserRepo struct {
	users map[int64]*auth.User
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByUsername(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindBySocialID(context.Context, string, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByStripeID(_ context.Context, stripeID string) (*auth.User, error) {
	for _, user := range r.users {
		if user.StripeID == stripeID {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	user.ID = int64(len(r.users) + 1)
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *auth.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePassword(context.Context, int64, string) error { return nil }

func (r *fakeUserRepo) UpdateStatus(_ context.Context, userID int64, status auth.UserStatus) error {
	r.users[userID].Status = status
	return nil
}

func (r *fakeUserRepo) BindSocialID(context.Context, int64, string, string) error { return nil }

func (r *fakeUserRepo) UpdateStripeID(context.Context, int64, string) error { return nil }

func (r *fakeUserRepo) List(_ context.Context, accountType int, _, _ int) ([]*auth.User, int, error) {
	var users []*auth.User
	for _, user := range r.users {
		if user.Type == accountType {
			copied := *user
			users = append(users, &copied)
		}
	}
	return users, len(users), nil
}

type recordingPurger struct {
	purged []int64
	err    error
}

func (p *recordingPurger) PurgeUserData(_ context.Context, userID int64) error {
	p.purged = append(p.purged, userID)
	return p.err
}

type stubGateway struct {
	transactions []Transaction
	calledWith   string
}

func (g *stubGateway) Transactions(_ context.Context, stripeCustomerID string) ([]Transaction, error) {
	g.calledWith = stripeCustomerID
	return g.transactions, nil
}

type adminFixture struct {
	service  *Service
	admins   *fakeAdminRepo
	sessions *fakeSessionRepo
	users    *fakeUserRepo
	gateway  *stubGateway
	purgers  map[string]*recordingPurger
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	tokens, err := sec.NewTokenService("test-secret", "test")
	require.NoError(t, err)

	hash, err := sec.HashPassword("console1")
	require.NoError(t, err)

	admins := &fakeAdminRepo{admins: map[int64]*Admin{
		1: {ID: 1, Email: "ops@example.com", Username: "ops", PasswordHash: hash, Level: sec.LevelSuper},
	}}
	sessions := &fakeSessionRepo{}
	users := &fakeUserRepo{users: map[int64]*auth.User{}}
	gateway := &stubGateway{}
	purgers := map[string]*recordingPurger{
		"billing": {},
		"social":  {},
	}
	registered := map[string]Purger{}
	for name, purger := range purgers {
		registered[name] = purger
	}

	service := NewService(admins, sessions, users, tokens, gateway, registered, Options{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 2 * time.Hour,
	}, nil)

	return &adminFixture{
		service:  service,
		admins:   admins,
		sessions: sessions,
		users:    users,
		gateway:  gateway,
		purgers:  purgers,
	}
}

func TestAdminLoginIssuesConsolePair(t *testing.T) {
	fixture := newAdminFixture(t)

	pair, err := fixture.service.Login(context.Background(), "ops", "console1", auth.ChannelWeb)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, int64(1), pair.Admin.ID)
	assert.Len(t, fixture.sessions.active(1), 1)

	// A second login supersedes the first session.
	_, err = fixture.service.Login(context.Background(), "ops@example.com", "console1", auth.ChannelWeb)
	require.NoError(t, err)
	assert.Len(t, fixture.sessions.active(1), 1)
}

func TestAdminLoginRejectsDisabledAccount(t *testing.T) {
	fixture := newAdminFixture(t)
	fixture.admins.admins[1].Status = StatusDisabled

	_, err := fixture.service.Login(context.Background(), "ops", "console1", auth.ChannelWeb)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestAdminRefreshRejectsMemberToken(t *testing.T) {
	fixture := newAdminFixture(t)

	// A member-kind token must never refresh a console session.
	tokens, err := sec.NewTokenService("test-secret", "test")
	require.NoError(t, err)
	memberToken, err := tokens.GenerateToken(sec.AuthClaims{UserID: 1, Kind: sec.KindUser}, time.Hour)
	require.NoError(t, err)

	_, err = fixture.service.Refresh(context.Background(), memberToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestAdminRefreshRotates(t *testing.T) {
	fixture := newAdminFixture(t)

	pair, err := fixture.service.Login(context.Background(), "ops", "console1", auth.ChannelWeb)
	require.NoError(t, err)

	rotated, err := fixture.service.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, err = fixture.service.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestSetUserStatusPlainTransition(t *testing.T) {
	fixture := newAdminFixture(t)
	fixture.users.users[7] = &auth.User{ID: 7, Status: auth.UserActive}

	require.NoError(t, fixture.service.SetUserStatus(context.Background(), 7, 2))
	assert.Equal(t, auth.UserBlocked, fixture.users.users[7].Status)

	// No purger runs for a non-delete transition.
	assert.Empty(t, fixture.purgers["billing"].purged)
}

func TestSetUserStatusDeleteCascades(t *testing.T) {
	fixture := newAdminFixture(t)
	fixture.users.users[7] = &auth.User{ID: 7, Status: auth.UserActive}

	require.NoError(t, fixture.service.SetUserStatus(context.Background(), 7, 3))

	assert.Equal(t, []int64{7}, fixture.purgers["billing"].purged)
	assert.Equal(t, []int64{7}, fixture.purgers["social"].purged)

	// The account row survives as a status flag; only domain data is purged.
	require.Contains(t, fixture.users.users, int64(7))
	assert.Equal(t, auth.UserDeleted, fixture.users.users[7].Status)
}

func TestSetUserStatusDeleteSurvivesPurgerFailure(t *testing.T) {
	fixture := newAdminFixture(t)
	fixture.users.users[7] = &auth.User{ID: 7, Status: auth.UserActive}
	fixture.purgers["billing"].err = assert.AnError

	require.NoError(t, fixture.service.SetUserStatus(context.Background(), 7, 3))

	// The failing purger is skipped; the rest of the cascade proceeds.
	assert.Equal(t, []int64{7}, fixture.purgers["social"].purged)
	assert.Equal(t, auth.UserDeleted, fixture.users.users[7].Status)
}

func TestTransactionHistoryWithoutCustomer(t *testing.T) {
	fixture := newAdminFixture(t)
	fixture.users.users[7] = &auth.User{ID: 7}

	transactions, err := fixture.service.TransactionHistory(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, transactions)
	assert.Empty(t, fixture.gateway.calledWith)
}

func TestTransactionHistoryQueriesGateway(t *testing.T) {
	fixture := newAdminFixture(t)
	fixture.users.users[7] = &auth.User{ID: 7, StripeID: "cus_123"}
	fixture.gateway.transactions = []Transaction{{ID: "pi_1", Amount: 9900, Currency: "usd"}}

	transactions, err := fixture.service.TransactionHistory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "cus_123", fixture.gateway.calledWith)
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package chat

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/apperr"
)

type fakeRoomStore struct {
	nextID int
	rooms  map[string]*Room
}

func (s *fakeRoomStore) FindOpenRoom(_ context.Context, userID, doctorID int64) (*Room, error) {
	for _, room := range s.rooms {
		if room.UserID == userID && room.DoctorID == doctorID && room.Status == RoomOpen {
			copied := *room
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Room")
}

func (s *fakeRoomStore) HasAnyRoom(_ context.Context, userID int64) (bool, error) {
	for _, room := range s.rooms {
		if room.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeRoomStore) CreateRoom(_ context.Context, room *Room) error {
	s.nextID++
	room.ID = "room-" + strconv.Itoa(s.nextID)
	copied := *room
	s.rooms[room.ID] = &copied
	return nil
}

func (s *fakeRoomStore) CloseRoom(_ context.Context, roomID string) error {
	room, ok := s.rooms[roomID]
	if !ok {
		return apperr.NotFound("Room")
	}
	room.Status = RoomClosed
	return nil
}

func (s *fakeRoomStore) DeleteRoomsByUser(_ context.Context, userID int64) error {
	for id, room := range s.rooms {
		if room.UserID == userID || room.DoctorID == userID {
			delete(s.rooms, id)
		}
	}
	return nil
}

type fakeGate struct {
	plan       bool
	subscribed bool
	consumed   int
}

func (g *fakeGate) HasActivePlan(context.Context, int64) (bool, error) { return g.plan, nil }

func (g *fakeGate) HasActiveSubscription(context.Context, int64) (bool, error) {
	return g.subscribed, nil
}

func (g *fakeGate) ConsumeOneTime(context.Context, int64) error {
	g.consumed++
	return nil
}

type fakeUserRepo struct {
	users map[int64]*auth.User
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
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

func (r *fakeUserRepo) FindByStripeID(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) Create(context.Context, *auth.User) error { return nil }

func (r *fakeUserRepo) Update(context.Context, *auth.User) error { return nil }

func (r *fakeUserRepo) UpdatePassword(context.Context, int64, string) error { return nil }

func (r *fakeUserRepo) UpdateStatus(context.Context, int64, auth.UserStatus) error { return nil }

func (r *fakeUserRepo) BindSocialID(context.Context, int64, string, string) error { return nil }

func (r *fakeUserRepo) UpdateStripeID(context.Context, int64, string) error { return nil }

func (r *fakeUserRepo) List(context.Context, int, int, int) ([]*auth.User, int, error) {
	return nil, 0, nil
}


type chatFixture struct {
	service *Service
	rooms   *fakeRoomStore
	gate    *fakeGate
}

func newChatFixture() *chatFixture {
	rooms := &fakeRoomStore{rooms: map[string]*Room{}}
	gate := &fakeGate{}
	users := &fakeUserRepo{users: map[int64]*auth.User{
		10: {ID: 10, Username: "drchen", Type: 1, Status: auth.UserActive},
		2:  {ID: 2, Username: "kimwalker", Type: 0, Status: auth.UserActive},
	}}

	return &chatFixture{
		service: NewService(rooms, gate, users),
		rooms:   rooms,
		gate:    gate,
	}
}

func TestOpenRoomFirstIsFree(t *testing.T) {
	fixture := newChatFixture()

	room, err := fixture.service.OpenRoom(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, RoomOpen, room.Status)
	assert.Equal(t, int64(1), room.UserID)
	assert.Equal(t, int64(10), room.DoctorID)
	assert.Contains(t, room.Name, "Room-")

	// No subscription: the (absent) one-time unlock was still asked to spend.
	assert.Equal(t, 1, fixture.gate.consumed)
}

func TestOpenRoomRejectsDuplicateOpenRoom(t *testing.T) {
	fixture := newChatFixture()
	fixture.gate.plan = true

	_, err := fixture.service.OpenRoom(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = fixture.service.OpenRoom(context.Background(), 1, 10)
	require.Error(t, err)
	require.NotNil(t, apperr.As(err))
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Equal(t, "Opened room already exists", apperr.As(err).Message)
}

func TestOpenRoomRequiresPlanAfterFirst(t *testing.T) {
	fixture := newChatFixture()

	room, err := fixture.service.OpenRoom(context.Background(), 1, 10)
	require.NoError(t, err)
	require.NoError(t, fixture.service.CloseRoom(context.Background(), room.ID))

	_, err = fixture.service.OpenRoom(context.Background(), 1, 10)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Equal(t, "You are not allowed to create any chat. Please upgrade plan.", apperr.As(err).Message)
}

func TestOpenRoomSubscriptionKeepsUnlock(t *testing.T) {
	fixture := newChatFixture()
	fixture.gate.plan = true
	fixture.gate.subscribed = true

	_, err := fixture.service.OpenRoom(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, fixture.gate.consumed)
}

func TestOpenRoomOneTimeSpentOnReturn(t *testing.T) {
	fixture := newChatFixture()
	fixture.gate.plan = true

	room, err := fixture.service.OpenRoom(context.Background(), 1, 10)
	require.NoError(t, err)
	require.NoError(t, fixture.service.CloseRoom(context.Background(), room.ID))

	_, err = fixture.service.OpenRoom(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, fixture.gate.consumed)
}

func TestOpenRoomRejectsNonDoctor(t *testing.T) {
	fixture := newChatFixture()

	_, err := fixture.service.OpenRoom(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestCloseRoomIsIdempotent(t *testing.T) {
	fixture := newChatFixture()

	room, err := fixture.service.OpenRoom(context.Background(), 1, 10)
	require.NoError(t, err)

	require.NoError(t, fixture.service.CloseRoom(context.Background(), room.ID))
	require.NoError(t, fixture.service.CloseRoom(context.Background(), room.ID))
	assert.Equal(t, RoomClosed, fixture.rooms.rooms[room.ID].Status)
}

func TestCloseRoomRequiresID(t *testing.T) {
	fixture := newChatFixture()

	err := fixture.service.CloseRoom(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestPurgeUserDataDropsBothSides(t *testing.T) {
	fixture := newChatFixture()
	fixture.gate.plan = true

	_, err := fixture.service.OpenRoom(context.Background(), 1, 10)
	require.NoError(t, err)

	// Purging the doctor removes rooms where they were the counterpart.
	require.NoError(t, fixture.service.PurgeUserData(context.Background(), 10))
	assert.Empty(t, fixture.rooms.rooms)
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package chat

import "context"

// RoomStore defines the room document access contract. The production
// implementation is [FirestoreRoomStore].
type RoomStore interface {
	// FindOpenRoom returns the open room between a member and a doctor.
	//
	// Returns [apperr.NotFound] when the pair has no open room.
	FindOpenRoom(ctx context.Context, userID, doctorID int64) (*Room, error)

	// HasAnyRoom reports whether the member ever opened a room, closed ones
	// included. Drives the plan gate: only the first room is free.
	HasAnyRoom(ctx context.Context, userID int64) (bool, error)

	// CreateRoom persists a new room document and assigns its ID.
	CreateRoom(ctx context.Context, room *Room) error

	// CloseRoom marks a room closed. Closing an already closed room is a
	// no-op.
	//
	// Returns [apperr.NotFound] when the room does not exist.
	CloseRoom(ctx context.Context, roomID string) error

	// DeleteRoomsByUser removes every room the account participates in, on
	// either side of the conversation.
	DeleteRoomsByUser(ctx context.Context, userID int64) error
}

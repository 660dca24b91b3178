// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package chat

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

const roomCollection = "rooms"

// FirestoreRoomStore implements [RoomStore] over the rooms collection.
type FirestoreRoomStore struct {
	client *firestore.Client
}

// NewFirestoreRoomStore constructs a [FirestoreRoomStore].
func NewFirestoreRoomStore(client *firestore.Client) *FirestoreRoomStore {
	return &FirestoreRoomStore{client: client}
}

func (store *FirestoreRoomStore) rooms() *firestore.CollectionRef {
	return store.client.Collection(roomCollection)
}

func roomFromSnapshot(snapshot *firestore.DocumentSnapshot) (*Room, error) {
	var room Room
	if err := snapshot.DataTo(&room); err != nil {
		return nil, fmt.Errorf("firestore_room_store_decode_failed: %w", err)
	}
	room.ID = snapshot.Ref.ID
	return &room, nil
}

func (store *FirestoreRoomStore) FindOpenRoom(ctx context.Context, userID, doctorID int64) (*Room, error) {
	query := store.rooms().
		Where("user_id", "==", userID).
		Where("doctor_id", "==", doctorID).
		Where("status", "==", int(RoomOpen)).
		Limit(1)

	snapshot, err := query.Documents(ctx).Next()
	if errors.Is(err, iterator.Done) {
		return nil, apperr.NotFound("Room")
	}
	if err != nil {
		return nil, fmt.Errorf("firestore_room_store_find_failed: %w", err)
	}

	return roomFromSnapshot(snapshot)
}

func (store *FirestoreRoomStore) HasAnyRoom(ctx context.Context, userID int64) (bool, error) {
	query := store.rooms().Where("user_id", "==", userID).Limit(1)

	_, err := query.Documents(ctx).Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("firestore_room_store_find_failed: %w", err)
	}

	return true, nil
}

func (store *FirestoreRoomStore) CreateRoom(ctx context.Context, room *Room) error {
	reference, _, err := store.rooms().Add(ctx, room)
	if err != nil {
		return fmt.Errorf("firestore_room_store_create_failed: %w", err)
	}

	room.ID = reference.ID
	return nil
}

func (store *FirestoreRoomStore) CloseRoom(ctx context.Context, roomID string) error {
	reference := store.rooms().Doc(roomID)

	snapshot, err := reference.Get(ctx)
	if snapshot != nil && !snapshot.Exists() {
		return apperr.NotFound("Room")
	}
	if err != nil {
		return fmt.Errorf("firestore_room_store_find_failed: %w", err)
	}

	updates := []firestore.Update{{Path: "status", Value: int(RoomClosed)}}
	if _, err := reference.Update(ctx, updates); err != nil {
		return fmt.Errorf("firestore_room_store_close_failed: %w", err)
	}

	return nil
}

func (store *FirestoreRoomStore) DeleteRoomsByUser(ctx context.Context, userID int64) error {
	for _, field := range []string{"user_id", "doctor_id"} {
		documents := store.rooms().Where(field, "==", userID).Documents(ctx)
		for {
			snapshot, err := documents.Next()
			if errors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				return fmt.Errorf("firestore_room_store_find_failed: %w", err)
			}
			if _, err := snapshot.Ref.Delete(ctx); err != nil {
				return fmt.Errorf("firestore_room_store_delete_failed: %w", err)
			}
		}
	}

	return nil
}

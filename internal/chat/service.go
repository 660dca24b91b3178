// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/validate"
)

// PlanGate answers what the member's payment state allows. Implemented by
// [billing.Service].
type PlanGate interface {
	HasActivePlan(ctx context.Context, userID int64) (bool, error)
	HasActiveSubscription(ctx context.Context, userID int64) (bool, error)
	ConsumeOneTime(ctx context.Context, userID int64) error
}

// Service implements the consultation room use cases.
type Service struct {
	rooms RoomStore
	gate  PlanGate
	users auth.UserRepository
}

// NewService constructs the chat [Service] with its dependencies.
func NewService(rooms RoomStore, gate PlanGate, users auth.UserRepository) *Service {
	return &Service{rooms: rooms, gate: gate, users: users}
}

// OpenRoom opens a consultation room with a doctor.
//
// The first room of an account is free. Every later room requires an active
// payment, and a one-time unlock is spent the moment the room opens; a
// subscription covers rooms without being consumed.
func (service *Service) OpenRoom(ctx context.Context, userID, doctorID int64) (*Room, error) {
	doctor, err := service.users.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsDoctor() {
		return nil, apperr.NotFound("Doctor")
	}

	_, err = service.rooms.FindOpenRoom(ctx, userID, doctorID)
	if err == nil {
		return nil, apperr.Forbidden("Opened room already exists")
	}
	if !isNotFound(err) {
		return nil, err
	}

	returning, err := service.rooms.HasAnyRoom(ctx, userID)
	if err != nil {
		return nil, err
	}
	if returning {
		allowed, err := service.gate.HasActivePlan(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperr.Forbidden("You are not allowed to create any chat. Please upgrade plan.")
		}
	}

	subscribed, err := service.gate.HasActiveSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !subscribed {
		if err := service.gate.ConsumeOneTime(ctx, userID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	room := &Room{
		Name:       fmt.Sprintf("Room-%d", now.UnixMilli()),
		Status:     RoomOpen,
		UserID:     userID,
		DoctorID:   doctorID,
		CreateDate: now,
	}
	if err := service.rooms.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	return room, nil
}

// CloseRoom marks a room closed. Closing twice is harmless.
func (service *Service) CloseRoom(ctx context.Context, roomID string) error {
	validator := &validate.Validator{}
	validator.Required("room_id", roomID)
	if err := validator.Err(); err != nil {
		return err
	}

	return service.rooms.CloseRoom(ctx, roomID)
}

// PurgeUserData removes every room the account participates in.
func (service *Service) PurgeUserData(ctx context.Context, userID int64) error {
	return service.rooms.DeleteRoomsByUser(ctx, userID)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	appErr := apperr.As(err)
	return appErr != nil && appErr.Code == "NOT_FOUND"
}

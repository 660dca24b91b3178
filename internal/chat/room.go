// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Package chat manages consultation rooms between members and doctors.
//
// Room documents live in Firestore so the mobile clients can subscribe to
// message streams directly; this service only owns the room lifecycle and
// the plan gate deciding who may open one.
package chat

import "time"

// RoomStatus is the lifecycle of a consultation room.
type RoomStatus int

const (
	RoomOpen   RoomStatus = 0
	RoomClosed RoomStatus = 1
)

// Room is one consultation room document.
type Room struct {
	ID         string     `json:"id" firestore:"-"`
	Name       string     `json:"name" firestore:"name"`
	Status     RoomStatus `json:"status" firestore:"status"`
	UserID     int64      `json:"user_id" firestore:"user_id"`
	DoctorID   int64      `json:"doctor_id" firestore:"doctor_id"`
	CreateDate time.Time  `json:"createdAt" firestore:"createdAt"`
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package care

import "context"

// FeedbackRepository defines the data access contract for consultation
// feedback.
type FeedbackRepository interface {
	// Create persists a new feedback row and assigns its ID.
	Create(ctx context.Context, feedback *Feedback) error

	// FindByChatID returns the feedback left on a chat room.
	//
	// Returns [apperr.NotFound] if the room was never reviewed.
	FindByChatID(ctx context.Context, chatID string) (*Feedback, error)

	// ListByDoctor returns a doctor's feedback newest first.
	ListByDoctor(ctx context.Context, doctorID int64) ([]*Feedback, error)

	// DeleteByUser removes every feedback row the account participated in,
	// whether as doctor or as patient.
	DeleteByUser(ctx context.Context, userID int64) error
}

// DirectoryRepository defines the read-only projections of the users table
// served by the public directory.
type DirectoryRepository interface {
	// ListDoctors returns every active doctor account.
	ListDoctors(ctx context.Context) ([]*DoctorCard, error)

	// FindDoctor returns one active doctor.
	//
	// Returns [apperr.NotFound] if the account does not exist, is not a
	// doctor, or is not active.
	FindDoctor(ctx context.Context, doctorID int64) (*DoctorCard, error)

	// ListPatients returns every patient account that is not blocked or
	// deleted.
	ListPatients(ctx context.Context) ([]*PatientSummary, error)

	// FindPatients returns summaries for the given account IDs, keyed by ID.
	// Missing IDs are simply absent from the map.
	FindPatients(ctx context.Context, ids []int64) (map[int64]*PatientSummary, error)
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package health

import (
	"context"
	"time"
)

// ScalarRepository is the storage contract shared by every scalar metric
// family. The kind selects the backing table.
type ScalarRepository interface {
	// FindByDate returns the sample at the natural key (user, date),
	// regardless of status.
	//
	// Returns [apperr.NotFound] if no row exists.
	FindByDate(ctx context.Context, kind Kind, userID int64, date time.Time) (*Sample, error)

	// Insert persists a new sample and assigns its ID.
	Insert(ctx context.Context, kind Kind, sample *Sample) error

	// Overwrite replaces the value of an existing row and stamps it edited.
	Overwrite(ctx context.Context, kind Kind, sample *Sample) error

	// SoftDelete hides a sample owned by the user.
	//
	// Returns [apperr.NotFound] if the row does not exist or belongs to
	// someone else.
	SoftDelete(ctx context.Context, kind Kind, userID, sampleID int64) error

	// List returns the user's visible samples ascending by date, optionally
	// only those after lastAt.
	List(ctx context.Context, kind Kind, userID int64, lastAt *time.Time) ([]*Sample, error)

	// PurgeUser removes every row of the user across the kind's table.
	PurgeUser(ctx context.Context, kind Kind, userID int64) error
}

// BloodPressureRepository stores reading pairs keyed by (user, date).
type BloodPressureRepository interface {
	FindByDate(ctx context.Context, userID int64, date time.Time) (*BloodPressure, error)
	Insert(ctx context.Context, reading *BloodPressure) error
	Overwrite(ctx context.Context, reading *BloodPressure) error
	SoftDelete(ctx context.Context, userID, readingID int64) error
	List(ctx context.Context, userID int64, lastAt *time.Time) ([]*BloodPressure, error)
	PurgeUser(ctx context.Context, userID int64) error
}

// SleepRepository stores sleep segments keyed by (user, uuid).
type SleepRepository interface {
	FindByUUID(ctx context.Context, userID int64, uuid string) (*Sleep, error)
	Insert(ctx context.Context, segment *Sleep) error
	Overwrite(ctx context.Context, segment *Sleep) error
	SoftDelete(ctx context.Context, userID, segmentID int64) error
	List(ctx context.Context, userID int64, lastAt *time.Time) ([]*Sleep, error)
	PurgeUser(ctx context.Context, userID int64) error
}

// ECGRepository stores inline electrocardiogram strips keyed by (user, date).
type ECGRepository interface {
	FindByDate(ctx context.Context, userID int64, date time.Time) (*ECG, error)
	Insert(ctx context.Context, strip *ECG) error
	Overwrite(ctx context.Context, strip *ECG) error
	SoftDelete(ctx context.Context, userID, stripID int64) error
	List(ctx context.Context, userID int64, lastAt *time.Time) ([]*ECG, error)
	PurgeUser(ctx context.Context, userID int64) error
}

// EKGRepository stores recorded waveform sessions keyed by (user, date).
type EKGRepository interface {
	FindByDate(ctx context.Context, userID int64, date time.Time) (*EKG, error)
	Insert(ctx context.Context, session *EKG) error
	Overwrite(ctx context.Context, session *EKG) error
	SoftDelete(ctx context.Context, userID, sessionID int64) error
	List(ctx context.Context, userID int64, lastAt *time.Time) ([]*EKG, error)

	// ListWindow returns visible sessions whose date falls in [from, to),
	// ascending by date. Used by the chart-window endpoint.
	ListWindow(ctx context.Context, userID int64, from, to time.Time) ([]*EKG, error)

	PurgeUser(ctx context.Context, userID int64) error
}

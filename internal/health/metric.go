// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Package health implements the personal health-metric layer: daily samples
// synced from the mobile apps, recorded ECG strips, and their chart windows.
//
// # Data Model
//
// Most metric kinds are a scalar value keyed by (user, date) and share one
// storage shape ([Sample]). Blood pressure carries two values, sleep is keyed
// by a client-generated UUID, ECG stores a compacted voltage series, and EKG
// references a waveform file in object storage.
package health

import "time"

// Kind identifies one metric family. Each kind maps to its own table.
type Kind string

const (
	KindHeartRate Kind = "heart_rate"
	KindEnergy    Kind = "energy"
	KindExercise  Kind = "exercise"
	KindStand     Kind = "stand"
	KindWeight    Kind = "weight"
	KindSteps     Kind = "steps"
	KindAlcohol   Kind = "alcohol"
)

// ScalarKinds lists every kind stored in the shared scalar shape, in the
// order the sync endpoints expose them.
var ScalarKinds = []Kind{
	KindHeartRate, KindEnergy, KindExercise, KindStand,
	KindWeight, KindSteps, KindAlcohol,
}

// Valid reports whether the kind is one of the scalar families.
func (k Kind) Valid() bool {
	for _, kind := range ScalarKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// SampleStatus is the lifecycle state of a stored sample.
type SampleStatus int

const (
	// SampleRecorded is the state of a freshly synced sample.
	SampleRecorded SampleStatus = iota
	// SampleEdited marks a sample that was force-overwritten after sync.
	SampleEdited
	// SampleDeleted hides the sample from reads without losing the row.
	SampleDeleted
)

// Sample is one scalar measurement, keyed by (user, date) within its kind.
type Sample struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	Date       time.Time    `json:"date"`
	Value      float64      `json:"value"`
	Status     SampleStatus `json:"status"`
	CreateDate time.Time    `json:"create_date"`
	UpdateDate time.Time    `json:"update_date"`
}

// BloodPressure is one reading pair, keyed by (user, date).
type BloodPressure struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	Date       time.Time    `json:"date"`
	Systolic   float64      `json:"systolic"`
	Diastolic  float64      `json:"diastolic"`
	Status     SampleStatus `json:"status"`
	CreateDate time.Time    `json:"create_date"`
	UpdateDate time.Time    `json:"update_date"`
}

// Sleep is one sleep segment. Health kits report overlapping segments with
// unstable timestamps, so the client assigns each segment a UUID and that,
// not the date, is the natural key.
type Sleep struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	UUID       string       `json:"uuid"`
	StartDate  time.Time    `json:"start_date"`
	EndDate    time.Time    `json:"end_date"`
	Stage      int          `json:"stage"` // Raw sleep-analysis stage from the health kit.
	Status     SampleStatus `json:"status"`
	CreateDate time.Time    `json:"create_date"`
	UpdateDate time.Time    `json:"update_date"`
}

// ECG is one electrocardiogram strip synced inline. Voltages holds the
// compacted JSON series ({"t":[...],"v":[...]}) exactly as stored.
type ECG struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	Date          time.Time    `json:"date"`
	AvgHeartRate  float64      `json:"avg_heart_rate"`
	Voltages      string       `json:"voltages"`
	Status        SampleStatus `json:"status"`
	CreateDate    time.Time    `json:"create_date"`
	UpdateDate    time.Time    `json:"update_date"`
}

// EKG is one recorded waveform session whose samples live in object storage
// as a packed binary file.
type EKG struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	Date       time.Time    `json:"date"`
	FileURL    string       `json:"file_url"`
	Duration   float64      `json:"duration"` // Seconds of recording.
	Status     SampleStatus `json:"status"`
	CreateDate time.Time    `json:"create_date"`
	UpdateDate time.Time    `json:"update_date"`
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Package care implements the telemedicine directory: the public doctor
// listing with patient feedback, staff-assisted doctor and patient
// registration, and feedback submission after a consultation.
package care

import "time"

// Feedback is one patient review of a doctor, bound to the chat room the
// consultation happened in. A room can be reviewed at most once.
type Feedback struct {
	ID          int64     `json:"id"`
	DoctorID    int64     `json:"doctor_id"`
	PatientID   int64     `json:"patient_id"`
	ChatID      string    `json:"chat_id"`
	Rating      int       `json:"rating"` // 0-5 stars.
	Description string    `json:"description,omitempty"`
	CreateDate  time.Time `json:"create_date"`
	UpdateDate  time.Time `json:"update_date"`
}

// PatientSummary is the public projection of a patient account shown next to
// feedback entries and in the patient picker.
type PatientSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Photo     string `json:"photo,omitempty"`
}

// DoctorCard is the public projection of a doctor account listed in the
// directory. Credentials and billing references never leave the users table.
type DoctorCard struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Subject     string `json:"subject"`
	Photo       string `json:"photo,omitempty"`
	About       string `json:"about,omitempty"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phonenumber,omitempty"`
}

// FeedbackEntry is a feedback row decorated with its author for directory
// responses.
type FeedbackEntry struct {
	*Feedback
	Patient *PatientSummary `json:"patient,omitempty"`
}

// DoctorProfile is a directory card together with its reviews.
type DoctorProfile struct {
	*DoctorCard
	Feedbacks []*FeedbackEntry `json:"feedbacks"`
}

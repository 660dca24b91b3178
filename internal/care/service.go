// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package care

import (
	"context"
	"fmt"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/sec"
	"github.com/vitalink/vitalink/internal/platform/validate"
)

// Options carries the tunables of the care [Service].
type Options struct {
	// DefaultPhoto is assigned to staff-registered accounts, which skip the
	// profile wizard.
	DefaultPhoto string
}

// Service implements the telemedicine directory use cases.
type Service struct {
	directory DirectoryRepository
	feedback  FeedbackRepository
	users     auth.UserRepository
	options   Options
}

// NewService constructs the care [Service] with its dependencies.
func NewService(
	directory DirectoryRepository,
	feedback FeedbackRepository,
	users auth.UserRepository,
	options Options,
) *Service {
	return &Service{
		directory: directory,
		feedback:  feedback,
		users:     users,
		options:   options,
	}
}

// # Directory

// Doctors returns every active doctor with their decorated reviews.
func (service *Service) Doctors(ctx context.Context) ([]*DoctorProfile, error) {
	cards, err := service.directory.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]*DoctorProfile, 0, len(cards))
	for _, card := range cards {
		profile, err := service.decorateDoctor(ctx, card)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}

// Doctor returns one active doctor with decorated reviews.
func (service *Service) Doctor(ctx context.Context, doctorID int64) (*DoctorProfile, error) {
	card, err := service.directory.FindDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return service.decorateDoctor(ctx, card)
}

func (service *Service) decorateDoctor(ctx context.Context, card *DoctorCard) (*DoctorProfile, error) {
	feedbacks, err := service.feedback.ListByDoctor(ctx, card.ID)
	if err != nil {
		return nil, err
	}

	patientIDs := make([]int64, 0, len(feedbacks))
	for _, feedback := range feedbacks {
		patientIDs = append(patientIDs, feedback.PatientID)
	}
	patients, err := service.directory.FindPatients(ctx, patientIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]*FeedbackEntry, 0, len(feedbacks))
	for _, feedback := range feedbacks {
		entries = append(entries, &FeedbackEntry{
			Feedback: feedback,
			Patient:  patients[feedback.PatientID],
		})
	}

	return &DoctorProfile{DoctorCard: card, Feedbacks: entries}, nil
}

// Patients returns the patient picker list.
func (service *Service) Patients(ctx context.Context) ([]*PatientSummary, error) {
	return service.directory.ListPatients(ctx)
}

// # Registration
//
// Doctors and patients registered through the care endpoints are created by
// support staff, so the accounts skip the activation mail and start active.

// DoctorInput carries a staff-registered doctor account.
type DoctorInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phonenumber"`
	Subject     string `json:"subject"`
}

// RegisterDoctor creates a pre-activated doctor account.
func (service *Service) RegisterDoctor(ctx context.Context, input DoctorInput) (*auth.User, error) {
	validator := &validate.Validator{}
	validator.
		Email("email", input.Email).
		MinLen("email", input.Email, 3).
		MaxLen("email", input.Email, 30).
		Username("username", input.Username).
		MinLen("password", input.Password, 3).
		MaxLen("password", input.Password, 30).
		Required("first_name", input.FirstName).
		MaxLen("first_name", input.FirstName, 15).
		Required("last_name", input.LastName).
		MaxLen("last_name", input.LastName, 15).
		Required("phonenumber", input.PhoneNumber).
		MaxLen("phonenumber", input.PhoneNumber, 15).
		Required("subject", input.Subject)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.register(ctx, &auth.User{
		Email:       input.Email,
		Username:    input.Username,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		Subject:     input.Subject,
		Type:        1,
	}, input.Password)
}

// PatientInput carries a staff-registered patient account.
type PatientInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phonenumber"`
}

// RegisterPatient creates a pre-activated patient account.
func (service *Service) RegisterPatient(ctx context.Context, input PatientInput) (*auth.User, error) {
	validator := &validate.Validator{}
	validator.
		Email("email", input.Email).
		MinLen("email", input.Email, 3).
		MaxLen("email", input.Email, 30).
		Username("username", input.Username).
		MinLen("password", input.Password, 3).
		MaxLen("password", input.Password, 30).
		Required("first_name", input.FirstName).
		MaxLen("first_name", input.FirstName, 15).
		Required("last_name", input.LastName).
		MaxLen("last_name", input.LastName, 15).
		Required("phonenumber", input.PhoneNumber).
		MaxLen("phonenumber", input.PhoneNumber, 15)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.register(ctx, &auth.User{
		Email:       input.Email,
		Username:    input.Username,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		Type:        0,
	}, input.Password)
}

func (service *Service) register(ctx context.Context, user *auth.User, password string) (*auth.User, error) {
	if err := service.checkAbsent(ctx, "email", func() error {
		_, err := service.users.FindByEmail(ctx, user.Email)
		return err
	}, "An account already exists with this email address"); err != nil {
		return nil, err
	}
	if err := service.checkAbsent(ctx, "username", func() error {
		_, err := service.users.FindByUsername(ctx, user.Username)
		return err
	}, "This username is already taken"); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("care_service_hash_failed: %w", err)
	}
	user.PasswordHash = hash
	user.Photo = service.options.DefaultPhoto
	user.Status = auth.UserActive

	if err := service.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("care_service_register_failed: %w", err)
	}

	return user, nil
}

// checkAbsent runs a lookup that must come back NOT_FOUND; any hit is a
// duplication conflict.
func (service *Service) checkAbsent(ctx context.Context, field string, lookup func() error, message string) error {
	err := lookup()
	if err == nil {
		return apperr.ValidationError(message, apperr.FieldError{Field: field, Message: message})
	}
	if appErr := apperr.As(err); appErr != nil && appErr.Code == "NOT_FOUND" {
		return nil
	}
	return fmt.Errorf("care_service_duplication_check_failed: %w", err)
}

// # Feedback

// FeedbackInput carries a consultation review.
type FeedbackInput struct {
	ChatID      string `json:"chat_id"`
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

// SubmitFeedback records the patient's review of a consultation room.
// A room can be reviewed exactly once, by anyone.
func (service *Service) SubmitFeedback(ctx context.Context, patientID, doctorID int64, input FeedbackInput) (*FeedbackEntry, error) {
	validator := &validate.Validator{}
	validator.
		Required("chat_id", input.ChatID).
		Range("rating", input.Rating, 0, 5).
		MaxLen("description", input.Description, 1000)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.directory.FindDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	_, err := service.feedback.FindByChatID(ctx, input.ChatID)
	if err == nil {
		return nil, apperr.Forbidden("Feedback has already been left on this room")
	}
	if appErr := apperr.As(err); appErr == nil || appErr.Code != "NOT_FOUND" {
		return nil, fmt.Errorf("care_service_feedback_check_failed: %w", err)
	}

	feedback := &Feedback{
		DoctorID:    doctorID,
		PatientID:   patientID,
		ChatID:      input.ChatID,
		Rating:      input.Rating,
		Description: input.Description,
	}
	if err := service.feedback.Create(ctx, feedback); err != nil {
		return nil, err
	}

	entry := &FeedbackEntry{Feedback: feedback}
	patients, err := service.directory.FindPatients(ctx, []int64{patientID})
	if err != nil {
		return nil, err
	}
	entry.Patient = patients[patientID]

	return entry, nil
}

// # Cascade

// PurgeUserData removes every feedback row the account took part in.
func (service *Service) PurgeUserData(ctx context.Context, userID int64) error {
	return service.feedback.DeleteByUser(ctx, userID)
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package care

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

const feedbackColumns = "id, doctor_id, patient_id, chat_id, rating, description, create_date, update_date"

// PostgresFeedbackRepository implements [FeedbackRepository] over the
// feedback table.
type PostgresFeedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository constructs a [PostgresFeedbackRepository].
func NewFeedbackRepository(pool *pgxpool.Pool) *PostgresFeedbackRepository {
	return &PostgresFeedbackRepository{pool: pool}
}

func scanFeedback(row pgx.Row) (*Feedback, error) {
	var feedback Feedback
	err := row.Scan(
		&feedback.ID,
		&feedback.DoctorID,
		&feedback.PatientID,
		&feedback.ChatID,
		&feedback.Rating,
		&feedback.Description,
		&feedback.CreateDate,
		&feedback.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (repository *PostgresFeedbackRepository) Create(ctx context.Context, feedback *Feedback) error {
	const query = `INSERT INTO feedback
			(doctor_id, patient_id, chat_id, rating, description, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`

	now := time.Now()
	err := repository.pool.QueryRow(ctx, query,
		feedback.DoctorID,
		feedback.PatientID,
		feedback.ChatID,
		feedback.Rating,
		feedback.Description,
		now,
	).Scan(&feedback.ID)
	// The unique index on chat_id backstops the service-level duplicate
	// check against concurrent submissions.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.Forbidden("Feedback has already been left on this room")
	}
	if err != nil {
		return fmt.Errorf("postgres_feedback_repo_create_failed: %w", err)
	}

	feedback.CreateDate = now
	feedback.UpdateDate = now
	return nil
}

func (repository *PostgresFeedbackRepository) FindByChatID(ctx context.Context, chatID string) (*Feedback, error) {
	const query = "SELECT " + feedbackColumns + " FROM feedback WHERE chat_id = $1"

	feedback, err := scanFeedback(repository.pool.QueryRow(ctx, query, chatID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Feedback")
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_feedback_repo_find_chat_failed: %w", err)
	}

	return feedback, nil
}

func (repository *PostgresFeedbackRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*Feedback, error) {
	const query = "SELECT " + feedbackColumns + ` FROM feedback
		WHERE doctor_id = $1
		ORDER BY create_date DESC`

	rows, err := repository.pool.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("postgres_feedback_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var feedbacks []*Feedback
	for rows.Next() {
		feedback, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_feedback_repo_list_scan_failed: %w", err)
		}
		feedbacks = append(feedbacks, feedback)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_feedback_repo_list_rows_failed: %w", err)
	}

	return feedbacks, nil
}

func (repository *PostgresFeedbackRepository) DeleteByUser(ctx context.Context, userID int64) error {
	const query = "DELETE FROM feedback WHERE doctor_id = $1 OR patient_id = $1"

	_, err := repository.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_feedback_repo_delete_user_failed: %w", err)
	}

	return nil
}

// PostgresDirectoryRepository implements [DirectoryRepository]. It reads the
// users table owned by the auth domain, but only through the public
// projections the directory exposes.
type PostgresDirectoryRepository struct {
	pool *pgxpool.Pool
}

// NewDirectoryRepository constructs a [PostgresDirectoryRepository].
func NewDirectoryRepository(pool *pgxpool.Pool) *PostgresDirectoryRepository {
	return &PostgresDirectoryRepository{pool: pool}
}

const doctorCardColumns = "id, username, first_name, last_name, subject, photo, about, address, phonenumber"

func scanDoctorCard(row pgx.Row) (*DoctorCard, error) {
	var card DoctorCard
	err := row.Scan(
		&card.ID,
		&card.Username,
		&card.FirstName,
		&card.LastName,
		&card.Subject,
		&card.Photo,
		&card.About,
		&card.Address,
		&card.PhoneNumber,
	)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (repository *PostgresDirectoryRepository) ListDoctors(ctx context.Context) ([]*DoctorCard, error) {
	const query = "SELECT " + doctorCardColumns + ` FROM users
		WHERE type = 1 AND status = 1
		ORDER BY create_date DESC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_directory_repo_doctors_failed: %w", err)
	}
	defer rows.Close()

	var cards []*DoctorCard
	for rows.Next() {
		card, err := scanDoctorCard(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_directory_repo_doctors_scan_failed: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_directory_repo_doctors_rows_failed: %w", err)
	}

	return cards, nil
}

func (repository *PostgresDirectoryRepository) FindDoctor(ctx context.Context, doctorID int64) (*DoctorCard, error) {
	const query = "SELECT " + doctorCardColumns + ` FROM users
		WHERE id = $1 AND type = 1 AND status = 1`

	card, err := scanDoctorCard(repository.pool.QueryRow(ctx, query, doctorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Doctor")
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_directory_repo_doctor_failed: %w", err)
	}

	return card, nil
}

const patientSummaryColumns = "id, username, first_name, last_name, photo"

func scanPatientSummary(rows pgx.Rows) (*PatientSummary, error) {
	var summary PatientSummary
	err := rows.Scan(
		&summary.ID,
		&summary.Username,
		&summary.FirstName,
		&summary.LastName,
		&summary.Photo,
	)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (repository *PostgresDirectoryRepository) ListPatients(ctx context.Context) ([]*PatientSummary, error) {
	// Blocked and deleted accounts fall out of the picker.
	const query = "SELECT " + patientSummaryColumns + ` FROM users
		WHERE type = 0 AND status < 2
		ORDER BY create_date DESC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_directory_repo_patients_failed: %w", err)
	}
	defer rows.Close()

	var patients []*PatientSummary
	for rows.Next() {
		summary, err := scanPatientSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_directory_repo_patients_scan_failed: %w", err)
		}
		patients = append(patients, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_directory_repo_patients_rows_failed: %w", err)
	}

	return patients, nil
}

func (repository *PostgresDirectoryRepository) FindPatients(ctx context.Context, ids []int64) (map[int64]*PatientSummary, error) {
	summaries := make(map[int64]*PatientSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	const query = "SELECT " + patientSummaryColumns + " FROM users WHERE id = ANY($1)"

	rows, err := repository.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres_directory_repo_find_patients_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		summary, err := scanPatientSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_directory_repo_find_patients_scan_failed: %w", err)
		}
		summaries[summary.ID] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_directory_repo_find_patients_rows_failed: %w", err)
	}

	return summaries, nil
}

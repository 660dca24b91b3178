// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// PostgreSQL implementations of the health storage contracts.
//
// # Table Layout
//
// Every metric family gets its own table (health_heart_rate, health_sleep,
// ...). The scalar families share one repository parameterized by kind; the
// kind-to-table translation is a whitelist so no request data ever reaches
// SQL as an identifier.
package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

var scalarTables = map[Kind]string{
	KindHeartRate: "health_heart_rate",
	KindEnergy:    "health_energy",
	KindExercise:  "health_exercise",
	KindStand:     "health_stand",
	KindWeight:    "health_weight",
	KindSteps:     "health_steps",
	KindAlcohol:   "health_alcohol",
}

func scalarTable(kind Kind) (string, error) {
	table, ok := scalarTables[kind]
	if !ok {
		return "", fmt.Errorf("postgres_health_repo_unknown_kind: %q", kind)
	}
	return table, nil
}

// PostgresScalarRepository implements ScalarRepository using pgx.
type PostgresScalarRepository struct {
	pool *pgxpool.Pool
}

// NewScalarRepository creates the PostgreSQL scalar metric repository.
func NewScalarRepository(pool *pgxpool.Pool) *PostgresScalarRepository {
	return &PostgresScalarRepository{pool: pool}
}

func scanSample(row pgx.Row) (*Sample, error) {
	sample := &Sample{}
	err := row.Scan(
		&sample.ID,
		&sample.UserID,
		&sample.Date,
		&sample.Value,
		&sample.Status,
		&sample.CreateDate,
		&sample.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// FindByDate returns the sample at the natural key regardless of status.
func (repository *PostgresScalarRepository) FindByDate(ctx context.Context, kind Kind, userID int64, date time.Time) (*Sample, error) {
	table, err := scalarTable(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, date, value, status, create_date, update_date
		FROM ` + table + ` WHERE user_id = $1 AND date = $2`

	sample, err := scanSample(repository.pool.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Sample")
		}
		return nil, fmt.Errorf("postgres_health_repo_find_failed: %w", err)
	}

	return sample, nil
}

// Insert persists a new sample row.
func (repository *PostgresScalarRepository) Insert(ctx context.Context, kind Kind, sample *Sample) error {
	table, err := scalarTable(kind)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (user_id, date, value, status, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	now := time.Now()
	sample.CreateDate = now
	sample.UpdateDate = now

	err = repository.pool.QueryRow(ctx, query,
		sample.UserID, sample.Date, sample.Value, sample.Status,
		sample.CreateDate, sample.UpdateDate,
	).Scan(&sample.ID)
	if err != nil {
		return fmt.Errorf("postgres_health_repo_insert_failed: %w", err)
	}

	return nil
}

// Overwrite replaces the value of an existing row and stamps it edited.
func (repository *PostgresScalarRepository) Overwrite(ctx context.Context, kind Kind, sample *Sample) error {
	table, err := scalarTable(kind)
	if err != nil {
		return err
	}

	query := `UPDATE ` + table + `
		SET value = $2, status = $3, update_date = $4
		WHERE id = $1`

	sample.Status = SampleEdited
	sample.UpdateDate = time.Now()

	_, err = repository.pool.Exec(ctx, query, sample.ID, sample.Value, sample.Status, sample.UpdateDate)
	if err != nil {
		return fmt.Errorf("postgres_health_repo_overwrite_failed: %w", err)
	}

	return nil
}

// SoftDelete hides a sample after an ownership check.
func (repository *PostgresScalarRepository) SoftDelete(ctx context.Context, kind Kind, userID, sampleID int64) error {
	table, err := scalarTable(kind)
	if err != nil {
		return err
	}

	query := `UPDATE ` + table + `
		SET status = $3, update_date = $4
		WHERE id = $1 AND user_id = $2 AND status <> $3`

	tag, err := repository.pool.Exec(ctx, query, sampleID, userID, SampleDeleted, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_health_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Sample")
	}

	return nil
}

// List returns visible samples ascending by date.
func (repository *PostgresScalarRepository) List(ctx context.Context, kind Kind, userID int64, lastAt *time.Time) ([]*Sample, error) {
	table, err := scalarTable(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, date, value, status, create_date, update_date
		FROM ` + table + `
		WHERE user_id = $1 AND status <> $2 AND ($3::timestamptz IS NULL OR date > $3)
		ORDER BY date ASC`

	rows, err := repository.pool.Query(ctx, query, userID, SampleDeleted, lastAt)
	if err != nil {
		return nil, fmt.Errorf("postgres_health_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_health_repo_list_scan_failed: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_health_repo_list_rows_failed: %w", err)
	}

	return samples, nil
}

// PurgeUser removes every sample of the user in the kind's table.
func (repository *PostgresScalarRepository) PurgeUser(ctx context.Context, kind Kind, userID int64) error {
	table, err := scalarTable(kind)
	if err != nil {
		return err
	}

	_, err = repository.pool.Exec(ctx, "DELETE FROM "+table+" WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("postgres_health_repo_purge_failed: %w", err)
	}

	return nil
}

// ── Blood Pressure ───────────────────────────────────────────────────────────

// PostgresBloodPressureRepository implements BloodPressureRepository.
type PostgresBloodPressureRepository struct {
	pool *pgxpool.Pool
}

// NewBloodPressureRepository creates the PostgreSQL blood-pressure repository.
func NewBloodPressureRepository(pool *pgxpool.Pool) *PostgresBloodPressureRepository {
	return &PostgresBloodPressureRepository{pool: pool}
}

const bloodPressureColumns = "id, user_id, date, systolic, diastolic, status, create_date, update_date"

func scanBloodPressure(row pgx.Row) (*BloodPressure, error) {
	reading := &BloodPressure{}
	err := row.Scan(
		&reading.ID,
		&reading.UserID,
		&reading.Date,
		&reading.Systolic,
		&reading.Diastolic,
		&reading.Status,
		&reading.CreateDate,
		&reading.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return reading, nil
}

func (repository *PostgresBloodPressureRepository) FindByDate(ctx context.Context, userID int64, date time.Time) (*BloodPressure, error) {
	const query = `SELECT ` + bloodPressureColumns + `
		FROM health_blood_pressure WHERE user_id = $1 AND date = $2`

	reading, err := scanBloodPressure(repository.pool.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Reading")
		}
		return nil, fmt.Errorf("postgres_blood_pressure_repo_find_failed: %w", err)
	}

	return reading, nil
}

func (repository *PostgresBloodPressureRepository) Insert(ctx context.Context, reading *BloodPressure) error {
	const query = `
		INSERT INTO health_blood_pressure (user_id, date, systolic, diastolic, status, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	now := time.Now()
	reading.CreateDate = now
	reading.UpdateDate = now

	err := repository.pool.QueryRow(ctx, query,
		reading.UserID, reading.Date, reading.Systolic, reading.Diastolic,
		reading.Status, reading.CreateDate, reading.UpdateDate,
	).Scan(&reading.ID)
	if err != nil {
		return fmt.Errorf("postgres_blood_pressure_repo_insert_failed: %w", err)
	}

	return nil
}

func (repository *PostgresBloodPressureRepository) Overwrite(ctx context.Context, reading *BloodPressure) error {
	const query = `
		UPDATE health_blood_pressure
		SET systolic = $2, diastolic = $3, status = $4, update_date = $5
		WHERE id = $1`

	reading.Status = SampleEdited
	reading.UpdateDate = time.Now()

	_, err := repository.pool.Exec(ctx, query,
		reading.ID, reading.Systolic, reading.Diastolic, reading.Status, reading.UpdateDate)
	if err != nil {
		return fmt.Errorf("postgres_blood_pressure_repo_overwrite_failed: %w", err)
	}

	return nil
}

func (repository *PostgresBloodPressureRepository) SoftDelete(ctx context.Context, userID, readingID int64) error {
	const query = `
		UPDATE health_blood_pressure
		SET status = $3, update_date = $4
		WHERE id = $1 AND user_id = $2 AND status <> $3`

	tag, err := repository.pool.Exec(ctx, query, readingID, userID, SampleDeleted, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_blood_pressure_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Reading")
	}

	return nil
}

func (repository *PostgresBloodPressureRepository) List(ctx context.Context, userID int64, lastAt *time.Time) ([]*BloodPressure, error) {
	const query = `SELECT ` + bloodPressureColumns + `
		FROM health_blood_pressure
		WHERE user_id = $1 AND status <> $2 AND ($3::timestamptz IS NULL OR date > $3)
		ORDER BY date ASC`

	rows, err := repository.pool.Query(ctx, query, userID, SampleDeleted, lastAt)
	if err != nil {
		return nil, fmt.Errorf("postgres_blood_pressure_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var readings []*BloodPressure
	for rows.Next() {
		reading, err := scanBloodPressure(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_blood_pressure_repo_list_scan_failed: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_blood_pressure_repo_list_rows_failed: %w", err)
	}

	return readings, nil
}

func (repository *PostgresBloodPressureRepository) PurgeUser(ctx context.Context, userID int64) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM health_blood_pressure WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("postgres_blood_pressure_repo_purge_failed: %w", err)
	}
	return nil
}

// ── Sleep ────────────────────────────────────────────────────────────────────

// PostgresSleepRepository implements SleepRepository.
type PostgresSleepRepository struct {
	pool *pgxpool.Pool
}

// NewSleepRepository creates the PostgreSQL sleep repository.
func NewSleepRepository(pool *pgxpool.Pool) *PostgresSleepRepository {
	return &PostgresSleepRepository{pool: pool}
}

const sleepColumns = "id, user_id, uuid, start_date, end_date, stage, status, create_date, update_date"

func scanSleep(row pgx.Row) (*Sleep, error) {
	segment := &Sleep{}
	err := row.Scan(
		&segment.ID,
		&segment.UserID,
		&segment.UUID,
		&segment.StartDate,
		&segment.EndDate,
		&segment.Stage,
		&segment.Status,
		&segment.CreateDate,
		&segment.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return segment, nil
}

func (repository *PostgresSleepRepository) FindByUUID(ctx context.Context, userID int64, uuid string) (*Sleep, error) {
	const query = `SELECT ` + sleepColumns + `
		FROM health_sleep WHERE user_id = $1 AND uuid = $2`

	segment, err := scanSleep(repository.pool.QueryRow(ctx, query, userID, uuid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Sleep segment")
		}
		return nil, fmt.Errorf("postgres_sleep_repo_find_failed: %w", err)
	}

	return segment, nil
}

func (repository *PostgresSleepRepository) Insert(ctx context.Context, segment *Sleep) error {
	const query = `
		INSERT INTO health_sleep (user_id, uuid, start_date, end_date, stage, status, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	now := time.Now()
	segment.CreateDate = now
	segment.UpdateDate = now

	err := repository.pool.QueryRow(ctx, query,
		segment.UserID, segment.UUID, segment.StartDate, segment.EndDate,
		segment.Stage, segment.Status, segment.CreateDate, segment.UpdateDate,
	).Scan(&segment.ID)
	if err != nil {
		return fmt.Errorf("postgres_sleep_repo_insert_failed: %w", err)
	}

	return nil
}

func (repository *PostgresSleepRepository) Overwrite(ctx context.Context, segment *Sleep) error {
	const query = `
		UPDATE health_sleep
		SET start_date = $2, end_date = $3, stage = $4, status = $5, update_date = $6
		WHERE id = $1`

	segment.Status = SampleEdited
	segment.UpdateDate = time.Now()

	_, err := repository.pool.Exec(ctx, query,
		segment.ID, segment.StartDate, segment.EndDate, segment.Stage,
		segment.Status, segment.UpdateDate)
	if err != nil {
		return fmt.Errorf("postgres_sleep_repo_overwrite_failed: %w", err)
	}

	return nil
}

func (repository *PostgresSleepRepository) SoftDelete(ctx context.Context, userID, segmentID int64) error {
	const query = `
		UPDATE health_sleep
		SET status = $3, update_date = $4
		WHERE id = $1 AND user_id = $2 AND status <> $3`

	tag, err := repository.pool.Exec(ctx, query, segmentID, userID, SampleDeleted, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_sleep_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Sleep segment")
	}

	return nil
}

func (repository *PostgresSleepRepository) List(ctx context.Context, userID int64, lastAt *time.Time) ([]*Sleep, error) {
	const query = `SELECT ` + sleepColumns + `
		FROM health_sleep
		WHERE user_id = $1 AND status <> $2 AND ($3::timestamptz IS NULL OR start_date > $3)
		ORDER BY start_date ASC`

	rows, err := repository.pool.Query(ctx, query, userID, SampleDeleted, lastAt)
	if err != nil {
		return nil, fmt.Errorf("postgres_sleep_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var segments []*Sleep
	for rows.Next() {
		segment, err := scanSleep(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_sleep_repo_list_scan_failed: %w", err)
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_sleep_repo_list_rows_failed: %w", err)
	}

	return segments, nil
}

func (repository *PostgresSleepRepository) PurgeUser(ctx context.Context, userID int64) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM health_sleep WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("postgres_sleep_repo_purge_failed: %w", err)
	}
	return nil
}

// ── ECG ──────────────────────────────────────────────────────────────────────

// PostgresECGRepository implements ECGRepository.
type PostgresECGRepository struct {
	pool *pgxpool.Pool
}

// NewECGRepository creates the PostgreSQL ECG repository.
func NewECGRepository(pool *pgxpool.Pool) *PostgresECGRepository {
	return &PostgresECGRepository{pool: pool}
}

const ecgColumns = "id, user_id, date, avg_heart_rate, voltages, status, create_date, update_date"

func scanECG(row pgx.Row) (*ECG, error) {
	strip := &ECG{}
	err := row.Scan(
		&strip.ID,
		&strip.UserID,
		&strip.Date,
		&strip.AvgHeartRate,
		&strip.Voltages,
		&strip.Status,
		&strip.CreateDate,
		&strip.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return strip, nil
}

func (repository *PostgresECGRepository) FindByDate(ctx context.Context, userID int64, date time.Time) (*ECG, error) {
	const query = `SELECT ` + ecgColumns + `
		FROM health_ecg WHERE user_id = $1 AND date = $2`

	strip, err := scanECG(repository.pool.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("ECG strip")
		}
		return nil, fmt.Errorf("postgres_ecg_repo_find_failed: %w", err)
	}

	return strip, nil
}

func (repository *PostgresECGRepository) Insert(ctx context.Context, strip *ECG) error {
	const query = `
		INSERT INTO health_ecg (user_id, date, avg_heart_rate, voltages, status, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	now := time.Now()
	strip.CreateDate = now
	strip.UpdateDate = now

	err := repository.pool.QueryRow(ctx, query,
		strip.UserID, strip.Date, strip.AvgHeartRate, strip.Voltages,
		strip.Status, strip.CreateDate, strip.UpdateDate,
	).Scan(&strip.ID)
	if err != nil {
		return fmt.Errorf("postgres_ecg_repo_insert_failed: %w", err)
	}

	return nil
}

func (repository *PostgresECGRepository) Overwrite(ctx context.Context, strip *ECG) error {
	const query = `
		UPDATE health_ecg
		SET avg_heart_rate = $2, voltages = $3, status = $4, update_date = $5
		WHERE id = $1`

	strip.Status = SampleEdited
	strip.UpdateDate = time.Now()

	_, err := repository.pool.Exec(ctx, query,
		strip.ID, strip.AvgHeartRate, strip.Voltages, strip.Status, strip.UpdateDate)
	if err != nil {
		return fmt.Errorf("postgres_ecg_repo_overwrite_failed: %w", err)
	}

	return nil
}

func (repository *PostgresECGRepository) SoftDelete(ctx context.Context, userID, stripID int64) error {
	const query = `
		UPDATE health_ecg
		SET status = $3, update_date = $4
		WHERE id = $1 AND user_id = $2 AND status <> $3`

	tag, err := repository.pool.Exec(ctx, query, stripID, userID, SampleDeleted, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_ecg_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("ECG strip")
	}

	return nil
}

func (repository *PostgresECGRepository) List(ctx context.Context, userID int64, lastAt *time.Time) ([]*ECG, error) {
	const query = `SELECT ` + ecgColumns + `
		FROM health_ecg
		WHERE user_id = $1 AND status <> $2 AND ($3::timestamptz IS NULL OR date > $3)
		ORDER BY date ASC`

	rows, err := repository.pool.Query(ctx, query, userID, SampleDeleted, lastAt)
	if err != nil {
		return nil, fmt.Errorf("postgres_ecg_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var strips []*ECG
	for rows.Next() {
		strip, err := scanECG(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_ecg_repo_list_scan_failed: %w", err)
		}
		strips = append(strips, strip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_ecg_repo_list_rows_failed: %w", err)
	}

	return strips, nil
}

func (repository *PostgresECGRepository) PurgeUser(ctx context.Context, userID int64) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM health_ecg WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("postgres_ecg_repo_purge_failed: %w", err)
	}
	return nil
}

// ── EKG ──────────────────────────────────────────────────────────────────────

// PostgresEKGRepository implements EKGRepository.
type PostgresEKGRepository struct {
	pool *pgxpool.Pool
}

// NewEKGRepository creates the PostgreSQL EKG repository.
func NewEKGRepository(pool *pgxpool.Pool) *PostgresEKGRepository {
	return &PostgresEKGRepository{pool: pool}
}

const ekgColumns = "id, user_id, date, file_url, duration, status, create_date, update_date"

func scanEKG(row pgx.Row) (*EKG, error) {
	session := &EKG{}
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Date,
		&session.FileURL,
		&session.Duration,
		&session.Status,
		&session.CreateDate,
		&session.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (repository *PostgresEKGRepository) FindByDate(ctx context.Context, userID int64, date time.Time) (*EKG, error) {
	const query = `SELECT ` + ekgColumns + `
		FROM health_ekg WHERE user_id = $1 AND date = $2`

	session, err := scanEKG(repository.pool.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Waveform session")
		}
		return nil, fmt.Errorf("postgres_ekg_repo_find_failed: %w", err)
	}

	return session, nil
}

func (repository *PostgresEKGRepository) Insert(ctx context.Context, session *EKG) error {
	const query = `
		INSERT INTO health_ekg (user_id, date, file_url, duration, status, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	now := time.Now()
	session.CreateDate = now
	session.UpdateDate = now

	err := repository.pool.QueryRow(ctx, query,
		session.UserID, session.Date, session.FileURL, session.Duration,
		session.Status, session.CreateDate, session.UpdateDate,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("postgres_ekg_repo_insert_failed: %w", err)
	}

	return nil
}

func (repository *PostgresEKGRepository) Overwrite(ctx context.Context, session *EKG) error {
	const query = `
		UPDATE health_ekg
		SET file_url = $2, duration = $3, status = $4, update_date = $5
		WHERE id = $1`

	session.Status = SampleEdited
	session.UpdateDate = time.Now()

	_, err := repository.pool.Exec(ctx, query,
		session.ID, session.FileURL, session.Duration, session.Status, session.UpdateDate)
	if err != nil {
		return fmt.Errorf("postgres_ekg_repo_overwrite_failed: %w", err)
	}

	return nil
}

func (repository *PostgresEKGRepository) SoftDelete(ctx context.Context, userID, sessionID int64) error {
	const query = `
		UPDATE health_ekg
		SET status = $3, update_date = $4
		WHERE id = $1 AND user_id = $2 AND status <> $3`

	tag, err := repository.pool.Exec(ctx, query, sessionID, userID, SampleDeleted, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_ekg_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Waveform session")
	}

	return nil
}

func (repository *PostgresEKGRepository) List(ctx context.Context, userID int64, lastAt *time.Time) ([]*EKG, error) {
	const query = `SELECT ` + ekgColumns + `
		FROM health_ekg
		WHERE user_id = $1 AND status <> $2 AND ($3::timestamptz IS NULL OR date > $3)
		ORDER BY date ASC`

	rows, err := repository.pool.Query(ctx, query, userID, SampleDeleted, lastAt)
	if err != nil {
		return nil, fmt.Errorf("postgres_ekg_repo_list_failed: %w", err)
	}
	defer rows.Close()

	return collectEKGs(rows)
}

// ListWindow returns visible sessions with date in [from, to) ascending.
func (repository *PostgresEKGRepository) ListWindow(ctx context.Context, userID int64, from, to time.Time) ([]*EKG, error) {
	const query = `SELECT ` + ekgColumns + `
		FROM health_ekg
		WHERE user_id = $1 AND status <> $2 AND date >= $3 AND date < $4
		ORDER BY date ASC`

	rows, err := repository.pool.Query(ctx, query, userID, SampleDeleted, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres_ekg_repo_window_failed: %w", err)
	}
	defer rows.Close()

	return collectEKGs(rows)
}

func collectEKGs(rows pgx.Rows) ([]*EKG, error) {
	var sessions []*EKG
	for rows.Next() {
		session, err := scanEKG(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_ekg_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_ekg_repo_rows_failed: %w", err)
	}
	return sessions, nil
}

func (repository *PostgresEKGRepository) PurgeUser(ctx context.Context, userID int64) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM health_ekg WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("postgres_ekg_repo_purge_failed: %w", err)
	}
	return nil
}

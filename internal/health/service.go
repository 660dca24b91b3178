// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Health-metric use cases: batched sync, forced edits, soft deletion, chart
// reads, and waveform file handling.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/validate"
	"github.com/vitalink/vitalink/pkg/slug"
	"github.com/vitalink/vitalink/pkg/uuidv7"
)

// FileStore is the object-storage surface the waveform flows need.
// Implemented by [storage.Client].
type FileStore interface {
	Upload(ctx context.Context, key, contentType string, payload []byte) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	KeyFromURL(fileURL string) string
}

// Service implements the health-metric use cases.
type Service struct {
	scalars       ScalarRepository
	bloodPressure BloodPressureRepository
	sleep         SleepRepository
	ecg           ECGRepository
	ekg           EKGRepository
	files         FileStore
}

// NewService constructs the health [Service] with its dependencies.
func NewService(
	scalars ScalarRepository,
	bloodPressure BloodPressureRepository,
	sleep SleepRepository,
	ecg ECGRepository,
	ekg EKGRepository,
	files FileStore,
) *Service {
	return &Service{
		scalars:       scalars,
		bloodPressure: bloodPressure,
		sleep:         sleep,
		ecg:           ecg,
		ekg:           ekg,
		files:         files,
	}
}

// SyncReport summarizes what a batched sync did.
type SyncReport struct {
	Inserted    int `json:"inserted"`
	Unchanged   int `json:"unchanged"`
	Overwritten int `json:"overwritten"`
}

func (report *SyncReport) count(outcome Outcome) {
	switch outcome {
	case OutcomeInserted:
		report.Inserted++
	case OutcomeUnchanged:
		report.Unchanged++
	case OutcomeOverwritten:
		report.Overwritten++
	}
}

// # Scalar Metrics

// ScalarInput is one incoming scalar measurement.
type ScalarInput struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SyncScalars applies the upsert semantics to each sample of a batch.
// Re-syncing the same batch is idempotent unless force is set.
func (service *Service) SyncScalars(ctx context.Context, kind Kind, userID int64, inputs []ScalarInput, force bool) (*SyncReport, error) {
	if !kind.Valid() {
		return nil, apperr.ValidationError("Unknown metric kind")
	}

	report := &SyncReport{}
	for _, input := range inputs {
		input := input
		outcome, err := upsert(ctx,
			func(ctx context.Context) (*Sample, error) {
				return service.scalars.FindByDate(ctx, kind, userID, input.Date)
			},
			func(ctx context.Context) error {
				return service.scalars.Insert(ctx, kind, &Sample{
					UserID: userID,
					Date:   input.Date,
					Value:  input.Value,
					Status: SampleRecorded,
				})
			},
			func(ctx context.Context, existing *Sample) error {
				existing.Value = input.Value
				return service.scalars.Overwrite(ctx, kind, existing)
			},
			force,
		)
		if err != nil {
			return nil, fmt.Errorf("health_service_sync_failed: %w", err)
		}
		report.count(outcome)
	}

	return report, nil
}

// AddScalar force-writes one sample: inserts when new, overwrites otherwise.
func (service *Service) AddScalar(ctx context.Context, kind Kind, userID int64, input ScalarInput) (*Sample, error) {
	if _, err := service.SyncScalars(ctx, kind, userID, []ScalarInput{input}, true); err != nil {
		return nil, err
	}
	return service.scalars.FindByDate(ctx, kind, userID, input.Date)
}

// DeleteScalar soft-deletes a sample the user owns.
func (service *Service) DeleteScalar(ctx context.Context, kind Kind, userID, sampleID int64) error {
	if !kind.Valid() {
		return apperr.ValidationError("Unknown metric kind")
	}
	return service.scalars.SoftDelete(ctx, kind, userID, sampleID)
}

// ListScalars returns the user's samples ascending by date.
func (service *Service) ListScalars(ctx context.Context, kind Kind, userID int64, lastAt *time.Time) ([]*Sample, error) {
	if !kind.Valid() {
		return nil, apperr.ValidationError("Unknown metric kind")
	}
	return service.scalars.List(ctx, kind, userID, lastAt)
}

// # Blood Pressure

// BloodPressureInput is one incoming reading pair.
type BloodPressureInput struct {
	Date      time.Time `json:"date"`
	Systolic  float64   `json:"systolic"`
	Diastolic float64   `json:"diastolic"`
}

// SyncBloodPressure applies the upsert semantics to each reading of a batch.
func (service *Service) SyncBloodPressure(ctx context.Context, userID int64, inputs []BloodPressureInput, force bool) (*SyncReport, error) {
	report := &SyncReport{}
	for _, input := range inputs {
		input := input
		outcome, err := upsert(ctx,
			func(ctx context.Context) (*BloodPressure, error) {
				return service.bloodPressure.FindByDate(ctx, userID, input.Date)
			},
			func(ctx context.Context) error {
				return service.bloodPressure.Insert(ctx, &BloodPressure{
					UserID:    userID,
					Date:      input.Date,
					Systolic:  input.Systolic,
					Diastolic: input.Diastolic,
					Status:    SampleRecorded,
				})
			},
			func(ctx context.Context, existing *BloodPressure) error {
				existing.Systolic = input.Systolic
				existing.Diastolic = input.Diastolic
				return service.bloodPressure.Overwrite(ctx, existing)
			},
			force,
		)
		if err != nil {
			return nil, fmt.Errorf("health_service_blood_pressure_sync_failed: %w", err)
		}
		report.count(outcome)
	}

	return report, nil
}

// DeleteBloodPressure soft-deletes a reading the user owns.
func (service *Service) DeleteBloodPressure(ctx context.Context, userID, readingID int64) error {
	return service.bloodPressure.SoftDelete(ctx, userID, readingID)
}

// ListBloodPressure returns the user's readings ascending by date.
func (service *Service) ListBloodPressure(ctx context.Context, userID int64, lastAt *time.Time) ([]*BloodPressure, error) {
	return service.bloodPressure.List(ctx, userID, lastAt)
}

// # Sleep

// SleepInput is one incoming sleep segment. A missing UUID gets one assigned
// so legacy clients that never generated identifiers still sync.
type SleepInput struct {
	UUID      string    `json:"uuid"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Stage     int       `json:"stage"`
}

// SyncSleep applies the upsert semantics to each segment, keyed by UUID.
func (service *Service) SyncSleep(ctx context.Context, userID int64, inputs []SleepInput, force bool) (*SyncReport, error) {
	report := &SyncReport{}
	for _, input := range inputs {
		input := input
		if input.UUID == "" {
			input.UUID = uuidv7.New()
		}

		outcome, err := upsert(ctx,
			func(ctx context.Context) (*Sleep, error) {
				return service.sleep.FindByUUID(ctx, userID, input.UUID)
			},
			func(ctx context.Context) error {
				return service.sleep.Insert(ctx, &Sleep{
					UserID:    userID,
					UUID:      input.UUID,
					StartDate: input.StartDate,
					EndDate:   input.EndDate,
					Stage:     input.Stage,
					Status:    SampleRecorded,
				})
			},
			func(ctx context.Context, existing *Sleep) error {
				existing.StartDate = input.StartDate
				existing.EndDate = input.EndDate
				existing.Stage = input.Stage
				return service.sleep.Overwrite(ctx, existing)
			},
			force,
		)
		if err != nil {
			return nil, fmt.Errorf("health_service_sleep_sync_failed: %w", err)
		}
		report.count(outcome)
	}

	return report, nil
}

// DeleteSleep soft-deletes a segment the user owns.
func (service *Service) DeleteSleep(ctx context.Context, userID, segmentID int64) error {
	return service.sleep.SoftDelete(ctx, userID, segmentID)
}

// ListSleep returns the user's segments ascending by start date.
func (service *Service) ListSleep(ctx context.Context, userID int64, lastAt *time.Time) ([]*Sleep, error) {
	return service.sleep.List(ctx, userID, lastAt)
}

// # ECG

// ECGInput is one incoming inline strip. The voltage series arrives as two
// parallel arrays and is stored compacted.
type ECGInput struct {
	Date         time.Time `json:"date"`
	AvgHeartRate float64   `json:"avg_heart_rate"`
	T            []float64 `json:"t"`
	V            []float64 `json:"v"`
}

// compactVoltages renders the parallel series into the stored JSON shape.
func compactVoltages(t, v []float64) (string, error) {
	if len(t) != len(v) {
		return "", apperr.ValidationError("Voltage series lengths do not match")
	}
	payload, err := json.Marshal(struct {
		T []float64 `json:"t"`
		V []float64 `json:"v"`
	}{T: t, V: v})
	if err != nil {
		return "", fmt.Errorf("health_service_voltage_encode_failed: %w", err)
	}
	return string(payload), nil
}

// SyncECG applies the upsert semantics to each strip of a batch.
func (service *Service) SyncECG(ctx context.Context, userID int64, inputs []ECGInput, force bool) (*SyncReport, error) {
	report := &SyncReport{}
	for _, input := range inputs {
		input := input
		voltages, err := compactVoltages(input.T, input.V)
		if err != nil {
			return nil, err
		}

		outcome, err := upsert(ctx,
			func(ctx context.Context) (*ECG, error) {
				return service.ecg.FindByDate(ctx, userID, input.Date)
			},
			func(ctx context.Context) error {
				return service.ecg.Insert(ctx, &ECG{
					UserID:       userID,
					Date:         input.Date,
					AvgHeartRate: input.AvgHeartRate,
					Voltages:     voltages,
					Status:       SampleRecorded,
				})
			},
			func(ctx context.Context, existing *ECG) error {
				existing.AvgHeartRate = input.AvgHeartRate
				existing.Voltages = voltages
				return service.ecg.Overwrite(ctx, existing)
			},
			force,
		)
		if err != nil {
			return nil, fmt.Errorf("health_service_ecg_sync_failed: %w", err)
		}
		report.count(outcome)
	}

	return report, nil
}

// DeleteECG soft-deletes a strip the user owns.
func (service *Service) DeleteECG(ctx context.Context, userID, stripID int64) error {
	return service.ecg.SoftDelete(ctx, userID, stripID)
}

// ListECG returns the user's strips ascending by date.
func (service *Service) ListECG(ctx context.Context, userID int64, lastAt *time.Time) ([]*ECG, error) {
	return service.ecg.List(ctx, userID, lastAt)
}

// # EKG (Waveform Sessions)

// EKGInput is one incoming waveform session reference.
type EKGInput struct {
	Date     time.Time `json:"date"`
	FileURL  string    `json:"file_url"`
	Duration float64   `json:"duration"`
}

// SyncEKG applies the upsert semantics to each session of a batch.
func (service *Service) SyncEKG(ctx context.Context, userID int64, inputs []EKGInput, force bool) (*SyncReport, error) {
	report := &SyncReport{}
	for _, input := range inputs {
		input := input
		validator := &validate.Validator{}
		validator.Required("file_url", input.FileURL)
		if err := validator.Err(); err != nil {
			return nil, err
		}

		outcome, err := upsert(ctx,
			func(ctx context.Context) (*EKG, error) {
				return service.ekg.FindByDate(ctx, userID, input.Date)
			},
			func(ctx context.Context) error {
				return service.ekg.Insert(ctx, &EKG{
					UserID:   userID,
					Date:     input.Date,
					FileURL:  input.FileURL,
					Duration: input.Duration,
					Status:   SampleRecorded,
				})
			},
			func(ctx context.Context, existing *EKG) error {
				existing.FileURL = input.FileURL
				existing.Duration = input.Duration
				return service.ekg.Overwrite(ctx, existing)
			},
			force,
		)
		if err != nil {
			return nil, fmt.Errorf("health_service_ekg_sync_failed: %w", err)
		}
		report.count(outcome)
	}

	return report, nil
}

// DeleteEKG soft-deletes a session the user owns.
func (service *Service) DeleteEKG(ctx context.Context, userID, sessionID int64) error {
	return service.ekg.SoftDelete(ctx, userID, sessionID)
}

// ECGRecords lists the user's waveform session metadata ascending by date.
func (service *Service) ECGRecords(ctx context.Context, userID int64, lastAt *time.Time) ([]*EKG, error) {
	return service.ekg.List(ctx, userID, lastAt)
}

// UploadWaveform stores a packed waveform file under a collision-free key
// derived from the user, a fresh UUID, and the slugified client file name.
func (service *Service) UploadWaveform(ctx context.Context, userID int64, filename, contentType string, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", apperr.ValidationError("Uploaded file is empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	name := slug.From(strings.TrimSuffix(filename, path.Ext(filename)))
	if name == "" {
		name = "waveform"
	}
	key := fmt.Sprintf("waveforms/%d/%s-%s.bin", userID, uuidv7.New(), name)

	fileURL, err := service.files.Upload(ctx, key, contentType, payload)
	if err != nil {
		return "", fmt.Errorf("health_service_upload_failed: %w", err)
	}

	return fileURL, nil
}

// # Chart Windows

// Period selects how wide an ECG detail window is.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ChartWindow is the decoded detail view of one period.
type ChartWindow struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Sessions []*EKG          `json:"sessions"`
	Points   []WaveformPoint `json:"points"`
}

// chartWindow resolves a period around the anchor date to calendar bounds.
func chartWindow(anchor time.Time, period Period) (time.Time, time.Time, error) {
	year, month, day := anchor.Date()
	location := anchor.Location()

	switch period {
	case PeriodDaily:
		from := time.Date(year, month, day, 0, 0, 0, 0, location)
		return from, from.AddDate(0, 0, 1), nil
	case PeriodWeekly:
		// Weeks start on Monday.
		weekday := int(anchor.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		from := time.Date(year, month, day, 0, 0, 0, 0, location).AddDate(0, 0, -(weekday - 1))
		return from, from.AddDate(0, 0, 7), nil
	case PeriodMonthly:
		from := time.Date(year, month, 1, 0, 0, 0, 0, location)
		return from, from.AddDate(0, 1, 0), nil
	case PeriodYearly:
		from := time.Date(year, 1, 1, 0, 0, 0, 0, location)
		return from, from.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, apperr.ValidationError("Unknown chart period")
	}
}

// ECGDetail selects the sessions of a chart window and decodes their packed
// waveform files into chartable points.
func (service *Service) ECGDetail(ctx context.Context, userID int64, anchor time.Time, period Period) (*ChartWindow, error) {
	from, to, err := chartWindow(anchor, period)
	if err != nil {
		return nil, err
	}

	sessions, err := service.ekg.ListWindow(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("health_service_detail_window_failed: %w", err)
	}

	window := &ChartWindow{From: from, To: to, Sessions: sessions, Points: []WaveformPoint{}}
	for _, session := range sessions {
		if session.FileURL == "" {
			continue
		}
		payload, err := service.files.Download(ctx, service.files.KeyFromURL(session.FileURL))
		if err != nil {
			return nil, fmt.Errorf("health_service_detail_download_failed: %w", err)
		}
		window.Points = append(window.Points, DecodePackedSamples(payload)...)
	}

	return window, nil
}

// # Cascade

// PurgeUserData removes every health row of the user. Every table is
// attempted even when an earlier one fails.
func (service *Service) PurgeUserData(ctx context.Context, userID int64) error {
	var errs []error
	for _, kind := range ScalarKinds {
		if err := service.scalars.PurgeUser(ctx, kind, userID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := service.bloodPressure.PurgeUser(ctx, userID); err != nil {
		errs = append(errs, err)
	}
	if err := service.sleep.PurgeUser(ctx, userID); err != nil {
		errs = append(errs, err)
	}
	if err := service.ecg.PurgeUser(ctx, userID); err != nil {
		errs = append(errs, err)
	}
	if err := service.ekg.PurgeUser(ctx, userID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

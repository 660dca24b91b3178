// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package health

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

// ── In-memory fakes ──────────────────────────────────────────────────────────

type fakeScalarRepo struct {
	nextID  int64
	samples map[string]*Sample
}

func newFakeScalarRepo() *fakeScalarRepo {
	return &fakeScalarRepo{samples: map[string]*Sample{}}
}

func scalarKey(kind Kind, userID int64, date time.Time) string {
	return fmt.Sprintf("%s/%d/%d", kind, userID, date.UnixNano())
}

func (r *fakeScalarRepo) FindByDate(_ context.Context, kind Kind, userID int64, date time.Time) (*Sample, error) {
	if sample, ok := r.samples[scalarKey(kind, userID, date)]; ok {
		copied := *sample
		return &copied, nil
	}
	return nil, apperr.NotFound("Sample")
}

func (r *fakeScalarRepo) Insert(_ context.Context, kind Kind, sample *Sample) error {
	r.nextID++
	sample.ID = r.nextID
	copied := *sample
	r.samples[scalarKey(kind, sample.UserID, sample.Date)] = &copied
	return nil
}

func (r *fakeScalarRepo) Overwrite(_ context.Context, kind Kind, sample *Sample) error {
	sample.Status = SampleEdited
	copied := *sample
	r.samples[scalarKey(kind, sample.UserID, sample.Date)] = &copied
	return nil
}

func (r *fakeScalarRepo) SoftDelete(_ context.Context, _ Kind, userID, sampleID int64) error {
	for _, sample := range r.samples {
		if sample.ID == sampleID && sample.UserID == userID && sample.Status != SampleDeleted {
			sample.Status = SampleDeleted
			return nil
		}
	}
	return apperr.NotFound("Sample")
}

func (r *fakeScalarRepo) List(_ context.Context, kind Kind, userID int64, lastAt *time.Time) ([]*Sample, error) {
	var samples []*Sample
	for key, sample := range r.samples {
		if sample.UserID != userID || sample.Status == SampleDeleted {
			continue
		}
		if key[:len(kind)] != string(kind) {
			continue
		}
		if lastAt != nil && !sample.Date.After(*lastAt) {
			continue
		}
		copied := *sample
		samples = append(samples, &copied)
	}
	return samples, nil
}

func (r *fakeScalarRepo) PurgeUser(_ context.Context, kind Kind, userID int64) error {
	for key, sample := range r.samples {
		if sample.UserID == userID && key[:len(kind)] == string(kind) {
			delete(r.samples, key)
		}
	}
	return nil
}

type fakeSleepRepo struct {
	nextID   int64
	segments map[string]*Sleep
}

func (r *fakeSleepRepo) FindByUUID(_ context.Context, userID int64, uuid string) (*Sleep, error) {
	if segment, ok := r.segments[fmt.Sprintf("%d/%s", userID, uuid)]; ok {
		copied := *segment
		return &copied, nil
	}
	return nil, apperr.NotFound("Sleep segment")
}

func (r *fakeSleepRepo) Insert(_ context.Context, segment *Sleep) error {
	r.nextID++
	segment.ID = r.nextID
	copied := *segment
	r.segments[fmt.Sprintf("%d/%s", segment.UserID, segment.UUID)] = &copied
	return nil
}

func (r *fakeSleepRepo) Overwrite(_ context.Context, segment *Sleep) error {
	segment.Status = SampleEdited
	copied := *segment
	r.segments[fmt.Sprintf("%d/%s", segment.UserID, segment.UUID)] = &copied
	return nil
}

func (r *fakeSleepRepo) SoftDelete(_ context.Context, userID, segmentID int64) error {
	for _, segment := range r.segments {
		if segment.ID == segmentID && segment.UserID == userID {
			segment.Status = SampleDeleted
			return nil
		}
	}
	return apperr.NotFound("Sleep segment")
}

func (r *fakeSleepRepo) List(context.Context, int64, *time.Time) ([]*Sleep, error) {
	return nil, nil
}

func (r *fakeSleepRepo) PurgeUser(context.Context, int64) error { return nil }

type fakeEKGRepo struct {
	nextID   int64
	sessions []*EKG
}

func (r *fakeEKGRepo) FindByDate(_ context.Context, userID int64, date time.Time) (*EKG, error) {
	for _, session := range r.sessions {
		if session.UserID == userID && session.Date.Equal(date) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Waveform session")
}

func (r *fakeEKGRepo) Insert(_ context.Context, session *EKG) error {
	r.nextID++
	session.ID = r.nextID
	copied := *session
	r.sessions = append(r.sessions, &copied)
	return nil
}

func (r *fakeEKGRepo) Overwrite(_ context.Context, session *EKG) error {
	for i, existing := range r.sessions {
		if existing.ID == session.ID {
			session.Status = SampleEdited
			copied := *session
			r.sessions[i] = &copied
		}
	}
	return nil
}

func (r *fakeEKGRepo) SoftDelete(_ context.Context, userID, sessionID int64) error {
	for _, session := range r.sessions {
		if session.ID == sessionID && session.UserID == userID {
			session.Status = SampleDeleted
			return nil
		}
	}
	return apperr.NotFound("Waveform session")
}

func (r *fakeEKGRepo) List(_ context.Context, userID int64, _ *time.Time) ([]*EKG, error) {
	var sessions []*EKG
	for _, session := range r.sessions {
		if session.UserID == userID && session.Status != SampleDeleted {
			copied := *session
			sessions = append(sessions, &copied)
		}
	}
	return sessions, nil
}

func (r *fakeEKGRepo) ListWindow(_ context.Context, userID int64, from, to time.Time) ([]*EKG, error) {
	var sessions []*EKG
	for _, session := range r.sessions {
		inWindow := !session.Date.Before(from) && session.Date.Before(to)
		if session.UserID == userID && session.Status != SampleDeleted && inWindow {
			copied := *session
			sessions = append(sessions, &copied)
		}
	}
	return sessions, nil
}

func (r *fakeEKGRepo) PurgeUser(context.Context, int64) error { return nil }

type fakeFileStore struct {
	objects map[string][]byte
}

func (s *fakeFileStore) Upload(_ context.Context, key, _ string, payload []byte) (string, error) {
	s.objects[key] = payload
	return "https://files.test/" + key, nil
}

func (s *fakeFileStore) Download(_ context.Context, key string) ([]byte, error) {
	payload, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return payload, nil
}

func (s *fakeFileStore) KeyFromURL(fileURL string) string {
	const prefix = "https://files.test/"
	if len(fileURL) > len(prefix) && fileURL[:len(prefix)] == prefix {
		return fileURL[len(prefix):]
	}
	return fileURL
}

func newHealthService() (*Service, *fakeScalarRepo, *fakeEKGRepo, *fakeFileStore) {
	scalars := newFakeScalarRepo()
	ekg := &fakeEKGRepo{}
	files := &fakeFileStore{objects: map[string][]byte{}}
	sleep := &fakeSleepRepo{segments: map[string]*Sleep{}}
	service := NewService(scalars, nil, sleep, nil, ekg, files)
	return service, scalars, ekg, files
}

// ── Upsert Semantics ─────────────────────────────────────────────────────────

func TestSyncScalarsIdempotent(t *testing.T) {
	service, scalars, _, _ := newHealthService()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	batch := []ScalarInput{{Date: date, Value: 72}}

	report, err := service.SyncScalars(context.Background(), KindHeartRate, 1, batch, false)
	require.NoError(t, err)
	assert.Equal(t, &SyncReport{Inserted: 1}, report)

	// Re-syncing the same batch with a different value changes nothing.
	report, err = service.SyncScalars(context.Background(),
		KindHeartRate, 1, []ScalarInput{{Date: date, Value: 99}}, false)
	require.NoError(t, err)
	assert.Equal(t, &SyncReport{Unchanged: 1}, report)

	stored, err := scalars.FindByDate(context.Background(), KindHeartRate, 1, date)
	require.NoError(t, err)
	assert.Equal(t, 72.0, stored.Value)
	assert.Equal(t, SampleRecorded, stored.Status)
}

func TestSyncScalarsForceOverwrites(t *testing.T) {
	service, scalars, _, _ := newHealthService()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := service.SyncScalars(context.Background(),
		KindWeight, 1, []ScalarInput{{Date: date, Value: 81.5}}, false)
	require.NoError(t, err)

	report, err := service.SyncScalars(context.Background(),
		KindWeight, 1, []ScalarInput{{Date: date, Value: 80.0}}, true)
	require.NoError(t, err)
	assert.Equal(t, &SyncReport{Overwritten: 1}, report)

	stored, err := scalars.FindByDate(context.Background(), KindWeight, 1, date)
	require.NoError(t, err)
	assert.Equal(t, 80.0, stored.Value)
	assert.Equal(t, SampleEdited, stored.Status)
}

func TestSyncScalarsRejectsUnknownKind(t *testing.T) {
	service, _, _, _ := newHealthService()

	_, err := service.SyncScalars(context.Background(), Kind("bogus"), 1, nil, false)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestAddScalarAlwaysWrites(t *testing.T) {
	service, _, _, _ := newHealthService()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := service.AddScalar(context.Background(), KindSteps, 1, ScalarInput{Date: date, Value: 4000})
	require.NoError(t, err)
	assert.Equal(t, 4000.0, first.Value)

	second, err := service.AddScalar(context.Background(), KindSteps, 1, ScalarInput{Date: date, Value: 4200})
	require.NoError(t, err)
	assert.Equal(t, 4200.0, second.Value)
	assert.Equal(t, first.ID, second.ID, "a forced add must reuse the existing row")
	assert.Equal(t, SampleEdited, second.Status)
}

func TestSyncSleepAssignsUUID(t *testing.T) {
	service, _, _, _ := newHealthService()
	start := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)

	report, err := service.SyncSleep(context.Background(), 1, []SleepInput{
		{UUID: "seg-1", StartDate: start, EndDate: start.Add(8 * time.Hour)},
		{StartDate: start, EndDate: start.Add(time.Hour)}, // no UUID from the client
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)

	// The explicit UUID is the natural key: re-syncing it is a no-op.
	report, err = service.SyncSleep(context.Background(), 1, []SleepInput{
		{UUID: "seg-1", StartDate: start, EndDate: start.Add(7 * time.Hour)},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Unchanged)
}

// ── Chart Windows ────────────────────────────────────────────────────────────

func TestChartWindowBounds(t *testing.T) {
	anchor := time.Date(2026, 3, 18, 14, 30, 0, 0, time.UTC) // a Wednesday

	tests := []struct {
		period Period
		from   time.Time
		to     time.Time
	}{
		{PeriodDaily, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC)},
		{PeriodWeekly, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC)},
		{PeriodMonthly, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYearly, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, testCase := range tests {
		t.Run(string(testCase.period), func(t *testing.T) {
			from, to, err := chartWindow(anchor, testCase.period)
			require.NoError(t, err)
			assert.Equal(t, testCase.from, from)
			assert.Equal(t, testCase.to, to)
		})
	}
}

func TestChartWindowSundayBelongsToPriorWeek(t *testing.T) {
	sunday := time.Date(2026, 3, 22, 10, 0, 0, 0, time.UTC)

	from, to, err := chartWindow(sunday, PeriodWeekly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC), to)
}

func TestChartWindowUnknownPeriod(t *testing.T) {
	_, _, err := chartWindow(time.Now(), Period("hourly"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestECGDetailDecodesSessions(t *testing.T) {
	service, _, ekg, files := newHealthService()

	points := []WaveformPoint{
		{Timestamp: 1767225600.0, Value: 0.2},
		{Timestamp: 1767225600.004, Value: 0.3},
	}
	files.objects["waveforms/1/a.bin"] = EncodePackedSamples(points)

	inside := time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)
	outside := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ekg.Insert(context.Background(), &EKG{
		UserID: 1, Date: inside, FileURL: "https://files.test/waveforms/1/a.bin",
	}))
	require.NoError(t, ekg.Insert(context.Background(), &EKG{
		UserID: 1, Date: outside, FileURL: "https://files.test/waveforms/1/b.bin",
	}))

	window, err := service.ECGDetail(context.Background(), 1, inside, PeriodMonthly)
	require.NoError(t, err)

	require.Len(t, window.Sessions, 1)
	assert.Equal(t, points, window.Points)
}

func TestUploadWaveformBuildsKey(t *testing.T) {
	service, _, _, files := newHealthService()

	fileURL, err := service.UploadWaveform(context.Background(), 7, "Morning Strip.bin", "", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Contains(t, fileURL, "waveforms/7/")
	assert.Contains(t, fileURL, "morning-strip.bin")
	require.Len(t, files.objects, 1)
}

func TestUploadWaveformRejectsEmpty(t *testing.T) {
	service, _, _, _ := newHealthService()

	_, err := service.UploadWaveform(context.Background(), 7, "x.bin", "", nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package health

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/constants"
	"github.com/vitalink/vitalink/internal/platform/middleware"
	requestutil "github.com/vitalink/vitalink/internal/platform/request"
	"github.com/vitalink/vitalink/internal/platform/respond"
)

// Handler implements the health-metric HTTP endpoints. All routes require an
// authenticated member; every operation is scoped to the caller's own data.
type Handler struct {
	healthService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{healthService: service}
}

// Routes returns a [chi.Router] configured with the health routes.
//
// # Endpoints
//
// The special families (blood_pressure, sleep, ecg, ekg) get dedicated
// handlers; every scalar family shares the generic {kind} handlers.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/upload", handler.upload)
	router.Get("/ecg-records", handler.ecgRecords)
	router.Get("/ecg-detail", handler.ecgDetail)

	router.Post("/blood_pressure", handler.syncBloodPressure)
	router.Get("/blood_pressure", handler.listBloodPressure)
	router.Delete("/blood_pressure/{id}", handler.deleteBloodPressure)

	router.Post("/sleep", handler.syncSleep)
	router.Get("/sleep", handler.listSleep)
	router.Delete("/sleep/{id}", handler.deleteSleep)

	router.Post("/ecg", handler.syncECG)
	router.Get("/ecg", handler.listECG)
	router.Delete("/ecg/{id}", handler.deleteECG)

	router.Post("/ekg", handler.syncEKG)
	router.Delete("/ekg/{id}", handler.deleteEKG)

	router.Post("/{kind}", handler.syncScalars)
	router.Post("/{kind}/add", handler.addScalar)
	router.Get("/{kind}", handler.listScalars)
	router.Delete("/{kind}/{id}", handler.deleteScalar)

	return router
}

// lastAtFilter parses the optional ?lastAt=RFC3339 query parameter.
func lastAtFilter(request *http.Request) (*time.Time, error) {
	raw := request.URL.Query().Get("lastAt")
	if raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.ValidationError("lastAt must be an RFC 3339 timestamp")
	}
	return &parsed, nil
}

// ── Scalar Families ──────────────────────────────────────────────────────────

type scalarBatchRequest struct {
	Samples []ScalarInput `json:"samples"`
	Force   bool          `json:"force"`
}

func (handler *Handler) syncScalars(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input scalarBatchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	kind := Kind(chi.URLParam(request, "kind"))
	report, err := handler.healthService.SyncScalars(request.Context(), kind, userID, input.Samples, input.Force)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

func (handler *Handler) addScalar(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ScalarInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	kind := Kind(chi.URLParam(request, "kind"))
	sample, err := handler.healthService.AddScalar(request.Context(), kind, userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sample)
}

func (handler *Handler) listScalars(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lastAt, err := lastAtFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	kind := Kind(chi.URLParam(request, "kind"))
	samples, err := handler.healthService.ListScalars(request.Context(), kind, userID, lastAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, samples)
}

func (handler *Handler) deleteScalar(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sampleID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	kind := Kind(chi.URLParam(request, "kind"))
	if err := handler.healthService.DeleteScalar(request.Context(), kind, userID, sampleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

// ── Blood Pressure ───────────────────────────────────────────────────────────

type bloodPressureBatchRequest struct {
	Samples []BloodPressureInput `json:"samples"`
	Force   bool                 `json:"force"`
}

func (handler *Handler) syncBloodPressure(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input bloodPressureBatchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.healthService.SyncBloodPressure(request.Context(), userID, input.Samples, input.Force)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

func (handler *Handler) listBloodPressure(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lastAt, err := lastAtFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	readings, err := handler.healthService.ListBloodPressure(request.Context(), userID, lastAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, readings)
}

func (handler *Handler) deleteBloodPressure(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	readingID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.healthService.DeleteBloodPressure(request.Context(), userID, readingID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

// ── Sleep ────────────────────────────────────────────────────────────────────

type sleepBatchRequest struct {
	Samples []SleepInput `json:"samples"`
	Force   bool         `json:"force"`
}

func (handler *Handler) syncSleep(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input sleepBatchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.healthService.SyncSleep(request.Context(), userID, input.Samples, input.Force)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

func (handler *Handler) listSleep(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lastAt, err := lastAtFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	segments, err := handler.healthService.ListSleep(request.Context(), userID, lastAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, segments)
}

func (handler *Handler) deleteSleep(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	segmentID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.healthService.DeleteSleep(request.Context(), userID, segmentID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

// ── ECG ──────────────────────────────────────────────────────────────────────

type ecgBatchRequest struct {
	Samples []ECGInput `json:"samples"`
	Force   bool       `json:"force"`
}

func (handler *Handler) syncECG(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ecgBatchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.healthService.SyncECG(request.Context(), userID, input.Samples, input.Force)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

func (handler *Handler) listECG(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lastAt, err := lastAtFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	strips, err := handler.healthService.ListECG(request.Context(), userID, lastAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, strips)
}

func (handler *Handler) deleteECG(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stripID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.healthService.DeleteECG(request.Context(), userID, stripID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

// ── EKG & Waveform Files ─────────────────────────────────────────────────────

type ekgBatchRequest struct {
	Samples []EKGInput `json:"samples"`
	Force   bool       `json:"force"`
}

func (handler *Handler) syncEKG(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ekgBatchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.healthService.SyncEKG(request.Context(), userID, input.Samples, input.Force)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

func (handler *Handler) deleteEKG(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.healthService.DeleteEKG(request.Context(), userID, sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Request is not a valid multipart upload"))
		return
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("A file field is required"))
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadBytes))
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	fileURL, err := handler.healthService.UploadWaveform(
		request.Context(), userID, header.Filename, header.Header.Get("Content-Type"), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{"file_url": fileURL})
}

func (handler *Handler) ecgRecords(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lastAt, err := lastAtFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.healthService.ECGRecords(request.Context(), userID, lastAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessions)
}

func (handler *Handler) ecgDetail(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	anchor := time.Now()
	if raw := request.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("date must be an RFC 3339 timestamp"))
			return
		}
		anchor = parsed
	}

	period := Period(request.URL.Query().Get("period"))
	if period == "" {
		period = PeriodDaily
	}

	window, err := handler.healthService.ECGDetail(request.Context(), userID, anchor, period)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, window)
}

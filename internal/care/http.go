// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package care

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink/internal/platform/middleware"
	requestutil "github.com/vitalink/vitalink/internal/platform/request"
	"github.com/vitalink/vitalink/internal/platform/respond"
)

// Handler implements the telemedicine directory HTTP endpoints.
type Handler struct {
	careService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{careService: service}
}

// DoctorRoutes returns the public doctor directory plus registration.
func (handler *Handler) DoctorRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listDoctors)
	router.Get("/{id}", handler.doctorDetail)
	router.Post("/", handler.registerDoctor)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/{id}/feedback", handler.submitFeedback)
	})

	return router
}

// PatientRoutes returns the patient picker plus registration.
func (handler *Handler) PatientRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listPatients)
	router.Post("/", handler.registerPatient)

	return router
}

func (handler *Handler) listDoctors(writer http.ResponseWriter, request *http.Request) {
	doctors, err := handler.careService.Doctors(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, doctors)
}

func (handler *Handler) doctorDetail(writer http.ResponseWriter, request *http.Request) {
	doctorID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	doctor, err := handler.careService.Doctor(request.Context(), doctorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, doctor)
}

func (handler *Handler) registerDoctor(writer http.ResponseWriter, request *http.Request) {
	var input DoctorInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.careService.RegisterDoctor(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"user": user})
}

func (handler *Handler) listPatients(writer http.ResponseWriter, request *http.Request) {
	patients, err := handler.careService.Patients(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, patients)
}

func (handler *Handler) registerPatient(writer http.ResponseWriter, request *http.Request) {
	var input PatientInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.careService.RegisterPatient(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"user": user})
}

func (handler *Handler) submitFeedback(writer http.ResponseWriter, request *http.Request) {
	patientID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	doctorID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input FeedbackInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.careService.SubmitFeedback(request.Context(), patientID, doctorID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

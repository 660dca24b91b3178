// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink/internal/platform/middleware"
	requestutil "github.com/vitalink/vitalink/internal/platform/request"
	"github.com/vitalink/vitalink/internal/platform/respond"
)

// Handler implements the consultation room HTTP endpoints.
type Handler struct {
	chatService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{chatService: service}
}

// Routes returns the authenticated room endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.openRoom)
	router.Post("/close", handler.closeRoom)

	return router
}

func (handler *Handler) openRoom(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		DoctorID int64 `json:"doctor_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	room, err := handler.chatService.OpenRoom(request.Context(), userID, input.DoctorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"room": room})
}

func (handler *Handler) closeRoom(writer http.ResponseWriter, request *http.Request) {
	if _, err := requestutil.RequiredUserID(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		RoomID string `json:"room_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.chatService.CloseRoom(request.Context(), input.RoomID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"closed": true})
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/middleware"
	requestutil "github.com/vitalink/vitalink/internal/platform/request"
	"github.com/vitalink/vitalink/internal/platform/respond"
	"github.com/vitalink/vitalink/internal/platform/sec"
	"github.com/vitalink/vitalink/internal/platform/validate"
	"github.com/vitalink/vitalink/pkg/pagination"
)

// Handler implements the back-office HTTP endpoints.
type Handler struct {
	adminService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{adminService: service}
}

// AuthRoutes returns the console authentication routes (/admin/auth).
func (handler *Handler) AuthRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/token", handler.refresh)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAdmin(sec.LevelOperator))
		protected.Post("/logout", handler.logout)
		protected.Get("/me", handler.me)
		protected.Put("/password", handler.changePassword)
	})

	return router
}

// UserRoutes returns the member-management routes (/admin/users).
// Member accounts are managed by super admins only; operators keep the
// content routes.
//
// # Endpoints
//   - GET /              : List members filtered by account type.
//   - PUT /{id}/status   : Transition a member's lifecycle state.
//   - GET /{id}/transactions : Payment provider charge history.
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAdmin(sec.LevelSuper))

	router.Get("/", handler.listUsers)
	router.Put("/{id}/status", handler.setUserStatus)
	router.Get("/{id}/transactions", handler.transactionHistory)

	return router
}

type loginRequest struct {
	Login     string            `json:"login"`
	Password  string            `json:"password"`
	LoginType auth.LoginChannel `json:"login_type"`
}

func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Login == "" || input.Password == "" {
		respond.Error(writer, request, validate.RequiredError("login/password", "are required"))
		return
	}

	pair, err := handler.adminService.Login(request.Context(), input.Login, input.Password, input.LoginType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError("refresh_token", "is required"))
		return
	}

	pair, err := handler.adminService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

type logoutRequest struct {
	LoginType auth.LoginChannel `json:"login_type"`
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input logoutRequest
	_ = requestutil.DecodeJSON(request, &input) // Empty body means web channel.

	if err := handler.adminService.Logout(request.Context(), adminID, input.LoginType); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	admin, err := handler.adminService.Me(request.Context(), adminID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, admin)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.adminService.ChangePassword(request.Context(), adminID, input.CurrentPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	accountType := 0
	if request.URL.Query().Get("type") == "1" {
		accountType = 1
	}

	params := pagination.FromRequest(request)

	users, total, err := handler.adminService.ListUsers(request.Context(), accountType, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

type statusRequest struct {
	Status int `json:"status"`
}

func (handler *Handler) setUserStatus(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input statusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.adminService.SetUserStatus(request.Context(), userID, input.Status); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

func (handler *Handler) transactionHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	transactions, err := handler.adminService.TransactionHistory(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, transactions)
}

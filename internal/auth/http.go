// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// HTTP delivery layer for the account lifecycle.
//
// # Architecture
//
// Handlers act as the "gatekeepers" to the system. They are responsible for:
//   - JSON Request parsing and strict input validation.
//   - Mapping HTTP contexts to service layer method calls.
//   - Standardizing JSON response formats via the [respond] package.
//
// They contain NO business logic or database queries.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink/internal/platform/middleware"
	requestutil "github.com/vitalink/vitalink/internal/platform/request"
	"github.com/vitalink/vitalink/internal/platform/respond"
	"github.com/vitalink/vitalink/internal/platform/validate"
)

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// Everything related to the account lifecycle entry points: signup, login,
// social login, activation, reset password, refresh and profile.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /signup                 : Creates a new account and mails a code.
//   - POST /login                  : Authenticates and returns a token pair.
//   - POST /logout                 : Closes the active session (auth).
//   - POST /token                  : Rotates a refresh token.
//   - GET  /me                     : Returns the current profile (auth).
//   - PUT  /profile                : Partial profile update (auth).
//   - POST /activate               : Redeems an activation code or link hash.
//   - POST /request_activation     : Re-issues an activation code.
//   - POST /reset_password         : Redeems a reset code.
//   - POST /request_reset_password : Issues a reset code.
//   - POST /facebook|/google|/apple: Social login.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/token", handler.refresh)
	router.Post("/activate", handler.activate)
	router.Post("/request_activation", handler.requestActivation)
	router.Post("/reset_password", handler.resetPassword)
	router.Post("/request_reset_password", handler.requestResetPassword)
	router.Post("/facebook", handler.facebook)
	router.Post("/google", handler.google)
	router.Post("/apple", handler.apple)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/logout", handler.logout)
		protected.Get("/me", handler.me)
		protected.Put("/profile", handler.updateProfile)
	})

	return router
}

// signupRequest represents the JSON payload expected for account creation.
type signupRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Type      int    `json:"type"`
	Subject   string `json:"subject"`
}

func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Validation rules live in the service; the handler only shapes I/O.
	user, err := handler.authService.Signup(request.Context(), SignupInput{
		Email:     input.Email,
		Username:  input.Username,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Type:      input.Type,
		Subject:   input.Subject,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Login     string       `json:"login"` // Email or username.
	Password  string       `json:"password"`
	LoginType LoginChannel `json:"login_type"` // 0 = web, 1 = mobile.
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

	pair, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    input.Login,
		Password: input.Password,
		Channel:  input.LoginType,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

type logoutRequest struct {
	LoginType LoginChannel `json:"login_type"`
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input logoutRequest
	_ = requestutil.DecodeJSON(request, &input) // Empty body means web channel.

	if err := handler.authService.Logout(request.Context(), userID, input.LoginType); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
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

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// activateRequest redeems either an email+code pair or a link hash.
type activateRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
	Hash  string `json:"hash"`
}

func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	var input activateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var user *User
	var err error
	if input.Hash != "" {
		user, err = handler.authService.ActivateByEnvelope(request.Context(), input.Hash)
	} else {
		user, err = handler.authService.Activate(request.Context(), input.Email, input.Code)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (handler *Handler) requestActivation(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestActivation(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"sent": true})
}

func (handler *Handler) requestResetPassword(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestResetPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"sent": true})
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Email, input.Code, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

// socialRequest is the shared payload of the token-based social logins.
type socialRequest struct {
	AccessToken string       `json:"access_token"`
	LoginType   LoginChannel `json:"login_type"`
}

func (handler *Handler) facebook(writer http.ResponseWriter, request *http.Request) {
	var input socialRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.LoginWithFacebook(request.Context(), input.AccessToken, input.LoginType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

func (handler *Handler) google(writer http.ResponseWriter, request *http.Request) {
	var input socialRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.LoginWithGoogle(request.Context(), input.AccessToken, input.LoginType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

type appleRequest struct {
	AppleID   string       `json:"apple_id"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	LoginType LoginChannel `json:"login_type"`
}

func (handler *Handler) apple(writer http.ResponseWriter, request *http.Request) {
	var input appleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.LoginWithApple(request.Context(), AppleLoginInput{
		AppleID:   input.AppleID,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}, input.LoginType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

// updateProfileRequest uses pointers so absent fields stay unchanged.
type updateProfileRequest struct {
	Email       *string `json:"email"`
	Username    *string `json:"username"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phonenumber"`
	Subject     *string `json:"subject"`
	Photo       *string `json:"photo"`
	Address     *string `json:"address"`
	About       *string `json:"about"`
}

func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Email:       input.Email,
		Username:    input.Username,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		Subject:     input.Subject,
		Photo:       input.Photo,
		Address:     input.Address,
		About:       input.About,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

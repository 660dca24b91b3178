// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vitalink/vitalink/internal/admin"
	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/billing"
	"github.com/vitalink/vitalink/internal/care"
	"github.com/vitalink/vitalink/internal/chat"
	"github.com/vitalink/vitalink/internal/cms"
	"github.com/vitalink/vitalink/internal/health"
	"github.com/vitalink/vitalink/internal/platform/config"
	"github.com/vitalink/vitalink/internal/platform/constants"
	"github.com/vitalink/vitalink/internal/platform/middleware"
	"github.com/vitalink/vitalink/internal/social"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /healthz handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles member authentication, activation, and profile routes.
	Auth *auth.Handler

	// Admin handles the back-office console (auth + member management).
	Admin *admin.Handler

	// Health handles the metric sync and query routes.
	Health *health.Handler

	// Social handles the community feed.
	Social *social.Handler

	// Care handles the doctor/patient directory and feedback.
	Care *care.Handler

	// CMS handles the curated articles, goods, logo, and categories.
	CMS *cms.Handler

	// Billing handles payments, subscriptions, and the Stripe webhook.
	Billing *billing.Handler

	// Chat handles consultation room lifecycle.
	Chat *chat.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/healthz", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Mount("/auth", h.Auth.Routes())
	r.Mount("/health", h.Health.Routes())
	r.Mount("/post", h.Social.Routes())
	r.Mount("/doctor", h.Care.DoctorRoutes())
	r.Mount("/patient", h.Care.PatientRoutes())
	r.Mount("/data", h.CMS.PublicRoutes())
	r.Mount("/subscription", h.Billing.Routes())
	r.Mount("/chat", h.Chat.Routes())
	r.Mount("/stripe", h.Billing.WebhookRoutes())

	// # Back-Office Console
	r.Route("/admin", func(console chi.Router) {
		console.Mount("/auth", h.Admin.AuthRoutes())
		console.Mount("/users", h.Admin.UserRoutes())
		console.Mount("/", h.CMS.AdminRoutes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package billing

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v81"

	"github.com/vitalink/vitalink/internal/platform/middleware"
	requestutil "github.com/vitalink/vitalink/internal/platform/request"
	"github.com/vitalink/vitalink/internal/platform/respond"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBytes = 1 << 20

// WebhookVerifier authenticates raw webhook payloads. Implemented by
// [StripeGateway].
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (stripe.Event, error)
}

// Handler implements the billing HTTP endpoints.
type Handler struct {
	billingService *Service
	verifier       WebhookVerifier
	logger         *slog.Logger
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, verifier WebhookVerifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{billingService: service, verifier: verifier, logger: logger}
}

// Routes returns the authenticated member billing endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/payment", handler.activePayment)
	router.Post("/ephemeral_keys", handler.ephemeralKeys)
	router.Post("/payment_intent", handler.paymentIntent)
	router.Post("/onetime-pay", handler.oneTimePay)
	router.Post("/subscribe", handler.subscribe)
	router.Post("/cancel_subscription", handler.cancelSubscription)

	return router
}

// WebhookRoutes returns the unauthenticated Stripe webhook endpoint.
func (handler *Handler) WebhookRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/webhooks", handler.webhook)
	return router
}

func (handler *Handler) activePayment(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payment, err := handler.billingService.ActivePayment(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"payment": payment})
}

func (handler *Handler) ephemeralKeys(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		APIVersion string `json:"api_version"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	key, err := handler.billingService.EphemeralKeys(request.Context(), userID, input.APIVersion)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	writer.Write(key)
}

func (handler *Handler) paymentIntent(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Type PaymentType `json:"type"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clientSecret, err := handler.billingService.CreatePaymentIntent(request.Context(), userID, input.Type)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"client_secret": clientSecret})
}

func (handler *Handler) oneTimePay(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		StripeID string `json:"stripe_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	payment, err := handler.billingService.OneTimePay(request.Context(), userID, input.StripeID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"payment": payment})
}

func (handler *Handler) subscribe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		PaymentID string      `json:"payment_id"`
		Type      PaymentType `json:"type"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	payment, err := handler.billingService.Subscribe(request.Context(), userID, input.PaymentID, input.Type)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"payment": payment})
}

func (handler *Handler) cancelSubscription(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		SubscriptionID string `json:"subscription_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	payment, err := handler.billingService.CancelSubscription(request.Context(), userID, input.SubscriptionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"payment": payment})
}

// webhook verifies the Stripe signature, hands the event to the reconciler,
// and acknowledges. Reconciliation failures are logged but still
// acknowledged so Stripe does not retry events the ledger cannot match.
func (handler *Handler) webhook(writer http.ResponseWriter, request *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(request.Body, maxWebhookBytes))
	if err != nil {
		handler.logger.WarnContext(request.Context(), "webhook body read failed", slog.Any("error", err))
		http.Error(writer, "bad request", http.StatusBadRequest)
		return
	}

	event, err := handler.verifier.VerifyWebhook(payload, request.Header.Get("Stripe-Signature"))
	if err != nil {
		handler.logger.WarnContext(request.Context(), "webhook signature rejected", slog.Any("error", err))
		http.Error(writer, "bad signature", http.StatusBadRequest)
		return
	}

	err = handler.billingService.HandleWebhookEvent(
		request.Context(),
		string(event.Type),
		event.Data.Raw,
		event.Data.PreviousAttributes,
	)
	if err != nil {
		handler.logger.ErrorContext(request.Context(), "webhook reconciliation failed",
			slog.String("event", string(event.Type)), slog.Any("error", err))
	}

	respond.OK(writer, map[string]any{"received": true})
}

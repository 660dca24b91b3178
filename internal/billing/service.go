// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/validate"
)

// Consultation pricing, in cents.
const (
	oneTimeAmountCents      = 9900
	subscriptionAmountCents = 4900
)

// Notifier delivers payment confirmation mail. Implemented by [mail.Mailer].
type Notifier interface {
	SendPaymentNotice(ctx context.Context, to, firstName string)
	SendSubscribeNotice(ctx context.Context, to, firstName, planName string)
}

// Service implements the billing use cases.
type Service struct {
	payments PaymentRepository
	users    auth.UserRepository
	gateway  Gateway
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs the billing [Service] with its dependencies.
func NewService(
	payments PaymentRepository,
	users auth.UserRepository,
	gateway Gateway,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		payments: payments,
		users:    users,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
	}
}

// # Lookups

// ActivePayment returns the member's active payment row, or nil when the
// member is on the free tier.
func (service *Service) ActivePayment(ctx context.Context, userID int64) (*Payment, error) {
	payment, err := service.payments.FindActive(ctx, userID)
	if isNotFound(err) {
		return nil, nil
	}
	return payment, err
}

// Transactions returns the provider-side charge history of a Stripe
// customer.
func (service *Service) Transactions(ctx context.Context, stripeCustomerID string) ([]Transaction, error) {
	return service.gateway.Transactions(ctx, stripeCustomerID)
}

// # Checkout Plumbing

// EphemeralKeys mints the short-lived client key the mobile SDK needs,
// creating the Stripe customer on first use.
func (service *Service) EphemeralKeys(ctx context.Context, userID int64, apiVersion string) (json.RawMessage, error) {
	validator := &validate.Validator{}
	validator.Required("api_version", apiVersion)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	customerID, err := service.ensureCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	return service.gateway.CreateEphemeralKey(ctx, customerID, apiVersion)
}

// CreatePaymentIntent opens a payment intent priced by purchase type and
// returns its client secret.
func (service *Service) CreatePaymentIntent(ctx context.Context, userID int64, paymentType PaymentType) (string, error) {
	customerID, err := service.ensureCustomer(ctx, userID)
	if err != nil {
		return "", err
	}

	amount := int64(subscriptionAmountCents)
	if paymentType == TypeOneTime {
		amount = oneTimeAmountCents
	}

	return service.gateway.CreatePaymentIntent(ctx, amount, "usd", customerID)
}

// ensureCustomer returns the member's Stripe customer ID, creating and
// storing one when absent. A stale stored reference that no longer resolves
// on the provider side is replaced the same way.
func (service *Service) ensureCustomer(ctx context.Context, userID int64) (string, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.StripeID != "" {
		if customer := service.gateway.FindCustomer(ctx, user.StripeID); customer != nil {
			return customer.ID, nil
		}
	}

	customer := service.gateway.CreateCustomer(ctx, user.FullName(), user.Email)
	if customer == nil {
		return "", apperr.ServiceUnavailable("Payment provider is unavailable")
	}
	if err := service.users.UpdateStripeID(ctx, userID, customer.ID); err != nil {
		return "", fmt.Errorf("billing_service_customer_bind_failed: %w", err)
	}

	return customer.ID, nil
}

// # Purchases

// OneTimePay records a completed one-time purchase. A repurchase resets the
// member's existing one-time row rather than inserting a second one.
func (service *Service) OneTimePay(ctx context.Context, userID int64, stripeID string) (*Payment, error) {
	validator := &validate.Validator{}
	validator.Required("stripe_id", stripeID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	payment, err := service.recordOneTime(ctx, userID, stripeID)
	if err != nil {
		return nil, err
	}

	if user, err := service.users.FindByID(ctx, userID); err == nil {
		service.notifier.SendPaymentNotice(ctx, user.Email, user.FirstName)
	}

	return payment, nil
}

// recordOneTime is the reset-or-create shared by the checkout path and the
// webhook reconciler.
func (service *Service) recordOneTime(ctx context.Context, userID int64, stripeID string) (*Payment, error) {
	existing, err := service.payments.FindOneTime(ctx, userID)
	switch {
	case err == nil:
		if err := service.payments.Reset(ctx, existing.ID, stripeID); err != nil {
			return nil, err
		}
		existing.StripeID = stripeID
		existing.Status = PaymentActive
		return existing, nil

	case isNotFound(err):
		payment := &Payment{UserID: userID, StripeID: stripeID, Type: TypeOneTime, Status: PaymentActive}
		if err := service.payments.Create(ctx, payment); err != nil {
			return nil, err
		}
		return payment, nil

	default:
		return nil, err
	}
}

// Subscribe attaches the payment method, finds or creates the Stripe
// customer, opens the subscription and mirrors it locally.
func (service *Service) Subscribe(ctx context.Context, userID int64, paymentMethodID string, subscriptionType PaymentType) (*Payment, error) {
	validator := &validate.Validator{}
	validator.Required("payment_id", paymentMethodID)
	if err := validator.Err(); err != nil {
		return nil, err
	}
	if !subscriptionType.Subscription() {
		subscriptionType = TypeMonthly
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !service.gateway.PaymentMethodValid(ctx, paymentMethodID) {
		return nil, apperr.ValidationError("Payment method is not valid")
	}

	var customerID string
	if user.StripeID != "" {
		if service.gateway.AttachPaymentMethod(ctx, paymentMethodID, user.StripeID) &&
			service.gateway.SetDefaultPaymentMethod(ctx, user.StripeID, paymentMethodID) {
			customerID = user.StripeID
		}
	}
	if customerID == "" {
		customer := service.gateway.CreateCustomerWithPaymentMethod(ctx, paymentMethodID, user.FullName(), user.Email)
		if customer == nil {
			return nil, apperr.ServiceUnavailable("There is a problem with your payment method")
		}
		if err := service.users.UpdateStripeID(ctx, userID, customer.ID); err != nil {
			return nil, fmt.Errorf("billing_service_customer_bind_failed: %w", err)
		}
		customerID = customer.ID
	}

	interval := "month"
	planName := "monthly"
	if subscriptionType == TypeUnlimited {
		interval = "year"
		planName = "unlimited"
	}

	subscription := service.gateway.CreateSubscription(ctx, customerID, interval)
	if subscription == nil {
		return nil, apperr.ServiceUnavailable("There is a problem with your payment method")
	}

	status := PaymentCanceled
	if subscription.Status == "trialing" || subscription.Status == "active" {
		status = PaymentActive
	}

	payment := &Payment{UserID: userID, StripeID: subscription.ID, Type: subscriptionType, Status: status}
	if err := service.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	// A live subscription supersedes the single free consultation unlock.
	if status == PaymentActive {
		if oneTime, err := service.payments.FindActiveOneTime(ctx, userID); err == nil {
			if err := service.payments.UpdateStatus(ctx, oneTime.ID, PaymentCanceled); err != nil {
				return nil, err
			}
		} else if !isNotFound(err) {
			return nil, err
		}
	}

	service.notifier.SendSubscribeNotice(ctx, user.Email, user.FirstName, planName)
	return payment, nil
}

// CancelSubscription cancels the provider subscription if it is still live
// and marks the local row canceled unconditionally.
func (service *Service) CancelSubscription(ctx context.Context, userID int64, subscriptionID string) (*Payment, error) {
	validator := &validate.Validator{}
	validator.Required("subscription_id", subscriptionID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	payment, err := service.payments.FindSubscriptionByStripeID(ctx, userID, subscriptionID)
	if isNotFound(err) {
		return nil, apperr.Forbidden("Subscription isn't available")
	}
	if err != nil {
		return nil, err
	}

	if subscription := service.gateway.FindSubscription(ctx, subscriptionID); subscription != nil && subscription.Status != "canceled" {
		service.gateway.CancelSubscription(ctx, subscriptionID)
	}

	if err := service.payments.UpdateStatus(ctx, payment.ID, PaymentCanceled); err != nil {
		return nil, err
	}
	payment.Status = PaymentCanceled

	return payment, nil
}

// # Webhook Reconciliation

type webhookSubscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type webhookPaymentIntent struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Customer string `json:"customer"`
}

// HandleWebhookEvent mirrors provider-pushed billing state into the local
// ledger. Unmatched events are logged and dropped.
func (service *Service) HandleWebhookEvent(ctx context.Context, eventType string, object json.RawMessage, previous map[string]any) error {
	switch eventType {
	case "customer.subscription.updated":
		var subscription webhookSubscription
		if err := json.Unmarshal(object, &subscription); err != nil {
			return fmt.Errorf("billing_service_webhook_decode_failed: %w", err)
		}
		// Only a status flip is actionable.
		if _, changed := previous["status"]; !changed {
			return nil
		}
		switch subscription.Status {
		case "unpaid", "canceled":
			return service.reconcileStatus(ctx, subscription.ID, PaymentCanceled)
		case "active":
			return service.reconcileStatus(ctx, subscription.ID, PaymentActive)
		}
		return nil

	case "customer.subscription.deleted":
		var subscription webhookSubscription
		if err := json.Unmarshal(object, &subscription); err != nil {
			return fmt.Errorf("billing_service_webhook_decode_failed: %w", err)
		}
		if subscription.Status == "canceled" {
			return service.reconcileStatus(ctx, subscription.ID, PaymentCanceled)
		}
		return nil

	case "payment_intent.succeeded":
		var intent webhookPaymentIntent
		if err := json.Unmarshal(object, &intent); err != nil {
			return fmt.Errorf("billing_service_webhook_decode_failed: %w", err)
		}
		if intent.Status != "succeeded" {
			return nil
		}
		user, err := service.users.FindByStripeID(ctx, intent.Customer)
		if isNotFound(err) {
			service.logger.WarnContext(ctx, "payment for unknown stripe customer dropped",
				slog.String("customer", intent.Customer))
			return nil
		}
		if err != nil {
			return err
		}
		_, err = service.recordOneTime(ctx, user.ID, intent.ID)
		return err
	}

	return nil
}

func (service *Service) reconcileStatus(ctx context.Context, stripeID string, status PaymentStatus) error {
	payment, err := service.payments.FindByStripeID(ctx, stripeID)
	if isNotFound(err) {
		service.logger.WarnContext(ctx, "webhook for unknown payment dropped",
			slog.String("stripe_id", stripeID))
		return nil
	}
	if err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "payment reconciled from webhook",
		slog.Int64("payment_id", payment.ID), slog.Int("status", int(status)))
	return service.payments.UpdateStatus(ctx, payment.ID, status)
}

// # Plan Gate

// HasActivePlan reports whether the member holds any active payment row.
func (service *Service) HasActivePlan(ctx context.Context, userID int64) (bool, error) {
	_, err := service.payments.FindActive(ctx, userID)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasActiveSubscription reports whether the member holds an active
// recurring payment.
func (service *Service) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	_, err := service.payments.FindActiveSubscription(ctx, userID)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ConsumeOneTime spends the member's active one-time unlock. A no-op when
// none is active.
func (service *Service) ConsumeOneTime(ctx context.Context, userID int64) error {
	payment, err := service.payments.FindActiveOneTime(ctx, userID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return service.payments.UpdateStatus(ctx, payment.ID, PaymentCanceled)
}

// # Cascade

// PurgeUserData cancels any live subscription on the provider side and
// removes the member's payment rows.
func (service *Service) PurgeUserData(ctx context.Context, userID int64) error {
	if payment, err := service.payments.FindActiveSubscription(ctx, userID); err == nil {
		service.gateway.CancelSubscription(ctx, payment.StripeID)
	} else if !isNotFound(err) {
		return err
	}

	return service.payments.DeleteByUser(ctx, userID)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	appErr := apperr.As(err)
	return appErr != nil && appErr.Code == "NOT_FOUND"
}

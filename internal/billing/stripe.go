// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Customer is the provider-neutral slice of a Stripe customer the service
// needs.
type Customer struct {
	ID string
}

// ProviderSubscription is the provider-neutral slice of a Stripe
// subscription the service needs.
type ProviderSubscription struct {
	ID     string
	Status string
}

// Gateway is the billing provider boundary. The Stripe implementation is
// [StripeGateway]; service tests substitute a fake.
//
// Methods returning a pointer or bool without an error are best-effort:
// provider failures are logged inside the gateway and come back as nil or
// false.
type Gateway interface {
	FindCustomer(ctx context.Context, customerID string) *Customer
	CreateCustomer(ctx context.Context, name, email string) *Customer
	CreateCustomerWithPaymentMethod(ctx context.Context, paymentMethodID, name, email string) *Customer
	PaymentMethodValid(ctx context.Context, paymentMethodID string) bool
	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) bool
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) bool
	CreateEphemeralKey(ctx context.Context, customerID, apiVersion string) (json.RawMessage, error)
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency, customerID string) (string, error)
	CreateSubscription(ctx context.Context, customerID, interval string) *ProviderSubscription
	FindSubscription(ctx context.Context, subscriptionID string) *ProviderSubscription
	CancelSubscription(ctx context.Context, subscriptionID string) *ProviderSubscription
	Transactions(ctx context.Context, customerID string) ([]Transaction, error)
}

// StripeGateway implements [Gateway] on the official Stripe client.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *slog.Logger
}

// NewStripeGateway constructs a [StripeGateway] for the given secret key.
func NewStripeGateway(apiKey, webhookSecret string, logger *slog.Logger) *StripeGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeGateway{
		api:           client.New(apiKey, nil),
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// # Customers

func (gateway *StripeGateway) FindCustomer(ctx context.Context, customerID string) *Customer {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	customer, err := gateway.api.Customers.Get(customerID, params)
	if err != nil || customer == nil || customer.Deleted {
		gateway.warn(ctx, "stripe customer lookup failed", err)
		return nil
	}
	return &Customer{ID: customer.ID}
}

func (gateway *StripeGateway) CreateCustomer(ctx context.Context, name, email string) *Customer {
	params := &stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
	}
	params.Context = ctx

	customer, err := gateway.api.Customers.New(params)
	if err != nil {
		gateway.warn(ctx, "stripe customer creation failed", err)
		return nil
	}
	return &Customer{ID: customer.ID}
}

func (gateway *StripeGateway) CreateCustomerWithPaymentMethod(ctx context.Context, paymentMethodID, name, email string) *Customer {
	params := &stripe.CustomerParams{
		Name:          stripe.String(name),
		Email:         stripe.String(email),
		PaymentMethod: stripe.String(paymentMethodID),
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx

	customer, err := gateway.api.Customers.New(params)
	if err != nil {
		gateway.warn(ctx, "stripe customer creation failed", err)
		return nil
	}
	return &Customer{ID: customer.ID}
}

// # Payment Methods

func (gateway *StripeGateway) PaymentMethodValid(ctx context.Context, paymentMethodID string) bool {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	method, err := gateway.api.PaymentMethods.Get(paymentMethodID, params)
	if err != nil {
		gateway.warn(ctx, "stripe payment method lookup failed", err)
		return false
	}
	return method != nil
}

func (gateway *StripeGateway) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) bool {
	params := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	if _, err := gateway.api.PaymentMethods.Attach(paymentMethodID, params); err != nil {
		gateway.warn(ctx, "stripe payment method attach failed", err)
		return false
	}
	return true
}

func (gateway *StripeGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) bool {
	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx

	if _, err := gateway.api.Customers.Update(customerID, params); err != nil {
		gateway.warn(ctx, "stripe customer update failed", err)
		return false
	}
	return true
}

// # Keys & Intents

func (gateway *StripeGateway) CreateEphemeralKey(ctx context.Context, customerID, apiVersion string) (json.RawMessage, error) {
	params := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(customerID),
		StripeVersion: stripe.String(apiVersion),
	}
	params.Context = ctx

	key, err := gateway.api.EphemeralKeys.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe_ephemeral_key_failed: %w", err)
	}
	return json.RawMessage(key.RawJSON), nil
}

func (gateway *StripeGateway) CreatePaymentIntent(ctx context.Context, amountCents int64, currency, customerID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	intent, err := gateway.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe_payment_intent_failed: %w", err)
	}
	return intent.ClientSecret, nil
}

// # Subscriptions

func (gateway *StripeGateway) CreateSubscription(ctx context.Context, customerID, interval string) *ProviderSubscription {
	plan := gateway.planByInterval(ctx, interval)
	if plan == nil {
		return nil
	}

	params := &stripe.SubscriptionParams{
		Customer:      stripe.String(customerID),
		Items:         []*stripe.SubscriptionItemsParams{{Plan: stripe.String(plan.ID)}},
		TrialFromPlan: stripe.Bool(true),
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	subscription, err := gateway.api.Subscriptions.New(params)
	if err != nil {
		gateway.warn(ctx, "stripe subscription creation failed", err)
		return nil
	}
	return &ProviderSubscription{ID: subscription.ID, Status: string(subscription.Status)}
}

func (gateway *StripeGateway) FindSubscription(ctx context.Context, subscriptionID string) *ProviderSubscription {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	subscription, err := gateway.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		gateway.warn(ctx, "stripe subscription lookup failed", err)
		return nil
	}
	return &ProviderSubscription{ID: subscription.ID, Status: string(subscription.Status)}
}

func (gateway *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) *ProviderSubscription {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	subscription, err := gateway.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		gateway.warn(ctx, "stripe subscription cancel failed", err)
		return nil
	}
	return &ProviderSubscription{ID: subscription.ID, Status: string(subscription.Status)}
}

// planByInterval returns the first active plan billed at the given interval.
func (gateway *StripeGateway) planByInterval(ctx context.Context, interval string) *stripe.Plan {
	params := &stripe.PlanListParams{Active: stripe.Bool(true)}
	params.Context = ctx

	iter := gateway.api.Plans.List(params)
	for iter.Next() {
		plan := iter.Plan()
		if string(plan.Interval) == interval {
			return plan
		}
	}
	if err := iter.Err(); err != nil {
		gateway.warn(ctx, "stripe plan listing failed", err)
	}
	return nil
}

// # History

func (gateway *StripeGateway) Transactions(ctx context.Context, customerID string) ([]Transaction, error) {
	params := &stripe.PaymentIntentListParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	var transactions []Transaction
	iter := gateway.api.PaymentIntents.List(params)
	for iter.Next() {
		intent := iter.PaymentIntent()
		transactions = append(transactions, Transaction{
			ID:          intent.ID,
			Amount:      intent.Amount,
			Currency:    string(intent.Currency),
			Status:      string(intent.Status),
			Description: intent.Description,
			CreateDate:  unixTime(intent.Created),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe_transaction_list_failed: %w", err)
	}

	return transactions, nil
}

// VerifyWebhook authenticates an incoming webhook payload against the
// endpoint's signing secret.
func (gateway *StripeGateway) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, gateway.webhookSecret)
}

func (gateway *StripeGateway) warn(ctx context.Context, message string, err error) {
	gateway.logger.WarnContext(ctx, message, slog.Any("error", err))
}

func unixTime(seconds int64) time.Time {
	if seconds == 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0)
}

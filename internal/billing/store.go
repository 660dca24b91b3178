// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package billing

import "context"

// PaymentRepository defines the data access contract for payment rows.
//
// "Active" throughout means status < canceled, matching the plan gate's
// reading of the ledger.
type PaymentRepository interface {
	// FindActive returns the member's first active payment row of any type.
	//
	// Returns [apperr.NotFound] when the member holds no active payment.
	FindActive(ctx context.Context, userID int64) (*Payment, error)

	// FindActiveSubscription returns the member's active recurring payment
	// (type > one-time).
	//
	// Returns [apperr.NotFound] when none exists.
	FindActiveSubscription(ctx context.Context, userID int64) (*Payment, error)

	// FindActiveOneTime returns the member's active one-time payment.
	//
	// Returns [apperr.NotFound] when none exists.
	FindActiveOneTime(ctx context.Context, userID int64) (*Payment, error)

	// FindOneTime returns the member's one-time row regardless of status.
	// Repurchases reset this row.
	//
	// Returns [apperr.NotFound] when the member never bought a one-time
	// unlock.
	FindOneTime(ctx context.Context, userID int64) (*Payment, error)

	// FindSubscriptionByStripeID returns the member's recurring row holding
	// this Stripe subscription ID.
	//
	// Returns [apperr.NotFound] when none matches.
	FindSubscriptionByStripeID(ctx context.Context, userID int64, stripeID string) (*Payment, error)

	// FindByStripeID returns any row holding this Stripe reference. Used by
	// the webhook reconciler, which has no user context.
	//
	// Returns [apperr.NotFound] when none matches.
	FindByStripeID(ctx context.Context, stripeID string) (*Payment, error)

	// Create persists a new payment row and assigns its ID.
	Create(ctx context.Context, payment *Payment) error

	// Reset re-activates an existing row with a fresh Stripe reference.
	Reset(ctx context.Context, paymentID int64, stripeID string) error

	// UpdateStatus transitions a payment row.
	UpdateStatus(ctx context.Context, paymentID int64, status PaymentStatus) error

	// DeleteByUser removes every payment row of the member.
	DeleteByUser(ctx context.Context, userID int64) error
}

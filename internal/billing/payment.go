// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Package billing mirrors Stripe subscription and one-time payment state
// into local payment rows and keeps the two reconciled through the webhook.
//
// # Provider Contract
//
// Every Stripe call is best-effort: a provider failure is logged and
// surfaces as a nil/false result, never a panic or a retry. Callers check
// for the zero value and degrade (for example, "no existing customer" just
// means "create one").
package billing

import "time"

// PaymentType distinguishes the purchase models.
type PaymentType int

const (
	TypeOneTime   PaymentType = 0 // Single consultation unlock.
	TypeMonthly   PaymentType = 1 // Monthly subscription.
	TypeUnlimited PaymentType = 2 // Yearly (unlimited) subscription.
)

// Subscription reports whether the type bills recurringly.
func (t PaymentType) Subscription() bool { return t > TypeOneTime }

// PaymentStatus is the local lifecycle of a payment row.
type PaymentStatus int

const (
	PaymentActive   PaymentStatus = 0
	PaymentEditing  PaymentStatus = 1
	PaymentCanceled PaymentStatus = 2
)

// Payment is one local mirror row of a Stripe charge or subscription.
//
// # Invariant
//
// A member holds at most one row of type one-time: a repurchase resets the
// existing row instead of inserting a duplicate.
type Payment struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	StripeID   string        `json:"stripe_id"` // PaymentIntent or Subscription ID.
	Type       PaymentType   `json:"type"`
	Status     PaymentStatus `json:"status"`
	CreateDate time.Time     `json:"create_date"`
	UpdateDate time.Time     `json:"update_date"`
}

// Transaction is one provider-side charge shown in payment history.
type Transaction struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"` // Cents.
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreateDate  time.Time `json:"create_date"`
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/platform/apperr"
)

type fakePaymentRepo struct {
	nextID int64
	rows   []*Payment
}

func (r *fakePaymentRepo) findLast(match func(*Payment) bool) (*Payment, error) {
	var found *Payment
	for _, row := range r.rows {
		if match(row) && (found == nil || row.ID > found.ID) {
			found = row
		}
	}
	if found == nil {
		return nil, apperr.NotFound("Payment")
	}
	copied := *found
	return &copied, nil
}

func (r *fakePaymentRepo) FindActive(_ context.Context, userID int64) (*Payment, error) {
	return r.findLast(func(p *Payment) bool {
		return p.UserID == userID && p.Status < PaymentCanceled
	})
}

func (r *fakePaymentRepo) FindActiveSubscription(_ context.Context, userID int64) (*Payment, error) {
	return r.findLast(func(p *Payment) bool {
		return p.UserID == userID && p.Status < PaymentCanceled && p.Type.Subscription()
	})
}

func (r *fakePaymentRepo) FindActiveOneTime(_ context.Context, userID int64) (*Payment, error) {
	return r.findLast(func(p *Payment) bool {
		return p.UserID == userID && p.Status < PaymentCanceled && p.Type == TypeOneTime
	})
}

func (r *fakePaymentRepo) FindOneTime(_ context.Context, userID int64) (*Payment, error) {
	return r.findLast(func(p *Payment) bool {
		return p.UserID == userID && p.Type == TypeOneTime
	})
}

func (r *fakePaymentRepo) FindSubscriptionByStripeID(_ context.Context, userID int64, stripeID string) (*Payment, error) {
	return r.findLast(func(p *Payment) bool {
		return p.UserID == userID && p.StripeID == stripeID && p.Type.Subscription()
	})
}

func (r *fakePaymentRepo) FindByStripeID(_ context.Context, stripeID string) (*Payment, error) {
	return r.findLast(func(p *Payment) bool { return p.StripeID == stripeID })
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *Payment) error {
	r.nextID++
	payment.ID = r.nextID
	copied := *payment
	r.rows = append(r.rows, &copied)
	return nil
}

func (r *fakePaymentRepo) Reset(_ context.Context, paymentID int64, stripeID string) error {
	for _, row := range r.rows {
		if row.ID == paymentID {
			row.StripeID = stripeID
			row.Status = PaymentActive
			return nil
		}
	}
	return apperr.NotFound("Payment")
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, paymentID int64, status PaymentStatus) error {
	for _, row := range r.rows {
		if row.ID == paymentID {
			row.Status = status
			return nil
		}
	}
	return apperr.NotFound("Payment")
}

func (r *fakePaymentRepo) DeleteByUser(_ context.Context, userID int64) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID != userID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *fakePaymentRepo) oneTimeRows(userID int64) []*Payment {
	var rows []*Payment
	for _, row := range r.rows {
		if row.UserID == userID && row.Type == TypeOneTime {
			rows = append(rows, row)
		}
	}
	return rows
}

type fakeUserRepo struct {
	users map[int64]*auth.User
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByUsername(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindBySocialID(context.Context, string, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByStripeID(_ context.Context, stripeID string) (*auth.User, error) {
	for _, user := range r.users {
		if user.StripeID == stripeID {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) Create(context.Context, *auth.User) error { return nil }

func (r *fakeUserRepo) Update(context.Context, *auth.User) error { return nil }

func (r *fakeUserRepo) UpdatePassword(context.Context, int64, string) error { return nil }

func (r *fakeUserRepo) UpdateStatus(context.Context, int64, auth.UserStatus) error { return nil }

func (r *fakeUserRepo) BindSocialID(context.Context, int64, string, string) error { return nil }

func (r *fakeUserRepo) UpdateStripeID(_ context.Context, userID int64, stripeID string) error {
	if user, ok := r.users[userID]; ok {
		user.StripeID = stripeID
		return nil
	}
	return apperr.NotFound("User")
}

func (r *fakeUserRepo) List(context.Context, int, int, int) ([]*auth.User, int, error) {
	return nil, 0, nil
}


type fakeGateway struct {
	nextCustomer     int
	customers        map[string]bool
	validMethods     map[string]bool
	attachOK         bool
	subscriptionMode string // status assigned to new subscriptions
	nextSubscription int
	subscriptions    map[string]string // subscription ID -> provider status
	canceled         []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		customers:        map[string]bool{},
		validMethods:     map[string]bool{"pm_good": true},
		attachOK:         true,
		subscriptionMode: "trialing",
		subscriptions:    map[string]string{},
	}
}

func (g *fakeGateway) FindCustomer(_ context.Context, customerID string) *Customer {
	if g.customers[customerID] {
		return &Customer{ID: customerID}
	}
	return nil
}

func (g *fakeGateway) CreateCustomer(context.Context, string, string) *Customer {
	g.nextCustomer++
	id := fmt.Sprintf("cus_%d", g.nextCustomer)
	g.customers[id] = true
	return &Customer{ID: id}
}

func (g *fakeGateway) CreateCustomerWithPaymentMethod(ctx context.Context, paymentMethodID, name, email string) *Customer {
	if !g.validMethods[paymentMethodID] {
		return nil
	}
	return g.CreateCustomer(ctx, name, email)
}

func (g *fakeGateway) PaymentMethodValid(_ context.Context, paymentMethodID string) bool {
	return g.validMethods[paymentMethodID]
}

func (g *fakeGateway) AttachPaymentMethod(_ context.Context, _, customerID string) bool {
	return g.attachOK && g.customers[customerID]
}

func (g *fakeGateway) SetDefaultPaymentMethod(_ context.Context, customerID, _ string) bool {
	return g.attachOK && g.customers[customerID]
}

func (g *fakeGateway) CreateEphemeralKey(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage(`{"secret":"ek_test"}`), nil
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amountCents int64, _, _ string) (string, error) {
	return fmt.Sprintf("pi_secret_%d", amountCents), nil
}

func (g *fakeGateway) CreateSubscription(_ context.Context, _, interval string) *ProviderSubscription {
	g.nextSubscription++
	id := fmt.Sprintf("sub_%s_%d", interval, g.nextSubscription)
	g.subscriptions[id] = g.subscriptionMode
	return &ProviderSubscription{ID: id, Status: g.subscriptionMode}
}

func (g *fakeGateway) FindSubscription(_ context.Context, subscriptionID string) *ProviderSubscription {
	status, ok := g.subscriptions[subscriptionID]
	if !ok {
		return nil
	}
	return &ProviderSubscription{ID: subscriptionID, Status: status}
}

func (g *fakeGateway) CancelSubscription(_ context.Context, subscriptionID string) *ProviderSubscription {
	g.subscriptions[subscriptionID] = "canceled"
	g.canceled = append(g.canceled, subscriptionID)
	return &ProviderSubscription{ID: subscriptionID, Status: "canceled"}
}

func (g *fakeGateway) Transactions(context.Context, string) ([]Transaction, error) {
	return []Transaction{{ID: "pi_1", Amount: oneTimeAmountCents, Currency: "usd", Status: "succeeded"}}, nil
}

type fakeNotifier struct {
	payments   []string
	subscribes []string
}

func (n *fakeNotifier) SendPaymentNotice(_ context.Context, to, _ string) {
	n.payments = append(n.payments, to)
}

func (n *fakeNotifier) SendSubscribeNotice(_ context.Context, _, _ string, planName string) {
	n.subscribes = append(n.subscribes, planName)
}

type billingFixture struct {
	service  *Service
	payments *fakePaymentRepo
	users    *fakeUserRepo
	gateway  *fakeGateway
	notifier *fakeNotifier
}

func newBillingFixture() *billingFixture {
	payments := &fakePaymentRepo{}
	users := &fakeUserRepo{users: map[int64]*auth.User{
		1: {ID: 1, Email: "kim@example.com", FirstName: "Kim", LastName: "Walker"},
	}}
	gateway := newFakeGateway()
	notifier := &fakeNotifier{}

	return &billingFixture{
		service:  NewService(payments, users, gateway, notifier, nil),
		payments: payments,
		users:    users,
		gateway:  gateway,
		notifier: notifier,
	}
}

func TestOneTimeRepurchaseResetsRow(t *testing.T) {
	fixture := newBillingFixture()

	first, err := fixture.service.OneTimePay(context.Background(), 1, "pi_first")
	require.NoError(t, err)
	assert.Equal(t, PaymentActive, first.Status)

	// Spend the unlock, then buy again.
	require.NoError(t, fixture.service.ConsumeOneTime(context.Background(), 1))

	second, err := fixture.service.OneTimePay(context.Background(), 1, "pi_second")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "pi_second", second.StripeID)
	assert.Equal(t, PaymentActive, second.Status)

	rows := fixture.payments.oneTimeRows(1)
	require.Len(t, rows, 1)
	assert.Equal(t, "pi_second", rows[0].StripeID)
	assert.Len(t, fixture.notifier.payments, 2)
}

func TestSubscribeCreatesCustomerAndCancelsOneTime(t *testing.T) {
	fixture := newBillingFixture()

	oneTime, err := fixture.service.OneTimePay(context.Background(), 1, "pi_unlock")
	require.NoError(t, err)

	payment, err := fixture.service.Subscribe(context.Background(), 1, "pm_good", TypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, PaymentActive, payment.Status)
	assert.Equal(t, TypeMonthly, payment.Type)

	// A Stripe customer was minted and bound to the account.
	assert.NotEmpty(t, fixture.users.users[1].StripeID)

	// The live subscription supersedes the one-time unlock.
	gate, err := fixture.service.HasActiveSubscription(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, gate)

	updated, err := fixture.payments.FindByStripeID(context.Background(), oneTime.StripeID)
	require.NoError(t, err)
	assert.Equal(t, PaymentCanceled, updated.Status)

	require.Len(t, fixture.notifier.subscribes, 1)
	assert.Equal(t, "monthly", fixture.notifier.subscribes[0])
}

func TestSubscribeUnlimitedUsesYearlyPlan(t *testing.T) {
	fixture := newBillingFixture()

	payment, err := fixture.service.Subscribe(context.Background(), 1, "pm_good", TypeUnlimited)
	require.NoError(t, err)
	assert.Equal(t, TypeUnlimited, payment.Type)
	assert.Contains(t, payment.StripeID, "sub_year")
	assert.Equal(t, []string{"unlimited"}, fixture.notifier.subscribes)
}

func TestSubscribeRejectsInvalidPaymentMethod(t *testing.T) {
	fixture := newBillingFixture()

	_, err := fixture.service.Subscribe(context.Background(), 1, "pm_bogus", TypeMonthly)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Empty(t, fixture.payments.rows)
}

func TestSubscribeIncompleteLandsCanceled(t *testing.T) {
	fixture := newBillingFixture()
	fixture.gateway.subscriptionMode = "incomplete"

	_, err := fixture.service.OneTimePay(context.Background(), 1, "pi_unlock")
	require.NoError(t, err)

	payment, err := fixture.service.Subscribe(context.Background(), 1, "pm_good", TypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, PaymentCanceled, payment.Status)

	// The unlock stays active when the subscription never went live.
	unlock, err := fixture.payments.FindActiveOneTime(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "pi_unlock", unlock.StripeID)
}

func TestCancelSubscriptionMarksLocalRow(t *testing.T) {
	fixture := newBillingFixture()

	payment, err := fixture.service.Subscribe(context.Background(), 1, "pm_good", TypeMonthly)
	require.NoError(t, err)

	canceled, err := fixture.service.CancelSubscription(context.Background(), 1, payment.StripeID)
	require.NoError(t, err)
	assert.Equal(t, PaymentCanceled, canceled.Status)
	assert.Contains(t, fixture.gateway.canceled, payment.StripeID)

	// Canceling again keeps the local row canceled without another provider
	// cancel call.
	_, err = fixture.service.CancelSubscription(context.Background(), 1, payment.StripeID)
	require.NoError(t, err)
	assert.Len(t, fixture.gateway.canceled, 1)
}

func TestCancelSubscriptionRejectsForeignID(t *testing.T) {
	fixture := newBillingFixture()

	_, err := fixture.service.CancelSubscription(context.Background(), 1, "sub_nobody")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestWebhookSubscriptionStatusTransitions(t *testing.T) {
	fixture := newBillingFixture()

	payment, err := fixture.service.Subscribe(context.Background(), 1, "pm_good", TypeMonthly)
	require.NoError(t, err)

	object := json.RawMessage(fmt.Sprintf(`{"id":%q,"status":"unpaid"}`, payment.StripeID))
	err = fixture.service.HandleWebhookEvent(context.Background(),
		"customer.subscription.updated", object, map[string]any{"status": "active"})
	require.NoError(t, err)

	row, err := fixture.payments.FindByStripeID(context.Background(), payment.StripeID)
	require.NoError(t, err)
	assert.Equal(t, PaymentCanceled, row.Status)

	// Provider recovers the subscription.
	object = json.RawMessage(fmt.Sprintf(`{"id":%q,"status":"active"}`, payment.StripeID))
	err = fixture.service.HandleWebhookEvent(context.Background(),
		"customer.subscription.updated", object, map[string]any{"status": "unpaid"})
	require.NoError(t, err)

	row, err = fixture.payments.FindByStripeID(context.Background(), payment.StripeID)
	require.NoError(t, err)
	assert.Equal(t, PaymentActive, row.Status)

	// An update without a status flip is ignored.
	object = json.RawMessage(fmt.Sprintf(`{"id":%q,"status":"canceled"}`, payment.StripeID))
	err = fixture.service.HandleWebhookEvent(context.Background(),
		"customer.subscription.updated", object, map[string]any{"metadata": map[string]any{}})
	require.NoError(t, err)

	row, err = fixture.payments.FindByStripeID(context.Background(), payment.StripeID)
	require.NoError(t, err)
	assert.Equal(t, PaymentActive, row.Status)
}

func TestWebhookSubscriptionDeleted(t *testing.T) {
	fixture := newBillingFixture()

	payment, err := fixture.service.Subscribe(context.Background(), 1, "pm_good", TypeMonthly)
	require.NoError(t, err)

	object := json.RawMessage(fmt.Sprintf(`{"id":%q,"status":"canceled"}`, payment.StripeID))
	err = fixture.service.HandleWebhookEvent(context.Background(),
		"customer.subscription.deleted", object, nil)
	require.NoError(t, err)

	row, err := fixture.payments.FindByStripeID(context.Background(), payment.StripeID)
	require.NoError(t, err)
	assert.Equal(t, PaymentCanceled, row.Status)
}

func TestWebhookPaymentSucceededRecordsOneTime(t *testing.T) {
	fixture := newBillingFixture()
	fixture.users.users[1].StripeID = "cus_hook"

	object := json.RawMessage(`{"id":"pi_hook","status":"succeeded","customer":"cus_hook"}`)
	err := fixture.service.HandleWebhookEvent(context.Background(),
		"payment_intent.succeeded", object, nil)
	require.NoError(t, err)

	rows := fixture.payments.oneTimeRows(1)
	require.Len(t, rows, 1)
	assert.Equal(t, "pi_hook", rows[0].StripeID)
	assert.Equal(t, PaymentActive, rows[0].Status)

	// Events for customers the ledger does not know are dropped quietly.
	object = json.RawMessage(`{"id":"pi_stray","status":"succeeded","customer":"cus_stranger"}`)
	err = fixture.service.HandleWebhookEvent(context.Background(),
		"payment_intent.succeeded", object, nil)
	require.NoError(t, err)
	assert.Len(t, fixture.payments.rows, 1)
}

func TestPlanGate(t *testing.T) {
	fixture := newBillingFixture()

	active, err := fixture.service.HasActivePlan(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = fixture.service.OneTimePay(context.Background(), 1, "pi_unlock")
	require.NoError(t, err)

	active, err = fixture.service.HasActivePlan(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, active)

	subscribed, err := fixture.service.HasActiveSubscription(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, subscribed)

	require.NoError(t, fixture.service.ConsumeOneTime(context.Background(), 1))

	active, err = fixture.service.HasActivePlan(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, active)

	// Consuming with nothing active is a no-op.
	require.NoError(t, fixture.service.ConsumeOneTime(context.Background(), 1))
}

func TestCreatePaymentIntentPricesByType(t *testing.T) {
	fixture := newBillingFixture()

	secret, err := fixture.service.CreatePaymentIntent(context.Background(), 1, TypeOneTime)
	require.NoError(t, err)
	assert.Equal(t, "pi_secret_9900", secret)

	secret, err = fixture.service.CreatePaymentIntent(context.Background(), 1, TypeMonthly)
	require.NoError(t, err)
	assert.Equal(t, "pi_secret_4900", secret)

	// The customer minted on the first call is reused.
	assert.Len(t, fixture.gateway.customers, 1)
}

func TestPurgeUserDataCancelsProviderSubscription(t *testing.T) {
	fixture := newBillingFixture()

	payment, err := fixture.service.Subscribe(context.Background(), 1, "pm_good", TypeMonthly)
	require.NoError(t, err)

	require.NoError(t, fixture.service.PurgeUserData(context.Background(), 1))
	assert.Contains(t, fixture.gateway.canceled, payment.StripeID)
	assert.Empty(t, fixture.payments.rows)
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

const paymentColumns = "id, user_id, stripe_id, type, status, create_date, update_date"

// PostgresPaymentRepository implements [PaymentRepository] over the payments
// table.
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository constructs a [PostgresPaymentRepository].
func NewPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var payment Payment
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.StripeID,
		&payment.Type,
		&payment.Status,
		&payment.CreateDate,
		&payment.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (repository *PostgresPaymentRepository) findOne(ctx context.Context, query string, args ...any) (*Payment, error) {
	payment, err := scanPayment(repository.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Payment")
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_payment_repo_find_failed: %w", err)
	}
	return payment, nil
}

func (repository *PostgresPaymentRepository) FindActive(ctx context.Context, userID int64) (*Payment, error) {
	const query = "SELECT " + paymentColumns + ` FROM payments
		WHERE user_id = $1 AND status < 2
		ORDER BY id DESC LIMIT 1`
	return repository.findOne(ctx, query, userID)
}

func (repository *PostgresPaymentRepository) FindActiveSubscription(ctx context.Context, userID int64) (*Payment, error) {
	const query = "SELECT " + paymentColumns + ` FROM payments
		WHERE user_id = $1 AND status < 2 AND type > 0
		ORDER BY id DESC LIMIT 1`
	return repository.findOne(ctx, query, userID)
}

func (repository *PostgresPaymentRepository) FindActiveOneTime(ctx context.Context, userID int64) (*Payment, error) {
	const query = "SELECT " + paymentColumns + ` FROM payments
		WHERE user_id = $1 AND status < 2 AND type = 0`
	return repository.findOne(ctx, query, userID)
}

func (repository *PostgresPaymentRepository) FindOneTime(ctx context.Context, userID int64) (*Payment, error) {
	const query = "SELECT " + paymentColumns + ` FROM payments
		WHERE user_id = $1 AND type = 0`
	return repository.findOne(ctx, query, userID)
}

func (repository *PostgresPaymentRepository) FindSubscriptionByStripeID(ctx context.Context, userID int64, stripeID string) (*Payment, error) {
	const query = "SELECT " + paymentColumns + ` FROM payments
		WHERE user_id = $1 AND stripe_id = $2 AND type > 0`
	return repository.findOne(ctx, query, userID, stripeID)
}

func (repository *PostgresPaymentRepository) FindByStripeID(ctx context.Context, stripeID string) (*Payment, error) {
	const query = "SELECT " + paymentColumns + " FROM payments WHERE stripe_id = $1"
	return repository.findOne(ctx, query, stripeID)
}

func (repository *PostgresPaymentRepository) Create(ctx context.Context, payment *Payment) error {
	const query = `INSERT INTO payments (user_id, stripe_id, type, status, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`

	now := time.Now()
	err := repository.pool.QueryRow(ctx, query,
		payment.UserID,
		payment.StripeID,
		payment.Type,
		payment.Status,
		now,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("postgres_payment_repo_create_failed: %w", err)
	}

	payment.CreateDate = now
	payment.UpdateDate = now
	return nil
}

func (repository *PostgresPaymentRepository) Reset(ctx context.Context, paymentID int64, stripeID string) error {
	const query = `UPDATE payments SET stripe_id = $2, status = 0, update_date = $3 WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, paymentID, stripeID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_payment_repo_reset_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Payment")
	}

	return nil
}

func (repository *PostgresPaymentRepository) UpdateStatus(ctx context.Context, paymentID int64, status PaymentStatus) error {
	const query = "UPDATE payments SET status = $2, update_date = $3 WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, query, paymentID, status, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_payment_repo_status_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Payment")
	}

	return nil
}

func (repository *PostgresPaymentRepository) DeleteByUser(ctx context.Context, userID int64) error {
	const query = "DELETE FROM payments WHERE user_id = $1"

	if _, err := repository.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("postgres_payment_repo_delete_user_failed: %w", err)
	}

	return nil
}

// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package health

import (
	"context"
	"errors"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

// Outcome describes what an upsert did with one incoming sample.
type Outcome int

const (
	// OutcomeInserted means no row existed at the natural key.
	OutcomeInserted Outcome = iota
	// OutcomeUnchanged means a row existed and the sync left it alone.
	OutcomeUnchanged
	// OutcomeOverwritten means a row existed and force replaced it.
	OutcomeOverwritten
)

// upsert applies the shared sync semantics to one sample of any metric
// family:
//
//   - absent at the natural key  → insert
//   - present, not forced        → unchanged (idempotent re-sync)
//   - present, forced            → overwrite, row stamped edited
//
// The closures carry the family-specific storage calls so every kind shares
// exactly one decision procedure.
func upsert[T any](
	ctx context.Context,
	find func(context.Context) (*T, error),
	insert func(context.Context) error,
	overwrite func(context.Context, *T) error,
	force bool,
) (Outcome, error) {
	existing, err := find(ctx)

	switch {
	case err == nil && !force:
		return OutcomeUnchanged, nil

	case err == nil:
		if err := overwrite(ctx, existing); err != nil {
			return 0, err
		}
		return OutcomeOverwritten, nil

	case isNotFound(err):
		if err := insert(ctx); err != nil {
			return 0, err
		}
		return OutcomeInserted, nil

	default:
		return 0, err
	}
}

func isNotFound(err error) bool {
	var appError *apperr.AppError
	return errors.As(err, &appError) && appError.Code == "NOT_FOUND"
}

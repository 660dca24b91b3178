// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package mail

import (
	"context"
	"log/slog"
)

// Discard is the notifier used when SMTP is not configured. It logs what
// would have been sent so local development keeps a trace of mail flows.
type Discard struct {
	logger *slog.Logger
}

// NewDiscard constructs a [Discard] notifier.
func NewDiscard(logger *slog.Logger) *Discard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discard{logger: logger}
}

func (d *Discard) drop(ctx context.Context, kind, to string) {
	d.logger.DebugContext(ctx, "mail discarded", slog.String("kind", kind), slog.String("to", to))
}

func (d *Discard) SendActivationCode(ctx context.Context, to, _, _, _ string) {
	d.drop(ctx, "activation_code", to)
}

func (d *Discard) SendResetCode(ctx context.Context, to, _, _ string) {
	d.drop(ctx, "reset_code", to)
}

func (d *Discard) SendJoinNotice(ctx context.Context, _, email string) {
	d.drop(ctx, "join_notice", email)
}

func (d *Discard) SendPaymentNotice(ctx context.Context, to, _ string) {
	d.drop(ctx, "payment_notice", to)
}

func (d *Discard) SendSubscribeNotice(ctx context.Context, to, _, _ string) {
	d.drop(ctx, "subscribe_notice", to)
}

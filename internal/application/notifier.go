package application

import (
	"context"
	"log/slog"
)

// Notifier delivers committed state changes to subscribers. Delivery is
// at-most-once; services log publish failures and never return them.
type Notifier interface {
	Publish(ctx context.Context, change Change) error
}

// NopNotifier discards every change.
type NopNotifier struct{}

// Publish implements Notifier.
func (NopNotifier) Publish(context.Context, Change) error { return nil }

func publish(ctx context.Context, notifier Notifier, logger *slog.Logger, change Change) {
	if notifier == nil {
		return
	}
	if err := notifier.Publish(ctx, change); err != nil {
		logger.WarnContext(ctx, "failed to publish change",
			"change_kind", string(change.Kind),
			"change_id", change.ID,
			"error", err,
		)
	}
}

package worker

import (
	"context"
	"log/slog"

	audit "lotto/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. A failed
// append is logged and the worker moves on; audit delivery never blocks the
// lottery.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run returns when ctx is done or the inbox is closed and drained.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
				w.logger.WarnContext(ctx, "failed to persist audit event",
					"action", event.Action,
					"subject", event.Subject,
					"error", err,
				)
			}
		}
	}
}

package worker

import (
	"context"
	"log/slog"

	audit "kycreview/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. A failed
// write is logged and the worker moves on to the next event.
type Worker struct {
	store     audit.Appender
	inbox     <-chan audit.Event
	logger    *slog.Logger
	onFailure func(audit.Event, error)
}

type Option func(*Worker)

// WithFailureHook is called for every event the store failed to write.
func WithFailureHook(fn func(audit.Event, error)) Option {
	return func(w *Worker) { w.onFailure = fn }
}

func NewWorker(store audit.Appender, inbox <-chan audit.Event, logger *slog.Logger, opts ...Option) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{store: store, inbox: inbox, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run persists events until the inbox is closed and drained.
func (w *Worker) Run(ctx context.Context) {
	for event := range w.inbox {
		if err := w.store.Append(ctx, event); err != nil {
			w.logger.ErrorContext(ctx, "audit event dropped",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
			if w.onFailure != nil {
				w.onFailure(event, err)
			}
		}
	}
}

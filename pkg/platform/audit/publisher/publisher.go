// Package publisher emits review decisions to the audit trail.
//
// By default Emit writes synchronously and returns the store's error. With
// WithAsyncBuffer events are queued and written by a background worker; Close
// drains the queue.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "kycreview/pkg/platform/audit"
	"kycreview/pkg/platform/audit/worker"
	"kycreview/pkg/platform/sentinel"
)

// ErrBufferFull is returned by Emit when the async queue cannot take more events.
var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store   audit.Store
	writer  audit.Appender
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time

	bufferSize int
	mu         sync.RWMutex
	closed     bool
	inbox      chan audit.Event
	done       chan struct{}
}

type Option func(*Publisher)

// WithAsyncBuffer queues up to n events for background persistence.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) { p.bufferSize = n }
}

// WithWriter sends events to w instead of the store. The store then only
// serves reads, typically fed by a projector consuming what w wrote.
func WithWriter(w audit.Appender) Option {
	return func(p *Publisher) { p.writer = w }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		writer: store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(p.writer, p.inbox, p.logger, worker.WithFailureHook(func(audit.Event, error) {
			p.metrics.persistFailed()
		}))
		go func() {
			defer close(p.done)
			w.Run(context.Background())
		}()
	}
	return p
}

// Emit records event, filling its ID, timestamp and category when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event = event.Normalize(p.now())

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return sentinel.ErrClosed
	}
	if p.inbox == nil {
		if err := p.writer.Append(ctx, event); err != nil {
			p.metrics.persistFailed()
			return err
		}
		p.metrics.recorded(event.Action)
		return nil
	}
	select {
	case p.inbox <- event:
		p.metrics.recorded(event.Action)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.dropped()
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"subject", event.Subject,
		)
		return ErrBufferFull
	}
}

// List returns the decisions recorded for one KYC record.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

// Recent returns the latest decisions, newest first.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close stops accepting events and waits for queued ones to be written.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}

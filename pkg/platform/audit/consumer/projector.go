// Package consumer projects audit events from Kafka into a queryable store.
package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "kycreview/pkg/platform/audit"
	"kycreview/pkg/platform/audit/store/kafka"
)

// Fetcher is the subset of a *kgo.Client used by Projector. The client is
// expected to consume without a group, starting at the beginning of the
// topic, so every process rebuilds the full history into its own store.
type Fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
}

// batchAppender is implemented by stores that can write a batch atomically.
type batchAppender interface {
	AppendBatch(ctx context.Context, events []audit.Event) error
}

// Projector materializes audit records into a store. A poll is stored before
// the next one is fetched; malformed records are skipped.
type Projector struct {
	client  Fetcher
	store   audit.Appender
	logger  *slog.Logger
	backoff time.Duration
}

// NewProjector creates a projector reading from client into store.
func NewProjector(client Fetcher, store audit.Appender, logger *slog.Logger) *Projector {
	return &Projector{client: client, store: store, logger: logger, backoff: time.Second}
}

// Run polls until ctx is done or the client is closed.
func (p *Projector) Run(ctx context.Context) error {
	for {
		fetches := p.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			p.logger.WarnContext(ctx, "audit fetch error", "topic", topic, "partition", partition, "error", err)
		})

		var events []audit.Event
		fetches.EachRecord(func(rec *kgo.Record) {
			event, err := kafka.Decode(rec)
			if err != nil {
				p.logger.ErrorContext(ctx, "skipping malformed audit record",
					"topic", rec.Topic,
					"offset", rec.Offset,
					"key", string(rec.Key),
					"error", err,
				)
				return
			}
			events = append(events, event)
		})
		if len(events) == 0 {
			continue
		}
		if err := p.storeWithRetry(ctx, events); err != nil {
			return nil
		}
		p.logger.DebugContext(ctx, "audit events projected", "events", len(events))
	}
}

// storeWithRetry blocks until the batch is stored or ctx is done.
func (p *Projector) storeWithRetry(ctx context.Context, events []audit.Event) error {
	for {
		err := p.persist(ctx, events)
		if err == nil {
			return nil
		}
		p.logger.ErrorContext(ctx, "audit projection failed, retrying", "events", len(events), "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff):
		}
	}
}

func (p *Projector) persist(ctx context.Context, events []audit.Event) error {
	if b, ok := p.store.(batchAppender); ok {
		return b.AppendBatch(ctx, events)
	}
	for _, event := range events {
		if err := p.store.Append(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

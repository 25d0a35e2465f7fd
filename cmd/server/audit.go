package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	"kycreview/internal/platform/config"
	"kycreview/internal/platform/database"
	"kycreview/internal/platform/kafka"
	audit "kycreview/pkg/platform/audit"
	"kycreview/pkg/platform/audit/consumer"
	"kycreview/pkg/platform/audit/publisher"
	kafkasink "kycreview/pkg/platform/audit/store/kafka"
	auditmemory "kycreview/pkg/platform/audit/store/memory"
	auditpostgres "kycreview/pkg/platform/audit/store/postgres"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
)

// auditTrail is the decision log chosen by AUDIT_SINK. In kafka mode events
// are produced to the topic and a projector replays it from the start into
// the in-memory store that serves reads.
type auditTrail struct {
	publisher *publisher.Publisher
	projector *consumer.Projector
	closers   []func()
}

func newAuditTrail(ctx context.Context, cfg config.Audit, reg prometheus.Registerer, log *slog.Logger) (*auditTrail, error) {
	t := &auditTrail{}
	opts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
		publisher.WithAsyncBuffer(cfg.AsyncBuffer),
	}

	var store audit.Store
	switch cfg.Sink {
	case "", "memory":
		store = auditmemory.NewInMemoryStore()

	case "postgres":
		db, err := database.OpenPostgres(ctx, cfg.PostgresDSN, database.DefaultPool)
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, func() { closeDB(db, log) })
		pg := auditpostgres.New(db)
		if err := pg.Migrate(ctx); err != nil {
			t.Close()
			return nil, fmt.Errorf("migrate audit store: %w", err)
		}
		store = pg

	case "kafka":
		producer, err := kafka.NewClient(ctx, cfg.KafkaBrokers, kgo.DefaultProduceTopic(cfg.KafkaTopic))
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, producer.Close)
		if err := kafka.EnsureTopic(ctx, producer, cfg.KafkaTopic, auditTopicPartitions, auditTopicReplication); err != nil {
			t.Close()
			return nil, err
		}

		// No consumer group: the read side is process-local memory, so each
		// process replays the whole topic on start.
		reader, err := kafka.NewClient(ctx, cfg.KafkaBrokers,
			kgo.ConsumeTopics(cfg.KafkaTopic),
			kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		)
		if err != nil {
			t.Close()
			return nil, err
		}
		t.closers = append(t.closers, reader.Close)

		memory := auditmemory.NewInMemoryStore()
		store = memory
		t.projector = consumer.NewProjector(reader, memory, log)
		opts = append(opts, publisher.WithWriter(kafkasink.New(producer, cfg.KafkaTopic)))

	default:
		return nil, fmt.Errorf("unknown audit sink %q", cfg.Sink)
	}

	t.publisher = publisher.NewPublisher(store, opts...)
	return t, nil
}

// Close drains the publisher, then releases clients in reverse order.
func (t *auditTrail) Close() {
	if t.publisher != nil {
		t.publisher.Close()
	}
	for i := len(t.closers) - 1; i >= 0; i-- {
		t.closers[i]()
	}
	t.closers = nil
}

func closeDB(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("failed to close audit database", "error", err)
	}
}

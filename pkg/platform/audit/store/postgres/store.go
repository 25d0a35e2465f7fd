package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	audit "kycreview/pkg/platform/audit"
	txcontext "kycreview/pkg/platform/tx"
)

// Schema creates the decision table. Migrate applies it.
const Schema = `
CREATE TABLE IF NOT EXISTS kyc_review_decisions (
	id          UUID PRIMARY KEY,
	category    TEXT NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL,
	action      TEXT NOT NULL,
	subject     TEXT NOT NULL,
	decision    TEXT NOT NULL DEFAULT '',
	reasons     TEXT[] NOT NULL DEFAULT '{}',
	reason      TEXT NOT NULL DEFAULT '',
	actor_id    TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	client_ip   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS kyc_review_decisions_subject_idx ON kyc_review_decisions (subject);
CREATE INDEX IF NOT EXISTS kyc_review_decisions_timestamp_idx ON kyc_review_decisions (timestamp DESC);
`

// Store persists review decisions in PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the table and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts an audit event. Idempotent via ON CONFLICT DO NOTHING so
// redelivered events are stored once.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO kyc_review_decisions (
			id, category, timestamp, action, subject,
			decision, reasons, reason, actor_id, request_id, client_ip
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	reasons := event.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		event.Timestamp,
		event.Action,
		event.Subject,
		event.Decision,
		pq.Array(reasons),
		event.Reason,
		event.ActorID,
		event.RequestID,
		event.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// AppendBatch inserts events in one transaction.
func (s *Store) AppendBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		for _, event := range events {
			if err := s.Append(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

const selectColumns = `
	SELECT id, category, timestamp, action, subject,
		   decision, reasons, reason, actor_id, request_id, client_ip
	FROM kyc_review_decisions
`

// ListBySubject returns events for one KYC record, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`WHERE subject = $1 ORDER BY timestamp ASC`, subject)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

func (s *Store) scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	events := []audit.Event{}

	for rows.Next() {
		var (
			category string
			event    audit.Event
			reasons  []string
		)
		err := rows.Scan(
			&event.ID,
			&category,
			&event.Timestamp,
			&event.Action,
			&event.Subject,
			&event.Decision,
			pq.Array(&reasons),
			&event.Reason,
			&event.ActorID,
			&event.RequestID,
			&event.ClientIP,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if len(reasons) > 0 {
			event.Reasons = reasons
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}

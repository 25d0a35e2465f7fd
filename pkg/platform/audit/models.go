package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers review decisions with regulatory significance.
	// These require durable storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational visibility.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventKycApproved AuditEvent = "kyc_approved"
	EventKycRejected AuditEvent = "kyc_rejected"

	// EventDecisionFailed records a decision the authority refused.
	EventDecisionFailed AuditEvent = "kyc_decision_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventKycApproved:    CategoryCompliance,
	EventKycRejected:    CategoryCompliance,
	EventDecisionFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted after a reviewer acts on a KYC record. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// Subject is the KYC record id.
	Subject  string   `json:"subject"`
	Decision string   `json:"decision,omitempty"`
	Reasons  []string `json:"reasons,omitempty"`
	// Reason carries the authority's message for failed decisions.
	Reason    string `json:"reason,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
}

// Appender persists or forwards audit events.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// Store is a queryable audit event store.
type Store interface {
	Appender
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Normalize fills the ID, timestamp and category when unset.
func (e Event) Normalize(now time.Time) Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if e.Category == "" {
		e.Category = AuditEvent(e.Action).Category()
	}
	return e
}

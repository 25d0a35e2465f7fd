// Package kafka forwards audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "kycreview/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client used by Sink.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Sink produces each audit event as a JSON record keyed by event ID.
type Sink struct {
	producer Producer
	topic    string
}

// New creates a sink writing to topic.
func New(producer Producer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

// Append produces the event and waits for the broker acknowledgement.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := s.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Decode parses a record produced by Sink.
func Decode(rec *kgo.Record) (audit.Event, error) {
	var event audit.Event
	if err := json.Unmarshal(rec.Value, &event); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit record: %w", err)
	}
	return event, nil
}

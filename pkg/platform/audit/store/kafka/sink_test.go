package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "kycreview/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestSink_AppendProducesKeyedRecord(t *testing.T) {
	producer := &fakeProducer{}
	sink := New(producer, "kyc.review.decisions")
	event := audit.Event{
		ID:       uuid.New(),
		Category: audit.CategoryCompliance,
		Action:   string(audit.EventKycRejected),
		Subject:  "abc123",
		Reasons:  []string{"Blurry Image", "Expired Document"},
	}

	require.NoError(t, sink.Append(context.Background(), event))
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "kyc.review.decisions", rec.Topic)
	assert.Equal(t, event.ID.String(), string(rec.Key))

	decoded, err := Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, event.Reasons, decoded.Reasons)
	assert.Equal(t, event.Subject, decoded.Subject)
}

func TestSink_AppendReturnsProduceError(t *testing.T) {
	sink := New(&fakeProducer{err: errors.New("not leader")}, "topic")

	err := sink.Append(context.Background(), audit.Event{ID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not leader")
}

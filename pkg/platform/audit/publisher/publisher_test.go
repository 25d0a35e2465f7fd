package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "kycreview/pkg/platform/audit"
	"kycreview/pkg/platform/audit/store/memory"
	"kycreview/pkg/platform/sentinel"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	event := audit.Event{
		Subject: "abc123",
		Action:  string(audit.EventKycApproved),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventKycApproved), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	event := audit.Event{
		Subject: "abc123",
		Action:  string(audit.EventKycRejected),
		Reasons: []string{"Blurry Image"},
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, _ := pub.List(context.Background(), "abc123")
		return len(events) == 1
	}, time.Second, 10*time.Millisecond)

	events, err := pub.List(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, []string{"Blurry Image"}, events[0].Reasons)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Subject: "abc123",
			Action:  string(audit.EventKycApproved),
		})
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListBySubject(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{
				Subject: "abc123",
				Action:  string(audit.EventKycApproved),
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	err := pub.Emit(context.Background(), audit.Event{Subject: "abc123", Action: string(audit.EventKycApproved)})
	require.NoError(t, err)
	after := time.Now()

	events, err := pub.List(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, !events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.True(t, !events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	err := pub.Emit(context.Background(), audit.Event{
		Subject:   "abc123",
		Action:    string(audit.EventKycApproved),
		Timestamp: customTime,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_RecentIsNewestFirst(t *testing.T) {
	store := memory.NewInMemoryStore()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	pub := NewPublisher(store)
	defer pub.Close()

	for i, subject := range []string{"a", "b", "c"} {
		err := pub.Emit(context.Background(), audit.Event{
			Subject:   subject,
			Action:    string(audit.EventKycApproved),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recent, err := pub.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Subject)
	assert.Equal(t, "b", recent[1].Subject)
}

func TestPublisher_WriterReceivesEventsStoreServesReads(t *testing.T) {
	store := memory.NewInMemoryStore()
	writer := &recordingWriter{}
	pub := NewPublisher(store, WithWriter(writer))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Subject: "abc123", Action: string(audit.EventKycApproved)})
	require.NoError(t, err)

	assert.Len(t, writer.events, 1)
	events, err := pub.List(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Empty(t, events, "store is fed by the projector, not the publisher")
}

func TestPublisher_SyncWriteErrorReturned(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithWriter(&recordingWriter{err: errors.New("broker down")}))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Subject: "abc123", Action: string(audit.EventKycApproved)})
	assert.EqualError(t, err, "broker down")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Subject: "abc123", Action: string(audit.EventKycApproved)})
	assert.ErrorIs(t, err, sentinel.ErrClosed)
}

type recordingWriter struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (w *recordingWriter) Append(_ context.Context, event audit.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.events = append(w.events, event)
	return nil
}

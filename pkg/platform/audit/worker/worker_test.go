package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	audit "kycreview/pkg/platform/audit"
)

type flakyAppender struct {
	mu     sync.Mutex
	failOn string
	stored []string
}

func (a *flakyAppender) Append(_ context.Context, event audit.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if event.Subject == a.failOn {
		return errors.New("write failed")
	}
	a.stored = append(a.stored, event.Subject)
	return nil
}

func TestWorkerContinuesAfterFailure(t *testing.T) {
	store := &flakyAppender{failOn: "bad"}
	inbox := make(chan audit.Event, 3)
	var failed []string
	w := NewWorker(store, inbox, nil, WithFailureHook(func(e audit.Event, err error) {
		failed = append(failed, e.Subject)
	}))

	inbox <- audit.Event{Subject: "a"}
	inbox <- audit.Event{Subject: "bad"}
	inbox <- audit.Event{Subject: "b"}
	close(inbox)
	w.Run(context.Background())

	assert.Equal(t, []string{"a", "b"}, store.stored)
	assert.Equal(t, []string{"bad"}, failed)
}

package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// step feeds one call outcome to the breaker and states what it should report.
type step struct {
	fail       bool
	wantOpen   bool
	wantOpened bool
	wantClosed bool
}

func run(t *testing.T, b *Breaker, steps []step) {
	t.Helper()
	for i, s := range steps {
		var change Change
		if s.fail {
			var open bool
			open, change = b.RecordFailure()
			assert.Equal(t, s.wantOpen, open, "step %d: fallback", i)
		} else {
			var closed bool
			closed, change = b.RecordSuccess()
			assert.Equal(t, !s.wantOpen, closed, "step %d: primary", i)
		}
		assert.Equal(t, s.wantOpened, change.Opened, "step %d: opened", i)
		assert.Equal(t, s.wantClosed, change.Closed, "step %d: closed", i)
		assert.Equal(t, s.wantOpen, b.State() == StateOpen, "step %d: state", i)
	}
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		steps []step
	}{
		{
			name: "opens on the third consecutive failure",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				{fail: true},
				{fail: true},
				{fail: true, wantOpen: true, wantOpened: true},
				{fail: true, wantOpen: true},
			},
		},
		{
			name: "a success in between resets the failure count",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				{fail: true},
				{fail: true},
				{},
				{fail: true},
				{fail: true},
				{fail: true, wantOpen: true, wantOpened: true},
			},
		},
		{
			name: "closes after consecutive successes",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{fail: true, wantOpen: true, wantOpened: true},
				{wantOpen: true},
				{wantClosed: true},
			},
		},
		{
			name: "a failing probe restarts the success count",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{fail: true, wantOpen: true, wantOpened: true},
				{wantOpen: true},
				{fail: true, wantOpen: true},
				{wantOpen: true},
				{wantClosed: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, New("kyc-remote", tt.opts...), tt.steps)
		})
	}
}

func TestBreakerDefaults(t *testing.T) {
	b := New("kyc-remote")

	assert.Equal(t, "kyc-remote", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
	assert.True(t, b.Allow())

	for range 4 {
		b.RecordFailure()
	}
	assert.Equal(t, StateClosed, b.State())
	b.RecordFailure()
	assert.Equal(t, "open", b.State().String())
}

func TestBreakerCooldown(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("kyc-remote",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)

	b.RecordFailure()
	assert.False(t, b.Allow(), "open circuit rejects calls during cooldown")

	now = now.Add(9 * time.Second)
	assert.False(t, b.Allow())

	// A failed probe restarts the cooldown.
	now = now.Add(time.Second)
	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(10 * time.Second)
	assert.True(t, b.Allow())
	closed, change := b.RecordSuccess()
	assert.True(t, closed)
	assert.True(t, change.Closed)
	assert.True(t, b.Allow())
}

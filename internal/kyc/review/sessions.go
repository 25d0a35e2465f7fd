package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"kycreview/internal/kyc/store"
	"kycreview/pkg/platform/sentinel"
)

// NotificationKind is the tone of a notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
}

// Effects are the side effects a session produced since the last drain.
type Effects struct {
	Notifications []Notification `json:"notifications"`
	Redirect      string         `json:"redirect,omitempty"`
	Clipboard     []string       `json:"clipboard,omitempty"`
}

// outbox buffers a session's notifications, navigation and clipboard writes
// until the front end collects them.
type outbox struct {
	mu      sync.Mutex
	now     func() time.Time
	effects Effects
}

func (o *outbox) Success(message string) { o.push(NotifySuccess, message) }
func (o *outbox) Error(message string)   { o.push(NotifyError, message) }

func (o *outbox) push(kind NotificationKind, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.effects.Notifications = append(o.effects.Notifications, Notification{Kind: kind, Message: message, At: o.now()})
}

func (o *outbox) Navigate(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.effects.Redirect = path
}

func (o *outbox) WriteText(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.effects.Clipboard = append(o.effects.Clipboard, text)
	return nil
}

func (o *outbox) drain() Effects {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.effects
	if out.Notifications == nil {
		out.Notifications = []Notification{}
	}
	o.effects = Effects{}
	return out
}

// Session is one mounted detail view.
type Session struct {
	ID        string
	CreatedAt time.Time
	Workflow  *Workflow

	outbox      *outbox
	unsubscribe func()

	mu       sync.Mutex
	lastSeen time.Time
}

// CopyField copies the full value of a record identifier: "id", "user_id"
// or "customer_id". An identifier the record does not carry is not copied.
func (s *Session) CopyField(field string) error {
	rec := s.Workflow.Record()
	if rec == nil {
		return ErrNoRecord
	}
	var text string
	switch field {
	case "id":
		text = rec.ID
	case "user_id":
		text = rec.UserID
	case "customer_id":
		text = rec.CustomerID
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if text == "" {
		return fmt.Errorf("%w: %q", ErrEmptyField, field)
	}
	s.Workflow.Copy(text)
	return nil
}

// Drain returns and clears the buffered side effects.
func (s *Session) Drain() Effects {
	return s.outbox.drain()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Sessions is the registry of open detail views keyed by session ID.
type Sessions struct {
	store    RecordStore
	listPath string
	logger   *slog.Logger
	now      func() time.Time
	observe  func(open int)

	mu       sync.RWMutex
	sessions map[string]*Session
}

type SessionsOption func(*Sessions)

func WithSessionListPath(path string) SessionsOption {
	return func(s *Sessions) { s.listPath = path }
}

func WithSessionLogger(logger *slog.Logger) SessionsOption {
	return func(s *Sessions) { s.logger = logger }
}

func WithSessionClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

// WithSessionGauge reports the number of open sessions after every change.
func WithSessionGauge(observe func(open int)) SessionsOption {
	return func(s *Sessions) { s.observe = observe }
}

func NewSessions(st RecordStore, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		store:    st,
		listPath: DefaultListPath,
		logger:   slog.Default(),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open mounts a detail view for recordID. The session watches the record so
// invalidations refetch it while the session is open.
func (s *Sessions) Open(ctx context.Context, recordID string) *Session {
	now := s.now()
	box := &outbox{now: s.now}
	wf := NewWorkflow(recordID, s.store, Ports{Notifier: box, Navigator: box, Clipboard: box}, WithListPath(s.listPath))
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Workflow:  wf,
		outbox:    box,
		lastSeen:  now,
	}
	sess.unsubscribe = s.store.WatchRecord(recordID, func(rs store.RecordState) {
		if rs.IsSuccess {
			wf.SetRecord(rs.Record)
		}
	})

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	s.report(n)

	s.logger.DebugContext(ctx, "review session opened", "session_id", sess.ID, "kyc_id", recordID)
	return sess
}

// Get returns the session and marks it as used.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Close unmounts the session and stops watching its record.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return sentinel.ErrNotFound
	}
	sess.unsubscribe()
	s.report(n)
	return nil
}

// Expire closes sessions idle for longer than maxIdle and returns how many
// were closed.
func (s *Sessions) Expire(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	var stale []string
	s.mu.RLock()
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	closed := 0
	for _, id := range stale {
		if s.Close(id) == nil {
			closed++
		}
	}
	return closed
}

// CloseAll unmounts every session.
func (s *Sessions) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	for _, id := range ids {
		_ = s.Close(id)
	}
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Sessions) report(n int) {
	if s.observe != nil {
		s.observe(n)
	}
}

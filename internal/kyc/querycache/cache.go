// Package querycache is a tag-invalidated, in-memory cache of remote query
// results with per-entry subscriptions.
//
// Reads are served from memory until an entry is invalidated. Invalidating a
// tag marks every entry carrying it stale; entries that currently have
// subscribers are refetched straight away and their observers notified,
// the rest are refetched on their next read. Concurrent fetches of the same
// key share one call to the authority unless an invalidation landed between
// them: a fetch started before an invalidation never marks the entry fresh
// and is never joined by a fetch started after it.
package querycache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var errNoFetch = errors.New("querycache: query has no fetch function")

const (
	originLocal  = "local"
	originRemote = "remote"
)

// Publisher fans local invalidations out to peer processes.
type Publisher interface {
	Publish(ctx context.Context, tags []Tag) error
}

type entry struct {
	query     Query
	data      any
	err       error
	inflight  int
	stale     bool
	fetchedAt time.Time
	subs      map[uint64]func(Snapshot)

	// gen counts invalidations. dataGen is the generation the current data
	// was fetched in.
	gen     uint64
	dataGen uint64
}

func (e *entry) snapshot() Snapshot {
	hasData := !e.fetchedAt.IsZero()
	return Snapshot{
		Key:        e.query.Key,
		Data:       e.data,
		Err:        e.err,
		IsLoading:  e.inflight > 0 && !hasData,
		IsFetching: e.inflight > 0,
		IsSuccess:  hasData && e.err == nil,
		IsError:    e.err != nil,
		Stale:      e.stale,
		FetchedAt:  e.fetchedAt,
	}
}

func (e *entry) observers() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		out = append(out, fn)
	}
	return out
}

// Cache holds query results keyed by Key.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	nextSub uint64

	group     singleflight.Group
	publisher Publisher
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
	maxAge    time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithPublisher broadcasts local invalidations to other processes.
func WithPublisher(p Publisher) Option {
	return func(c *Cache) { c.publisher = p }
}

// WithMaxAge treats entries older than d as stale. Zero keeps entries until
// they are invalidated.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) { c.maxAge = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]*entry),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns the cached result for q when it is fresh, otherwise fetches
// it. A failed fetch keeps the previous data in the returned snapshot.
func (c *Cache) Query(ctx context.Context, q Query) Snapshot {
	c.mu.Lock()
	e := c.entryFor(q)
	if c.fresh(e) {
		snap := e.snapshot()
		c.mu.Unlock()
		c.metrics.hit(q.Key.Endpoint)
		return snap
	}
	c.mu.Unlock()

	c.metrics.miss(q.Key.Endpoint)
	return c.fetch(ctx, q.Key, e)
}

// Subscribe registers fn to receive the entry's snapshot after every fetch
// of q settles and while a fetch is in flight. The returned func removes the
// subscription and is safe to call more than once.
func (c *Cache) Subscribe(q Query, fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	e := c.entryFor(q)
	c.nextSub++
	id := c.nextSub
	e.subs[id] = fn
	c.mu.Unlock()
	c.metrics.subscribers(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(e.subs, id)
			c.mu.Unlock()
			c.metrics.subscribers(-1)
		})
	}
}

// Invalidate marks every entry tagged with any of tags stale and refetches
// the subscribed ones before returning. The invalidation is also published to
// peer processes when a publisher is configured.
func (c *Cache) Invalidate(ctx context.Context, tags ...Tag) {
	if len(tags) == 0 {
		return
	}
	c.metrics.invalidated(tags, originLocal)
	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, tags); err != nil {
			c.logger.WarnContext(ctx, "failed to publish cache invalidation", "tags", tags, "error", err)
		}
	}
	c.invalidate(ctx, tags)
}

// ApplyRemote applies an invalidation received from a peer without
// publishing it again.
func (c *Cache) ApplyRemote(ctx context.Context, tags ...Tag) {
	if len(tags) == 0 {
		return
	}
	c.metrics.invalidated(tags, originRemote)
	c.invalidate(ctx, tags)
}

func (c *Cache) invalidate(ctx context.Context, tags []Tag) {
	c.mu.Lock()
	refetch := make(map[Key]*entry)
	for key, e := range c.entries {
		if !e.query.hasTag(tags) {
			continue
		}
		e.stale = true
		e.gen++
		if len(e.subs) > 0 {
			refetch[key] = e
		}
	}
	c.mu.Unlock()

	var g errgroup.Group
	for key, e := range refetch {
		g.Go(func() error {
			c.fetch(ctx, key, e)
			return nil
		})
	}
	_ = g.Wait()
}

// entryFor returns the entry for q, creating it if needed. The latest fetch
// function wins. Caller holds c.mu.
func (c *Cache) entryFor(q Query) *entry {
	e, ok := c.entries[q.Key]
	if !ok {
		e = &entry{query: q, subs: make(map[uint64]func(Snapshot))}
		c.entries[q.Key] = e
		return e
	}
	if q.Fetch != nil {
		e.query = q
	}
	return e
}

// fresh reports whether e can be served without a fetch. Caller holds c.mu.
func (c *Cache) fresh(e *entry) bool {
	if e.query.NoStore || e.stale || e.fetchedAt.IsZero() || e.err != nil {
		return false
	}
	if c.maxAge > 0 && c.now().Sub(e.fetchedAt) > c.maxAge {
		return false
	}
	return true
}

// fetch loads e from the authority. Callers in the same generation share one
// call. A result older than the data already stored is dropped, and a result
// fetched before the latest invalidation leaves the entry stale.
func (c *Cache) fetch(ctx context.Context, key Key, e *entry) Snapshot {
	c.mu.Lock()
	gen := e.gen
	c.mu.Unlock()

	flight := key.String() + "#" + strconv.FormatUint(gen, 10)
	v, _, _ := c.group.Do(flight, func() (any, error) {
		c.mu.Lock()
		e.inflight++
		fetchFn := e.query.Fetch
		snap, subs := e.snapshot(), e.observers()
		c.mu.Unlock()
		notify(subs, snap)

		if fetchFn == nil {
			fetchFn = func(context.Context) (any, error) { return nil, errNoFetch }
		}

		start := time.Now()
		data, err := fetchFn(ctx)
		c.metrics.fetched(key.Endpoint, err, time.Since(start))

		c.mu.Lock()
		e.inflight--
		if gen >= e.dataGen {
			if err != nil {
				e.err = err
			} else {
				e.data = data
				e.err = nil
				e.dataGen = gen
				e.fetchedAt = c.now()
			}
		}
		e.stale = e.dataGen != e.gen
		snap, subs = e.snapshot(), e.observers()
		c.mu.Unlock()

		if err != nil {
			c.logger.DebugContext(ctx, "query fetch failed", "key", key.String(), "error", err)
		}
		notify(subs, snap)
		return snap, nil
	})
	return v.(Snapshot)
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

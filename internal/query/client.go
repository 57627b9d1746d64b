// Package query is a keyed result cache with freshness windows, request
// coalescing and explicit invalidation.
package query

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Options controls one query family.
type Options struct {
	// StaleTime is how long a stored result is served without refetching.
	// Zero means every call refetches, though concurrent calls still share one fetch.
	StaleTime time.Duration
	// Retry is the number of extra attempts after a failed fetch.
	Retry int
	// ShouldRetry filters which errors are retried. Nil retries all.
	ShouldRetry func(error) bool
	// Backoff returns the delay before retry n (starting at 0).
	Backoff func(n int) time.Duration
}

// DefaultBackoff doubles from one second up to thirty.
func DefaultBackoff(n int) time.Duration {
	d := time.Second << n
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type entry struct {
	key       Key
	value     any
	hasValue  bool
	fetchedAt time.Time
	stale     bool
	gen       uint64
}

// Client holds every cached entry of one daemon.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	group   singleflight.Group

	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
	metrics *Metrics
	log     *zap.Logger
}

// NewClient creates an empty cache. metrics may be nil.
func NewClient(metrics *Metrics, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		entries: make(map[string]*entry),
		now:     time.Now,
		sleep:   sleepCtx,
		metrics: metrics,
		log:     log,
	}
}

// Invalidate marks every entry under prefix stale. A fetch already in flight
// for such an entry still answers its waiters but is not stored.
func (c *Client) Invalidate(prefix Key) int {
	c.mu.Lock()
	n := 0
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.stale = true
			e.gen = c.nextGen()
			n++
		}
	}
	c.mu.Unlock()
	c.metrics.invalidated(prefix.Family(), n)
	c.log.Debug("query invalidated", zap.String("family", prefix.Family()), zap.Int("entries", n))
	return n
}

// Remove drops every entry under prefix.
func (c *Client) Remove(prefix Key) int {
	c.mu.Lock()
	n := 0
	for id, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, id)
			n++
		}
	}
	c.mu.Unlock()
	c.metrics.invalidated(prefix.Family(), n)
	return n
}

// Len returns the number of entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// nextGen returns a fresh generation. Caller holds mu.
func (c *Client) nextGen() uint64 {
	c.seq++
	return c.seq
}

// lookup returns a fresh value, or the entry and generation a fetch must use.
func (c *Client) lookup(key Key, staleTime time.Duration) (any, bool, *entry, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := key.id()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: append(Key(nil), key...), gen: c.nextGen()}
		c.entries[id] = e
	}
	if e.hasValue && !e.stale && c.now().Sub(e.fetchedAt) < staleTime {
		return e.value, true, nil, 0
	}
	return nil, false, e, e.gen
}

// store saves v if e is still current and no invalidation happened since gen.
func (c *Client) store(e *entry, gen uint64, v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[e.key.id()] != e || e.gen != gen {
		return false
	}
	e.value = v
	e.hasValue = true
	e.fetchedAt = c.now()
	e.stale = false
	return true
}

// Query is a typed view over the Client for one result type.
type Query[T any] struct {
	c    *Client
	opts Options
}

// New binds a result type and options to c.
func New[T any](c *Client, opts Options) *Query[T] {
	if opts.Backoff == nil {
		opts.Backoff = DefaultBackoff
	}
	return &Query[T]{c: c, opts: opts}
}

// Fetch returns the cached result for key while fresh, otherwise runs fn.
// Concurrent callers for the same key share one fn call. Cancelling ctx
// abandons only this caller's wait; the fetch completes and is stored.
func (q *Query[T]) Fetch(ctx context.Context, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	family := key.Family()

	cached, ok, e, gen := q.c.lookup(key, q.opts.StaleTime)
	if ok {
		q.c.metrics.lookup(family, "fresh")
		return cached.(T), nil
	}

	flight := key.id() + "\x1e" + strconv.FormatUint(gen, 10)
	detached := context.WithoutCancel(ctx)
	ch := q.c.group.DoChan(flight, func() (any, error) {
		v, err := q.run(detached, family, fn)
		q.c.metrics.fetched(family, err)
		if err != nil {
			return nil, err
		}
		if !q.c.store(e, gen, v) {
			q.c.log.Debug("discarding result of invalidated fetch", zap.String("family", family))
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			q.c.metrics.lookup(family, "shared")
		} else {
			q.c.metrics.lookup(family, "fetch")
		}
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (q *Query[T]) run(ctx context.Context, family string, fn func(context.Context) (T, error)) (v T, err error) {
	for attempt := 0; ; attempt++ {
		v, err = safeCall(ctx, fn)
		if err == nil || attempt >= q.opts.Retry {
			return v, err
		}
		if q.opts.ShouldRetry != nil && !q.opts.ShouldRetry(err) {
			return v, err
		}
		q.c.metrics.retried(family)
		q.c.log.Debug("retrying fetch", zap.String("family", family), zap.Int("attempt", attempt+1), zap.Error(err))
		if serr := q.c.sleep(ctx, q.opts.Backoff(attempt)); serr != nil {
			return v, err
		}
	}
}

func safeCall[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("query panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

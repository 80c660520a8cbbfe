package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wasif-raza/mockify-cli/pkg/logging"
)

// DefaultStaleTime is how long a fetched value stays fresh.
const DefaultStaleTime = 5 * time.Minute

// Key identifies a cached value. Segments are compared exactly.
type Key []string

// K builds a Key from segments of any printable type.
func K(segments ...any) Key {
	k := make(Key, len(segments))
	for i, s := range segments {
		k[i] = fmt.Sprint(s)
	}
	return k
}

func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether prefix's segments lead k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key       Key
	value     any
	fetchedAt time.Time
	stale     bool
}

// Cache is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	epoch     uint64
	staleTime time.Duration
	now       func() time.Time
	logger    *slog.Logger

	flights singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime sets how long values stay fresh. Zero means every Fetch
// goes to the source.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.staleTime = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger for cache events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[string]*entry),
		staleTime: DefaultStaleTime,
		now:       time.Now,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value cached under key if it is fresh.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || !c.fresh(e) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key as freshly fetched.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	c.entries[key.String()] = &entry{key: key, value: value, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate marks every entry under prefix stale. An empty prefix matches
// all entries.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	n := 0
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.stale = true
			n++
		}
	}
	c.logger.Debug("cache invalidated", "prefix", prefix.String(), "entries", n)
}

// Remove drops every entry under prefix.
func (c *Cache) Remove(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for k, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, k)
		}
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.Remove(nil)
}

// Len returns the number of entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Callers hold c.mu.
func (c *Cache) fresh(e *entry) bool {
	return !e.stale && c.now().Sub(e.fetchedAt) < c.staleTime
}

// store records a fetched value. A value whose fetch overlapped an
// invalidation is stored stale.
func (c *Cache) store(key Key, value any, startEpoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.String()] = &entry{
		key:       key,
		value:     value,
		fetchedAt: c.now(),
		stale:     c.epoch != startEpoch,
	}
}

func (c *Cache) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Fetch returns the fresh value under key, or calls fn, caches its result and
// returns it. Errors are not cached. Concurrent Fetches of one key share a
// single fn call.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	ch := c.flights.DoChan(key.String(), func() (any, error) {
		epoch := c.currentEpoch()
		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, v, epoch)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		t, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cached value for %s has type %T", key, res.Val)
		}
		return t, nil
	}
}

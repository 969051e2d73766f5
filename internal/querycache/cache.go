// Package querycache is a keyed read-through cache for remote query results.
//
// Keys form a hierarchy separated by "/": an operation given the prefix
// "tasks" applies to "tasks" and every "tasks/..." key. Each entry remembers
// the fetcher that last filled it so Invalidate can re-read it in the
// background.
//
// Every successful write bumps the entry's version. Reads started before a
// write never overwrite it, and Restore only succeeds against the version the
// caller wrote, which is what an optimistic update needs for rollback.
package querycache

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Fetch after Close.
var ErrClosed = errors.New("querycache: closed")

// Fetcher reads the current value of a key from the source of truth.
type Fetcher[T any] func(ctx context.Context) (T, error)

type flight[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	value  T
	err    error
	// dropped is set when the result must not be used: the read was
	// cancelled or the entry was written while it ran.
	dropped bool
}

type entry[T any] struct {
	value   T
	has     bool
	stale   bool
	version uint64
	flight  *flight[T]
	fetch   Fetcher[T]
}

// Cache holds values of type T by key. It is safe for concurrent use.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	clock   uint64
	closed  bool

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
	log  logrus.FieldLogger
}

// New returns an empty cache. Failed background refreshes are logged to log;
// a nil log discards them.
func New[T any](log logrus.FieldLogger) *Cache[T] {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	base, stop := context.WithCancel(context.Background())
	return &Cache[T]{
		entries: make(map[string]*entry[T]),
		base:    base,
		stop:    stop,
		log:     log,
	}
}

// Match reports whether key lies under prefix. The empty prefix matches
// every key.
func Match(key, prefix string) bool {
	return prefix == "" || key == prefix || strings.HasPrefix(key, prefix+"/")
}

func (c *Cache[T]) entry(key string) *entry[T] {
	e, ok := c.entries[key]
	if !ok {
		e = &entry[T]{}
		c.entries[key] = e
	}
	return e
}

// Fetch returns the fresh cached value for key, joins a read already in
// flight, or starts one with fetch. ctx only bounds the wait; the read itself
// keeps going for other waiters and ends up in the cache.
func (c *Cache[T]) Fetch(ctx context.Context, key string, fetch Fetcher[T]) (T, error) {
	var zero T
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return zero, ErrClosed
		}
		e := c.entry(key)
		e.fetch = fetch
		if e.has && !e.stale {
			v := e.value
			c.mu.Unlock()
			return v, nil
		}
		f := e.flight
		if f == nil {
			f = c.start(key, e, fetch)
		}
		c.mu.Unlock()

		select {
		case <-f.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		if f.dropped {
			continue
		}
		return f.value, f.err
	}
}

// start launches a read for e. c.mu must be held.
func (c *Cache[T]) start(key string, e *entry[T], fetch Fetcher[T]) *flight[T] {
	ctx, cancel := context.WithCancel(c.base)
	f := &flight[T]{cancel: cancel, done: make(chan struct{})}
	e.flight = f
	startVersion := e.version

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		v, err := fetch(ctx)

		c.mu.Lock()
		f.value, f.err = v, err
		switch {
		case e.flight != f:
			// cancelled; dropped was set by CancelPendingReads
		case e.version != startVersion:
			e.flight = nil
			f.dropped = true
		case err != nil:
			e.flight = nil
			c.log.WithError(err).WithField("key", key).Warn("query refresh failed")
		default:
			e.flight = nil
			c.clock++
			e.value, e.has, e.stale, e.version = v, true, false, c.clock
		}
		c.mu.Unlock()
		close(f.done)
	}()
	return f
}

// Read returns the cached value for key, fresh or stale.
func (c *Cache[T]) Read(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.has {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Write stores v as the fresh value for key and returns the new version.
func (c *Cache[T]) Write(key string, v T) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(key)
	c.clock++
	e.value, e.has, e.stale, e.version = v, true, false, c.clock
	return e.version
}

// Restore writes v only if key still holds the given version. It reports
// whether the write happened.
func (c *Cache[T]) Restore(key string, version uint64, v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.version != version {
		return false
	}
	c.clock++
	e.value, e.has, e.version = v, true, c.clock
	return true
}

// Update replaces the current value of key with fn's result when fn reports
// a change. The write bumps the version like Write but keeps the entry's
// staleness. It reports whether a write happened.
func (c *Cache[T]) Update(key string, fn func(T) (T, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.has {
		return false
	}
	v, changed := fn(e.value)
	if !changed {
		return false
	}
	c.clock++
	e.value, e.version = v, c.clock
	return true
}

// CancelPendingReads cancels every read in flight under prefix. Their results
// are discarded. It returns how many reads were cancelled.
func (c *Cache[T]) CancelPendingReads(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if !Match(key, prefix) || e.flight == nil {
			continue
		}
		e.flight.dropped = true
		e.flight.cancel()
		e.flight = nil
		n++
	}
	return n
}

// Invalidate marks every entry under prefix stale and re-reads it in the
// background with its last fetcher. Stale values stay readable until the
// refresh lands.
func (c *Cache[T]) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if !Match(key, prefix) {
			continue
		}
		e.stale = true
		if !c.closed && e.fetch != nil && e.flight == nil {
			c.start(key, e, e.fetch)
		}
	}
}

// MarkStale marks every entry under prefix stale without starting a read.
// The next Fetch of a stale key reads it again.
func (c *Cache[T]) MarkStale(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if Match(key, prefix) && e.has {
			e.stale = true
		}
	}
}

// Keys returns the cached keys under prefix that hold a value, sorted.
func (c *Cache[T]) Keys(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for key, e := range c.entries {
		if e.has && Match(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Stale reports whether key holds a value that is waiting for a refresh.
func (c *Cache[T]) Stale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.stale
}

// Wait blocks until no read is in flight.
func (c *Cache[T]) Wait() {
	c.wg.Wait()
}

// Close cancels all reads and waits for them to return.
func (c *Cache[T]) Close() {
	c.mu.Lock()
	c.closed = true
	for _, e := range c.entries {
		if e.flight != nil {
			e.flight.dropped = true
			e.flight = nil
		}
	}
	c.mu.Unlock()
	c.stop()
	c.wg.Wait()
}

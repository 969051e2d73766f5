package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// gate is a fetcher that blocks until released and records how often it ran.
type gate struct {
	calls   atomic.Int32
	started chan struct{}
	release chan string
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 8), release: make(chan string, 8)}
}

func (g *gate) fetch(ctx context.Context) (string, error) {
	g.calls.Add(1)
	g.started <- struct{}{}
	select {
	case v := <-g.release:
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func static(v string, calls *atomic.Int32) Fetcher[string] {
	return func(context.Context) (string, error) {
		calls.Add(1)
		return v, nil
	}
}

func waitStarted(t *testing.T, g *gate) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetcher never started")
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		key, prefix string
		want        bool
	}{
		{"tasks", "tasks", true},
		{"tasks/list=a", "tasks", true},
		{"tasks/list=a", "", true},
		{"tasksx", "tasks", false},
		{"lists", "tasks", false},
		{"tasks", "tasks/list=a", false},
	}
	for _, tt := range tests {
		if got := Match(tt.key, tt.prefix); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.key, tt.prefix, got, tt.want)
		}
	}
}

func TestFetchCachesValue(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		got, err := c.Fetch(context.Background(), "tasks", static("v1", &calls))
		if err != nil || got != "v1" {
			t.Fatalf("Fetch() = %q, %v; want v1", got, err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("fetcher ran %d times, want 1", n)
	}
}

func TestFetchJoinsInFlightRead(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	g := newGate()

	var wg sync.WaitGroup
	results := make([]string, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Fetch(context.Background(), "tasks", g.fetch)
		}(i)
	}
	waitStarted(t, g)
	// Give the other callers time to join before releasing.
	time.Sleep(20 * time.Millisecond)
	g.release <- "shared"
	wg.Wait()

	if n := g.calls.Load(); n != 1 {
		t.Errorf("fetcher ran %d times, want 1", n)
	}
	for i, r := range results {
		if r != "shared" {
			t.Errorf("results[%d] = %q, want shared", i, r)
		}
	}
}

func TestFetchError(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	boom := errors.New("boom")

	_, err := c.Fetch(context.Background(), "tasks", func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Fetch() error = %v, want boom", err)
	}
	if _, ok := c.Read("tasks"); ok {
		t.Error("Read() found a value after a failed fetch")
	}
}

func TestFetchContextOnlyBoundsWait(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	g := newGate()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, "tasks", g.fetch)
		done <- err
	}()
	waitStarted(t, g)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}

	g.release <- "late"
	c.Wait()
	if got, ok := c.Read("tasks"); !ok || got != "late" {
		t.Errorf("Read() = %q, %v; want late", got, ok)
	}
}

func TestCancelPendingReadsDiscardsResult(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	g := newGate()

	done := make(chan string, 1)
	go func() {
		v, _ := c.Fetch(context.Background(), "tasks/list=a", g.fetch)
		done <- v
	}()
	waitStarted(t, g)

	if n := c.CancelPendingReads("tasks"); n != 1 {
		t.Fatalf("CancelPendingReads() = %d, want 1", n)
	}
	c.Write("tasks/list=a", "optimistic")
	// A read restarted before the write is dropped as well.
	g.release <- "stale"

	if got := <-done; got != "optimistic" {
		t.Errorf("waiter got %q, want optimistic", got)
	}
	c.Wait()
	if got, _ := c.Read("tasks/list=a"); got != "optimistic" {
		t.Errorf("Read() = %q, want optimistic", got)
	}
}

func TestWriteWinsOverOlderRead(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	g := newGate()

	done := make(chan string, 1)
	go func() {
		v, _ := c.Fetch(context.Background(), "tasks", g.fetch)
		done <- v
	}()
	waitStarted(t, g)

	c.Write("tasks", "written")
	g.release <- "old"

	if got := <-done; got != "written" {
		t.Errorf("waiter got %q, want written", got)
	}
	if got, _ := c.Read("tasks"); got != "written" {
		t.Errorf("Read() = %q, want written", got)
	}
}

func TestRestoreIsVersionGuarded(t *testing.T) {
	c := New[string](nil)
	defer c.Close()

	first := c.Write("tasks", "a")
	second := c.Write("tasks", "b")

	if c.Restore("tasks", first, "old") {
		t.Error("Restore() with an outdated version succeeded")
	}
	if got, _ := c.Read("tasks"); got != "b" {
		t.Errorf("Read() = %q, want b", got)
	}
	if !c.Restore("tasks", second, "old") {
		t.Error("Restore() with the current version failed")
	}
	if got, _ := c.Read("tasks"); got != "old" {
		t.Errorf("Read() = %q, want old", got)
	}
	if c.Restore("missing", 1, "x") {
		t.Error("Restore() on a missing key succeeded")
	}
}

func TestUpdateRewritesCurrentValue(t *testing.T) {
	c := New[string](nil)
	defer c.Close()

	first := c.Write("tasks", "a")
	if !c.Update("tasks", func(v string) (string, bool) { return v + "b", true }) {
		t.Fatal("Update() on a cached key reported no write")
	}
	if got, _ := c.Read("tasks"); got != "ab" {
		t.Errorf("Read() = %q, want ab", got)
	}
	if c.Restore("tasks", first, "old") {
		t.Error("Restore() succeeded with the version from before Update")
	}
	if c.Update("tasks", func(v string) (string, bool) { return "ignored", false }) {
		t.Error("Update() wrote although fn reported no change")
	}
	if got, _ := c.Read("tasks"); got != "ab" {
		t.Errorf("Read() = %q after an unchanged Update, want ab", got)
	}
	if c.Update("missing", func(v string) (string, bool) { return "x", true }) {
		t.Error("Update() on a missing key succeeded")
	}
}

func TestUpdateDropsOlderRead(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	g := newGate()

	c.Write("tasks", "a")
	c.MarkStale("tasks")
	done := make(chan string, 1)
	go func() {
		v, _ := c.Fetch(context.Background(), "tasks", g.fetch)
		done <- v
	}()
	waitStarted(t, g)
	c.Update("tasks", func(v string) (string, bool) { return "b", true })
	g.release <- "from server"
	g.release <- "second read"

	// The first read is dropped and Fetch retries against the stale entry.
	if got := <-done; got != "second read" {
		t.Errorf("Fetch() = %q, want the retried read", got)
	}
}

func TestMarkStaleDoesNotFetch(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	var calls atomic.Int32
	fetch := static("fresh", &calls)

	if _, err := c.Fetch(context.Background(), "tasks/list=a", fetch); err != nil {
		t.Fatal(err)
	}
	c.Write("lists", "l")
	c.MarkStale("tasks")
	c.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("fetcher ran %d times after MarkStale, want 1", n)
	}
	if !c.Stale("tasks/list=a") {
		t.Error("tasks/list=a not stale after MarkStale")
	}
	if c.Stale("lists") {
		t.Error("lists marked stale by a tasks prefix")
	}
	if got, ok := c.Read("tasks/list=a"); !ok || got != "fresh" {
		t.Errorf("Read() = %q, %v; stale value should stay readable", got, ok)
	}
	if _, err := c.Fetch(context.Background(), "tasks/list=a", fetch); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("fetcher ran %d times, want a re-read on the next Fetch", n)
	}
	if c.Stale("tasks/list=a") {
		t.Error("entry still stale after the re-read")
	}
}

func TestInvalidateRefetches(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	var calls atomic.Int32
	value := atomic.Value{}
	value.Store("v1")
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		return value.Load().(string), nil
	}

	if _, err := c.Fetch(context.Background(), "tasks/list=a", fetch); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Fetch(context.Background(), "lists", fetch); err != nil {
		t.Fatal(err)
	}
	value.Store("v2")

	c.Invalidate("tasks")
	c.Wait()

	if got, _ := c.Read("tasks/list=a"); got != "v2" {
		t.Errorf("Read(tasks/list=a) = %q, want v2", got)
	}
	if got, _ := c.Read("lists"); got != "v1" {
		t.Errorf("Read(lists) = %q, want v1 (not under prefix)", got)
	}
	if c.Stale("tasks/list=a") {
		t.Error("entry still stale after refresh")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("fetcher ran %d times, want 3", n)
	}
}

func TestKeys(t *testing.T) {
	c := New[string](nil)
	defer c.Close()
	c.Write("tasks/list=b", "x")
	c.Write("tasks", "x")
	c.Write("tasks/list=a", "x")
	c.Write("tags", "x")

	got := c.Keys("tasks")
	want := []string{"tasks", "tasks/list=a", "tasks/list=b"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClose(t *testing.T) {
	c := New[string](nil)
	g := newGate()

	done := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background(), "tasks", g.fetch)
		done <- err
	}()
	waitStarted(t, g)
	c.Close()

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("Fetch() during Close error = %v, want ErrClosed", err)
	}
	if _, err := c.Fetch(context.Background(), "tasks", g.fetch); !errors.Is(err, ErrClosed) {
		t.Errorf("Fetch() after Close error = %v, want ErrClosed", err)
	}
}

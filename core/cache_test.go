package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingFetcher[T any] struct {
	calls atomic.Int32
	value T
	err   error
}

func (f *countingFetcher[T]) Fetch(context.Context) (T, error) {
	f.calls.Add(1)
	if f.err != nil {
		var zero T
		return zero, f.err
	}
	return f.value, nil
}

type recordingMetrics struct {
	hits, misses, stale, errs atomic.Int32
}

func (m *recordingMetrics) Hit()         { m.hits.Add(1) }
func (m *recordingMetrics) Miss()        { m.misses.Add(1) }
func (m *recordingMetrics) StaleServed() { m.stale.Add(1) }
func (m *recordingMetrics) FetchError()  { m.errs.Add(1) }

func newTestCache[T any](clock *fakeClock) *Cache[T] {
	return NewCache[T](CacheConfig{Now: clock.Now})
}

func TestCache_MissInvokesFetcherOnce(t *testing.T) {
	cache := newTestCache[string](newFakeClock())
	fetcher := &countingFetcher[string]{value: "payload"}

	got, err := cache.Get(context.Background(), "jobs:1:10:x", fetcher.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestCache_Freshness(t *testing.T) {
	tests := []struct {
		name      string
		ttl       time.Duration
		elapsed   time.Duration
		wantValue string
		wantCalls int32
	}{
		{
			name:      "within ttl returns cached payload",
			ttl:       time.Minute,
			elapsed:   59 * time.Second,
			wantValue: "first",
			wantCalls: 0,
		},
		{
			name:      "exactly ttl is stale",
			ttl:       time.Minute,
			elapsed:   time.Minute,
			wantValue: "second",
			wantCalls: 1,
		},
		{
			name:      "past ttl refetches",
			ttl:       time.Minute,
			elapsed:   2 * time.Minute,
			wantValue: "second",
			wantCalls: 1,
		},
		{
			name:      "zero ttl is always stale",
			ttl:       0,
			elapsed:   0,
			wantValue: "second",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			cache := newTestCache[string](clock)
			ctx := context.Background()

			first := &countingFetcher[string]{value: "first"}
			_, err := cache.GetWithTTL(ctx, "k", first.Fetch, tt.ttl)
			require.NoError(t, err)

			clock.Advance(tt.elapsed)

			second := &countingFetcher[string]{value: "second"}
			got, err := cache.GetWithTTL(ctx, "k", second.Fetch, tt.ttl)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, got)
			assert.Equal(t, tt.wantCalls, second.calls.Load())
		})
	}
}

func TestCache_FetchFailure(t *testing.T) {
	errUpstream := errors.New("upstream down")

	t.Run("no prior entry propagates error verbatim", func(t *testing.T) {
		metrics := &recordingMetrics{}
		cache := NewCache[int](CacheConfig{Now: newFakeClock().Now, Metrics: metrics})

		_, err := cache.Get(context.Background(), "k", (&countingFetcher[int]{err: errUpstream}).Fetch)
		require.ErrorIs(t, err, errUpstream)
		assert.Same(t, errUpstream, err)
		assert.Zero(t, cache.Len(), "failed fetch must not create an entry")
		assert.EqualValues(t, 1, metrics.errs.Load())
	})

	t.Run("typed error keeps its type", func(t *testing.T) {
		cache := newTestCache[int](newFakeClock())
		apiErr := NewAPIError(503, "unavailable", "maintenance")

		_, err := cache.Get(context.Background(), "k", (&countingFetcher[int]{err: apiErr}).Fetch)
		got, ok := errors.AsType[*APIError](err)
		require.True(t, ok)
		assert.Same(t, apiErr, got)
	})

	t.Run("stale entry is served instead of error", func(t *testing.T) {
		clock := newFakeClock()
		metrics := &recordingMetrics{}
		cache := NewCache[string](CacheConfig{Now: clock.Now, Metrics: metrics})
		ctx := context.Background()

		_, err := cache.GetWithTTL(ctx, "dashboard:summary:month:guilford", (&countingFetcher[string]{value: "t0"}).Fetch, 30*time.Second)
		require.NoError(t, err)

		clock.Advance(31 * time.Second)

		failing := &countingFetcher[string]{err: errUpstream}
		got, err := cache.GetWithTTL(ctx, "dashboard:summary:month:guilford", failing.Fetch, 30*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "t0", got)
		assert.EqualValues(t, 1, failing.calls.Load())
		assert.EqualValues(t, 1, metrics.stale.Load())

		stats := cache.Stats()
		assert.Equal(t, 1, stats.Stale, "entry stays stale after failed refresh")
	})

	t.Run("zero ttl entry is refetched and kept when refetch fails", func(t *testing.T) {
		cache := newTestCache[string](newFakeClock())
		ctx := context.Background()

		_, err := cache.GetWithTTL(ctx, "k", (&countingFetcher[string]{value: "old"}).Fetch, 0)
		require.NoError(t, err)

		failing := &countingFetcher[string]{err: errUpstream}
		got, err := cache.GetWithTTL(ctx, "k", failing.Fetch, 0)
		require.NoError(t, err)
		assert.Equal(t, "old", got)
		assert.EqualValues(t, 1, failing.calls.Load(), "zero ttl entry is never fresh")
	})
}

func TestCache_InvalidArguments(t *testing.T) {
	cache := newTestCache[string](newFakeClock())

	_, err := cache.Get(context.Background(), "", (&countingFetcher[string]{}).Fetch)
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = cache.Get(context.Background(), "k", nil)
	assert.ErrorIs(t, err, ErrNilFetcher)

	assert.Zero(t, cache.Len())
}

func TestCache_Invalidate(t *testing.T) {
	cache := newTestCache[string](newFakeClock())
	ctx := context.Background()

	_, err := cache.GetWithTTL(ctx, "k", (&countingFetcher[string]{value: "v"}).Fetch, time.Hour)
	require.NoError(t, err)

	cache.Invalidate("k")
	cache.Invalidate("missing")

	fetcher := &countingFetcher[string]{value: "v2"}
	got, err := cache.GetWithTTL(ctx, "k", fetcher.Fetch, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestCache_InvalidatePattern(t *testing.T) {
	cache := newTestCache[string](newFakeClock())
	for _, key := range []string{"jobs:1:10:x", "jobs:2:10:x", "contacts:1:10:x"} {
		cache.PreloadWithTTL(key, key, time.Hour)
	}

	removed := cache.InvalidatePattern("jobs")
	assert.Equal(t, 2, removed)

	keys := make([]string, 0)
	for _, e := range cache.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"contacts:1:10:x"}, keys)

	assert.Zero(t, cache.InvalidatePattern("nothing-matches"))
}

func TestCache_Clear(t *testing.T) {
	cache := newTestCache[int](newFakeClock())
	cache.Preload("a", 1)
	cache.Preload("b", 2)

	assert.Equal(t, 2, cache.Clear())
	assert.Equal(t, CacheStats{}, cache.Stats())
	assert.Zero(t, cache.Clear())
}

func TestCache_Preload(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache[string](clock)
	ctx := context.Background()

	cache.PreloadWithTTL("k", "primed", time.Minute)
	cache.PreloadWithTTL("", "ignored", time.Minute)

	fetcher := &countingFetcher[string]{value: "fetched"}
	got, err := cache.Get(ctx, "k", fetcher.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "primed", got)
	assert.Zero(t, fetcher.calls.Load())
	assert.Equal(t, 1, cache.Len())

	clock.Advance(time.Minute)
	got, err = cache.Get(ctx, "k", fetcher.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched", got)
}

func TestCache_Stats(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache[string](clock)

	cache.PreloadWithTTL("short", "v", time.Second)
	cache.PreloadWithTTL("long", "v", time.Hour)
	assert.Equal(t, CacheStats{Total: 2, Valid: 2, Stale: 0, Size: 2}, cache.Stats())

	clock.Advance(time.Minute)
	assert.Equal(t, CacheStats{Total: 2, Valid: 1, Stale: 1, Size: 2}, cache.Stats())

	entries := cache.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "long", entries[0].Key)
	assert.True(t, entries[0].Fresh)
	assert.Equal(t, "short", entries[1].Key)
	assert.False(t, entries[1].Fresh)
}

func TestCache_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultCacheTTL, NewCache[int](CacheConfig{}).DefaultTTL())
	assert.Equal(t, time.Minute, NewCache[int](CacheConfig{DefaultTTL: time.Minute}).DefaultTTL())
}

func TestCache_SameKeyWithinWindow(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache[map[string]int](clock)
	ctx := context.Background()
	fetchA := &countingFetcher[map[string]int]{value: map[string]int{"total": 42}}

	first, err := cache.GetWithTTL(ctx, "jobs:1:10:guilford", fetchA.Fetch, 60*time.Second)
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	second, err := cache.GetWithTTL(ctx, "jobs:1:10:guilford", fetchA.Fetch, 60*time.Second)
	require.NoError(t, err)

	assert.EqualValues(t, 1, fetchA.calls.Load())
	assert.Equal(t, first, second)
}

func TestCache_ConcurrentMissesFetchIndependently(t *testing.T) {
	cache := newTestCache[string](newFakeClock())
	release := make(chan struct{})
	var calls atomic.Int32
	var started sync.WaitGroup

	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		started.Done()
		<-release
		return "v", nil
	}

	const n = 5
	started.Add(n)
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			_, err := cache.Get(context.Background(), "k", fetch)
			assert.NoError(t, err)
		})
	}

	started.Wait()
	close(release)
	wg.Wait()

	assert.EqualValues(t, n, calls.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestCache_SingleFlight(t *testing.T) {
	cache := NewCache[string](CacheConfig{Now: newFakeClock().Now, SingleFlight: true})
	var calls atomic.Int32

	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(30 * time.Millisecond)
		return "fresh", nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			got, err := cache.Get(context.Background(), "k", fetch)
			assert.NoError(t, err)
			assert.Equal(t, "fresh", got)
		})
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
}

func TestCache_SingleFlightCallerCancellation(t *testing.T) {
	cache := NewCache[string](CacheConfig{Now: newFakeClock().Now, SingleFlight: true})
	started := make(chan struct{})
	release := make(chan struct{})

	blocking := func(value string, notify bool) Fetcher[string] {
		return func(ctx context.Context) (string, error) {
			if notify {
				close(started)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-release:
				return value, nil
			}
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctxA, "k", blocking("a", true))
		errA <- err
	}()
	<-started

	type result struct {
		value string
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := cache.Get(context.Background(), "k", blocking("b", false))
		resB <- result{v, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Contains(t, []string{"a", "b"}, b.value)

	got, err := cache.Get(context.Background(), "k", (&countingFetcher[string]{err: errors.New("unused")}).Fetch)
	require.NoError(t, err)
	assert.Contains(t, []string{"a", "b"}, got)
}

func TestCache_SingleFlightAbandonedFetchIsStored(t *testing.T) {
	cache := NewCache[string](CacheConfig{Now: newFakeClock().Now, SingleFlight: true})
	release := make(chan struct{})
	done := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Get(ctx, "k", func(ctx context.Context) (string, error) {
		defer close(done)
		<-release
		return "late", ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, cache.Len())

	close(release)
	<-done
	assert.Eventually(t, func() bool { return cache.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCache_MetricsHitMiss(t *testing.T) {
	metrics := &recordingMetrics{}
	cache := NewCache[string](CacheConfig{Now: newFakeClock().Now, Metrics: metrics})
	ctx := context.Background()
	fetcher := &countingFetcher[string]{value: "v"}

	_, _ = cache.Get(ctx, "k", fetcher.Fetch)
	_, _ = cache.Get(ctx, "k", fetcher.Fetch)
	_, _ = cache.Get(ctx, "k", fetcher.Fetch)

	assert.EqualValues(t, 1, metrics.misses.Load())
	assert.EqualValues(t, 2, metrics.hits.Load())
}

package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShinyNito/jobdash/cacheadmin"
	"github.com/ShinyNito/jobdash/core"
)

func newTestHandler(t *testing.T) (*Handler, *core.Cache[string], *bytes.Buffer) {
	t.Helper()
	cache := core.NewCache[string](core.CacheConfig{})

	mux := http.NewServeMux()
	mux.Handle(cacheadmin.NewHandler(cache, nil))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	out := &bytes.Buffer{}
	return &Handler{
		client: cacheadmin.NewClient(server.Client(), server.URL),
		out:    out,
		err:    &bytes.Buffer{},
	}, cache, out
}

func TestHandler_Stats(t *testing.T) {
	h, cache, out := newTestHandler(t)
	cache.PreloadWithTTL("jobs:1:10:x", "v", time.Hour)
	cache.PreloadWithTTL("contacts:1:10:x", "v", 0)

	require.NoError(t, h.Stats())
	assert.Equal(t, "total=2 valid=1 stale=1 size=2\n", out.String())
}

func TestHandler_List(t *testing.T) {
	h, cache, out := newTestHandler(t)
	cache.PreloadWithTTL("jobs:1:10:x", "v", time.Minute)

	require.NoError(t, h.List())
	assert.Contains(t, out.String(), "KEY")
	assert.Contains(t, out.String(), "jobs:1:10:x")
	assert.Contains(t, out.String(), "1m0s")
	assert.Contains(t, out.String(), "fresh")
}

func TestHandler_Invalidation(t *testing.T) {
	h, cache, out := newTestHandler(t)
	for _, key := range []string{"jobs:1:10:x", "jobs:2:10:x", "contacts:1:10:x"} {
		cache.Preload(key, "v")
	}

	require.NoError(t, h.Invalidate("contacts:1:10:x"))
	require.NoError(t, h.InvalidatePattern("jobs"))
	assert.Zero(t, cache.Len())
	assert.Contains(t, out.String(), "OK removed 2 entries")

	cache.Preload("a", "v")
	require.NoError(t, h.Clear())
	assert.Contains(t, out.String(), "OK cleared 1 entries")
}

type failingAdmin struct{ adminClient }

func (failingAdmin) Stats(context.Context) (core.CacheStats, error) {
	return core.CacheStats{}, errors.New("connection refused")
}

func TestHandler_ErrorOutput(t *testing.T) {
	errOut := &bytes.Buffer{}
	h := &Handler{client: failingAdmin{}, out: &bytes.Buffer{}, err: errOut}

	require.Error(t, h.Stats())
	assert.Contains(t, errOut.String(), "Stats error: connection refused")
}

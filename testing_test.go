package feedcache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// newTestClient runs an in-process redis and returns a Client backed by it.
func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c, err := New(Options{Redis: rdb})
	require.NoError(t, err)
	return c, srv
}

func newTestServer(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}

// countingHooks records trim and fan-out events for assertions.
type countingHooks struct {
	NopHooks
	trims    int
	trimmed  int64
	partials int
}

func (h *countingHooks) Trimmed(_ string, removed int64) {
	h.trims++
	h.trimmed += removed
}

func (h *countingHooks) FanOutPartial(_ string, _, _ int) { h.partials++ }

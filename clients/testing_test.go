package clients

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nook-app/feedcache"
)

func newTestClient(t *testing.T) (*feedcache.Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c, err := feedcache.New(feedcache.Options{Redis: rdb})
	require.NoError(t, err)
	return c, srv
}

type fakeFeedSource struct {
	mu    sync.Mutex
	feeds map[string][]CastRef
	calls int
}

func (s *fakeFeedSource) FetchFeed(_ context.Context, feedID string) ([]CastRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.feeds[feedID], nil
}

type fakeRankingSource struct {
	mu       sync.Mutex
	rankings map[string][]Holder
	calls    int
}

func (s *fakeRankingSource) FetchRanking(_ context.Context, collectionID string) ([]Holder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.rankings[collectionID], nil
}

type fakeContentSource struct {
	mu    sync.Mutex
	pages map[string]Content
	calls int
}

func (s *fakeContentSource) FetchContent(_ context.Context, url string) (Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.pages[url], nil
}

// memNear is a deterministic in-test near cache; the real adapters admit
// probabilistically.
type memNear struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemNear() *memNear { return &memNear{m: make(map[string][]byte)} }

func (n *memNear) Get(_ context.Context, key string) ([]byte, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.m[key]
	return b, ok, nil
}

func (n *memNear) Set(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.m[key] = value
	return true, nil
}

func (n *memNear) Del(_ context.Context, key string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.m, key)
	return nil
}

func (n *memNear) Close(context.Context) error { return nil }

func castAt(hash string, fid uint64, ts time.Time) CastRef {
	return CastRef{Hash: hash, Fid: fid, Timestamp: ts}
}

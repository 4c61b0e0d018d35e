package clients

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nook-app/feedcache"
	"github.com/nook-app/feedcache/codec"
	"github.com/nook-app/feedcache/cursor"
)

const rankingPrefix = "ranking"

// defaultRankingTTL: rankings are recomputed once per refresh cycle; hours of
// staleness are acceptable and the TTL is the collection's only size bound.
const defaultRankingTTL = 6 * time.Hour

// Holder is one entry in an ownership ranking: an account and how many
// tokens of the collection it holds.
type Holder struct {
	Fid      uint64    `json:"fid"`
	Count    int64     `json:"count"`
	Acquired time.Time `json:"acquired"`
}

// RankingSource computes the full ranking when nothing is cached. Expensive;
// called exactly once per cache miss, including when the result is empty.
type RankingSource interface {
	FetchRanking(ctx context.Context, collectionID string) ([]Holder, error)
}

// RankingCache serves point-in-time ownership rankings: TTL-bounded
// collections (never trimmed) paged with offset cursors, which is safe here
// because a ranking is computed once and then only read until it expires.
// The existence marker makes an empty ranking cacheable, so a collection
// nobody holds does not get recomputed on every read.
type RankingCache struct {
	ranked *feedcache.RankedStore
	source RankingSource
	cod    codec.Codec[Holder]
	ttl    time.Duration
	log    feedcache.Logger
	hooks  feedcache.Hooks
}

type RankingCacheOptions struct {
	// Required
	Client *feedcache.Client
	Source RankingSource

	TTL    time.Duration    // 0 => 6h
	Logger feedcache.Logger // if nil, NopLogger
	Hooks  feedcache.Hooks  // if nil, NopHooks
}

func NewRankingCache(opts RankingCacheOptions) (*RankingCache, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("clients: feedcache client is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("clients: ranking source is required")
	}
	return &RankingCache{
		ranked: opts.Client.Ranked,
		source: opts.Source,
		cod:    codec.JSON[Holder]{},
		ttl:    coalesce[time.Duration](opts.TTL, defaultRankingTTL),
		log:    coalesce[feedcache.Logger](opts.Logger, feedcache.NopLogger{}),
		hooks:  coalesce[feedcache.Hooks](opts.Hooks, feedcache.NopHooks{}),
	}, nil
}

func rankingKey(collectionID string) string {
	return feedcache.Key(rankingPrefix, collectionID)
}

// Page returns one page of the ranking, largest holders first, plus the
// token for the next page ("" when exhausted). An unrecognized token, or a
// boundary token on a ranking, pages from the top.
func (r *RankingCache) Page(ctx context.Context, collectionID, token string) ([]Holder, string, error) {
	key := rankingKey(collectionID)
	if err := r.ensure(ctx, collectionID, key); err != nil {
		return nil, "", err
	}

	page := 0
	if c, ok := cursor.Decode(token); ok {
		if o, ok := c.(cursor.Offset); ok {
			page = o.Page
		}
	}

	members, err := r.ranked.RangeByRank(ctx, key, int64(page)*feedcache.PageSize)
	if err != nil {
		return nil, "", err
	}
	holders, err := decodeMembers(r.cod, key, members, r.hooks)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(members) == feedcache.PageSize {
		next = cursor.Encode(cursor.Offset{Page: page + 1})
	}
	return holders, next, nil
}

// All returns the whole ranking, largest holders first.
func (r *RankingCache) All(ctx context.Context, collectionID string) ([]Holder, error) {
	key := rankingKey(collectionID)
	if err := r.ensure(ctx, collectionID, key); err != nil {
		return nil, err
	}
	members, err := r.ranked.DumpAll(ctx, key)
	if err != nil {
		return nil, err
	}
	return decodeMembers(r.cod, key, members, r.hooks)
}

// SortedBy re-sorts the cached ranking by another dimension client-side
// (e.g. most recently acquired) instead of recomputing a second collection.
// The collection is bounded, so the full dump is cheap.
func (r *RankingCache) SortedBy(ctx context.Context, collectionID string, less func(a, b Holder) bool) ([]Holder, error) {
	holders, err := r.All(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(holders, func(i, j int) bool { return less(holders[i], holders[j]) })
	return holders, nil
}

// Invalidate drops the ranking ahead of its TTL.
func (r *RankingCache) Invalidate(ctx context.Context, collectionID string) error {
	return r.ranked.Delete(ctx, rankingKey(collectionID))
}

// ensure populates the collection on a cold read. TTL-bounded: expiry is the
// size bound, trimming is skipped, and the marker expires with the data.
func (r *RankingCache) ensure(ctx context.Context, collectionID, key string) error {
	computed, err := r.ranked.IsComputed(ctx, key)
	if err != nil {
		return err
	}
	if computed {
		r.hooks.CacheHit(key)
		return nil
	}

	r.hooks.CacheMiss(key)
	holders, err := r.source.FetchRanking(ctx, collectionID)
	r.hooks.SourceFetch(key, err)
	if err != nil {
		return err
	}
	entries := make([]feedcache.Entry, len(holders))
	for i, h := range holders {
		entries[i] = feedcache.Entry{Value: h, Score: float64(h.Count)}
	}
	if err := r.ranked.BatchAdd(ctx, key, entries, r.ttl); err != nil {
		return err
	}
	// marked even with zero holders: authoritatively empty, don't recompute
	return r.ranked.MarkComputed(ctx, key, r.ttl)
}

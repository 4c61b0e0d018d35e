package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/nook-app/feedcache"
	"github.com/nook-app/feedcache/codec"
	"github.com/nook-app/feedcache/cursor"
)

const feedPrefix = "feed"

// CastRef identifies one cast within a feed. The serialized ref is the
// member's identity, so re-fanning the same cast into a feed updates its
// score instead of duplicating it.
type CastRef struct {
	Hash      string    `json:"hash"`
	Fid       uint64    `json:"fid"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedSource is the source-of-truth fetch for a cold feed.
type FeedSource interface {
	FetchFeed(ctx context.Context, feedID string) ([]CastRef, error)
}

// FeedCache serves chronological feeds: trim-bounded collections scored by
// cast timestamp, paged with boundary cursors so pages stay correct while new
// casts keep landing. The ingest pipeline is the sole writer of a member's
// score; scores only move forward.
type FeedCache struct {
	ranked *feedcache.RankedStore
	source FeedSource
	cod    codec.Codec[CastRef]
	log    feedcache.Logger
	hooks  feedcache.Hooks
}

type FeedCacheOptions struct {
	// Required
	Client *feedcache.Client
	Source FeedSource

	Logger feedcache.Logger // if nil, NopLogger
	Hooks  feedcache.Hooks  // if nil, NopHooks
}

func NewFeedCache(opts FeedCacheOptions) (*FeedCache, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("clients: feedcache client is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("clients: feed source is required")
	}
	return &FeedCache{
		ranked: opts.Client.Ranked,
		source: opts.Source,
		cod:    codec.JSON[CastRef]{},
		log:    coalesce[feedcache.Logger](opts.Logger, feedcache.NopLogger{}),
		hooks:  coalesce[feedcache.Hooks](opts.Hooks, feedcache.NopHooks{}),
	}, nil
}

func feedKey(feedID string) string { return feedcache.Key(feedPrefix, feedID) }

// Page returns one page of the feed, newest first, plus the token for the
// next page ("" when exhausted). An unrecognized token, or an offset token on
// a feed, pages from the top.
func (f *FeedCache) Page(ctx context.Context, feedID, token string) ([]CastRef, string, error) {
	key := feedKey(feedID)

	computed, err := f.ranked.IsComputed(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if !computed {
		f.hooks.CacheMiss(key)
		if err := f.populate(ctx, feedID, key); err != nil {
			return nil, "", err
		}
	} else {
		f.hooks.CacheHit(key)
	}

	var cur *cursor.Boundary
	if c, ok := cursor.Decode(token); ok {
		if b, ok := c.(cursor.Boundary); ok {
			cur = &b
		}
	}

	members, err := f.ranked.RangeByScore(ctx, key, cur)
	if err != nil {
		return nil, "", err
	}
	casts, err := decodeMembers(f.cod, key, members, f.hooks)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(members) == feedcache.PageSize {
		next = cursor.Encode(cursor.Boundary{Timestamp: members[len(members)-1].Score})
	}
	return casts, next, nil
}

func (f *FeedCache) populate(ctx context.Context, feedID, key string) error {
	casts, err := f.source.FetchFeed(ctx, feedID)
	f.hooks.SourceFetch(key, err)
	if err != nil {
		return err
	}
	entries := make([]feedcache.Entry, len(casts))
	for i, c := range casts {
		entries[i] = feedcache.Entry{Value: c, Score: score(c)}
	}
	if err := f.ranked.BatchAdd(ctx, key, entries, 0); err != nil {
		return err
	}
	// marked even when the feed is empty: empty is a cacheable answer
	return f.ranked.MarkComputed(ctx, key, 0)
}

// Add fans one cast out to every feed it belongs in, one pipelined round
// trip. Best-effort: inspect the per-key results for partial failures and
// retry freely, re-adding the same cast is a no-op change.
func (f *FeedCache) Add(ctx context.Context, feedIDs []string, cast CastRef) ([]feedcache.KeyResult, error) {
	payload, err := f.cod.Encode(cast)
	if err != nil {
		return nil, err
	}
	return f.ranked.FanOutAdd(ctx, feedKeys(feedIDs), payload, score(cast))
}

// Remove deletes one cast from every listed feed (moderation, cast deletes).
func (f *FeedCache) Remove(ctx context.Context, feedIDs []string, cast CastRef) ([]feedcache.KeyResult, error) {
	payload, err := f.cod.Encode(cast)
	if err != nil {
		return nil, err
	}
	return f.ranked.FanOutRemove(ctx, feedKeys(feedIDs), payload)
}

// Invalidate drops a feed wholesale so the next read recomputes it.
func (f *FeedCache) Invalidate(ctx context.Context, feedID string) error {
	return f.ranked.Delete(ctx, feedKey(feedID))
}

func feedKeys(feedIDs []string) []string {
	keys := make([]string, len(feedIDs))
	for i, id := range feedIDs {
		keys[i] = feedKey(id)
	}
	return keys
}

// score is the cast's timestamp in milliseconds; chronological feeds rank by
// recency.
func score(c CastRef) float64 {
	return float64(c.Timestamp.UnixMilli())
}

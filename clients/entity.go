package clients

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nook-app/feedcache"
	"github.com/nook-app/feedcache/codec"
)

// EntitySource is the source-of-truth fetch for one record.
type EntitySource[V any] func(ctx context.Context, id string) (V, error)

// EntityCache caches canonical records (users, casts, channels) under
// <prefix>:<id>. Entries never expire; explicit write paths call Set or
// Invalidate instead. Concurrent writers are last-write-wins with no
// versioning.
//
// Engagement counters live beside the record under <prefix>:<id>:<field> and
// are guarded: they only move once a write path has initialized them.
type EntityCache[V any] struct {
	scalars *feedcache.ScalarStore
	cod     codec.Codec[V]
	prefix  string
	fetch   EntitySource[V]
	log     feedcache.Logger
	hooks   feedcache.Hooks
}

type EntityCacheOptions[V any] struct {
	// Required
	Client *feedcache.Client
	Prefix string // unique lowercase domain prefix, e.g. "user", "cast"
	Fetch  EntitySource[V]

	Codec  codec.Codec[V]   // if nil, codec.JSON[V]
	Logger feedcache.Logger // if nil, NopLogger
	Hooks  feedcache.Hooks  // if nil, NopHooks
}

func NewEntityCache[V any](opts EntityCacheOptions[V]) (*EntityCache[V], error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("clients: feedcache client is required")
	}
	if opts.Prefix == "" {
		return nil, fmt.Errorf("clients: prefix is required")
	}
	if opts.Fetch == nil {
		return nil, fmt.Errorf("clients: fetch is required")
	}
	cod := opts.Codec
	if cod == nil {
		cod = codec.JSON[V]{}
	}
	return &EntityCache[V]{
		scalars: opts.Client.Scalars,
		cod:     cod,
		prefix:  opts.Prefix,
		fetch:   opts.Fetch,
		log:     coalesce[feedcache.Logger](opts.Logger, feedcache.NopLogger{}),
		hooks:   coalesce[feedcache.Hooks](opts.Hooks, feedcache.NopHooks{}),
	}, nil
}

func (e *EntityCache[V]) key(id string) string { return feedcache.Key(e.prefix, id) }

// Get reads through the cache: hit, or source fetch + write-back.
func (e *EntityCache[V]) Get(ctx context.Context, id string) (V, error) {
	var zero V
	key := e.key(id)

	raw, ok, err := e.scalars.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		v, err := e.cod.Decode([]byte(raw))
		if err != nil {
			derr := &feedcache.DecodeError{Key: key, Err: err}
			e.hooks.DecodeError(key, derr)
			return zero, derr
		}
		e.hooks.CacheHit(key)
		return v, nil
	}

	e.hooks.CacheMiss(key)
	v, err := e.fetch(ctx, id)
	e.hooks.SourceFetch(key, err)
	if err != nil {
		return zero, err
	}
	if err := e.Set(ctx, id, v); err != nil {
		return zero, err
	}
	return v, nil
}

// GetMany reads a batch in one round trip and falls back to the source per
// missing id. The result holds every id that resolved.
func (e *EntityCache[V]) GetMany(ctx context.Context, ids []string) (map[string]V, error) {
	out := make(map[string]V, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = e.key(id)
	}
	cached, err := e.scalars.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		raw, ok := cached[keys[i]]
		if !ok {
			continue
		}
		v, err := e.cod.Decode([]byte(raw))
		if err != nil {
			derr := &feedcache.DecodeError{Key: keys[i], Err: err}
			e.hooks.DecodeError(keys[i], derr)
			return nil, derr
		}
		out[id] = v
	}
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		v, err := e.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

// Set writes the record unconditionally; entity records are updated by
// explicit write paths, not by expiry.
func (e *EntityCache[V]) Set(ctx context.Context, id string, v V) error {
	b, err := e.cod.Encode(v)
	if err != nil {
		return err
	}
	return e.scalars.Set(ctx, e.key(id), string(b), 0)
}

// Invalidate drops the record; the next Get refetches.
func (e *EntityCache[V]) Invalidate(ctx context.Context, id string) error {
	return e.scalars.Del(ctx, e.key(id))
}

// SetCounter initializes (or resets) an engagement counter for the entity.
func (e *EntityCache[V]) SetCounter(ctx context.Context, id, field string, value int64) error {
	return e.scalars.Set(ctx, feedcache.Key(e.prefix, id, field), strconv.FormatInt(value, 10), 0)
}

// IncrementCounter bumps an engagement counter. Guarded: if the counter was
// never initialized (or was deleted), nothing is written and applied is
// false.
func (e *EntityCache[V]) IncrementCounter(ctx context.Context, id, field string, delta int64) (int64, bool, error) {
	return e.scalars.Increment(ctx, feedcache.Key(e.prefix, id, field), delta)
}

// DecrementCounter is IncrementCounter's inverse, with the same guard.
func (e *EntityCache[V]) DecrementCounter(ctx context.Context, id, field string, delta int64) (int64, bool, error) {
	return e.scalars.Decrement(ctx, feedcache.Key(e.prefix, id, field), delta)
}

// Counter reads an engagement counter; a present non-numeric value is an
// error naming the key, not a zero.
func (e *EntityCache[V]) Counter(ctx context.Context, id, field string) (int64, bool, error) {
	n, ok, err := e.scalars.GetNumber(ctx, feedcache.Key(e.prefix, id, field))
	return int64(n), ok, err
}

package feedcache

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nook-app/feedcache/codec"
	"github.com/nook-app/feedcache/cursor"
)

const (
	// PageSize is the fixed number of members returned per ranged read.
	PageSize = 25

	// MaxCollectionSize bounds trim-bounded collections: after a bulk insert
	// without TTL, only the highest-scoring members up to this count survive.
	MaxCollectionSize = 999
)

// Entry is one member to insert: a JSON-serializable payload and its score.
// The serialized payload is the member's identity within the collection -
// re-inserting an identical payload updates its score instead of duplicating.
type Entry struct {
	Value any
	Score float64
}

// Member is one stored member read back from a collection.
type Member struct {
	Value string
	Score float64
}

// KeyResult reports the outcome of one key within a fan-out pipeline.
// Pipelines are not transactions: some keys may land while others fail, and
// callers reconcile using this list. Re-applying the same (value, score) is a
// safe no-op change.
type KeyResult struct {
	Key string
	Err error
}

// RankedStore holds score-ordered collections: chronological feeds,
// time-bounded rankings, engagement leaderboards.
//
// Each collection is bounded exactly one way, chosen at insert time: pass no
// TTL to BatchAdd and the collection is trimmed to its MaxCollectionSize
// highest-scoring members; pass a TTL and trimming is skipped because the
// whole collection expires wholesale. Never mix the two on one collection.
type RankedStore struct {
	rdb   goredis.UniversalClient
	log   Logger
	hooks Hooks
}

// Add upserts one member and trims the collection in the same round trip.
func (s *RankedStore) Add(ctx context.Context, key string, value any, score float64) error {
	member, err := encodeMember(key, value)
	if err != nil {
		return err
	}
	var trim *goredis.IntCmd
	_, err = s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		p.ZAdd(ctx, key, goredis.Z{Score: score, Member: member})
		trim = p.ZRemRangeByRank(ctx, key, 0, -(MaxCollectionSize + 1))
		return nil
	})
	if err != nil {
		return err
	}
	if removed := trim.Val(); removed > 0 {
		s.hooks.Trimmed(key, removed)
	}
	return nil
}

// BatchAdd inserts many members in one round trip. Empty input is a no-op.
//
// ttl > 0 marks the collection TTL-bounded: the expiry is pipelined with the
// insert and no trim runs. ttl == 0 marks it trim-bounded: the collection is
// cut back to its MaxCollectionSize highest-scoring members after the insert.
func (s *RankedStore) BatchAdd(ctx context.Context, key string, entries []Entry, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}
	zs := make([]goredis.Z, len(entries))
	for i, e := range entries {
		member, err := encodeMember(key, e.Value)
		if err != nil {
			return err
		}
		zs[i] = goredis.Z{Score: e.Score, Member: member}
	}

	if ttl > 0 {
		_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
			p.ZAdd(ctx, key, zs...)
			p.Expire(ctx, key, ttl)
			return nil
		})
		return err
	}

	var trim *goredis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		p.ZAdd(ctx, key, zs...)
		trim = p.ZRemRangeByRank(ctx, key, 0, -(MaxCollectionSize + 1))
		return nil
	})
	if err != nil {
		return err
	}
	if removed := trim.Val(); removed > 0 {
		s.hooks.Trimmed(key, removed)
	}
	return nil
}

// FanOutAdd applies one member write to many collections in one pipelined
// round trip, for events that must appear in several rankings at once.
// Best-effort: the returned list holds one result per input key.
// Empty input is a no-op.
func (s *RankedStore) FanOutAdd(ctx context.Context, keys []string, value any, score float64) ([]KeyResult, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	member, err := encodeMember(keys[0], value)
	if err != nil {
		return nil, err
	}
	cmds := make([]*goredis.IntCmd, len(keys))
	_, pipeErr := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.ZAdd(ctx, k, goredis.Z{Score: score, Member: member})
		}
		return nil
	})
	return s.fanOutResults("add", keys, cmds, pipeErr), pipeErr
}

// FanOutRemove removes one member from many collections in one pipelined
// round trip, with the same best-effort contract as FanOutAdd.
func (s *RankedStore) FanOutRemove(ctx context.Context, keys []string, value any) ([]KeyResult, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	member, err := encodeMember(keys[0], value)
	if err != nil {
		return nil, err
	}
	cmds := make([]*goredis.IntCmd, len(keys))
	_, pipeErr := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.ZRem(ctx, k, member)
		}
		return nil
	})
	return s.fanOutResults("remove", keys, cmds, pipeErr), pipeErr
}

func (s *RankedStore) fanOutResults(op string, keys []string, cmds []*goredis.IntCmd, pipeErr error) []KeyResult {
	results := make([]KeyResult, len(keys))
	failed := 0
	for i, k := range keys {
		results[i] = KeyResult{Key: k, Err: cmds[i].Err()}
		if cmds[i].Err() != nil {
			failed++
		}
	}
	if failed > 0 && failed < len(keys) {
		s.log.Warn("fan-out landed partially", Fields{"op": op, "total": len(keys), "failed": failed, "err": pipeErr})
		s.hooks.FanOutPartial(op, len(keys), failed)
	}
	return results
}

// RangeByScore returns up to PageSize members ordered by descending score,
// strictly below the cursor's boundary (or from the top when cur is nil).
// This is the mode for append-only feeds: "page 2" means "everything older
// than the last item I saw", which stays correct under concurrent inserts.
func (s *RankedStore) RangeByScore(ctx context.Context, key string, cur *cursor.Boundary) ([]Member, error) {
	max := "+inf"
	if cur != nil {
		max = "(" + formatScore(cur.Timestamp)
	}
	zs, err := s.rdb.ZRevRangeByScoreWithScores(ctx, key, &goredis.ZRangeBy{
		Min:   "-inf",
		Max:   max,
		Count: PageSize,
	}).Result()
	if err != nil {
		return nil, err
	}
	return toMembers(zs), nil
}

// RangeByRank returns up to PageSize members starting at rank offset from the
// top, regardless of score. Only correct for collections computed once and
// then paged through without further mutation; concurrent inserts would make
// offset pages skip or repeat members.
func (s *RankedStore) RangeByRank(ctx context.Context, key string, offset int64) ([]Member, error) {
	if offset < 0 {
		offset = 0
	}
	zs, err := s.rdb.ZRevRangeWithScores(ctx, key, offset, offset+PageSize-1).Result()
	if err != nil {
		return nil, err
	}
	return toMembers(zs), nil
}

// DumpAll returns every member, highest score first, for callers that re-sort
// a bounded collection by another dimension client-side.
func (s *RankedStore) DumpAll(ctx context.Context, key string) ([]Member, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return toMembers(zs), nil
}

// IncrementScore atomically adjusts one member's score and returns the new
// score. Used for engagement counters expressed as ranked members.
func (s *RankedStore) IncrementScore(ctx context.Context, key, member string, delta float64) (float64, error) {
	return s.rdb.ZIncrBy(ctx, key, delta, member).Result()
}

// Remove deletes one member from a collection.
func (s *RankedStore) Remove(ctx context.Context, key string, value any) error {
	member, err := encodeMember(key, value)
	if err != nil {
		return err
	}
	return s.rdb.ZRem(ctx, key, member).Err()
}

// Size returns the member count of a collection.
func (s *RankedStore) Size(ctx context.Context, key string) (int64, error) {
	return s.rdb.ZCard(ctx, key).Result()
}

// Delete removes a collection wholesale, marker included - a deleted
// collection must read as never computed, not as authoritatively empty.
func (s *RankedStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key, markerKey(key)).Err()
}

// MarkComputed records that the collection has been populated, even with zero
// members. ttl should match the collection's own bounding: pass the same TTL
// for TTL-bounded collections, 0 for trim-bounded ones.
func (s *RankedStore) MarkComputed(ctx context.Context, key string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.Set(ctx, markerKey(key), "1", ttl).Err()
}

// IsComputed distinguishes "authoritatively empty" from "never computed".
func (s *RankedStore) IsComputed(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, markerKey(key)).Result()
	return n > 0, err
}

func markerKey(key string) string { return key + ":computed" }

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toMembers(zs []goredis.Z) []Member {
	out := make([]Member, 0, len(zs))
	for _, z := range zs {
		m, _ := z.Member.(string)
		out = append(out, Member{Value: m, Score: z.Score})
	}
	return out
}

// encodeMember turns a payload into its member identity: strings pass
// through, everything else goes through the JSON codec. The key is only for
// error attribution.
func encodeMember(key string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		b, err := codec.Marshal(v)
		if err != nil {
			return "", &DecodeError{Key: key, Err: err}
		}
		return string(b), nil
	}
}

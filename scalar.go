package feedcache

import (
	"context"
	"math"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RollingListSize bounds the simple list variant: PushRolling trims on every
// write so a list never exceeds this many entries.
const RollingListSize = 1000

// ScalarStore holds single values, counters, and rolling lists.
// All operations are remote calls; connection failures propagate to the
// caller. A read failure means "cache unavailable", never "empty".
type ScalarStore struct {
	rdb   goredis.UniversalClient
	log   Logger
	hooks Hooks
}

// Get returns (value, true, nil) on hit; ("", false, nil) on miss.
func (s *ScalarStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key. ttl <= 0 means no expiry.
func (s *ScalarStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// MGet returns the present subset of keys. Empty input is a no-op.
func (s *ScalarStore) MGet(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		switch vv := v.(type) {
		case nil:
			// miss
		case string:
			out[keys[i]] = vv
		case []byte:
			out[keys[i]] = string(vv)
		}
	}
	return out, nil
}

// MSet stores all pairs in one round trip. Empty input is a no-op.
// Pairs never expire; use Set for per-key TTLs.
func (s *ScalarStore) MSet(ctx context.Context, pairs map[string]string) error {
	if len(pairs) == 0 {
		return nil
	}
	flat := make([]any, 0, len(pairs)*2)
	for k, v := range pairs {
		flat = append(flat, k, v)
	}
	return s.rdb.MSet(ctx, flat...).Err()
}

// GetNumber parses the value under key as a float. A present non-numeric
// value is a *NotNumberError, not a miss.
func (s *ScalarStore) GetNumber(ctx context.Context, key string) (float64, bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		nerr := &NotNumberError{Key: key, Raw: raw}
		s.hooks.DecodeError(key, nerr)
		return 0, false, nerr
	}
	return n, true, nil
}

// SetNumber stores n under key. NaN is rejected: once stored it could never
// be compared or incremented again.
func (s *ScalarStore) SetNumber(ctx context.Context, key string, n float64, ttl time.Duration) error {
	if math.IsNaN(n) {
		return ErrNaN
	}
	return s.Set(ctx, key, strconv.FormatFloat(n, 'f', -1, 64), ttl)
}

// Increment adjusts the counter under key by delta and reports whether the
// write was applied. Guarded: a counter that was never initialized (or was
// explicitly deleted) is left absent rather than silently resurrected at
// delta.
func (s *ScalarStore) Increment(ctx context.Context, key string, delta int64) (int64, bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		s.log.Debug("increment skipped, counter absent", Fields{"key": key})
		return 0, false, nil
	}
	v, err := s.rdb.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// Decrement is Increment with a negated delta and the same guard.
func (s *ScalarStore) Decrement(ctx context.Context, key string, delta int64) (int64, bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		s.log.Debug("decrement skipped, counter absent", Fields{"key": key})
		return 0, false, nil
	}
	v, err := s.rdb.DecrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (s *ScalarStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

func (s *ScalarStore) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// BatchDel deletes all keys in one round trip. Empty input is a no-op.
func (s *ScalarStore) BatchDel(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// PushRolling prepends value to the list under key and trims the list to
// RollingListSize in the same pipeline, so the bound holds after every write.
func (s *ScalarStore) PushRolling(ctx context.Context, key, value string) error {
	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		p.LPush(ctx, key, value)
		p.LTrim(ctx, key, 0, RollingListSize-1)
		return nil
	})
	return err
}

// Rolling returns the list under key, newest first.
func (s *ScalarStore) Rolling(ctx context.Context, key string) ([]string, error) {
	return s.rdb.LRange(ctx, key, 0, -1).Result()
}

package feedcache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SetStore holds unordered membership sets, e.g. "fids this user follows" or
// "users who liked this cast".
type SetStore struct {
	rdb goredis.UniversalClient
	log Logger
}

// AddMembers adds all members in one round trip. When ttl > 0 the expiry is
// pipelined with the insert, so the set is never observable without it.
// Empty input is a no-op.
func (s *SetStore) AddMembers(ctx context.Context, key string, members []string, ttl time.Duration) error {
	if len(members) == 0 {
		return nil
	}
	vals := make([]any, len(members))
	for i, m := range members {
		vals[i] = m
	}
	if ttl <= 0 {
		return s.rdb.SAdd(ctx, key, vals...).Err()
	}
	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		p.SAdd(ctx, key, vals...)
		p.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// AddMember adds one member. Unless force is set, the write is skipped when
// the set does not already exist: a stray add must not revive a set that was
// deleted or was never provisioned.
func (s *SetStore) AddMember(ctx context.Context, key, member string, force bool) error {
	if !force {
		n, err := s.rdb.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			s.log.Debug("add skipped, set absent", Fields{"key": key})
			return nil
		}
	}
	return s.rdb.SAdd(ctx, key, member).Err()
}

func (s *SetStore) CheckMember(ctx context.Context, key, member string) (bool, error) {
	return s.rdb.SIsMember(ctx, key, member).Result()
}

// CheckMembers reports membership for each input in one round trip. The
// result is order-aligned with members regardless of internal storage order.
// Empty input is a no-op.
func (s *SetStore) CheckMembers(ctx context.Context, key string, members []string) ([]bool, error) {
	if len(members) == 0 {
		return nil, nil
	}
	cmds := make([]*goredis.BoolCmd, len(members))
	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, m := range members {
			cmds[i] = p.SIsMember(ctx, key, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(members))
	for i, cmd := range cmds {
		out[i] = cmd.Val()
	}
	return out, nil
}

func (s *SetStore) GetMembers(ctx context.Context, key string) ([]string, error) {
	return s.rdb.SMembers(ctx, key).Result()
}

func (s *SetStore) RemoveMember(ctx context.Context, key, member string) error {
	return s.rdb.SRem(ctx, key, member).Err()
}

// RemoveMembers removes all members in one round trip. Empty input is a no-op.
func (s *SetStore) RemoveMembers(ctx context.Context, key string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	vals := make([]any, len(members))
	for i, m := range members {
		vals[i] = m
	}
	return s.rdb.SRem(ctx, key, vals...).Err()
}

// Delete removes the whole set.
func (s *SetStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

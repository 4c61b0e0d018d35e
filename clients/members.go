package clients

import (
	"github.com/nook-app/feedcache"
	"github.com/nook-app/feedcache/codec"
)

// Fields aliased for brevity in this package.
type Fields = feedcache.Fields

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// decodeMembers decodes ranked members into typed payloads. A member that is
// present but corrupt surfaces a DecodeError naming the collection - never a
// silently shortened page.
func decodeMembers[V any](cod codec.Codec[V], key string, members []feedcache.Member, hooks feedcache.Hooks) ([]V, error) {
	out := make([]V, 0, len(members))
	for _, m := range members {
		v, err := cod.Decode([]byte(m.Value))
		if err != nil {
			derr := &feedcache.DecodeError{Key: key, Err: err}
			hooks.DecodeError(key, derr)
			return nil, derr
		}
		out = append(out, v)
	}
	return out, nil
}

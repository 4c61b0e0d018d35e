// Package nearcache defines the optional in-process hot cache a domain client
// can put in front of the ranked store, for data that is expensive to fetch
// and tolerant of short staleness (scraped URL content, mostly).
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte previously passed to Set for a key. If a store performs
// internal transforms (e.g. compression) they must be fully reversed.
package nearcache

import (
	"context"
	"time"
)

// Cache is a minimal byte store with TTLs. Must be safe for concurrent use.
type Cache interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. Returns ok=false when the store
	// rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

package feedcache

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Options tune the behavior of the cache layer.
// Only Redis is required; others have sensible defaults.
type Options struct {
	// Required. One logical connection per process; the same handle backs all
	// three stores so related writes can share pipelines.
	Redis goredis.UniversalClient

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	// CloseClient releases the redis client on Close. Set true only if this
	// Client exclusively owns the connection.
	CloseClient bool
}

// Client bundles the three stores over one explicit connection handle.
// Construct with New; the zero value is not usable.
type Client struct {
	Scalars *ScalarStore
	Sets    *SetStore
	Ranked  *RankedStore

	rdb         goredis.UniversalClient
	closeClient bool
}

func New(opts Options) (*Client, error) {
	if opts.Redis == nil {
		return nil, fmt.Errorf("feedcache: redis client is required")
	}

	log := coalesce[Logger](opts.Logger, NopLogger{})
	hooks := coalesce[Hooks](opts.Hooks, NopHooks{})

	return &Client{
		Scalars:     &ScalarStore{rdb: opts.Redis, log: log, hooks: hooks},
		Sets:        &SetStore{rdb: opts.Redis, log: log},
		Ranked:      &RankedStore{rdb: opts.Redis, log: log, hooks: hooks},
		rdb:         opts.Redis,
		closeClient: opts.CloseClient,
	}, nil
}

// Close releases the underlying redis client only when this Client owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (c *Client) Close(context.Context) error {
	if c.closeClient {
		if err := c.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

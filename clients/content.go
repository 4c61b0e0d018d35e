package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/nook-app/feedcache"
	"github.com/nook-app/feedcache/codec"
	"github.com/nook-app/feedcache/internal/util"
	"github.com/nook-app/feedcache/nearcache"
)

const contentPrefix = "content"

// defaultContentTTL is short on purpose: scraped pages change under us and a
// stale preview is worse than a refetch.
const defaultContentTTL = 10 * time.Minute

// Content is scraped URL metadata: link previews, frame descriptors.
type Content struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// ContentSource scrapes the URL when nothing is cached.
type ContentSource interface {
	FetchContent(ctx context.Context, url string) (Content, error)
}

// ContentCache caches scraped metadata under content:<sha256-prefix-of-url>,
// with an optional in-process near cache checked before the store. The near
// layer is best-effort: a near miss or a corrupt near entry falls through
// silently, only the store surfaces decode errors.
type ContentCache struct {
	scalars *feedcache.ScalarStore
	source  ContentSource
	near    nearcache.Cache
	cod     codec.Codec[Content]
	ttl     time.Duration
	log     feedcache.Logger
	hooks   feedcache.Hooks
}

type ContentCacheOptions struct {
	// Required
	Client *feedcache.Client
	Source ContentSource

	Near   nearcache.Cache  // optional in-process layer (ristretto, bigcache)
	TTL    time.Duration    // 0 => 10m
	Logger feedcache.Logger // if nil, NopLogger
	Hooks  feedcache.Hooks  // if nil, NopHooks
}

func NewContentCache(opts ContentCacheOptions) (*ContentCache, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("clients: feedcache client is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("clients: content source is required")
	}
	return &ContentCache{
		scalars: opts.Client.Scalars,
		source:  opts.Source,
		near:    opts.Near,
		cod:     codec.JSON[Content]{},
		ttl:     coalesce[time.Duration](opts.TTL, defaultContentTTL),
		log:     coalesce[feedcache.Logger](opts.Logger, feedcache.NopLogger{}),
		hooks:   coalesce[feedcache.Hooks](opts.Hooks, feedcache.NopHooks{}),
	}, nil
}

func contentKey(url string) string { return util.HashKey(contentPrefix, url) }

// Get reads near cache, then store, then scrapes; each hit seeds the layers
// above the one that answered.
func (c *ContentCache) Get(ctx context.Context, url string) (Content, error) {
	key := contentKey(url)

	if c.near != nil {
		if b, ok, _ := c.near.Get(ctx, key); ok {
			if v, err := c.cod.Decode(b); err == nil {
				c.hooks.CacheHit(key)
				return v, nil
			}
			// corrupt near entry; drop and fall through to the store
			_ = c.near.Del(ctx, key)
		}
	}

	raw, ok, err := c.scalars.Get(ctx, key)
	if err != nil {
		return Content{}, err
	}
	if ok {
		v, err := c.cod.Decode([]byte(raw))
		if err != nil {
			derr := &feedcache.DecodeError{Key: key, Err: err}
			c.hooks.DecodeError(key, derr)
			return Content{}, derr
		}
		c.hooks.CacheHit(key)
		c.seedNear(ctx, key, []byte(raw))
		return v, nil
	}

	c.hooks.CacheMiss(key)
	v, err := c.source.FetchContent(ctx, url)
	c.hooks.SourceFetch(key, err)
	if err != nil {
		return Content{}, err
	}
	b, err := c.cod.Encode(v)
	if err != nil {
		return Content{}, err
	}
	if err := c.scalars.Set(ctx, key, string(b), c.ttl); err != nil {
		return Content{}, err
	}
	c.seedNear(ctx, key, b)
	return v, nil
}

// Invalidate drops the URL from both layers.
func (c *ContentCache) Invalidate(ctx context.Context, url string) error {
	key := contentKey(url)
	if c.near != nil {
		_ = c.near.Del(ctx, key)
	}
	return c.scalars.Del(ctx, key)
}

func (c *ContentCache) seedNear(ctx context.Context, key string, b []byte) {
	if c.near == nil {
		return
	}
	if ok, err := c.near.Set(ctx, key, b, c.ttl); err != nil || !ok {
		c.log.Debug("near cache rejected content", Fields{"key": key, "err": err})
	}
}

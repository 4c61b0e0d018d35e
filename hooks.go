package feedcache

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking - the stores and clients
// call them on hot paths. Wrap with hooks/async to move work off-path.
type Hooks interface {
	// A read found the key/collection populated.
	CacheHit(key string)

	// A read found nothing cached (no existence marker, no value).
	CacheMiss(key string)

	// A cache miss triggered a source-of-truth fetch.
	SourceFetch(key string, err error)

	// A bulk insert trimmed a collection down to its size bound.
	Trimmed(collectionKey string, removed int64)

	// A pipelined fan-out landed on some keys and failed on others.
	FanOutPartial(op string, total, failed int)

	// Present-but-corrupt data was surfaced to a caller.
	DecodeError(key string, err error)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) CacheHit(string)              {}
func (NopHooks) CacheMiss(string)             {}
func (NopHooks) SourceFetch(string, error)    {}
func (NopHooks) Trimmed(string, int64)        {}
func (NopHooks) FanOutPartial(string, int, int) {}
func (NopHooks) DecodeError(string, error)    {}

// Package async decouples hook callbacks from the hot path: events are
// queued and replayed on worker goroutines, and dropped outright when the
// queue is full. Cache latency must never wait on observability.
package async

import (
	"sync"

	"github.com/nook-app/feedcache"
)

type Hooks struct {
	inner feedcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ feedcache.Hooks = (*Hooks)(nil)

func New(inner feedcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events enqueued after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default:
		// queue full; drop rather than block the caller
	}
}

func (h *Hooks) CacheHit(key string) {
	h.try(func() { h.inner.CacheHit(key) })
}

func (h *Hooks) CacheMiss(key string) {
	h.try(func() { h.inner.CacheMiss(key) })
}

func (h *Hooks) SourceFetch(key string, err error) {
	h.try(func() { h.inner.SourceFetch(key, err) })
}

func (h *Hooks) Trimmed(collectionKey string, removed int64) {
	h.try(func() { h.inner.Trimmed(collectionKey, removed) })
}

func (h *Hooks) FanOutPartial(op string, total, failed int) {
	h.try(func() { h.inner.FanOutPartial(op, total, failed) })
}

func (h *Hooks) DecodeError(key string, err error) {
	h.try(func() { h.inner.DecodeError(key, err) })
}

// Package loghooks logs hook events through slog, with per-event sampling so
// hit/miss floods from hot feeds do not drown the log.
package loghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/nook-app/feedcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery   uint64
	MissEvery  uint64
	TrimEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
	trimCtr atomic.Uint64
}

var _ feedcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CacheHit(key string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("feedcache.hit", "key", h.redact(key))
}

func (h *Hooks) CacheMiss(key string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("feedcache.miss", "key", h.redact(key))
}

func (h *Hooks) SourceFetch(key string, err error) {
	if h.l == nil {
		return
	}
	if err != nil {
		h.l.Warn("feedcache.source_fetch_failed", "key", h.redact(key), "err", err)
		return
	}
	h.l.Debug("feedcache.source_fetch", "key", h.redact(key))
}

func (h *Hooks) Trimmed(collectionKey string, removed int64) {
	if h.l == nil || !sample(h.opts.TrimEvery, &h.trimCtr) {
		return
	}
	h.l.Debug("feedcache.trimmed",
		"key", h.redact(collectionKey),
		"removed", removed)
}

func (h *Hooks) FanOutPartial(op string, total, failed int) {
	if h.l == nil {
		return
	}
	h.l.Warn("feedcache.fan_out_partial",
		"op", op,
		"total", total,
		"failed", failed)
}

func (h *Hooks) DecodeError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("feedcache.decode_error",
		"key", h.redact(key),
		"err", err)
}

package loghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestSampling(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{HitEvery: 10})

	for i := 0; i < 100; i++ {
		h.CacheHit("feed:1")
	}
	require.Equal(t, 10, strings.Count(buf.String(), "feedcache.hit"))
}

func TestRedaction(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{})

	h.CacheMiss("feed:secret-user-42")
	out := buf.String()
	require.NotContains(t, out, "secret-user-42")
	require.Contains(t, out, "feedcache.miss")

	buf.Reset()
	custom := New(l, Options{Redact: func(k string) string { return "<key>" }})
	custom.CacheHit("feed:secret-user-42")
	require.Contains(t, buf.String(), "<key>")
}

func TestWarnEvents(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{})

	h.SourceFetch("feed:1", errors.New("upstream down"))
	h.FanOutPartial("add", 5, 2)
	h.DecodeError("feed:1", errors.New("bad json"))

	out := buf.String()
	require.Contains(t, out, "feedcache.source_fetch_failed")
	require.Contains(t, out, "feedcache.fan_out_partial")
	require.Contains(t, out, "feedcache.decode_error")
}

func TestNilLoggerIsSilent(t *testing.T) {
	h := New(nil, Options{})
	h.CacheHit("k")
	h.Trimmed("k", 1)
	h.DecodeError("k", errors.New("x"))
}

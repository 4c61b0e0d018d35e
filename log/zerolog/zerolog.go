package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/nook-app/feedcache"
)

type Logger struct{ L zerolog.Logger }

var _ feedcache.Logger = Logger{}

func (z Logger) Debug(msg string, f feedcache.Fields) { z.L.Debug().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Info(msg string, f feedcache.Fields)  { z.L.Info().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Warn(msg string, f feedcache.Fields)  { z.L.Warn().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Error(msg string, f feedcache.Fields) { z.L.Error().Fields(map[string]any(f)).Msg(msg) }

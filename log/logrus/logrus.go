package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/nook-app/feedcache"
)

type Logger struct{ E *logrus.Entry }

var _ feedcache.Logger = Logger{}

func (l Logger) Debug(msg string, f feedcache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l Logger) Info(msg string, f feedcache.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f feedcache.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f feedcache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}

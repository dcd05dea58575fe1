// Package log provides the single structured logger shared by every pvstd
// component: one logger instance injected into long-lived managers rather
// than a package global reached for at each call site.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the root logger. levelName accepts the logrus level names
// ("debug", "info", "warn", "error"); an unrecognized name falls back to
// info.
func New(levelName string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

// Component returns a logger scoped to a subsystem name, for a per-manager
// logger field.
func Component(base *logrus.Logger, name string) *logrus.Entry {
	return base.WithField("component", name)
}

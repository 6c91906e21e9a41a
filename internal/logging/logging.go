// Package logging builds the logrus logger shared by the CLI and pipeline.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Level  string // logrus level name; empty means info
	Format string // "text" (default) or "json"
	Output io.Writer
}

// New returns a configured logger.
func New(opt Options) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if opt.Output != nil {
		l.SetOutput(opt.Output)
	}

	level := logrus.InfoLevel
	if opt.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(opt.Level); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}
	l.SetLevel(level)

	switch opt.Format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opt.Format)
	}
	return l, nil
}

// Discard returns a logger that drops everything, for tests and library
// callers that pass no logger.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

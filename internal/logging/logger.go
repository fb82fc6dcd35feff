// Package logging provides structured logging configuration using logrus.
//
// Run metadata (run id, action, entity, row) travels on the context and is
// attached to every entry obtained through FromContext, so all lines of one
// import run can be correlated.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger.
//
// Level values: "debug", "info", "warn", "error", "silent" (default: "info")
// Format values: "text", "json" (default: "text")
//
// When file is non-empty, entries are written to both stderr and the file.
// The returned closer releases the file and is never nil.
func Setup(level, format, file string) (io.Closer, error) {
	logger := logrus.StandardLogger()
	logger.SetLevel(parseLevel(level))
	if strings.EqualFold(level, "silent") {
		logger.SetOutput(io.Discard)
		return nopCloser{}, nil
	}

	if strings.ToLower(format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if file == "" {
		logger.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nopCloser{}, errors.Wrapf(err, "open log file %s", file)
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// parseLevel converts a string log level to a logrus.Level.
func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error", "silent":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// FromContext returns an entry carrying the run metadata found on ctx.
//
// Usage:
//
//	log := logging.FromContext(ctx)
//	log.WithField("sheet", sheet).Info("sheet loaded")
func FromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if v := RunID(ctx); v != "" {
		fields["run_id"] = v
	}
	if v, ok := ctx.Value(ctxKeyAction).(string); ok && v != "" {
		fields["action"] = v
	}
	if v, ok := ctx.Value(ctxKeyEntity).(string); ok && v != "" {
		fields["entity"] = v
	}
	if v, ok := ctx.Value(ctxKeyRow).(int); ok && v > 0 {
		fields["row"] = v
	}
	return logrus.WithFields(fields)
}

// WithFields returns an entry with run metadata plus extra fields.
//
// Usage:
//
//	log := logging.WithFields(ctx, logrus.Fields{"file": path})
//	log.Info("import started")
func WithFields(ctx context.Context, fields logrus.Fields) *logrus.Entry {
	return FromContext(ctx).WithFields(fields)
}

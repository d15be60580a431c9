// Package logging builds the process logger and carries request trace IDs
// through contexts.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type traceIDKey struct{}

// New returns a logger at the given level ("debug", "info", ...) writing
// JSON or text lines to out.
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("log format %q: want json or text", format)
	}
	return logger, nil
}

// NewTraceID returns a fresh random trace ID.
func NewTraceID() string { return uuid.NewString() }

// WithTraceID stores id in ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceID returns the ID stored by WithTraceID, or "".
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// FromContext returns an entry of base tagged with the context's trace ID.
func FromContext(ctx context.Context, base logrus.FieldLogger) *logrus.Entry {
	entry := base.WithFields(logrus.Fields{})
	if id := TraceID(ctx); id != "" {
		entry = entry.WithField("trace_id", id)
	}
	return entry
}

// LogRequest writes the one-line access log for a finished request.
func LogRequest(ctx context.Context, base logrus.FieldLogger, method, path string, status int, duration time.Duration) {
	entry := FromContext(ctx, base).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	})
	if status >= 500 {
		entry.Error("request failed")
		return
	}
	entry.Info("request")
}

package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Output io.Writer // defaults to stdout
	Level  string    // debug, info, warn, error
	Format string    // json, console
}

// New creates a new zerolog logger based on config.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Caller().
		Logger()
}

// WithRequestID stores a child of l tagged with the request id in ctx.
func WithRequestID(ctx context.Context, l zerolog.Logger, requestID string) context.Context {
	if requestID == "" {
		return l.WithContext(ctx)
	}
	child := l.With().Str("request_id", requestID).Logger()
	return child.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or fallback when ctx holds
// none.
func FromContext(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

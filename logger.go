package shortlist

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/shortlist/retention"
)

// Logger wraps slog.Logger with shortlist-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRequest adds a request_id field to the logger.
func (l *Logger) WithRequest(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("request_id", id),
	}
}

// WithCapacity adds the retention capacity to the logger.
func (l *Logger) WithCapacity(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("capacity", k),
	}
}

// LogSearch logs the end of a search.
func (l *Logger) LogSearch(ctx context.Context, sum Summary, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"reason", sum.Reason.String(),
			"tuples", sum.Tuples,
			"offers", sum.Stats.Offers,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"reason", sum.Reason.String(),
			"tuples", sum.Tuples,
			"offers", sum.Stats.Offers,
			"retained", sum.Retained,
			"duration", sum.Duration,
		)
	}
}

// LogBatch logs the end of a RunAll call.
func (l *Logger) LogBatch(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "batch completed",
			"count", count,
		)
	}
}

// LogRescore logs a rescoring pass.
func (l *Logger) LogRescore(ctx context.Context, appraiserID string, res retention.RescoreResult) {
	l.DebugContext(ctx, "rescore completed",
		"appraiser", appraiserID,
		"rescored", res.Rescored,
		"reoffered", res.Reoffered,
		"retained", res.Retained,
	)
}

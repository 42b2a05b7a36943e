package gridex

import (
	"context"
	"log/slog"
	"os"
)

// Logger is an slog.Logger that knows the attribute names gridex logs under.
type Logger struct {
	*slog.Logger
}

// NewLogger logs to handler, or as text to stderr at info level when handler
// is nil.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		return NewTextLogger(slog.LevelInfo)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON lines at level and above to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger logs key=value lines at level and above to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger drops everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithCollection tags every entry with the collection name.
func (l *Logger) WithCollection(name string) *Logger {
	return &Logger{Logger: l.With("collection", name)}
}

// WithPartition tags every entry with the partition name.
func (l *Logger) WithPartition(name string) *Logger {
	return &Logger{Logger: l.With("partition", name)}
}

// LogBuild logs a collection build.
func (l *Logger) LogBuild(ctx context.Context, records int, sizes []int, density float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"records", records,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "build completed",
			"records", records,
			"sizes", sizes,
			"density", density,
		)
	}
}

// LogReindex logs a reindex onto a published grid.
func (l *Logger) LogReindex(ctx context.Context, carried, dropped int, extended []int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "reindex failed",
			"error", err,
		)
	case dropped > 0:
		l.WarnContext(ctx, "reindex dropped cells outside the published index space",
			"carried", carried,
			"dropped", dropped,
			"extended", extended,
		)
	default:
		l.InfoContext(ctx, "reindex completed",
			"carried", carried,
			"extended", extended,
		)
	}
}

// LogPublish logs the publication of a new grid version.
func (l *Logger) LogPublish(ctx context.Context, version uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "publish failed",
			"version", version,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "published",
			"version", version,
		)
	}
}

package blockarena

import (
	"context"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with arena-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithCapacity adds a capacity field to the logger.
func (l *Logger) WithCapacity(capacity int) *Logger {
	return &Logger{
		Logger: l.Logger.With("capacity", capacity),
	}
}

// LogOpen logs arena construction.
func (l *Logger) LogOpen(ctx context.Context, capacity int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "arena open failed",
			"capacity", capacity,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "arena opened",
			"capacity", capacity,
			"capacity_human", humanize.IBytes(uint64(capacity)), //nolint:gosec // capacity is positive
		)
	}
}

// LogClose logs arena disposal.
func (l *Logger) LogClose(ctx context.Context, liveBlocks int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "arena close failed",
			"live_blocks", liveBlocks,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "arena closed",
			"live_blocks", liveBlocks,
		)
	}
}

// LogAllocate logs an allocate operation.
func (l *Logger) LogAllocate(ctx context.Context, id, size int, err error) {
	if err != nil {
		l.WarnContext(ctx, "allocate failed",
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "allocate completed",
			"block_id", id,
			"size", size,
		)
	}
}

// LogFree logs a free operation.
func (l *Logger) LogFree(ctx context.Context, id int, err error) {
	if err != nil {
		l.WarnContext(ctx, "free failed",
			"block_id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "free completed",
			"block_id", id,
		)
	}
}

// LogGrowth logs a descriptor table growth.
func (l *Logger) LogGrowth(ctx context.Context, fromSlots, toSlots, shiftedBytes int) {
	l.DebugContext(ctx, "descriptor table grown",
		"from_slots", fromSlots,
		"to_slots", toSlots,
		"shifted_bytes", shiftedBytes,
	)
}

// LogDefragment logs a compaction pass that moved data.
func (l *Logger) LogDefragment(ctx context.Context, movedBlocks, movedBytes int, staged bool) {
	l.DebugContext(ctx, "arena defragmented",
		"moved_blocks", movedBlocks,
		"moved_bytes", movedBytes,
		"moved_human", humanize.IBytes(uint64(movedBytes)), //nolint:gosec // movedBytes is non-negative
		"staged", staged,
	)
}

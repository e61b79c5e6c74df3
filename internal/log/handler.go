package log

import (
	"context"
	"io"
	"log/slog"
)

// Handler wraps an slog.Handler and drops records below the verbosity's
// minimum level before they reach the underlying handler.
type Handler struct {
	// handler is the underlying slog handler that receives the records.
	handler slog.Handler

	// minLevel is the lowest level passed through.
	minLevel slog.Level
}

// NewHandler creates a Handler wrapping the given handler.
// If handler is nil, the returned Handler uses slog.Default().Handler().
func NewHandler(handler slog.Handler, verbosity Verbosity) *Handler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &Handler{handler: handler, minLevel: verbosity.MinLevel()}
}

// Enabled reports whether the handler handles records at the given level.
// Both the verbosity and the underlying handler must accept the level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.minLevel {
		return false
	}
	return h.handler.Enabled(ctx, level)
}

// Handle passes the record to the underlying handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.minLevel {
		return nil
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{handler: h.handler.WithAttrs(attrs), minLevel: h.minLevel}
}

// WithGroup returns a new handler with the given group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{handler: h.handler.WithGroup(name), minLevel: h.minLevel}
}

// handlerOptions returns the options shared by the text and JSON loggers.
// The underlying handler accepts everything down to LevelDetail; the
// verbosity filter lives in Handler.
func handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       LevelDetail,
		ReplaceAttr: renameLevel,
	}
}

// renameLevel prints the custom levels by name instead of "INFO-1".
func renameLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(LevelName(level))
	}
	return a
}

// NewLogger creates a text slog.Logger filtered by verbosity.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbosity: The report verbosity, 0 to 5
func NewLogger(w io.Writer, verbosity Verbosity) *slog.Logger {
	return slog.New(NewHandler(slog.NewTextHandler(w, handlerOptions()), verbosity))
}

// NewJSONLogger creates a JSON slog.Logger filtered by verbosity.
// Useful for structured log aggregation in batch runs.
func NewJSONLogger(w io.Writer, verbosity Verbosity) *slog.Logger {
	return slog.New(NewHandler(slog.NewJSONHandler(w, handlerOptions()), verbosity))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

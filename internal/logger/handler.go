package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const runIDKey ctxKey = "run_id"

// WithRunID tags a context with the id attached to every record produced
// during one CLI invocation.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("run_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	observerIDKey
)

// WithRequestID returns a context carrying the HTTP request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithObserverID returns a context carrying the WebSocket observer ID.
func WithObserverID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, observerIDKey, id)
}

// ObserverIDFromContext returns the observer ID, or "" when none is set.
func ObserverIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(observerIDKey).(string)
	return id
}

// contextHandler adds request_id and observer_id to records logged through
// the *Context methods. Attributes land in the innermost open group.
type contextHandler struct {
	next slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := RequestIDFromContext(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
		if id := ObserverIDFromContext(ctx); id != "" {
			r.AddAttrs(slog.String("observer_id", id))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}

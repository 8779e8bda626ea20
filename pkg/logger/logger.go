package logger

import (
	"context"
	"log/slog"
	"maps"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

const (
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"
	KeyUserID    = "user_id"
)

type attrsKey struct{}

// AppendCtx returns a context whose records carry attrs in addition to any already attached.
func AppendCtx(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	existing, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// ContextHandler decorates records with the span, request and caller found in the context.
// Keys the record or the logger already carry are not repeated.
type ContextHandler struct {
	next  slog.Handler
	bound map[string]struct{}
}

func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := contextAttrs(ctx)
	if len(attrs) == 0 {
		return h.next.Handle(ctx, r)
	}
	seen := maps.Clone(h.bound)
	if seen == nil {
		seen = make(map[string]struct{}, r.NumAttrs())
	}
	r.Attrs(func(a slog.Attr) bool {
		seen[a.Key] = struct{}{}
		return true
	})
	for _, a := range attrs {
		if _, dup := seen[a.Key]; dup {
			continue
		}
		seen[a.Key] = struct{}{}
		r.AddAttrs(a)
	}
	return h.next.Handle(ctx, r)
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String(KeyTraceID, sc.TraceID().String()),
			slog.String(KeySpanID, sc.SpanID().String()),
		)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String(KeyRequestID, reqID))
	}
	if extra, ok := ctx.Value(attrsKey{}).([]slog.Attr); ok {
		attrs = append(attrs, extra...)
	}
	return attrs
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := maps.Clone(h.bound)
	if bound == nil {
		bound = make(map[string]struct{}, len(attrs))
	}
	for _, a := range attrs {
		bound[a.Key] = struct{}{}
	}
	return &ContextHandler{next: h.next.WithAttrs(attrs), bound: bound}
}

func (h *ContextHandler) WithGroup(group string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(group), bound: h.bound}
}

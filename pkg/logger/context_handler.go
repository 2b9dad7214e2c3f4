package logger

import (
	"context"
	"log/slog"
	"maps"
)

// ContextExtractor pulls one attribute out of a record's context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// contextHandler appends extractor attributes to every record. A key the
// record or the logger already carries wins over the extractor, so an
// explicit logger.TenantID(...) is never written twice.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
	// bound holds keys added through WithAttrs since the last WithGroup.
	bound map[string]struct{}
}

func newContextHandler(next slog.Handler, extractors []ContextExtractor) slog.Handler {
	if len(extractors) == 0 {
		return next
	}
	return &contextHandler{next: next, extractors: extractors}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	var present map[string]struct{}
	for _, extract := range h.extractors {
		attr, ok := extract(ctx)
		if !ok || attr.Equal(slog.Attr{}) {
			continue
		}
		if present == nil {
			present = h.keys(rec)
		}
		if _, dup := present[attr.Key]; dup {
			continue
		}
		present[attr.Key] = struct{}{}
		rec.AddAttrs(attr)
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) keys(rec slog.Record) map[string]struct{} {
	keys := make(map[string]struct{}, rec.NumAttrs()+len(h.bound))
	maps.Copy(keys, h.bound)
	rec.Attrs(func(a slog.Attr) bool {
		keys[a.Key] = struct{}{}
		return true
	})
	return keys
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make(map[string]struct{}, len(h.bound)+len(attrs))
	maps.Copy(bound, h.bound)
	for _, a := range attrs {
		bound[a.Key] = struct{}{}
	}
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors, bound: bound}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	// keys bound so far sit outside the new group and cannot collide
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

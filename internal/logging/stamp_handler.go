package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldSessionID identifies one geotag invocation in a shared log file.
	FieldSessionID = "session_id"
	// FieldPID is the process ID of the invocation.
	FieldPID = "pid"
)

// stampHandler appends fixed attributes to every record after the caller's
// own, so they never shadow per-line fields.
type stampHandler struct {
	next   slog.Handler
	stamps []slog.Attr
}

func withStamps(next slog.Handler, stamps ...slog.Attr) slog.Handler {
	if len(stamps) == 0 {
		return next
	}
	return stampHandler{next: next, stamps: stamps}
}

func (h stampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h stampHandler) Handle(ctx context.Context, record slog.Record) error {
	record = record.Clone()
	record.AddAttrs(h.stamps...)
	return h.next.Handle(ctx, record)
}

func (h stampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return stampHandler{next: h.next.WithAttrs(attrs), stamps: h.stamps}
}

func (h stampHandler) WithGroup(name string) slog.Handler {
	return stampHandler{next: h.next.WithGroup(name), stamps: h.stamps}
}

package logging

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"time"
)

const defaultErrorHint = "check logs for details"

// WarnWithContext logs a warning that always carries an event type, a hint
// and an impact, filling in defaults for whichever the caller left out.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	attrs = withEventFields(attrs, eventType)
	if !hasKey(attrs, FieldImpact) {
		attrs = append(attrs, slog.String(FieldImpact, "operation completed with warnings"))
	}
	emit(logger, slog.LevelWarn, msg, attrs)
}

// ErrorWithContext logs an error that always carries an event type and a hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	emit(logger, slog.LevelError, msg, withEventFields(attrs, eventType))
}

func withEventFields(attrs []Attr, eventType string) []Attr {
	attrs = slices.Clone(attrs)
	if !hasKey(attrs, FieldEventType) {
		attrs = append(attrs, slog.String(FieldEventType, eventType))
	}
	if !hasKey(attrs, FieldErrorHint) {
		attrs = append(attrs, slog.String(FieldErrorHint, defaultErrorHint))
	}
	return attrs
}

func hasKey(attrs []Attr, key string) bool {
	return slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == key })
}

// emit builds the record by hand so the source location points at the
// caller of WarnWithContext or ErrorWithContext rather than at this file.
func emit(logger *slog.Logger, level slog.Level, msg string, attrs []Attr) {
	if logger == nil {
		return
	}
	ctx := context.Background()
	if !logger.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.AddAttrs(attrs...)
	_ = logger.Handler().Handle(ctx, record)
}

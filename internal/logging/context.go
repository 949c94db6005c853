package logging

import (
	"context"
	"log/slog"

	"geotag/internal/services"
)

// Field keys shared by every handler.
const (
	FieldComponent     = "component"
	FieldBatchID       = "batch_id"
	FieldPath          = "path"
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a line for filtering, e.g. "save_failed".
	FieldEventType = "event_type"
	// FieldErrorKind carries faults.Kind of the reported error.
	FieldErrorKind = "error_kind"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	FieldAlert  = "alert"
)

type contextField struct {
	key    string
	lookup func(context.Context) (string, bool)
}

var contextFields = []contextField{
	{FieldBatchID, services.BatchIDFromContext},
	{FieldPath, services.PathFromContext},
	{FieldCorrelationID, services.RequestIDFromContext},
}

// ContextFields returns the batch, image and correlation fields carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var out []slog.Attr
	for _, f := range contextFields {
		if v, ok := f.lookup(ctx); ok {
			out = append(out, slog.String(f.key, v))
		}
	}
	return out
}

// WithContext binds the fields from ctx to logger. The logger is returned
// unchanged when ctx carries none.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(fields))
}

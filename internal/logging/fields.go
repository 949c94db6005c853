package logging

import (
	"log/slog"
	"time"

	"geotag/internal/faults"
)

// Attr is re-exported so callers need not import log/slog for field helpers.
type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Path tags a line with the image it concerns.
func Path(path string) Attr { return slog.String(FieldPath, path) }

// Error returns the "error" field, or an empty Attr that handlers drop when
// err is nil.
func Error(err error) Attr {
	if err == nil {
		return Attr{}
	}
	return slog.Any("error", err)
}

// ErrorKind tags err with its stable kind from faults.Kind.
func ErrorKind(err error) Attr {
	return slog.String(FieldErrorKind, faults.Kind(err))
}

// NewNop returns a logger that writes nothing.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags base with a component name. A nil base yields a
// no-op logger.
func NewComponentLogger(base *slog.Logger, component string) *slog.Logger {
	if base == nil {
		base = NewNop()
	}
	return base.With(slog.String(FieldComponent, component))
}

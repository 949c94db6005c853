package logging

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// Info lines list these fields first, in this order.
var consoleFieldRank = map[string]int{
	FieldAlert:     0,
	FieldEventType: 1,
	FieldErrorKind: 2,
	"error":        3,
	FieldErrorHint: 4,
	FieldImpact:    5,
	"exit_code":    6,
	"location":     7,
	"saved":        8,
	"failed":       9,
}

// Info lines drop these; they are in the header or only useful when debugging.
var consoleHiddenAtInfo = map[string]bool{
	FieldPath:      true,
	FieldBatchID:   true,
	FieldSessionID: true,
	FieldPID:       true,
}

type field struct {
	key   string
	value slog.Value
}

// consoleHandler prints a header line per record:
//
//	2026-01-02 15:04:05 INFO [persist] IMG_0001.jpg · Batch 01234567 – image saved
//
// followed by indented fields. At info and above fields get readable labels
// and a fixed priority order; at debug every field is printed under its key.
type consoleHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Leveler
	source bool
	bound  []field
	prefix string
}

func newConsoleHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), out: w, level: lvl, source: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.bound = slices.Clip(h.bound)
	for _, a := range attrs {
		next.bound = appendField(next.bound, h.prefix, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	fields := slices.Clone(h.bound)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.prefix, a)
		return true
	})
	fields = lastWins(fields)

	var component, path, batch string
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = f.value.String()
		case FieldPath:
			path = f.value.String()
		case FieldBatchID:
			batch = f.value.String()
		}
	}

	var b strings.Builder
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	b.WriteString(" " + levelName(r.Level))
	if component != "" {
		b.WriteString(" [" + component + "]")
	}
	if subject := subjectOf(path, batch); subject != "" {
		b.WriteString(" " + subject)
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(" – " + msg)
	if h.source && r.PC != 0 {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')

	if r.Level < slog.LevelInfo {
		for _, f := range fields {
			if f.key == FieldComponent {
				continue
			}
			fmt.Fprintf(&b, "    %s: %s\n", f.key, debugValue(f.value))
		}
	} else {
		shown := slices.DeleteFunc(fields, func(f field) bool {
			return f.key == FieldComponent || consoleHiddenAtInfo[f.key]
		})
		slices.SortStableFunc(shown, func(a, b field) int {
			return cmp.Compare(rankOf(a.key), rankOf(b.key))
		})
		for _, f := range shown {
			fmt.Fprintf(&b, "    - %s: %s\n", fieldLabel(f.key), plainValue(f.value))
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func appendField(dst []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, member := range a.Value.Group() {
			dst = appendField(dst, prefix, member)
		}
		return dst
	}
	if a.Key == "" {
		return dst
	}
	return append(dst, field{key: prefix + a.Key, value: a.Value})
}

// lastWins keeps the first position of each key with its latest value.
func lastWins(fields []field) []field {
	at := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if i, ok := at[f.key]; ok {
			out[i].value = f.value
			continue
		}
		at[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func rankOf(key string) int {
	if r, ok := consoleFieldRank[key]; ok {
		return r
	}
	return len(consoleFieldRank)
}

// subjectOf names what a line is about: the image, then a short batch ID.
func subjectOf(path, batch string) string {
	var parts []string
	if path = strings.TrimSpace(path); path != "" {
		parts = append(parts, filepath.Base(path))
	}
	if batch = strings.TrimSpace(batch); batch != "" {
		parts = append(parts, "Batch "+batch[:min(len(batch), 8)])
	}
	return strings.Join(parts, " · ")
}

// fieldLabel turns "error_kind" into "Error kind".
func fieldLabel(key string) string {
	label := strings.NewReplacer("_", " ", ".", " ").Replace(key)
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

func plainValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().Local().Format(consoleTimeLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

// debugValue quotes values that would otherwise be ambiguous on one line.
func debugValue(v slog.Value) string {
	s := plainValue(v)
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '"' || r == '=' }) {
		return strconv.Quote(s)
	}
	return s
}

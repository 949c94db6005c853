package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestStampHandlerAppendsFields(t *testing.T) {
	var buf bytes.Buffer
	handler := withStamps(slog.NewJSONHandler(&buf, nil), slog.String(FieldSessionID, "s-1"), slog.Int(FieldPID, 42))

	slog.New(handler).With("extra", "value").Info("stamped")

	out := buf.String()
	for _, want := range []string{`"session_id":"s-1"`, `"pid":42`, `"extra":"value"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
	if strings.Index(out, `"extra"`) > strings.Index(out, `"session_id"`) {
		t.Errorf("stamps should follow record fields: %s", out)
	}
}

func TestStampHandlerGroupsKeepStampsInside(t *testing.T) {
	var buf bytes.Buffer
	handler := withStamps(slog.NewJSONHandler(&buf, nil), slog.String(FieldSessionID, "s-2"))

	slog.New(handler).WithGroup("exiftool").Info("grouped", "args", 3)

	if out := buf.String(); !strings.Contains(out, `"exiftool":{"args":3,"session_id":"s-2"}`) {
		t.Errorf("unexpected grouped output %s", out)
	}
}

func TestWithStampsWithoutStampsReturnsNext(t *testing.T) {
	next := slog.NewTextHandler(&bytes.Buffer{}, nil)
	if got := withStamps(next); got != slog.Handler(next) {
		t.Fatalf("expected the wrapped handler back, got %T", got)
	}
}

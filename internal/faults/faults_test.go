package faults_test

import (
	"errors"
	"fmt"
	"testing"

	"geotag/internal/faults"
)

type customKind struct{}

func (customKind) Error() string     { return "custom" }
func (customKind) ErrorKind() string { return "custom_kind" }

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := faults.Wrap(faults.ErrBackup, "backup", "copy /a.jpg", cause)
	if !errors.Is(err, faults.ErrBackup) {
		t.Fatalf("expected backup marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if got := err.Error(); got != "backup failed: backup: copy /a.jpg: permission denied" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapWithoutMarkerOrDetail(t *testing.T) {
	err := faults.Wrap(nil, "", "", nil)
	if err.Error() != "operation failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"timeout", fmt.Errorf("write: %w", faults.ErrTimeout), "timeout"},
		{"duplicate", faults.Wrap(faults.ErrDuplicatePath, "insert", "/a.jpg", nil), "duplicate_path"},
		{"track", faults.Wrap(faults.ErrNoTrackMatch, "match", "a.jpg", nil), "no_track_match"},
		{"classifier wins", fmt.Errorf("wrapped: %w", customKind{}), "custom_kind"},
		{"unknown", errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faults.Kind(tt.err); got != tt.want {
				t.Fatalf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

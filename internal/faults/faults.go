package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnreadableFile    = errors.New("unreadable file")
	ErrDuplicatePath     = errors.New("duplicate path")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrNotFound          = errors.New("not found")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrLaunchFailed      = errors.New("subprocess launch failed")
	ErrTimeout           = errors.New("subprocess timeout")
	ErrNonzeroExit       = errors.New("subprocess nonzero exit")
	ErrCancelled         = errors.New("cancelled")
	ErrBackup            = errors.New("backup failed")
	ErrUnsupported       = errors.New("unsupported file type")
	ErrSpawnExhausted    = errors.New("unable to spawn any subprocess")
	ErrSaveInProgress    = errors.New("save already in progress")
	ErrInvalidTrack      = errors.New("invalid track log")
	ErrNoTrackMatch      = errors.New("no track point")
)

// Classifier lets an error declare its own kind. Kind consults it before
// falling back to the sentinel markers.
type Classifier interface {
	ErrorKind() string
}

// Wrap builds an error that carries operation context while remaining
// matchable against marker with errors.Is.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		if err == nil {
			return errors.New(detail)
		}
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

var kinds = []struct {
	marker error
	kind   string
}{
	{ErrUnreadableFile, "unreadable_file"},
	{ErrDuplicatePath, "duplicate_path"},
	{ErrIndexOutOfRange, "index_out_of_range"},
	{ErrNotFound, "not_found"},
	{ErrInvalidCoordinate, "invalid_coordinate"},
	{ErrCancelled, "cancelled"},
	{ErrTimeout, "timeout"},
	{ErrLaunchFailed, "launch_failed"},
	{ErrNonzeroExit, "nonzero_exit"},
	{ErrBackup, "backup_failed"},
	{ErrUnsupported, "unsupported"},
	{ErrSpawnExhausted, "spawn_exhausted"},
	{ErrSaveInProgress, "save_in_progress"},
	{ErrInvalidTrack, "invalid_track"},
	{ErrNoTrackMatch, "no_track_match"},
}

// Kind maps err to a stable snake_case classification used in logs, JSON
// output and the history journal. A nil error has kind "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var classifier Classifier
	if errors.As(err, &classifier) {
		if kind := strings.TrimSpace(classifier.ErrorKind()); kind != "" {
			return kind
		}
	}
	for _, entry := range kinds {
		if errors.Is(err, entry.marker) {
			return entry.kind
		}
	}
	return "error"
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}

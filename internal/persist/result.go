package persist

import (
	"time"

	"geotag/internal/coords"
)

// Status is the final state of one image in a batch.
type Status string

const (
	StatusSaved  Status = "saved"
	StatusFailed Status = "failed"
)

// Outcome reports what happened to one image.
type Outcome struct {
	// Index is the record's position in the store, or in the slice passed
	// to Save.
	Index int
	Path  string
	// Target is the file ExifTool was asked to modify; the XMP sidecar when
	// the image has one.
	Target string
	Status Status
	// Written is the location snapshotted before fan-out.
	Written coords.Location
	// Backup is the copy made before the write, if any.
	Backup string
	Err    error
	// Kind is faults.Kind(Err); empty when saved.
	Kind string
	// ExitCode is set for nonzero_exit failures.
	ExitCode int
	Duration time.Duration
}

// BatchResult aggregates one batch save.
type BatchResult struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Saved    int
	Failed   int
	Outcomes []Outcome
}

// Cancelled counts failures caused by cancellation.
func (r BatchResult) Cancelled() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == "cancelled" {
			n++
		}
	}
	return n
}

// Duration is the wall time of the batch.
func (r BatchResult) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

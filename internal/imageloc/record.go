package imageloc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"geotag/internal/coords"
	"geotag/internal/faults"
	"geotag/internal/metadata"
)

// CapturedAt is the capture timestamp read from the image. Raw keeps the EXIF
// text; Time is zero when Raw is empty or unparsable.
type CapturedAt struct {
	Raw  string
	Time time.Time
}

// ImageLocation is the working-set record for one image file.
type ImageLocation struct {
	path     string
	name     string
	sidecar  string
	captured CapturedAt
	loadable bool
	writable bool
	readErr  error

	mu       sync.Mutex
	current  coords.Location
	original coords.Location
}

// LocationReporter is the narrow view display code needs of a record.
type LocationReporter interface {
	Path() string
	Current() coords.Location
	Dirty() bool
}

var _ LocationReporter = (*ImageLocation)(nil)

// CreateOption adjusts record creation.
type CreateOption func(*createConfig)

type createConfig struct {
	zone *time.Location
}

// WithTimeZone sets the zone capture timestamps are interpreted in.
func WithTimeZone(zone *time.Location) CreateOption {
	return func(c *createConfig) {
		if zone != nil {
			c.zone = zone
		}
	}
}

// Create builds a record for path. Metadata comes from reader; an existing
// XMP sidecar overrides the image's own tags.
func Create(ctx context.Context, path string, reader metadata.Reader, opts ...CreateOption) (*ImageLocation, error) {
	cfg := createConfig{zone: time.Local}
	for _, opt := range opts {
		opt(&cfg)
	}
	if strings.TrimSpace(path) == "" {
		return nil, faults.Wrap(faults.ErrUnreadableFile, "create image", "empty path", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUnreadableFile, "create image", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUnreadableFile, "create image", abs, err)
	}
	if !info.Mode().IsRegular() {
		return nil, faults.Wrap(faults.ErrUnreadableFile, "create image", abs+" is not a regular file", nil)
	}

	rec := &ImageLocation{
		path:    abs,
		name:    filepath.Base(abs),
		sidecar: metadata.ExistingSidecar(abs),
	}
	rec.writable = rec.sidecar != "" || metadata.Writable(abs)

	md, err := readMetadata(ctx, reader, abs)
	switch {
	case err == nil:
		rec.loadable = metadata.Loadable(abs)
	case errors.Is(err, metadata.ErrNoMetadata):
		rec.loadable = metadata.Loadable(abs)
	case ctx.Err() != nil:
		return nil, faults.Wrap(faults.ErrCancelled, "create image", abs, err)
	default:
		rec.readErr = err
	}

	if rec.sidecar != "" {
		side, err := readMetadata(ctx, reader, rec.sidecar)
		if err == nil {
			md.Location = side.Location
			if side.DateTimeOriginal != "" {
				md.DateTimeOriginal = side.DateTimeOriginal
			}
		} else if !errors.Is(err, metadata.ErrNoMetadata) && rec.readErr == nil {
			rec.readErr = err
		}
	}

	rec.captured.Raw = md.DateTimeOriginal
	if md.DateTimeOriginal != "" {
		if ts, err := metadata.ParseDateTime(md.DateTimeOriginal, cfg.zone); err == nil {
			rec.captured.Time = ts
		}
	}
	if md.Location.Valid() {
		rec.current = md.Location
		rec.original = md.Location
	}
	return rec, nil
}

func readMetadata(ctx context.Context, reader metadata.Reader, path string) (metadata.Metadata, error) {
	if reader == nil {
		return metadata.Metadata{}, metadata.ErrNoMetadata
	}
	return reader.Read(ctx, path)
}

func (r *ImageLocation) Path() string           { return r.path }
func (r *ImageLocation) Name() string           { return r.name }
func (r *ImageLocation) CapturedAt() CapturedAt { return r.captured }

// SidecarPath returns the XMP sidecar that existed at load time, or "".
func (r *ImageLocation) SidecarPath() string { return r.sidecar }

// ImageLoadable reports whether the image decodes for preview.
func (r *ImageLocation) ImageLoadable() bool { return r.loadable }

// Writable reports whether ExifTool can store a location for this record.
func (r *ImageLocation) Writable() bool { return r.writable }

// ReadError is the metadata failure seen at load, if any.
func (r *ImageLocation) ReadError() error { return r.readErr }

func (r *ImageLocation) Current() coords.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *ImageLocation) Original() coords.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.original
}

func (r *ImageLocation) ValidLocation() bool {
	return r.Current().Valid()
}

func (r *ImageLocation) ValidOriginalLocation() bool {
	return r.Original().Valid()
}

// Dirty reports whether the working location differs from the one on disk.
func (r *ImageLocation) Dirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.current.Equal(r.original)
}

// State is a consistent view of the mutable fields.
type State struct {
	Current       coords.Location
	Original      coords.Location
	Valid         bool
	ValidOriginal bool
	Dirty         bool
}

// State reads every mutable field under one lock acquisition.
func (r *ImageLocation) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Current:       r.current,
		Original:      r.original,
		Valid:         r.current.Valid(),
		ValidOriginal: r.original.Valid(),
		Dirty:         !r.current.Equal(r.original),
	}
}

// Revert discards unsaved edits.
func (r *ImageLocation) Revert() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = r.original
}

// MarkSaved records the working location as persisted.
func (r *ImageLocation) MarkSaved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.original = r.current
}

// MarkSavedAs records written as persisted. Edits made after written was
// captured keep the record dirty.
func (r *ImageLocation) MarkSavedAs(written coords.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.original = written
}

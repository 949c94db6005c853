package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"geotag/internal/coords"
)

// ErrNoMetadata reports a file that carries no readable metadata block. It
// is not a failure: callers treat it as "no embedded location".
var ErrNoMetadata = errors.New("no metadata")

// DateTimeLayout is the EXIF DateTimeOriginal layout.
const DateTimeLayout = "2006:01:02 15:04:05"

// SidecarExtension is the extension of XMP sidecar files.
const SidecarExtension = ".xmp"

// Metadata is the subset of embedded image metadata the location model needs.
type Metadata struct {
	Location         coords.Location
	DateTimeOriginal string
	Source           string
}

// Reader extracts embedded metadata from one file.
type Reader interface {
	Read(ctx context.Context, path string) (Metadata, error)
}

// Chain tries each reader in order and returns the first success. Readers
// reporting ErrNoMetadata are skipped silently.
type Chain []Reader

// Read implements Reader.
func (c Chain) Read(ctx context.Context, path string) (Metadata, error) {
	var lastErr error
	for _, reader := range c {
		if reader == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Metadata{}, err
		}
		md, err := reader.Read(ctx, path)
		if err == nil {
			return md, nil
		}
		if errors.Is(err, ErrNoMetadata) && lastErr != nil {
			continue
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrNoMetadata
	}
	return Metadata{}, lastErr
}

// SidecarPath returns the XMP sidecar path for an image file whether or not
// it exists. An .xmp file is its own sidecar and yields "".
func SidecarPath(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, SidecarExtension) {
		return ""
	}
	return strings.TrimSuffix(path, ext) + SidecarExtension
}

// ExistingSidecar returns the sidecar path when a regular sidecar file exists.
func ExistingSidecar(path string) string {
	sidecar := SidecarPath(path)
	if sidecar == "" {
		return ""
	}
	info, err := os.Stat(sidecar)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return sidecar
}

// ParseDateTime interprets an EXIF timestamp in loc. Fractional seconds and
// trailing zone designators are ignored.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(strings.TrimRight(value, "\x00"))
	if len(trimmed) < len(DateTimeLayout) {
		return time.Time{}, fmt.Errorf("parse timestamp %q: too short", value)
	}
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateTimeLayout, trimmed[:len(DateTimeLayout)], loc)
}

// validLocation builds a location from raw degrees, dropping positions that
// fall outside the legal range as corrupt metadata.
func validLocation(latitude, longitude float64) (coords.Location, bool) {
	loc, err := coords.NewLocation(latitude, longitude)
	if err != nil {
		return coords.Location{}, false
	}
	return loc, true
}

package metadata

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"geotag/internal/coords"
)

// EXIFReader decodes EXIF blocks in-process. It understands JPEG and TIFF
// based files; anything else reports ErrNoMetadata so a Chain can fall back
// to ExifTool.
type EXIFReader struct{}

// Read implements Reader.
func (EXIFReader) Read(ctx context.Context, path string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return Metadata{}, ErrNoMetadata
	}

	md := Metadata{Source: "exif"}
	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if value, err := tag.StringVal(); err == nil {
			md.DateTimeOriginal = strings.TrimSpace(strings.TrimRight(value, "\x00"))
		}
	}

	if gpsVoid(x) {
		return md, nil
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		return md, nil
	}
	loc, ok := validLocation(lat, lon)
	if !ok {
		return md, nil
	}
	if elevation, ok := altitude(x); ok {
		loc = loc.WithElevation(elevation)
	}
	md.Location = loc
	return md, nil
}

// gpsVoid reports a GPSStatus of "V". Some cameras write placeholder GPS
// tags with a void status when no fix was available.
func gpsVoid(x *exif.Exif) bool {
	tag, err := x.Get(exif.GPSStatus)
	if err != nil {
		return false
	}
	value, err := tag.StringVal()
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(strings.TrimRight(value, "\x00")), "V")
}

func altitude(x *exif.Exif) (coords.Elevation, bool) {
	tag, err := x.Get(exif.GPSAltitude)
	if err != nil {
		return coords.Elevation{}, false
	}
	if tag.Count == 0 {
		return coords.Elevation{}, false
	}
	// Many cameras write 0/0 for an unknown altitude.
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return coords.Elevation{}, false
	}
	meters := float64(num) / float64(den)
	if ref, err := x.Get(exif.GPSAltitudeRef); err == nil && ref.Count > 0 {
		if below, err := ref.Int(0); err == nil && below == 1 {
			meters = -meters
		}
	}
	return coords.Meters(meters), true
}

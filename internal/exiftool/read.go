package exiftool

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"geotag/internal/coords"
	"geotag/internal/metadata"
)

// readTags are the tags requested from ExifTool. -n keeps numeric values raw
// so the reference letters must be applied here.
var readTags = []string{
	"-GPSLatitude",
	"-GPSLatitudeRef",
	"-GPSLongitude",
	"-GPSLongitudeRef",
	"-GPSAltitude",
	"-GPSAltitudeRef",
	"-GPSStatus",
	"-DateTimeOriginal",
	"-CreateDate",
}

type flexValue string

// UnmarshalJSON accepts both JSON numbers and strings.
func (v *flexValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = flexValue(s)
		return nil
	}
	*v = flexValue(data)
	return nil
}

func (v flexValue) float() (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	return value, err == nil
}

type readRecord struct {
	SourceFile       string    `json:"SourceFile"`
	GPSLatitude      flexValue `json:"GPSLatitude"`
	GPSLatitudeRef   flexValue `json:"GPSLatitudeRef"`
	GPSLongitude     flexValue `json:"GPSLongitude"`
	GPSLongitudeRef  flexValue `json:"GPSLongitudeRef"`
	GPSAltitude      flexValue `json:"GPSAltitude"`
	GPSAltitudeRef   flexValue `json:"GPSAltitudeRef"`
	GPSStatus        flexValue `json:"GPSStatus"`
	DateTimeOriginal flexValue `json:"DateTimeOriginal"`
	CreateDate       flexValue `json:"CreateDate"`
}

// Read implements metadata.Reader by asking ExifTool for the GPS tags as
// JSON. It serves XMP sidecars and formats goexif cannot decode.
func (c *Client) Read(ctx context.Context, path string) (metadata.Metadata, error) {
	var out strings.Builder
	args := append([]string{"-n", "-json"}, readTags...)
	args = append(args, path)
	if err := c.run(ctx, "read", args, func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
	}); err != nil {
		return metadata.Metadata{}, err
	}
	return decodeRead([]byte(out.String()))
}

func decodeRead(data []byte) (metadata.Metadata, error) {
	var records []readRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return metadata.Metadata{}, fmt.Errorf("decode exiftool json: %w", err)
	}
	if len(records) == 0 {
		return metadata.Metadata{}, metadata.ErrNoMetadata
	}
	rec := records[0]
	md := metadata.Metadata{Source: "exiftool"}
	md.DateTimeOriginal = strings.TrimSpace(string(rec.DateTimeOriginal))
	if md.DateTimeOriginal == "" {
		md.DateTimeOriginal = strings.TrimSpace(string(rec.CreateDate))
	}
	if strings.EqualFold(strings.TrimSpace(string(rec.GPSStatus)), "V") {
		return md, nil
	}

	lat, latOK := rec.GPSLatitude.float()
	lon, lonOK := rec.GPSLongitude.float()
	if !latOK || !lonOK {
		return md, nil
	}
	lat = applyRef(lat, string(rec.GPSLatitudeRef), "S")
	lon = applyRef(lon, string(rec.GPSLongitudeRef), "W")
	loc, err := coords.NewLocation(lat, lon)
	if err != nil {
		return md, nil
	}
	if alt, ok := rec.GPSAltitude.float(); ok {
		if ref, ok := rec.GPSAltitudeRef.float(); ok && ref == 1 && alt > 0 {
			alt = -alt
		}
		loc = loc.WithElevation(coords.Meters(alt))
	}
	md.Location = loc
	return md, nil
}

// applyRef negates value for a south or west reference. Values that already
// carry a sign are left alone.
func applyRef(value float64, ref, negative string) float64 {
	ref = strings.TrimSpace(ref)
	if ref == "" || value < 0 {
		return value
	}
	if strings.EqualFold(ref[:1], negative) {
		return -value
	}
	return value
}

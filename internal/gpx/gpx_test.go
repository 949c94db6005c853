package gpx_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"geotag/internal/coords"
	"geotag/internal/faults"
	"geotag/internal/gpx"
)

const walk = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <wpt lat="1" lon="1"><time>2024-06-01T09:00:00Z</time></wpt>
  <trk>
    <name>Morning walk</name>
    <trkseg>
      <trkpt lat="48.8580" lon="2.2940"><ele>30.0</ele><time>2024-06-01T10:00:00Z</time></trkpt>
      <trkpt lat="48.8600" lon="2.2940"><ele>40.0</ele><time>2024-06-01T10:10:00.500Z</time></trkpt>
      <trkpt lat="48.8620" lon="2.2960"><time>2024-06-01T10:20:00Z</time></trkpt>
      <trkpt lat="48.8630" lon="2.2970"></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="48.8700" lon="2.3000"><ele>50</ele><time>2024-06-01T11:00:00Z</time></trkpt>
      <trkpt lat="48.8710" lon="2.3010"><ele>52</ele><time>2024-06-01T11:05:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func parseWalk(t *testing.T) *gpx.Log {
	t.Helper()
	log, err := gpx.Parse(strings.NewReader(walk))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return log
}

func TestParse(t *testing.T) {
	log := parseWalk(t)
	if len(log.Tracks) != 1 || log.Tracks[0].Name != "Morning walk" {
		t.Fatalf("unexpected tracks %+v", log.Tracks)
	}
	if got := len(log.Tracks[0].Segments); got != 2 {
		t.Fatalf("segments = %d", got)
	}
	if log.Points() != 5 || log.Untimed != 1 {
		t.Fatalf("points = %d, untimed = %d", log.Points(), log.Untimed)
	}
	first := log.Tracks[0].Segments[0].Points[0]
	if first.Latitude != 48.858 || first.Longitude != 2.294 || coords.FormatElevation(first.Elevation) != "30.00" {
		t.Fatalf("unexpected first point %+v", first)
	}
	if log.Tracks[0].Segments[0].Points[2].Elevation.IsSet() {
		t.Fatal("point without <ele> should have no elevation")
	}
	start, end := log.Span()
	if !start.Equal(at(t, "2024-06-01T10:00:00Z")) || !end.Equal(at(t, "2024-06-01T11:05:00Z")) {
		t.Fatalf("span = %s .. %s", start, end)
	}
}

func TestParseSortsPointsAndReadsGPX10(t *testing.T) {
	doc := `<gpx version="1.0" xmlns="http://www.topografix.com/GPX/1/0"><trk><trkseg>
<trkpt lat="10" lon="20"><time>2024-01-01T00:10:00</time></trkpt>
<trkpt lat="11" lon="21"><time>2024-01-01T00:00:00Z</time></trkpt>
</trkseg></trk></gpx>`
	log, err := gpx.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	points := log.Tracks[0].Segments[0].Points
	if points[0].Latitude != 11 || points[1].Latitude != 10 {
		t.Fatalf("points not in time order: %+v", points)
	}
	if points[1].Time.Location() != time.UTC {
		t.Fatalf("offset-less time should be UTC, got %s", points[1].Time.Location())
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", "plain text"},
		{"no tracks", `<gpx><wpt lat="1" lon="2"><time>2024-01-01T00:00:00Z</time></wpt></gpx>`},
		{"no timed points", `<gpx><trk><trkseg><trkpt lat="1" lon="2"/></trkseg></trk></gpx>`},
		{"bad latitude", `<gpx><trk><trkseg><trkpt lat="north" lon="2"><time>2024-01-01T00:00:00Z</time></trkpt></trkseg></trk></gpx>`},
		{"out of range", `<gpx><trk><trkseg><trkpt lat="91" lon="2"><time>2024-01-01T00:00:00Z</time></trkpt></trkseg></trk></gpx>`},
		{"truncated", `<gpx><trk><trkseg><trkpt lat="1" lon="2">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gpx.Parse(strings.NewReader(tt.doc))
			if !errors.Is(err, faults.ErrInvalidTrack) {
				t.Fatalf("expected invalid track error, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "walk.gpx")
	if err := os.WriteFile(path, []byte(walk), 0o644); err != nil {
		t.Fatal(err)
	}
	logs, err := gpx.LoadAll([]string{path})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(logs) != 1 || logs[0].Path != path {
		t.Fatalf("unexpected logs %+v", logs)
	}
	_, err = gpx.LoadAll([]string{path, filepath.Join(dir, "missing.gpx")})
	if !errors.Is(err, faults.ErrInvalidTrack) || faults.Kind(err) != "invalid_track" {
		t.Fatalf("expected invalid track error, got %v", err)
	}
}

func TestLocate(t *testing.T) {
	logs := []*gpx.Log{parseWalk(t)}
	m := gpx.Matcher{}

	tests := []struct {
		name    string
		capture string
		lat     float64
		lon     float64
		ele     string
	}{
		{"exact point", "2024-06-01T10:00:00Z", 48.858, 2.294, "30.00"},
		{"between points takes the earlier", "2024-06-01T10:05:00Z", 48.858, 2.294, "30.00"},
		{"last point of a segment", "2024-06-01T10:45:00Z", 48.862, 2.296, ""},
		{"second segment", "2024-06-01T11:01:00Z", 48.870, 2.300, "50.00"},
		{"after the log within the gap", "2024-06-01T12:30:00Z", 48.871, 2.301, "52.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, err := m.Locate(logs, at(t, tt.capture))
			if err != nil {
				t.Fatalf("Locate: %v", err)
			}
			if fix.Interpolated {
				t.Fatal("interpolation is off by default")
			}
			if math.Abs(fix.Location.Latitude.Value()-tt.lat) > 1e-9 || math.Abs(fix.Location.Longitude.Value()-tt.lon) > 1e-9 {
				t.Fatalf("location = %s", fix.Location)
			}
			if got := coords.FormatElevation(fix.Location.Elevation); got != tt.ele {
				t.Fatalf("elevation = %q, want %q", got, tt.ele)
			}
		})
	}
}

func TestLocateMisses(t *testing.T) {
	logs := []*gpx.Log{parseWalk(t)}

	for _, tc := range []struct {
		name    string
		m       gpx.Matcher
		capture time.Time
	}{
		{"no capture time", gpx.Matcher{}, time.Time{}},
		{"before the log", gpx.Matcher{}, at(t, "2024-06-01T09:59:59Z")},
		{"past the default gap", gpx.Matcher{}, at(t, "2024-06-01T13:05:00Z")},
		{"past a custom gap", gpx.Matcher{MaxGap: time.Minute}, at(t, "2024-06-01T11:06:00Z")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.m.Locate(logs, tc.capture)
			if !errors.Is(err, faults.ErrNoTrackMatch) {
				t.Fatalf("expected no match, got %v", err)
			}
		})
	}
}

func TestLocateInterpolates(t *testing.T) {
	logs := []*gpx.Log{parseWalk(t)}
	m := gpx.Matcher{Interpolate: true}

	// Halfway between 11:00 and 11:05 in the second segment.
	fix, err := m.Locate(logs, at(t, "2024-06-01T11:02:30Z"))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if !fix.Interpolated {
		t.Fatal("expected an interpolated fix")
	}
	if math.Abs(fix.Location.Latitude.Value()-48.8705) > 1e-5 || math.Abs(fix.Location.Longitude.Value()-2.3005) > 1e-5 {
		t.Fatalf("location = %s", fix.Location)
	}
	if got := coords.FormatElevation(fix.Location.Elevation); got != "51.00" {
		t.Fatalf("elevation = %q", got)
	}

	// The last point of a segment has nothing to interpolate towards.
	fix, err = m.Locate(logs, at(t, "2024-06-01T10:30:00Z"))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fix.Interpolated || fix.Location.Latitude.Value() != 48.862 {
		t.Fatalf("unexpected fix %+v", fix)
	}
}

func TestLocatePrefersLatestPointAcrossLogs(t *testing.T) {
	early := parseWalk(t)
	early.Path = "early.gpx"
	late, err := gpx.Parse(strings.NewReader(`<gpx><trk><trkseg>
<trkpt lat="-33.8688" lon="151.2093"><time>2024-06-01T10:30:00Z</time></trkpt>
</trkseg></trk></gpx>`))
	if err != nil {
		t.Fatal(err)
	}
	late.Path = "late.gpx"

	fix, err := gpx.Matcher{}.Locate([]*gpx.Log{late, early}, at(t, "2024-06-01T10:40:00Z"))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fix.Source != "late.gpx" || fix.Location.Latitude.Value() != -33.8688 {
		t.Fatalf("unexpected fix %+v", fix)
	}
}

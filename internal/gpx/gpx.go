// Package gpx reads GPS track logs and finds where a camera was when a
// photo was taken.
//
// Only track points (trk/trkseg/trkpt) are used. Waypoints and routes carry
// no timing a capture time can be matched against.
package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"geotag/internal/coords"
	"geotag/internal/faults"
)

// Point is one timed fix from a track log. Elevation is unset when the log
// has no <ele> for it.
type Point struct {
	Latitude  float64
	Longitude float64
	Elevation coords.Elevation
	Time      time.Time
}

// Segment is a run of points ordered by time. Interpolation never crosses
// a segment boundary.
type Segment struct {
	Points []Point
}

// Track is one <trk> element.
type Track struct {
	Name     string
	Segments []Segment
}

// Log is a parsed GPX file.
type Log struct {
	Path   string
	Tracks []Track
	// Untimed counts points dropped for a missing or unreadable <time>.
	Untimed int
}

type gpxFile struct {
	Tracks []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat  string `xml:"lat,attr"`
	Lon  string `xml:"lon,attr"`
	Ele  string `xml:"ele"`
	Time string `xml:"time"`
}

// Load parses the GPX file at path.
func Load(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrInvalidTrack, "open track log", path, err)
	}
	defer f.Close()
	log, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Path = path
	return log, nil
}

// LoadAll parses every path, stopping at the first failure.
func LoadAll(paths []string) ([]*Log, error) {
	logs := make([]*Log, 0, len(paths))
	for _, path := range paths {
		log, err := Load(path)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}

// Parse decodes GPX 1.0 or 1.1 from r. A log without a single timed track
// point is an error, as is a point whose position cannot be read.
func Parse(r io.Reader) (*Log, error) {
	var doc gpxFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, faults.Wrap(faults.ErrInvalidTrack, "decode track log", "", err)
	}

	log := &Log{Tracks: make([]Track, 0, len(doc.Tracks))}
	timed := 0
	for _, trk := range doc.Tracks {
		track := Track{Name: strings.TrimSpace(trk.Name)}
		for _, seg := range trk.Segments {
			var segment Segment
			for _, pt := range seg.Points {
				point, ok, err := pt.decode()
				if err != nil {
					return nil, err
				}
				if !ok {
					log.Untimed++
					continue
				}
				segment.Points = append(segment.Points, point)
			}
			slices.SortStableFunc(segment.Points, func(a, b Point) int { return a.Time.Compare(b.Time) })
			timed += len(segment.Points)
			track.Segments = append(track.Segments, segment)
		}
		log.Tracks = append(log.Tracks, track)
	}
	if timed == 0 {
		return nil, faults.Wrap(faults.ErrInvalidTrack, "decode track log", "no timed track points", nil)
	}
	return log, nil
}

// decode reports ok=false for a point without a usable time.
func (p gpxPoint) decode() (Point, bool, error) {
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(p.Lon), 64)
	if latErr != nil || lonErr != nil {
		return Point{}, false, faults.Wrap(faults.ErrInvalidTrack, "decode track point",
			fmt.Sprintf("lat=%q lon=%q", p.Lat, p.Lon), nil)
	}
	if _, err := coords.NewLocation(lat, lon); err != nil {
		return Point{}, false, faults.Wrap(faults.ErrInvalidTrack, "decode track point", "", err)
	}
	point := Point{Latitude: lat, Longitude: lon}
	if ele := strings.TrimSpace(p.Ele); ele != "" {
		if meters, err := strconv.ParseFloat(ele, 64); err == nil {
			point.Elevation = coords.Meters(meters)
		}
	}
	ts, ok := parseTime(p.Time)
	if !ok {
		return Point{}, false, nil
	}
	point.Time = ts
	return point, true, nil
}

// parseTime reads an ISO 8601 timestamp. GPX times are UTC, so a value
// without an offset is taken as UTC.
func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Points returns the number of timed points in the log.
func (l *Log) Points() int {
	n := 0
	for _, track := range l.Tracks {
		for _, segment := range track.Segments {
			n += len(segment.Points)
		}
	}
	return n
}

// Span returns the earliest and latest point times.
func (l *Log) Span() (first, last time.Time) {
	for _, track := range l.Tracks {
		for _, segment := range track.Segments {
			if len(segment.Points) == 0 {
				continue
			}
			start, end := segment.Points[0].Time, segment.Points[len(segment.Points)-1].Time
			if first.IsZero() || start.Before(first) {
				first = start
			}
			if end.After(last) {
				last = end
			}
		}
	}
	return first, last
}

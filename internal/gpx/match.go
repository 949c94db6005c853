package gpx

import (
	"fmt"
	"sort"
	"time"

	"geotag/internal/coords"
	"geotag/internal/faults"
)

// DefaultMaxGap is how long after the last track point a capture may
// happen and still take that point's position.
const DefaultMaxGap = 2 * time.Hour

// Matcher finds the position for a capture time across a set of logs.
type Matcher struct {
	// MaxGap bounds the distance in time between the capture and the
	// matched point. Zero means DefaultMaxGap.
	MaxGap time.Duration
	// Interpolate places the capture between the matched point and the
	// next point of the same segment instead of at the matched point.
	Interpolate bool
}

// Fix is the result of a successful match.
type Fix struct {
	Location coords.Location
	// Point is the last track point at or before the capture time.
	Point Point
	// Source is the path of the log Point came from.
	Source       string
	Interpolated bool
}

type candidate struct {
	point  Point
	next   *Point
	source string
}

// Locate returns the position for a capture at time at. The last point at
// or before at wins across all logs; on a tie the later log wins. Captures
// before every point, or more than MaxGap after the winning one, do not
// match and yield faults.ErrNoTrackMatch.
func (m Matcher) Locate(logs []*Log, at time.Time) (Fix, error) {
	if at.IsZero() {
		return Fix{}, faults.Wrap(faults.ErrNoTrackMatch, "match", "image has no capture time", nil)
	}

	var best *candidate
	for _, log := range logs {
		for _, track := range log.Tracks {
			for _, segment := range track.Segments {
				c, ok := search(segment, at)
				if !ok {
					continue
				}
				if best == nil || !c.point.Time.Before(best.point.Time) {
					c.source = log.Path
					best = &c
				}
			}
		}
	}
	if best == nil {
		return Fix{}, faults.Wrap(faults.ErrNoTrackMatch, "match",
			"captured "+at.UTC().Format(time.RFC3339)+", before every track point", nil)
	}

	maxGap := m.MaxGap
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}
	if gap := at.Sub(best.point.Time); gap >= maxGap {
		return Fix{}, faults.Wrap(faults.ErrNoTrackMatch, "match",
			fmt.Sprintf("nearest track point is %s before the capture (limit %s)", gap.Round(time.Second), maxGap), nil)
	}

	fix := Fix{Point: best.point, Source: best.source}
	lat, lon, ele := best.point.Latitude, best.point.Longitude, best.point.Elevation
	if m.Interpolate && best.next != nil && at.After(best.point.Time) {
		lat, lon, ele = between(best.point, *best.next, at)
		fix.Interpolated = true
	}
	loc, err := coords.NewLocation(lat, lon)
	if err != nil {
		return Fix{}, faults.Wrap(faults.ErrNoTrackMatch, "match", "", err)
	}
	if ele.IsSet() {
		loc = loc.WithElevation(ele)
	}
	fix.Location = loc
	return fix, nil
}

// search finds the last point at or before at, plus its successor when the
// successor is later than at.
func search(segment Segment, at time.Time) (candidate, bool) {
	points := segment.Points
	i := sort.Search(len(points), func(i int) bool { return points[i].Time.After(at) })
	if i == 0 {
		return candidate{}, false
	}
	c := candidate{point: points[i-1]}
	if i < len(points) {
		c.next = &points[i]
	}
	return c, true
}

// between moves along the great circle from a towards b in proportion to
// where at falls between their times. Elevation is interpolated linearly
// when both ends have one.
func between(a, b Point, at time.Time) (float64, float64, coords.Elevation) {
	span := b.Time.Sub(a.Time)
	fraction := float64(at.Sub(a.Time)) / float64(span)

	distance, bearing := distanceAndBearing(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	lat, lon := destination(a.Latitude, a.Longitude, distance*fraction, bearing)

	ele := a.Elevation
	if a.Elevation.IsSet() && b.Elevation.IsSet() {
		ele = coords.Meters(a.Elevation.Value() + (b.Elevation.Value()-a.Elevation.Value())*fraction)
	}
	return lat, lon, ele
}

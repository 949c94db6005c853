package coords

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"geotag/internal/faults"
)

// ErrInvalidElevation reports elevation text that is not a finite number.
var ErrInvalidElevation = errors.New("invalid elevation")

// Elevation is an optional altitude in metres; negative is below sea level.
type Elevation struct {
	meters float64
	set    bool
}

// Meters wraps an altitude value.
func Meters(value float64) Elevation {
	return Elevation{meters: value, set: true}
}

func (e Elevation) IsSet() bool { return e.set }

func (e Elevation) Value() float64 {
	if !e.set {
		return 0
	}
	return e.meters
}

// Equal compares elevations to the centimetre.
func (e Elevation) Equal(other Elevation) bool {
	if e.set != other.set {
		return false
	}
	if !e.set {
		return true
	}
	return math.Round(e.meters*100) == math.Round(other.meters*100)
}

// ParseElevation accepts a number of metres with an optional trailing "m".
// Empty text yields an unset elevation.
func ParseElevation(text string) (Elevation, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Elevation{}, nil
	}
	digits := strings.TrimSpace(strings.TrimSuffix(trimmed, "m"))
	value, err := strconv.ParseFloat(digits, 64)
	if !plainDecimal(digits) || err != nil {
		return Elevation{}, faults.Wrap(ErrInvalidElevation, "parse elevation", strconv.Quote(trimmed), nil)
	}
	return Meters(value), nil
}

// FormatElevation renders metres with two fractional digits; unset is "".
func FormatElevation(e Elevation) string {
	if !e.set {
		return ""
	}
	scaled := math.Round(e.meters * 100)
	if scaled == 0 {
		scaled = 0
	}
	return strconv.FormatFloat(scaled/100, 'f', 2, 64)
}

// Location is a latitude/longitude pair with an optional elevation. It is
// either fully set or unset; the zero value is unset.
type Location struct {
	Latitude  Coordinate
	Longitude Coordinate
	Elevation Elevation
}

// NewLocation validates and builds a set location.
func NewLocation(latitude, longitude float64) (Location, error) {
	lat := Degrees(latitude)
	if !lat.InRange(Latitude) {
		return Location{}, axisError(Latitude, strconv.FormatFloat(latitude, 'f', -1, 64), "out of range")
	}
	lon := Degrees(longitude)
	if !lon.InRange(Longitude) {
		return Location{}, axisError(Longitude, strconv.FormatFloat(longitude, 'f', -1, 64), "out of range")
	}
	return Location{Latitude: lat, Longitude: lon}, nil
}

// ParseLocation parses both axes. Both empty yields an unset location;
// exactly one empty is an error on that axis. Latitude is checked first.
func ParseLocation(latitude, longitude string) (Location, error) {
	lat, err := Parse(latitude, Latitude)
	if err != nil {
		return Location{}, err
	}
	lon, err := Parse(longitude, Longitude)
	if err != nil {
		return Location{}, err
	}
	switch {
	case !lat.IsSet() && !lon.IsSet():
		return Location{}, nil
	case !lat.IsSet():
		return Location{}, axisError(Latitude, "", "missing value")
	case !lon.IsSet():
		return Location{}, axisError(Longitude, "", "missing value")
	}
	return Location{Latitude: lat, Longitude: lon}, nil
}

// IsSet reports whether both axes carry a value.
func (l Location) IsSet() bool {
	return l.Latitude.IsSet() && l.Longitude.IsSet()
}

// Valid reports whether the location is set and within range on both axes.
func (l Location) Valid() bool {
	return l.Latitude.InRange(Latitude) && l.Longitude.InRange(Longitude)
}

// Equal compares at write precision, elevation included.
func (l Location) Equal(other Location) bool {
	return l.Latitude.Equal(other.Latitude) &&
		l.Longitude.Equal(other.Longitude) &&
		l.Elevation.Equal(other.Elevation)
}

// WithElevation returns a copy of l carrying e.
func (l Location) WithElevation(e Elevation) Location {
	l.Elevation = e
	return l
}

// String renders "<lat> <lon>" in canonical format, or "" when unset.
func (l Location) String() string {
	if !l.IsSet() {
		return ""
	}
	return Format(l.Latitude, Latitude) + " " + Format(l.Longitude, Longitude)
}

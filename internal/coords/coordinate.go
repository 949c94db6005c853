package coords

import (
	"fmt"
	"math"

	"geotag/internal/faults"
)

// Axis selects the range and hemisphere letters applied when parsing.
type Axis int

const (
	Latitude Axis = iota
	Longitude
)

// Precision is the number of fractional digits written for degree values.
const Precision = 6

const precisionScale = 1e6

func (a Axis) String() string {
	switch a {
	case Latitude:
		return "latitude"
	case Longitude:
		return "longitude"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Max returns the largest magnitude accepted for the axis.
func (a Axis) Max() float64 {
	if a == Longitude {
		return 180
	}
	return 90
}

// refs returns the positive and negative hemisphere letters.
func (a Axis) refs() (string, string) {
	if a == Longitude {
		return "E", "W"
	}
	return "N", "S"
}

// Coordinate is a signed degree value or the explicit unset state.
// The zero value is unset, which is not the same as 0.0 degrees.
type Coordinate struct {
	degrees float64
	set     bool
}

// Unset returns a coordinate carrying no value.
func Unset() Coordinate {
	return Coordinate{}
}

// Degrees wraps a raw degree value without range validation. Use Parse or
// NewLocation when the value comes from outside the program.
func Degrees(value float64) Coordinate {
	return Coordinate{degrees: value, set: true}
}

// IsSet reports whether the coordinate carries a value.
func (c Coordinate) IsSet() bool {
	return c.set
}

// Value returns the degree value; zero when unset.
func (c Coordinate) Value() float64 {
	if !c.set {
		return 0
	}
	return c.degrees
}

// InRange reports whether c is set, finite and within the bounds of axis.
func (c Coordinate) InRange(axis Axis) bool {
	if !c.set || math.IsNaN(c.degrees) || math.IsInf(c.degrees, 0) {
		return false
	}
	return math.Abs(c.degrees) <= axis.Max()
}

// Equal compares two coordinates at write precision. Two unset
// coordinates are equal; set and unset never are.
func (c Coordinate) Equal(other Coordinate) bool {
	if c.set != other.set {
		return false
	}
	if !c.set {
		return true
	}
	return math.Round(c.degrees*precisionScale) == math.Round(other.degrees*precisionScale)
}

// AxisError reports a coordinate that failed to parse or validate.
type AxisError struct {
	Axis   Axis
	Text   string
	Reason string
}

func (e *AxisError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("invalid %s: %s", e.Axis, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Axis, e.Text, e.Reason)
}

func (e *AxisError) Unwrap() error {
	return faults.ErrInvalidCoordinate
}

func axisError(axis Axis, text, reason string) error {
	return &AxisError{Axis: axis, Text: text, Reason: reason}
}

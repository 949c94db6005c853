package coords

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Style selects a display rendering for FormatStyle.
type Style int

const (
	StyleDecimal Style = iota
	StyleDM
	StyleDMS
)

// ParseStyle maps a configuration value to a Style. Unknown values fall back
// to decimal degrees.
func ParseStyle(value string) Style {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dm":
		return StyleDM
	case "dms":
		return StyleDMS
	default:
		return StyleDecimal
	}
}

func (s Style) String() string {
	switch s {
	case StyleDM:
		return "dm"
	case StyleDMS:
		return "dms"
	default:
		return "decimal"
	}
}

// Format renders c as signed decimal degrees with six fractional digits,
// the form handed to ExifTool. Unset renders as "".
func Format(c Coordinate, _ Axis) string {
	if !c.set {
		return ""
	}
	scaled := math.Round(c.degrees * precisionScale)
	if scaled == 0 {
		scaled = 0 // drop negative zero
	}
	return strconv.FormatFloat(scaled/precisionScale, 'f', Precision, 64)
}

// FormatStyle renders c for display. StyleDecimal is identical to Format.
func FormatStyle(c Coordinate, axis Axis, style Style) string {
	if !c.set {
		return ""
	}
	pos, neg := axis.refs()
	ref := pos
	if c.degrees < 0 {
		ref = neg
	}
	magnitude := math.Abs(c.degrees)

	switch style {
	case StyleDM:
		microMinutes := int64(math.Round(magnitude * 60 * precisionScale))
		degrees := microMinutes / (60 * precisionScale)
		minutes := float64(microMinutes%(60*precisionScale)) / precisionScale
		return fmt.Sprintf("%d° %.6f' %s", degrees, minutes, ref)
	case StyleDMS:
		centiSeconds := int64(math.Round(magnitude * 3600 * 100))
		degrees := centiSeconds / 360000
		rest := centiSeconds % 360000
		minutes := rest / 6000
		seconds := float64(rest%6000) / 100
		return fmt.Sprintf("%d° %d' %.2f\" %s", degrees, minutes, seconds, ref)
	default:
		return Format(c, axis)
	}
}

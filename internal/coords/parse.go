package coords

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

const maxParts = 3

// marks lists the optional trailing symbols for degrees, minutes and seconds.
var marks = [maxParts][]string{
	{"°"},
	{"'", "′"},
	{"\"", "″"},
}

// Parse converts text to a coordinate on the given axis.
//
// Accepted forms, each with an optional trailing hemisphere letter:
//
//	-dd.dddd          decimal degrees
//	dd mm.mmmm        degrees and decimal minutes
//	dd mm ss.ssss     degrees, minutes and decimal seconds
//
// Degree, minute and second marks are optional and also separate
// components, so "48°51'29.5\"N" reads like "48 51 29.5 N". Numbers are plain
// decimals: no exponents, hex or special values. A negative value and a
// hemisphere letter together are rejected. Empty text yields Unset and no
// error.
func Parse(text string, axis Axis) (Coordinate, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Unset(), nil
	}

	parts := components(trimmed)
	hemisphere, parts := splitHemisphere(parts, axis)
	if len(parts) == 0 {
		return Coordinate{}, axisError(axis, trimmed, "missing degrees")
	}
	if len(parts) > maxParts {
		return Coordinate{}, axisError(axis, trimmed, "too many components")
	}

	negative := strings.HasPrefix(parts[0], "-")
	if negative && hemisphere != "" {
		return Coordinate{}, axisError(axis, trimmed, "sign and hemisphere both given")
	}

	var values [maxParts]float64
	for i, part := range parts {
		digits := stripMark(part, i)
		if !plainDecimal(digits) {
			return Coordinate{}, axisError(axis, trimmed, "not a number")
		}
		value, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return Coordinate{}, axisError(axis, trimmed, "not a number")
		}
		if i > 0 {
			if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
				return Coordinate{}, axisError(axis, trimmed, "only degrees may carry a sign")
			}
			if value >= 60 {
				return Coordinate{}, axisError(axis, trimmed, "minutes and seconds must be below 60")
			}
		}
		if i < len(parts)-1 && value != math.Trunc(value) {
			return Coordinate{}, axisError(axis, trimmed, "only the last component may have a fraction")
		}
		values[i] = math.Abs(value)
	}

	degrees := values[0] + values[1]/60 + values[2]/3600
	if degrees > axis.Max() {
		return Coordinate{}, axisError(axis, trimmed, "out of range")
	}
	_, south := axis.refs()
	if negative || hemisphere == south {
		degrees = -degrees
	}
	return Degrees(degrees), nil
}

// components splits text on white space and after each degree, minute or
// second mark. A mark standing alone joins the component before it.
func components(text string) []string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case isMark(r):
			if cur.Len() == 0 && len(parts) > 0 {
				parts[len(parts)-1] += string(r)
				continue
			}
			cur.WriteRune(r)
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return parts
}

func isMark(r rune) bool {
	for _, set := range marks {
		for _, mark := range set {
			if string(r) == mark {
				return true
			}
		}
	}
	return false
}

// plainDecimal accepts an optional sign, digits and at most one point.
func plainDecimal(s string) bool {
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	digits, points := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			points++
		default:
			return false
		}
	}
	return digits > 0 && points <= 1
}

// splitHemisphere removes a trailing hemisphere letter, either as its own
// token or attached to the last token.
func splitHemisphere(parts []string, axis Axis) (string, []string) {
	if len(parts) == 0 {
		return "", parts
	}
	pos, neg := axis.refs()
	last := strings.ToUpper(parts[len(parts)-1])
	if last == pos || last == neg {
		return last, parts[:len(parts)-1]
	}
	if len(last) > 1 {
		suffix := last[len(last)-1:]
		if suffix == pos || suffix == neg {
			out := append([]string(nil), parts...)
			out[len(out)-1] = out[len(out)-1][:len(last)-1]
			return suffix, out
		}
	}
	return "", parts
}

func stripMark(part string, index int) string {
	for _, mark := range marks[index] {
		if strings.HasSuffix(part, mark) {
			return strings.TrimSuffix(part, mark)
		}
	}
	return part
}

// Package coords converts latitude and longitude between operator-editable
// text and signed degree values.
//
// Coordinate keeps "no value" distinct from 0.0 so the equator and prime
// meridian remain legal positions. Parse accepts decimal degrees, degrees and
// minutes, or degrees/minutes/seconds with optional hemisphere letters, and
// Format produces the six-digit signed decimal form written to image files.
// Values produced by Parse survive a Format/Parse round trip within 1e-6
// degrees.
package coords

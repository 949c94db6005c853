// Package preflight provides readiness checks for the ExifTool binary and
// the directories geotag writes to.
//
// The CLI "geotag check" command runs RunAll and prints every result. The
// save path runs CheckExifTool once before a batch so a missing binary is
// reported as a single failure instead of one launch failure per image.
package preflight

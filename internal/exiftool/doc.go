// Package exiftool mediates access to the ExifTool CLI used to read and write
// GPS metadata.
//
// It builds the argument vectors for location updates, reads tags back as
// JSON, and maps process failures onto the fault markers the save engine
// reports: launch failures, per-call timeouts, cancellation and nonzero exit
// codes. The default executor runs ExifTool in its own process group so a
// timeout or cancellation never leaves orphaned children behind.
//
// Prefer this package over ad-hoc exec.Command usage when interacting with
// ExifTool so timeout handling and error classification remain consistent.
package exiftool

// Package config loads, normalizes, and validates geotag configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the GEOTAG_EXIFTOOL environment fallback. Range and
// enum checks are declared as validator struct tags and reported using the
// TOML key names an operator would edit.
package config

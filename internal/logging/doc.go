// Package logging builds the slog loggers geotag writes to stderr and to its
// log file. Console output is one header line per record with indented
// fields; JSON output is one object per line. Helpers bind batch IDs, image
// paths and correlation IDs from a context.
package logging

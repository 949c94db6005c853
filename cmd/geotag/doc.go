// Package main hosts the geotag CLI entrypoint and command graph.
//
// Every invocation builds a fresh working set from the paths on the command
// line, stages the requested edits and, unless --dry-run is given, saves the
// dirty images in one batch. Nothing about the working set outlives the
// process; the save history journal is the only state kept between runs.
package main

// Package faults defines the error kinds shared by the location model, the
// working-set store and the batch save engine.
//
// Every failure the core reports is matchable with errors.Is against one of
// the exported sentinels. Wrap attaches operation context without losing the
// marker, and Kind reduces any error to the snake_case label written to logs,
// JSON output and the save history.
package faults

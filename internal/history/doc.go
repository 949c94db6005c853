// Package history keeps a SQLite journal of batch saves so an operator can
// see which images failed and why after the process has exited. The working
// set itself is never stored here.
package history

// Package persist writes staged locations back to image files as one batch.
//
// An Engine snapshots the dirty records of a store, fans out one ExifTool
// invocation per record through a bounded worker pool, and waits for every
// worker before returning a BatchResult whose outcomes follow store order.
// A record is marked saved only after its own write succeeded; failures are
// classified with faults.Kind and never roll back other images.
//
// Only one batch may run at a time: an in-process flag rejects concurrent
// calls on the same Engine and an advisory file lock rejects a second
// process sharing the state directory.
package persist

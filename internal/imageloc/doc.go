// Package imageloc holds the per-image location record and the edit
// operations applied to it.
//
// A record tracks the working location an operator is editing and the
// location last known to be stored in the file. Dirty state is always
// derived from the pair. Edits parse both axes before touching the record so
// a rejected edit never leaves it half updated.
package imageloc

// Package store keeps the ordered working set of image records and enforces
// one record per canonical path.
package store

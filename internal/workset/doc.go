// Package workset ties the location model together for a host program: it
// loads files into a store, routes edits to records by path, and hands the
// dirty set to the persistence engine.
package workset

package store

import (
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/text/unicode/norm"

	"geotag/internal/faults"
	"geotag/internal/imageloc"
)

// Store is the ordered working set of image records.
type Store struct {
	mu      sync.RWMutex
	records []*imageloc.ImageLocation
	keys    []string
	index   map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// CanonicalPath makes path absolute, resolves symlinks when the target exists
// and normalizes to Unicode NFC. Comparison stays case-sensitive.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return norm.NFC.String(filepath.Clean(abs)), nil
}

// Insert appends rec unless a record with the same canonical path exists.
func (s *Store) Insert(rec *imageloc.ImageLocation) error {
	if rec == nil {
		return fmt.Errorf("insert: nil record")
	}
	key, err := CanonicalPath(rec.Path())
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.Path(), err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[key]; exists {
		return faults.Wrap(faults.ErrDuplicatePath, "insert", rec.Path(), nil)
	}
	s.index[key] = len(s.records)
	s.records = append(s.records, rec)
	s.keys = append(s.keys, key)
	return nil
}

// RemoveAt drops the record at i, shifting later records down.
func (s *Store) RemoveAt(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.records) {
		return outOfRange(i, len(s.records))
	}
	delete(s.index, s.keys[i])
	s.records = slices.Delete(s.records, i, i+1)
	s.keys = slices.Delete(s.keys, i, i+1)
	for j := i; j < len(s.keys); j++ {
		s.index[s.keys[j]] = j
	}
	return nil
}

// RemoveAll empties the store.
func (s *Store) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.keys = nil
	s.index = make(map[string]int)
}

func (s *Store) At(i int) (*imageloc.ImageLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.records) {
		return nil, outOfRange(i, len(s.records))
	}
	return s.records[i], nil
}

// Find looks a record up by path.
func (s *Store) Find(path string) (*imageloc.ImageLocation, error) {
	key, err := CanonicalPath(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrNotFound, "find", path, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[key]
	if !ok {
		return nil, faults.Wrap(faults.ErrNotFound, "find", path, nil)
	}
	return s.records[i], nil
}

// IndexOf returns the position of the record for path, or -1.
func (s *Store) IndexOf(path string) int {
	key, err := CanonicalPath(path)
	if err != nil {
		return -1
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[key]; ok {
		return i
	}
	return -1
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a copy of the records in store order.
func (s *Store) All() []*imageloc.ImageLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Dirty yields dirty records with their index, in store order. The store is
// read lazily; inserting or removing while iterating is not supported.
func (s *Store) Dirty() iter.Seq2[int, *imageloc.ImageLocation] {
	return func(yield func(int, *imageloc.ImageLocation) bool) {
		for i, rec := range s.All() {
			if !rec.Dirty() {
				continue
			}
			if !yield(i, rec) {
				return
			}
		}
	}
}

// DirtySnapshot materializes Dirty.
func (s *Store) DirtySnapshot() []*imageloc.ImageLocation {
	var out []*imageloc.ImageLocation
	for _, rec := range s.Dirty() {
		out = append(out, rec)
	}
	return out
}

func outOfRange(i, n int) error {
	return faults.Wrap(faults.ErrIndexOutOfRange, "store", fmt.Sprintf("index %d, length %d", i, n), nil)
}

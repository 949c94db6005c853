package workset

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"geotag/internal/coords"
	"geotag/internal/faults"
	"geotag/internal/imageloc"
	"geotag/internal/logging"
	"geotag/internal/metadata"
	"geotag/internal/persist"
	"geotag/internal/store"
)

// Saver runs batch saves. *persist.Engine satisfies it.
type Saver interface {
	SaveAll(ctx context.Context, s *store.Store) (persist.BatchResult, error)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeZone sets the zone used to read capture timestamps.
func WithTimeZone(zone *time.Location) Option {
	return func(s *Session) {
		if zone != nil {
			s.zone = zone
		}
	}
}

// Session is one working set of images.
type Session struct {
	store  *store.Store
	reader metadata.Reader
	saver  Saver
	zone   *time.Location
	logger *slog.Logger
}

// New creates an empty session. saver may be nil for read-only use.
func New(reader metadata.Reader, saver Saver, opts ...Option) *Session {
	s := &Session{
		store:  store.New(),
		reader: reader,
		saver:  saver,
		zone:   time.Local,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "workset")
	return s
}

// Store exposes the records for display.
func (s *Session) Store() *store.Store { return s.store }

// AddResult reports one file offered to Add.
type AddResult struct {
	Path string
	// Index is the record's store position, or -1 on error.
	Index int
	Err   error
}

// Add loads files into the working set. Directories are walked recursively,
// skipping hidden entries, XMP sidecars and files that are neither readable
// images nor writable by ExifTool. Per-file errors are reported in the
// result and do not stop the remaining files.
func (s *Session) Add(ctx context.Context, paths ...string) []AddResult {
	var results []AddResult
	for _, path := range paths {
		files, err := expand(path)
		if err != nil {
			results = append(results, AddResult{Path: path, Index: -1, Err: err})
			continue
		}
		for _, file := range files {
			results = append(results, s.addFile(ctx, file))
		}
	}
	return results
}

func (s *Session) addFile(ctx context.Context, path string) AddResult {
	result := AddResult{Path: path, Index: -1}
	if err := ctx.Err(); err != nil {
		result.Err = faults.Wrap(faults.ErrCancelled, "add", path, err)
		return result
	}
	if s.store.IndexOf(path) >= 0 {
		result.Err = faults.Wrap(faults.ErrDuplicatePath, "add", path, nil)
		return result
	}
	rec, err := imageloc.Create(ctx, path, s.reader, imageloc.WithTimeZone(s.zone))
	if err != nil {
		result.Err = err
		return result
	}
	if err := s.store.Insert(rec); err != nil {
		result.Err = err
		return result
	}
	result.Path = rec.Path()
	result.Index = s.store.IndexOf(rec.Path())
	if readErr := rec.ReadError(); readErr != nil {
		logging.WarnWithContext(s.logger, "metadata unreadable", "metadata_read_failed",
			logging.Path(rec.Path()),
			logging.Error(readErr),
			logging.String(logging.FieldImpact, "image loaded without a location"),
		)
	}
	return result
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUnreadableFile, "add", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(p), metadata.SidecarExtension) {
			return nil
		}
		if metadata.Writable(p) || metadata.Loadable(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, faults.Wrap(faults.ErrUnreadableFile, "walk", path, err)
	}
	return files, nil
}

// Edit stages a text edit for the record at path.
func (s *Session) Edit(path, latitude, longitude string) error {
	rec, err := s.store.Find(path)
	if err != nil {
		return err
	}
	return rec.ApplyEdit(latitude, longitude)
}

// EditLocation stages a parsed location for the record at path.
func (s *Session) EditLocation(path string, loc coords.Location) error {
	rec, err := s.store.Find(path)
	if err != nil {
		return err
	}
	return rec.EditLocation(loc)
}

// SetElevation stages an elevation edit for the record at path.
func (s *Session) SetElevation(path, elevation string) error {
	rec, err := s.store.Find(path)
	if err != nil {
		return err
	}
	return rec.SetElevation(elevation)
}

// Revert discards the staged edit of one record.
func (s *Session) Revert(path string) error {
	rec, err := s.store.Find(path)
	if err != nil {
		return err
	}
	rec.Revert()
	return nil
}

// RevertAll discards every staged edit and returns how many records changed.
func (s *Session) RevertAll() int {
	n := 0
	for _, rec := range s.store.Dirty() {
		rec.Revert()
		n++
	}
	return n
}

// Remove drops the record at path from the working set.
func (s *Session) Remove(path string) error {
	i := s.store.IndexOf(path)
	if i < 0 {
		return faults.Wrap(faults.ErrNotFound, "remove", path, nil)
	}
	return s.store.RemoveAt(i)
}

// Save writes every dirty record.
func (s *Session) Save(ctx context.Context) (persist.BatchResult, error) {
	if s.saver == nil {
		return persist.BatchResult{}, errors.New("workset: no saver configured")
	}
	return s.saver.SaveAll(ctx, s.store)
}

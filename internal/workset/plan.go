package workset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"geotag/internal/coords"
	"geotag/internal/faults"
)

// PlannedEdit is one entry of a YAML edit plan. Coordinates accept every
// form coords.Parse does; leaving both empty clears the location.
type PlannedEdit struct {
	Path      string `yaml:"path"`
	Latitude  string `yaml:"latitude"`
	Longitude string `yaml:"longitude"`
	Elevation string `yaml:"elevation"`
}

// LoadEdits reads a YAML list of edits. Relative paths are resolved against
// the plan file's directory.
func LoadEdits(path string) ([]PlannedEdit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edit plan: %w", err)
	}
	var edits []PlannedEdit
	if err := yaml.Unmarshal(data, &edits); err != nil {
		return nil, fmt.Errorf("parse edit plan %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range edits {
		p := strings.TrimSpace(edits[i].Path)
		if p == "" {
			return nil, fmt.Errorf("edit plan %s: entry %d has no path", path, i+1)
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		edits[i].Path = p
	}
	return edits, nil
}

// Location parses the planned coordinates and elevation.
func (e PlannedEdit) Location() (coords.Location, error) {
	loc, err := coords.ParseLocation(e.Latitude, e.Longitude)
	if err != nil {
		return coords.Location{}, err
	}
	if strings.TrimSpace(e.Elevation) == "" {
		return loc, nil
	}
	if !loc.IsSet() {
		return coords.Location{}, faults.Wrap(faults.ErrInvalidCoordinate, "plan", e.Path+": elevation needs a location", nil)
	}
	ele, err := coords.ParseElevation(e.Elevation)
	if err != nil {
		return coords.Location{}, err
	}
	return loc.WithElevation(ele), nil
}

// EditResult reports one applied plan entry.
type EditResult struct {
	Path string
	Err  error
}

// ApplyEdits stages every planned edit. An entry without elevation keeps the
// record's current one, like Edit.
// A bad entry leaves its record unchanged and the rest are still applied.
func (s *Session) ApplyEdits(edits []PlannedEdit) []EditResult {
	results := make([]EditResult, 0, len(edits))
	for _, edit := range edits {
		results = append(results, EditResult{Path: edit.Path, Err: s.applyEdit(edit)})
	}
	return results
}

func (s *Session) applyEdit(edit PlannedEdit) error {
	rec, err := s.store.Find(edit.Path)
	if err != nil {
		return err
	}
	loc, err := edit.Location()
	if err != nil {
		return err
	}
	return rec.EditLocation(loc)
}

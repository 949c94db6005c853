package imageloc

import (
	"strconv"
	"strings"

	"geotag/internal/coords"
	"geotag/internal/faults"
)

// ApplyEdit parses latitude and longitude text and replaces the working
// location. Both empty clears it. A failure on either axis leaves the record
// untouched.
func (r *ImageLocation) ApplyEdit(latitude, longitude string) error {
	loc, err := coords.ParseLocation(latitude, longitude)
	if err != nil {
		return err
	}
	return r.EditLocation(loc)
}

// EditLocation replaces the working location with an already parsed one.
// When loc carries no elevation the current elevation is kept.
func (r *ImageLocation) EditLocation(loc coords.Location) error {
	if err := checkLocation(loc); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if loc.IsSet() && !loc.Elevation.IsSet() {
		loc.Elevation = r.current.Elevation
	}
	if !loc.IsSet() {
		loc = coords.Location{}
	}
	r.current = loc
	return nil
}

// SetElevation changes the elevation of the working location. Empty text
// removes it.
func (r *ImageLocation) SetElevation(text string) error {
	elevation, err := coords.ParseElevation(text)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.current.IsSet() {
		if !elevation.IsSet() {
			return nil
		}
		return faults.Wrap(faults.ErrInvalidCoordinate, "set elevation", r.name+" has no location", nil)
	}
	r.current = r.current.WithElevation(elevation)
	return nil
}

// Snapshot returns the working location for an undo stack.
func (r *ImageLocation) Snapshot() coords.Location {
	return r.Current()
}

// Restore puts back a location taken with Snapshot, elevation included.
func (r *ImageLocation) Restore(loc coords.Location) error {
	if err := checkLocation(loc); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !loc.IsSet() {
		loc = coords.Location{}
	}
	r.current = loc
	return nil
}

// Serialize renders the working location as "<lat> <lon>", or "" when unset.
func (r *ImageLocation) Serialize() string {
	return r.Current().String()
}

// Deserialize parses text produced by Serialize. Empty text is the unset
// location.
func Deserialize(text string) (coords.Location, error) {
	fields := strings.Fields(text)
	switch len(fields) {
	case 0:
		return coords.Location{}, nil
	case 2:
		return coords.ParseLocation(fields[0], fields[1])
	default:
		return coords.Location{}, faults.Wrap(faults.ErrInvalidCoordinate, "deserialize location", "expected \"<latitude> <longitude>\", got "+strconv.Quote(strings.TrimSpace(text)), nil)
	}
}

// checkLocation rejects half-set or out-of-range locations built without the
// codec.
func checkLocation(loc coords.Location) error {
	latSet, lonSet := loc.Latitude.IsSet(), loc.Longitude.IsSet()
	switch {
	case !latSet && !lonSet:
		return nil
	case !latSet:
		return &coords.AxisError{Axis: coords.Latitude, Reason: "missing value"}
	case !lonSet:
		return &coords.AxisError{Axis: coords.Longitude, Reason: "missing value"}
	}
	_, err := coords.NewLocation(loc.Latitude.Value(), loc.Longitude.Value())
	return err
}

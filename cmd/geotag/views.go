package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"geotag/internal/coords"
	"geotag/internal/faults"
	"geotag/internal/history"
	"geotag/internal/imageloc"
	"geotag/internal/persist"
	"geotag/internal/workset"
)

type imageView struct {
	Path      string `json:"path"`
	Sidecar   string `json:"sidecar,omitempty"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Elevation string `json:"elevation,omitempty"`
	Captured  string `json:"captured,omitempty"`
	Writable  bool   `json:"writable"`
	Loadable  bool   `json:"loadable"`
	Dirty     bool   `json:"dirty"`
	ReadError string `json:"read_error,omitempty"`
}

func newImageView(rec *imageloc.ImageLocation) imageView {
	state := rec.State()
	view := imageView{
		Path:      rec.Path(),
		Sidecar:   rec.SidecarPath(),
		Latitude:  coords.Format(state.Current.Latitude, coords.Latitude),
		Longitude: coords.Format(state.Current.Longitude, coords.Longitude),
		Elevation: coords.FormatElevation(state.Current.Elevation),
		Captured:  rec.CapturedAt().Raw,
		Writable:  rec.Writable(),
		Loadable:  rec.ImageLoadable(),
		Dirty:     state.Dirty,
	}
	if err := rec.ReadError(); err != nil {
		view.ReadError = err.Error()
	}
	return view
}

type problemView struct {
	Path      string `json:"path"`
	ErrorKind string `json:"error_kind"`
	Error     string `json:"error"`
}

func newProblemView(path string, err error) problemView {
	return problemView{Path: path, ErrorKind: faults.Kind(err), Error: err.Error()}
}

type outcomeView struct {
	Path       string `json:"path"`
	Target     string `json:"target,omitempty"`
	Status     string `json:"status"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	Elevation  string `json:"elevation,omitempty"`
	Backup     string `json:"backup,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
	ExitCode   int    `json:"exit_code,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type batchView struct {
	ID        string        `json:"id,omitempty"`
	Started   time.Time     `json:"started"`
	Finished  time.Time     `json:"finished"`
	Saved     int           `json:"saved"`
	Failed    int           `json:"failed"`
	Cancelled int           `json:"cancelled"`
	Outcomes  []outcomeView `json:"outcomes,omitempty"`
}

func newBatchView(result persist.BatchResult) batchView {
	view := batchView{
		ID:        result.ID,
		Started:   result.Started,
		Finished:  result.Finished,
		Saved:     result.Saved,
		Failed:    result.Failed,
		Cancelled: result.Cancelled(),
	}
	for _, o := range result.Outcomes {
		ov := outcomeView{
			Path:       o.Path,
			Target:     o.Target,
			Status:     string(o.Status),
			Latitude:   coords.Format(o.Written.Latitude, coords.Latitude),
			Longitude:  coords.Format(o.Written.Longitude, coords.Longitude),
			Elevation:  coords.FormatElevation(o.Written.Elevation),
			Backup:     o.Backup,
			ErrorKind:  o.Kind,
			ExitCode:   o.ExitCode,
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			ov.Error = o.Err.Error()
		}
		view.Outcomes = append(view.Outcomes, ov)
	}
	return view
}

func newHistoryBatchView(b history.Batch) batchView {
	return batchView{
		ID:        b.ID,
		Started:   b.Started,
		Finished:  b.Finished,
		Saved:     b.Saved,
		Failed:    b.Failed,
		Cancelled: b.Cancelled,
	}
}

func newEntryView(e history.Entry) outcomeView {
	return outcomeView{
		Path:       e.Path,
		Target:     e.Target,
		Status:     string(e.Status),
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		Elevation:  e.Elevation,
		Backup:     e.Backup,
		ErrorKind:  e.Kind,
		Error:      e.Message,
		ExitCode:   e.ExitCode,
		DurationMS: e.Duration.Milliseconds(),
	}
}

// commandReport is the JSON document written by commands that edit images.
type commandReport struct {
	Problems []problemView `json:"problems,omitempty"`
	Images   []imageView   `json:"images"`
	Batch    *batchView    `json:"batch,omitempty"`
	DryRun   bool          `json:"dry_run,omitempty"`
}

// Table rendering.

func imageRows(records []*imageloc.ImageLocation, style coords.Style) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		state := rec.State()
		rows = append(rows, []string{
			filepath.Base(rec.Path()),
			coords.FormatStyle(state.Current.Latitude, coords.Latitude, style),
			coords.FormatStyle(state.Current.Longitude, coords.Longitude, style),
			coords.FormatElevation(state.Current.Elevation),
			rec.CapturedAt().Raw,
			imageNotes(rec, state),
		})
	}
	return rows
}

func imageNotes(rec *imageloc.ImageLocation, state imageloc.State) string {
	var notes []string
	if state.Dirty {
		notes = append(notes, "edited")
	}
	if rec.SidecarPath() != "" {
		notes = append(notes, "sidecar")
	}
	if !rec.Writable() {
		notes = append(notes, "read-only")
	}
	if rec.ReadError() != nil {
		notes = append(notes, "unreadable metadata")
	}
	return strings.Join(notes, ", ")
}

var imageHeaders = []string{"File", "Latitude", "Longitude", "Elevation (m)", "Captured", "Notes"}

func renderImages(records []*imageloc.ImageLocation, style coords.Style) string {
	return renderTable(imageHeaders, imageRows(records, style), 2, 3, 4)
}

func renderOutcomes(result persist.BatchResult, style coords.Style) string {
	rows := make([][]string, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		detail := o.Backup
		if o.Status == persist.StatusFailed {
			detail = o.Kind
			if o.ExitCode != 0 {
				detail += " (exit " + strconv.Itoa(o.ExitCode) + ")"
			}
		}
		rows = append(rows, []string{
			filepath.Base(o.Path),
			string(o.Status),
			formatLocation(o.Written, style),
			detail,
		})
	}
	return renderTable([]string{"File", "Status", "Location", "Backup / Error"}, rows)
}

func renderProblems(problems []problemView) string {
	rows := make([][]string, 0, len(problems))
	for _, p := range problems {
		rows = append(rows, []string{p.Path, p.ErrorKind, p.Error})
	}
	return renderTable([]string{"Path", "Kind", "Error"}, rows)
}

func formatLocation(loc coords.Location, style coords.Style) string {
	if !loc.IsSet() {
		return "(none)"
	}
	text := coords.FormatStyle(loc.Latitude, coords.Latitude, style) + ", " +
		coords.FormatStyle(loc.Longitude, coords.Longitude, style)
	if loc.Elevation.IsSet() {
		text += " @ " + coords.FormatElevation(loc.Elevation) + " m"
	}
	return text
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}

// addProblems converts failed AddResults into problem views.
func addProblems(results []workset.AddResult) ([]problemView, []string) {
	var problems []problemView
	var loaded []string
	for _, r := range results {
		if r.Err != nil {
			problems = append(problems, newProblemView(r.Path, r.Err))
			continue
		}
		loaded = append(loaded, r.Path)
	}
	return problems, loaded
}

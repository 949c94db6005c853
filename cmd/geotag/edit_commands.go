package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"geotag/internal/coords"
	"geotag/internal/faults"
	"geotag/internal/persist"
	"geotag/internal/workset"
)

// stageFunc applies edits to the loaded paths and reports per-path problems.
type stageFunc func(s *workset.Session, loaded []string) []problemView

func newSetCommand(ctx *commandContext) *cobra.Command {
	var locationFlag, latFlag, lonFlag, elevationFlag string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "set PATH...",
		Short: "Set the GPS location of images",
		Long: "Set the GPS location of images and directories of images.\n\n" +
			"Coordinates accept decimal degrees, degrees and minutes, or degrees, minutes and\n" +
			"seconds, with an optional N/S/E/W hemisphere: \"48.8582\", \"48 51.49 N\", \"48°51'29.5\\\"N\".",
		Example: "  geotag set --location 48.8582,2.2945 IMG_0001.jpg\n" +
			"  geotag set --lat \"48 51 29.5 N\" --lon \"2 17 40.2 E\" --elevation 35 trip/",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			hasLocation := flags.Changed("location") || flags.Changed("lat")
			hasElevation := flags.Changed("elevation")
			if !hasLocation && !hasElevation {
				return errors.New("set needs --location, --lat/--lon or --elevation")
			}

			var loc coords.Location
			if hasLocation {
				latText, lonText := latFlag, lonFlag
				if flags.Changed("location") {
					var ok bool
					latText, lonText, ok = strings.Cut(locationFlag, ",")
					if !ok {
						return fmt.Errorf("--location expects LAT,LON (got %q)", locationFlag)
					}
				}
				parsed, err := coords.ParseLocation(latText, lonText)
				if err != nil {
					return err
				}
				if !parsed.IsSet() {
					return errors.New("empty location; use geotag clear to remove locations")
				}
				loc = parsed
			}
			if hasElevation {
				if _, err := coords.ParseElevation(elevationFlag); err != nil {
					return err
				}
			}

			return runEdit(cmd, ctx, args, dryRun, func(s *workset.Session, loaded []string) []problemView {
				var problems []problemView
				for _, path := range loaded {
					if hasLocation {
						if err := s.EditLocation(path, loc); err != nil {
							problems = append(problems, newProblemView(path, err))
							continue
						}
					}
					if hasElevation {
						if err := s.SetElevation(path, elevationFlag); err != nil {
							problems = append(problems, newProblemView(path, err))
						}
					}
				}
				return problems
			})
		},
	}

	cmd.Flags().StringVarP(&locationFlag, "location", "l", "", "Location as LAT,LON")
	cmd.Flags().StringVar(&latFlag, "lat", "", "Latitude")
	cmd.Flags().StringVar(&lonFlag, "lon", "", "Longitude")
	cmd.Flags().StringVarP(&elevationFlag, "elevation", "e", "", "Elevation in metres; empty removes it")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the staged edits without writing")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	cmd.MarkFlagsMutuallyExclusive("location", "lat")
	cmd.MarkFlagsMutuallyExclusive("location", "lon")
	return cmd
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clear PATH...",
		Short: "Remove the GPS location from images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, ctx, args, dryRun, func(s *workset.Session, loaded []string) []problemView {
				var problems []problemView
				for _, path := range loaded {
					if err := s.Edit(path, "", ""); err != nil {
						problems = append(problems, newProblemView(path, err))
					}
				}
				return problems
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the staged edits without writing")
	return cmd
}

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply PLAN.yaml",
		Short: "Apply a YAML plan of per-image locations",
		Long: "Apply a YAML plan of per-image locations. Each entry names a path (relative\n" +
			"to the plan file) and a latitude and longitude; elevation is optional.\n" +
			"Entries with an empty latitude and longitude remove the location.",
		Example: "  - path: IMG_0001.jpg\n" +
			"    latitude: 48.8582\n" +
			"    longitude: 2.2945\n" +
			"    elevation: 35",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := workset.LoadEdits(args[0])
			if err != nil {
				return err
			}
			seen := make(map[string]struct{}, len(edits))
			paths := make([]string, 0, len(edits))
			for _, e := range edits {
				if _, dup := seen[e.Path]; dup {
					continue
				}
				seen[e.Path] = struct{}{}
				paths = append(paths, e.Path)
			}

			return runEdit(cmd, ctx, paths, dryRun, func(s *workset.Session, _ []string) []problemView {
				// Paths that failed to load are already reported.
				applicable := make([]workset.PlannedEdit, 0, len(edits))
				for _, e := range edits {
					if s.Store().IndexOf(e.Path) >= 0 {
						applicable = append(applicable, e)
					}
				}
				var problems []problemView
				for _, r := range s.ApplyEdits(applicable) {
					if r.Err != nil {
						problems = append(problems, newProblemView(r.Path, r.Err))
					}
				}
				return problems
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the staged edits without writing")
	return cmd
}

// runEdit loads paths into a fresh working set, stages edits and saves the
// dirty records unless dryRun is set.
func runEdit(cmd *cobra.Command, ctx *commandContext, paths []string, dryRun bool, stage stageFunc) error {
	ws, err := ctx.openWorkspace(cmd, !dryRun)
	if err != nil {
		return err
	}
	defer ws.Close()

	runCtx := cmd.Context()
	session := ws.session

	problems, loaded := addProblems(session.Add(runCtx, paths...))
	problems = append(problems, stage(session, loaded)...)

	var (
		result  persist.BatchResult
		saveErr error
		saved   bool
	)
	if !dryRun {
		result, saveErr = session.Save(runCtx)
		if saveErr != nil && !errors.Is(saveErr, faults.ErrSpawnExhausted) {
			return saveErr
		}
		saved = true
	}

	records := session.Store().All()
	if ctx.jsonOutput() {
		report := commandReport{Problems: problems, DryRun: dryRun, Images: make([]imageView, 0, len(records))}
		for _, rec := range records {
			report.Images = append(report.Images, newImageView(rec))
		}
		if saved {
			view := newBatchView(result)
			report.Batch = &view
		}
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		p := newPrinter(cmd.OutOrStdout())
		style := ws.cfg.CoordinateStyle()
		writeProblems(p, problems)
		if len(records) > 0 {
			p.table(renderImages(records, style))
		}
		switch {
		case dryRun:
			dirty := len(session.Store().DirtySnapshot())
			p.status("Dry run", toneInfo, fmt.Sprintf("%d image(s) would be saved", dirty))
		case saved:
			if len(result.Outcomes) > 0 {
				p.table(renderOutcomes(result, style))
			}
			t, msg := saveSummary(result.Saved, result.Failed, result.Cancelled())
			p.status("Save", t, msg)
			if len(result.Outcomes) > 0 {
				p.status("Batch", toneInfo, fmt.Sprintf("%s in %s", result.ID, formatDuration(result.Duration())))
			}
		}
	}

	if err := runCtx.Err(); err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d image(s) failed to save", result.Failed, result.Saved+result.Failed)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d path(s) could not be edited", len(problems))
	}
	return nil
}

func writeProblems(p printer, problems []problemView) {
	if len(problems) == 0 {
		return
	}
	p.section("Problems")
	p.table(renderProblems(problems))
}

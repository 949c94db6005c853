package main

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"geotag/internal/gpx"
	"geotag/internal/logging"
	"geotag/internal/workset"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		tracks      []string
		maxGap      time.Duration
		interpolate bool
		skipLocated bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "match --track TRACK.gpx PATH...",
		Short: "Locate images from GPX track logs by capture time",
		Long: "Locate images from GPX track logs. Each image takes the position of the last\n" +
			"track point at or before its DateTimeOriginal, read in the [save] time_zone.\n" +
			"Images taken before every point, or more than the gap limit after the last\n" +
			"one, are reported and left unchanged.",
		Example: "  geotag match --track walk.gpx trip/\n" +
			"  geotag match -t day1.gpx -t day2.gpx --interpolate --max-gap 30m trip/",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(tracks) == 0 {
				return errors.New("match needs at least one --track")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			logs, err := gpx.LoadAll(tracks)
			if err != nil {
				return err
			}
			for _, log := range logs {
				first, last := log.Span()
				logger.Info("loaded track log",
					logging.Path(log.Path),
					logging.Int("points", log.Points()),
					logging.Int("untimed_points", log.Untimed),
					logging.String("first_point", first.Format(time.RFC3339)),
					logging.String("last_point", last.Format(time.RFC3339)))
			}

			matcher := gpx.Matcher{MaxGap: cfg.TrackMaxGap(), Interpolate: cfg.Track.Interpolate}
			if cmd.Flags().Changed("max-gap") {
				if maxGap <= 0 {
					return errors.New("--max-gap must be positive")
				}
				matcher.MaxGap = maxGap
			}
			if cmd.Flags().Changed("interpolate") {
				matcher.Interpolate = interpolate
			}

			return runEdit(cmd, ctx, args, dryRun, func(s *workset.Session, loaded []string) []problemView {
				return stageMatches(s, loaded, logs, matcher, skipLocated, logger)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&tracks, "track", "t", nil, "GPX track log (repeatable)")
	cmd.Flags().DurationVar(&maxGap, "max-gap", 0, "Override [track] max_gap_minutes (e.g. 30m)")
	cmd.Flags().BoolVar(&interpolate, "interpolate", false, "Place images between track points")
	cmd.Flags().BoolVar(&skipLocated, "skip-located", false, "Leave images that already have a location")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the staged edits without writing")
	return cmd
}

// stageMatches stages the track position of every loaded image. Images
// without a match become problems.
func stageMatches(s *workset.Session, loaded []string, logs []*gpx.Log, matcher gpx.Matcher, skipLocated bool, logger *slog.Logger) []problemView {
	var problems []problemView
	for _, path := range loaded {
		rec, err := s.Store().Find(path)
		if err != nil {
			problems = append(problems, newProblemView(path, err))
			continue
		}
		if skipLocated && rec.Current().IsSet() {
			continue
		}
		fix, err := matcher.Locate(logs, rec.CapturedAt().Time)
		if err != nil {
			problems = append(problems, newProblemView(path, err))
			continue
		}
		if err := s.EditLocation(path, fix.Location); err != nil {
			problems = append(problems, newProblemView(path, err))
			continue
		}
		logger.Debug("matched track point",
			logging.Path(path),
			logging.String("track", fix.Source),
			logging.String("point_time", fix.Point.Time.Format(time.RFC3339)),
			logging.String("location", fix.Location.String()),
			logging.Bool("interpolated", fix.Interpolated))
	}
	return problems
}

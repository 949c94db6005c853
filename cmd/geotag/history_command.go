package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"geotag/internal/history"
	"geotag/internal/logging"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit int
		prune time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history [BATCH-ID]",
		Short: "Show recent batch saves, or the outcomes of one batch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Save.CreateHistory {
				return errors.New("save history is disabled ([save] create_history = false)")
			}
			journal, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open save history: %w", err)
			}
			defer journal.Close()

			if len(args) == 1 {
				entries, err := journal.Outcomes(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printEntries(cmd, ctx, entries)
			}

			if prune > 0 {
				removed, err := journal.Prune(cmd.Context(), time.Now().Add(-prune))
				if err != nil {
					return fmt.Errorf("prune save history: %w", err)
				}
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				logger.Info("pruned save history",
					logging.Int("removed", int(removed)),
					logging.Duration("older_than", prune))
			}

			batches, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printBatches(cmd, ctx, batches)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of batches to list")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete batches older than this first (e.g. 720h)")
	return cmd
}

func printBatches(cmd *cobra.Command, ctx *commandContext, batches []history.Batch) error {
	if ctx.jsonOutput() {
		views := make([]batchView, 0, len(batches))
		for _, b := range batches {
			views = append(views, newHistoryBatchView(b))
		}
		return writeJSON(cmd.OutOrStdout(), views)
	}

	out := cmd.OutOrStdout()
	if len(batches) == 0 {
		fmt.Fprintln(out, "No saves recorded")
		return nil
	}
	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{
			b.ID,
			b.Started.Local().Format("2006-01-02 15:04:05"),
			formatDuration(b.Finished.Sub(b.Started)),
			strconv.Itoa(b.Saved),
			strconv.Itoa(b.Failed),
			strconv.Itoa(b.Cancelled),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Batch", "Started", "Took", "Saved", "Failed", "Cancelled"},
		rows, 3, 4, 5, 6,
	))
	return nil
}

func printEntries(cmd *cobra.Command, ctx *commandContext, entries []history.Entry) error {
	if ctx.jsonOutput() {
		views := make([]outcomeView, 0, len(entries))
		for _, e := range entries {
			views = append(views, newEntryView(e))
		}
		return writeJSON(cmd.OutOrStdout(), views)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		location := "(none)"
		if e.Latitude != "" {
			location = e.Latitude + ", " + e.Longitude
			if e.Elevation != "" {
				location += " @ " + e.Elevation + " m"
			}
		}
		detail := e.Backup
		if e.Kind != "" {
			detail = e.Kind
			if e.ExitCode != 0 {
				detail += " (exit " + strconv.Itoa(e.ExitCode) + ")"
			}
		}
		rows = append(rows, []string{e.Path, string(e.Status), location, detail})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Path", "Status", "Location", "Backup / Error"}, rows))
	return nil
}

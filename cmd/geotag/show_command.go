package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show PATH...",
		Short: "List images with their current GPS location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace(cmd, false)
			if err != nil {
				return err
			}
			defer ws.Close()

			problems, _ := addProblems(ws.session.Add(cmd.Context(), args...))
			records := ws.session.Store().All()

			if ctx.jsonOutput() {
				report := commandReport{Problems: problems, Images: make([]imageView, 0, len(records))}
				for _, rec := range records {
					report.Images = append(report.Images, newImageView(rec))
				}
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				p := newPrinter(cmd.OutOrStdout())
				writeProblems(p, problems)
				if len(records) == 0 {
					fmt.Fprintln(p.w, "No images found")
				} else {
					p.table(renderImages(records, ws.cfg.CoordinateStyle()))
				}
			}

			if len(problems) > 0 {
				return fmt.Errorf("%d path(s) could not be loaded", len(problems))
			}
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"geotag/internal/preflight"
)

type checkView struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ExifTool and the directories geotag writes to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			if ctx.jsonOutput() {
				views := make([]checkView, 0, len(results))
				for _, r := range results {
					views = append(views, checkView(r))
				}
				if err := writeJSON(cmd.OutOrStdout(), views); err != nil {
					return err
				}
			} else {
				p := newPrinter(cmd.OutOrStdout())
				p.section("Checks")
				for _, r := range results {
					t := toneOK
					if !r.Passed {
						t = toneError
					}
					p.status(r.Name, t, r.Detail)
				}
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
}

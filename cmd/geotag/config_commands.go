package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"geotag/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as TOML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				data, err := cfg.Encode()
				if err != nil {
					return fmt.Errorf("encode config: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:         "validate",
			Short:       "Load the configuration and report problems",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{skipConfigAnnotation: "true"},
			RunE: func(cmd *cobra.Command, _ []string) error {
				return validateConfig(cmd, strings.TrimSpace(*ctx.configFlag))
			},
		},
		newConfigInitCommand(),
	)
	return cmd
}

func validateConfig(cmd *cobra.Command, path string) error {
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	out := cmd.OutOrStdout()
	source := resolved
	if !exists {
		source += " (not found, using defaults)"
	}
	fmt.Fprintf(out, "Config path: %s\n", source)
	fmt.Fprintln(out, "Configuration valid")
	return nil
}

func newConfigInitCommand() *cobra.Command {
	var (
		path      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			written, err := config.WriteSample(strings.TrimSpace(path), overwrite)
			if errors.Is(err, config.ErrConfigExists) {
				return fmt.Errorf("%w (use --overwrite to replace it)", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\nRun `geotag check` to verify ExifTool is installed.\n", written)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Where to write the file (default ~/.config/geotag/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

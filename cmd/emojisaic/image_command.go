package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"emojisaic/internal/jobs"
	"emojisaic/internal/runner"
)

func newImageCommand(ctx *commandContext) *cobra.Command {
	var (
		size     int
		maxBlock int
		format   string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "image <file>",
		Short: "Convert a still image into an emoji mosaic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source := args[0]
			if kind := jobs.KindForPath(source); kind != jobs.KindImage {
				return fmt.Errorf("%s is not a supported image file", source)
			}

			pipe, store, err := ctx.newPipeline()
			if err != nil {
				return err
			}
			defer store.Close()

			job := &jobs.Job{
				Kind:       jobs.KindImage,
				SourcePath: source,
				OutFormat:  format,
				CellSize:   resolveInt(size, cfg.Mosaic.CellSize),
				MaxBlock:   resolveInt(maxBlock, cfg.Mosaic.MaxBlock),
				OutputPath: outPath,
			}
			if err := store.Create(cmd.Context(), job); err != nil {
				return err
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			work := runner.New(cfg, store, pipe, logger)
			if err := work.Drain(cmd.Context()); err != nil {
				return err
			}

			finished, err := store.GetByID(cmd.Context(), job.ID)
			if err != nil {
				return err
			}
			if finished.Status != jobs.StatusCompleted {
				return fmt.Errorf("mosaic failed: %s", finished.ErrorMsg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), finished.OutputPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "Cell size in pixels (4-48)")
	cmd.Flags().IntVar(&maxBlock, "max-block", 0, "Largest merged block side in cells (1-20)")
	cmd.Flags().StringVar(&format, "format", "png", "Output format: png or jpg")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (defaults to the output directory)")

	return cmd
}

// resolveInt prefers an explicit flag value over the configured default.
func resolveInt(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

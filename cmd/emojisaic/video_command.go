package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"emojisaic/internal/jobs"
	"emojisaic/internal/pipeline"
	"emojisaic/internal/runner"
)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	var (
		fps      int
		size     int
		maxBlock int
		format   string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "video <file>...",
		Short: "Convert one or more videos into emoji mosaic videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			for _, source := range args {
				if kind := jobs.KindForPath(source); kind != jobs.KindVideo {
					return fmt.Errorf("%s is not a supported video file", source)
				}
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}

			pipe, store, err := ctx.newPipeline()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, source := range args {
				job := &jobs.Job{
					Kind:       jobs.KindVideo,
					SourcePath: source,
					OutFormat:  format,
					FPS:        resolveInt(fps, cfg.Video.FPS),
					CellSize:   resolveInt(size, cfg.Mosaic.CellSize),
					MaxBlock:   resolveInt(maxBlock, cfg.Mosaic.MaxBlock),
					OutputPath: videoOutputPath(outDir, source, format),
				}
				if err := store.Create(cmd.Context(), job); err != nil {
					return err
				}
			}

			attachProgressBar(pipe)

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			work := runner.New(cfg, store, pipe, logger)
			if err := work.Drain(cmd.Context()); err != nil {
				return err
			}

			finished, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderJobSummary(finished))

			for _, job := range finished {
				if job.Status != jobs.StatusCompleted {
					return fmt.Errorf("%d of %d jobs failed", countFailed(finished), len(finished))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&fps, "fps", 0, "Frames per second to extract")
	cmd.Flags().IntVar(&size, "size", 0, "Cell size in pixels (4-48)")
	cmd.Flags().IntVar(&maxBlock, "max-block", 0, "Largest merged block side in cells (1-20)")
	cmd.Flags().StringVar(&format, "format", "mp4", "Output format: mp4 or gif")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (defaults to the configured one)")

	return cmd
}

// attachProgressBar mirrors frame progress onto a terminal progress bar. On
// a non-terminal stderr the bar stays silent and progress lives in the logs.
func attachProgressBar(pipe *pipeline.Pipeline) {
	if !isTerminal() {
		return
	}
	var bar *progressbar.ProgressBar
	var barJobID string
	pipe.OnProgress = func(job *jobs.Job, done, total int) {
		if bar == nil || barJobID != job.ID {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(filepath.Base(job.SourcePath)),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			barJobID = job.ID
		}
		_ = bar.Set(done)
	}
}

func videoOutputPath(outDir, source, format string) string {
	if outDir == "" {
		return ""
	}
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := "mp4"
	if strings.EqualFold(strings.TrimSpace(format), "gif") {
		ext = "gif"
	}
	return filepath.Join(outDir, stem+"_mosaic."+ext)
}

func countFailed(list []*jobs.Job) int {
	failed := 0
	for _, job := range list {
		if job.Status == jobs.StatusFailed {
			failed++
		}
	}
	return failed
}

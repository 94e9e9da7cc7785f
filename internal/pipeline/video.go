package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"emojisaic/internal/config"
	"emojisaic/internal/jobs"
	"emojisaic/internal/logging"
	"emojisaic/internal/mosaic"
	"emojisaic/internal/services"
)

// framePattern names the intermediate mosaic frames in the job working
// directory. Numbering starts at 1 to match ffmpeg's image sequence default.
const framePattern = "frame-%05d.png"

func (p *Pipeline) runVideo(ctx context.Context, job *jobs.Job) error {
	p.reportStage(ctx, job, "Probing input", 1)

	info, err := p.transcoder.Probe(ctx, job.SourcePath)
	if err != nil {
		return err
	}
	if limit := p.cfg.Video.MaxDurationSeconds; limit > 0 && info.DurationSeconds > float64(limit) {
		return services.Wrap(services.ErrInput, "pipeline", "probe",
			fmt.Sprintf("video is %.1fs, limit is %ds", info.DurationSeconds, limit), nil)
	}

	workDir, err := jobs.PrepareWorkDir(p.cfg.Paths.StagingDir, job.ID)
	if err != nil {
		return fmt.Errorf("prepare work directory: %w", err)
	}
	defer func() {
		if err := jobs.CleanupWorkDir(p.cfg.Paths.StagingDir, job.ID); err != nil {
			logging.WithContext(ctx, p.logger).Warn("failed to clean up work directory", logging.Error(err))
		}
	}()

	fps := config.ClampFPS(job.FPS)
	p.reportStage(ctx, job, "Extracting frames", 5)
	frames, err := p.transcoder.ExtractFrames(ctx, job.SourcePath, fps, p.cfg.Video.MaxWidth)
	if err != nil {
		return err
	}

	pal, err := p.palettes.For(job.CellSize)
	if err != nil {
		return err
	}

	opts := mosaic.Options{CellSize: job.CellSize, MaxBlock: job.MaxBlock}
	total := len(frames)
	for index, frame := range frames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("job canceled: %w", err)
		}

		out, err := mosaic.Generate(frame, pal, opts)
		if err != nil {
			return err
		}
		framePath := filepath.Join(workDir, fmt.Sprintf(framePattern, index+1))
		if err := writeImage(framePath, out, "png"); err != nil {
			return err
		}
		p.reportFrame(ctx, job, index+1, total)
	}

	format := normalizeVideoFormat(job.OutFormat)
	requested := job.OutputPath

	// GIF output still encodes an intermediate MP4 first; the re-encode reads
	// from it, so it can stay in the work directory and vanish with it.
	mp4Path := requested
	if format == "gif" {
		mp4Path = filepath.Join(workDir, "intermediate.mp4")
	} else if mp4Path == "" {
		mp4Path = p.outputPathFor(job, "_mosaic.mp4")
	}

	p.reportStage(ctx, job, "Encoding video", 95)
	if err := p.transcoder.EncodeVideo(ctx, workDir, framePattern, fps, mp4Path); err != nil {
		return err
	}
	job.OutputPath = mp4Path

	if format == "gif" {
		gifPath := requested
		if gifPath == "" {
			gifPath = p.outputPathFor(job, "_mosaic.gif")
		}
		p.reportStage(ctx, job, "Encoding GIF", 98)
		if err := p.transcoder.EncodeGIF(ctx, mp4Path, gifPath); err != nil {
			return err
		}
		job.OutputPath = gifPath
	}

	logging.WithContext(ctx, p.logger).Info("video job finished",
		logging.Int("frames", total),
		logging.String("output", job.OutputPath))
	return nil
}

// normalizeVideoFormat maps the requested output format onto mp4 or gif,
// defaulting to mp4.
func normalizeVideoFormat(format string) string {
	if strings.ToLower(strings.TrimSpace(format)) == "gif" {
		return "gif"
	}
	return "mp4"
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"emojisaic/internal/config"
	"emojisaic/internal/jobs"
	"emojisaic/internal/logging"
	"emojisaic/internal/palette"
	"emojisaic/internal/services"
	"emojisaic/internal/services/ffmpeg"
)

// ProgressFunc mirrors per-frame progress to an observer, typically a
// terminal progress bar. done counts finished frames out of total.
type ProgressFunc func(job *jobs.Job, done, total int)

// Pipeline executes image and video jobs end to end. Progress flows through
// the job store; the optional OnProgress seam mirrors it to the caller.
type Pipeline struct {
	cfg        *config.Config
	store      *jobs.Store
	palettes   *palette.Cache
	transcoder ffmpeg.Client
	logger     *slog.Logger

	OnProgress ProgressFunc
}

// New builds a pipeline over the given collaborators.
func New(cfg *config.Config, store *jobs.Store, palettes *palette.Cache, transcoder ffmpeg.Client, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:        cfg,
		store:      store,
		palettes:   palettes,
		transcoder: transcoder,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run executes the job to completion. On success job.OutputPath points at the
// finished artifact; the caller owns the terminal status transition. Any
// returned error is fatal to the job.
func (p *Pipeline) Run(ctx context.Context, job *jobs.Job) error {
	ctx = services.WithJobID(ctx, job.ID)

	switch job.Kind {
	case jobs.KindImage:
		return p.runImage(ctx, job)
	case jobs.KindVideo:
		return p.runVideo(ctx, job)
	default:
		return services.Wrap(services.ErrInput, "pipeline", "run", fmt.Sprintf("unsupported job kind %q", job.Kind), nil)
	}
}

func (p *Pipeline) reportStage(ctx context.Context, job *jobs.Job, message string, percent float64) {
	job.SetProgress(message, percent)
	if err := p.store.Update(ctx, job); err != nil {
		logging.WithContext(ctx, p.logger).Warn("failed to persist job progress", logging.Error(err))
	}
}

func (p *Pipeline) reportFrame(ctx context.Context, job *jobs.Job, done, total int) {
	job.SetFrameProgress(done, total)
	job.Message = fmt.Sprintf("Frame %d/%d", done, total)
	if err := p.store.Update(ctx, job); err != nil {
		logging.WithContext(ctx, p.logger).Warn("failed to persist frame progress", logging.Error(err))
	}
	if p.OnProgress != nil {
		p.OnProgress(job, done, total)
	}
}

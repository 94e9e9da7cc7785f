package live

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"emojisaic/internal/logging"
	"emojisaic/internal/mosaic"
	"emojisaic/internal/palette"
	"emojisaic/internal/services"
	"emojisaic/internal/services/camera"
)

const (
	defaultInterval = 200 * time.Millisecond
	streamQuality   = 85
)

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Settings carries the stream parameters. Zero values fall back to defaults.
type Settings struct {
	CellSize     int
	MaxBlock     int
	Interval     time.Duration
	MaxDimension int
}

// Controller drives a live mosaic stream: capture, mosaic, emit, repeat. At
// most one cycle is in flight at any time; the next cycle is scheduled one
// interval after the previous cycle STARTED, but never begins before the
// previous cycle finished.
type Controller struct {
	camera   camera.Camera
	palettes *palette.Cache
	sink     Sink
	settings Settings
	logger   *slog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController builds a controller over the given collaborators.
func NewController(cam camera.Camera, palettes *palette.Cache, sink Sink, settings Settings, logger *slog.Logger) *Controller {
	if settings.Interval <= 0 {
		settings.Interval = defaultInterval
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		camera:   cam,
		palettes: palettes,
		sink:     sink,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "live"),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start opens the camera and begins streaming. A camera that cannot be
// opened returns the controller to idle; it is never left half-started.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return errors.New("stream already active")
	}
	c.state = StateStarting
	c.mu.Unlock()

	if err := c.camera.Open(ctx); err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return err
	}

	streamID := uuid.New().String()
	runCtx, cancel := context.WithCancel(services.WithStreamID(ctx, streamID))
	c.mu.Lock()
	c.cancel = cancel
	c.state = StateRunning
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(runCtx)

	logging.WithContext(runCtx, c.logger).Info("stream started",
		logging.Int("cell_size", c.settings.CellSize),
		logging.Duration("interval", c.settings.Interval))
	return nil
}

// Stop halts the stream, waits for an in-flight cycle to finish, and
// releases the camera. Safe to call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StateStopping
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
	if err := c.camera.Close(); err != nil {
		c.logger.Warn("failed to release camera", logging.Error(err))
	}

	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
	c.logger.Info("stream stopped")
}

func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		cycleStart := time.Now()
		c.cycle(ctx)

		wait := c.settings.Interval - time.Since(cycleStart)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// cycle runs one capture-mosaic-emit pass. Errors inside a cycle are logged
// and swallowed; only Stop ends the stream. A result produced while stopping
// is discarded, never emitted.
func (c *Controller) cycle(ctx context.Context) {
	logger := logging.WithContext(ctx, c.logger)

	frame, err := c.camera.Capture(ctx)
	if err != nil {
		if ctx.Err() == nil {
			if services.IsFatalToJob(err) {
				logger.Error("camera unavailable", logging.Error(err))
			} else {
				logger.Warn("frame capture failed", logging.Error(err))
			}
		}
		return
	}

	if c.settings.MaxDimension > 0 {
		frame = mosaic.FitWithin(frame, c.settings.MaxDimension)
	}

	pal, err := c.palettes.For(c.settings.CellSize)
	if err != nil {
		logger.Warn("palette unavailable", logging.Error(err))
		return
	}

	out, err := mosaic.Generate(frame, pal, mosaic.Options{
		CellSize: c.settings.CellSize,
		MaxBlock: c.settings.MaxBlock,
	})
	if err != nil {
		logger.Warn("mosaic generation failed", logging.Error(err))
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: streamQuality}); err != nil {
		logger.Warn("frame encode failed", logging.Error(err))
		return
	}

	if ctx.Err() != nil {
		return
	}
	if err := c.sink.Emit(ctx, buf.Bytes()); err != nil {
		logger.Warn("frame emit failed", logging.Error(err))
	}
}

package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"emojisaic/internal/config"
	"emojisaic/internal/jobs"
	"emojisaic/internal/logging"
	"emojisaic/internal/palette"
	"emojisaic/internal/pipeline"
	"emojisaic/internal/services/ffmpeg"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger. Log lines go to stderr so tables
// and progress bars own stdout.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
			File:   cfg.LogFile(),
		})
	})
	return c.logger, c.loggerErr
}

// newPipeline wires the job store, palette cache, and transcoder into a
// ready pipeline. The caller owns closing the returned store.
func (c *commandContext) newPipeline() (*pipeline.Pipeline, *jobs.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	store, err := jobs.Open()
	if err != nil {
		return nil, nil, err
	}
	palettes := palette.NewCache(cfg.Paths.PaletteDir)
	pipe := pipeline.New(cfg, store, palettes, ffmpeg.NewCLI(), logger)
	return pipe, store, nil
}

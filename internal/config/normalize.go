package config

import "strings"

// normalize expands path fields and folds parameter fields into their
// supported ranges. Zero values pick up defaults so a sparse config file
// behaves like Default().
func (c *Config) normalize() error {
	defaults := Default()

	for _, field := range []*string{
		&c.Paths.PaletteDir,
		&c.Paths.StagingDir,
		&c.Paths.OutputDir,
		&c.Paths.LogDir,
	} {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Mosaic.CellSize == 0 {
		c.Mosaic.CellSize = defaults.Mosaic.CellSize
	}
	c.Mosaic.CellSize = ClampCellSize(c.Mosaic.CellSize)

	if c.Mosaic.MaxBlock == 0 {
		c.Mosaic.MaxBlock = defaults.Mosaic.MaxBlock
	}
	c.Mosaic.MaxBlock = ClampMaxBlock(c.Mosaic.MaxBlock)

	c.Video.FPS = ClampFPS(c.Video.FPS)
	if c.Video.MaxDurationSeconds < 0 {
		c.Video.MaxDurationSeconds = 0
	}
	if c.Video.MaxWidth <= 0 {
		c.Video.MaxWidth = defaults.Video.MaxWidth
	}

	if strings.TrimSpace(c.Live.Device) == "" {
		c.Live.Device = defaults.Live.Device
	}
	if c.Live.IntervalMS <= 0 {
		c.Live.IntervalMS = defaults.Live.IntervalMS
	}
	if c.Live.MaxDimension <= 0 {
		c.Live.MaxDimension = defaults.Live.MaxDimension
	}
	if strings.TrimSpace(c.Live.MQTTTopic) == "" {
		c.Live.MQTTTopic = defaults.Live.MQTTTopic
	}

	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return nil
}

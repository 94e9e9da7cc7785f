package config

// Engine parameter bounds. Caller-supplied values outside these ranges are
// clamped, never rejected.
const (
	MinCellSize = 4
	MaxCellSize = 48
	MinMaxBlock = 1
	MaxMaxBlock = 20

	DefaultCellSize = 12
	DefaultMaxBlock = 8
	DefaultFPS      = 10
)

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			PaletteDir: "~/.local/share/emojisaic/emojis",
			StagingDir: "~/.cache/emojisaic/staging",
			OutputDir:  "~/emojisaic",
			LogDir:     "~/.local/share/emojisaic/logs",
		},
		Mosaic: Mosaic{
			CellSize: DefaultCellSize,
			MaxBlock: DefaultMaxBlock,
		},
		Video: Video{
			FPS:                DefaultFPS,
			MaxDurationSeconds: 15,
			MaxWidth:           1280,
		},
		Live: Live{
			Device:       "/dev/video0",
			IntervalMS:   200,
			MaxDimension: 640,
			MQTTBroker:   "",
			MQTTTopic:    "emojisaic/live",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

// ClampCellSize forces a cell size into the supported range.
func ClampCellSize(value int) int {
	if value < MinCellSize {
		return MinCellSize
	}
	if value > MaxCellSize {
		return MaxCellSize
	}
	return value
}

// ClampMaxBlock forces a block limit into the supported range.
func ClampMaxBlock(value int) int {
	if value < MinMaxBlock {
		return MinMaxBlock
	}
	if value > MaxMaxBlock {
		return MaxMaxBlock
	}
	return value
}

// ClampFPS forces a frame rate to a positive value, substituting the default
// for non-positive input.
func ClampFPS(value int) int {
	if value <= 0 {
		return DefaultFPS
	}
	return value
}

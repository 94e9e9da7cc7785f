package config

import (
	"fmt"
	"strings"
)

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks invariants that normalization cannot repair.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.PaletteDir) == "" {
		return fmt.Errorf("config: paths.palette_dir is required")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return fmt.Errorf("config: paths.staging_dir is required")
	}

	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if _, ok := validLogFormats[format]; !ok {
		return fmt.Errorf("config: logging.format must be console or json, got %q", c.Logging.Format)
	}

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if _, ok := validLogLevels[level]; !ok {
		return fmt.Errorf("config: logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.Live.MQTTBroker) != "" && strings.TrimSpace(c.Live.MQTTTopic) == "" {
		return fmt.Errorf("config: live.mqtt_topic is required when live.mqtt_broker is set")
	}

	return nil
}

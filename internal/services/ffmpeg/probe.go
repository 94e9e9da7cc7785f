package ffmpeg

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"emojisaic/internal/services"
)

// videoProbe only cares about the video stream and container duration.
type videoProbe struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe inspects the input with ffprobe and returns the video stream
// dimensions and the container duration.
func (c *CLI) Probe(ctx context.Context, path string) (Info, error) {
	probeStr, err := ffmpeg.Probe(path)
	if err != nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "ffprobe", "probe", path, err)
	}
	return parseProbe(probeStr)
}

func parseProbe(probeStr string) (Info, error) {
	var probe videoProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "ffprobe", "parse output", "", err)
	}

	info := Info{DurationSeconds: parseSeconds(probe.Format.Duration)}
	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info.Width = stream.Width
		info.Height = stream.Height
		if info.DurationSeconds == 0 {
			info.DurationSeconds = parseSeconds(stream.Duration)
		}
		return info, nil
	}

	return Info{}, services.Wrap(services.ErrExternalTool, "ffprobe", "parse output", "no video stream found", nil)
}

func parseSeconds(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return seconds
}

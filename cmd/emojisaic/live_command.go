package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"emojisaic/internal/live"
	"emojisaic/internal/logging"
	"emojisaic/internal/palette"
	"emojisaic/internal/services/camera"
)

func newLiveCommand(ctx *commandContext) *cobra.Command {
	var (
		device     string
		size       int
		maxBlock   int
		intervalMS int
		maxDim     int
		outDir     string
		mqttBroker string
		mqttTopic  string
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Stream emoji mosaics from a camera until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			devicePath := device
			if devicePath == "" {
				devicePath = cfg.Live.Device
			}
			if devicePath == "" {
				return fmt.Errorf("no camera device configured; pass --device or set live.device")
			}

			streamDir := outDir
			if streamDir == "" {
				streamDir = filepath.Join(cfg.Paths.OutputDir, "stream")
			}
			fileSink, err := live.NewFileSink(streamDir)
			if err != nil {
				return err
			}
			sinks := []live.Sink{fileSink}

			broker := mqttBroker
			if broker == "" {
				broker = cfg.Live.MQTTBroker
			}
			if broker != "" {
				topic := mqttTopic
				if topic == "" {
					topic = cfg.Live.MQTTTopic
				}
				mqttSink, err := live.NewMQTTSink(broker, topic, logger)
				if err != nil {
					return err
				}
				defer mqttSink.Close()
				sinks = append(sinks, mqttSink)
			}

			interval := time.Duration(resolveInt(intervalMS, cfg.Live.IntervalMS)) * time.Millisecond
			settings := live.Settings{
				CellSize:     resolveInt(size, cfg.Mosaic.CellSize),
				MaxBlock:     resolveInt(maxBlock, cfg.Mosaic.MaxBlock),
				Interval:     interval,
				MaxDimension: resolveInt(maxDim, cfg.Live.MaxDimension),
			}

			monitor := camera.NewMonitor(logger, devicePath)
			monitor.Start(cmd.Context())
			defer monitor.Stop()

			controller := live.NewController(
				camera.NewDevice(devicePath),
				palette.NewCache(cfg.Paths.PaletteDir),
				live.Tee(sinks...),
				settings,
				logger,
			)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := controller.Start(runCtx); err != nil {
				return liveStartError(err, devicePath, monitor.Available())
			}
			logger.Info("streaming; press Ctrl-C to stop",
				logging.String("device", devicePath),
				logging.String("stream_dir", streamDir))

			<-runCtx.Done()
			controller.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&device, "device", "", "Camera device path, e.g. /dev/video0")
	cmd.Flags().IntVar(&size, "size", 0, "Cell size in pixels (4-48)")
	cmd.Flags().IntVar(&maxBlock, "max-block", 0, "Largest merged block side in cells (1-20)")
	cmd.Flags().IntVar(&intervalMS, "interval", 0, "Cycle interval in milliseconds")
	cmd.Flags().IntVar(&maxDim, "max-dim", 0, "Downscale captured frames to this max dimension")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Stream output directory")
	cmd.Flags().StringVar(&mqttBroker, "mqtt-broker", "", "MQTT broker URL for frame publishing")
	cmd.Flags().StringVar(&mqttTopic, "mqtt-topic", "", "MQTT topic for frame publishing")

	return cmd
}

// liveStartError folds the hotplug monitor's view of the device into a
// failed stream start, so an unplugged camera reads as such instead of a
// bare open error.
func liveStartError(err error, device string, available bool) error {
	if !available {
		return fmt.Errorf("camera %s appears to be unplugged: %w", device, err)
	}
	return err
}

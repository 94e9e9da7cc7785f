package live

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"emojisaic/internal/logging"
	"emojisaic/internal/services"
)

const mqttConnectTimeout = 10 * time.Second

// MQTTSink publishes mosaic frames to a broker topic at QoS 0. Frames are
// fire-and-forget; a slow broker drops frames rather than stalling the
// stream.
type MQTTSink struct {
	client mqtt.Client
	topic  string
	logger *slog.Logger
}

// NewMQTTSink connects to the broker and returns a publishing sink.
func NewMQTTSink(broker, topic string, logger *slog.Logger) (*MQTTSink, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "mqtt")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("emojisaic-" + uuid.New().String()[:8])
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		logger.Info("connected to broker", logging.String("broker", broker))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("broker connection lost", logging.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, services.Wrap(services.ErrExternalTool, "mqtt", "connect", broker, fmt.Errorf("timed out after %s", mqttConnectTimeout))
	}
	if err := token.Error(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "mqtt", "connect", broker, err)
	}

	return &MQTTSink{client: client, topic: topic, logger: logger}, nil
}

// Emit publishes the frame without waiting for delivery.
func (s *MQTTSink) Emit(ctx context.Context, frame []byte) error {
	if !s.client.IsConnected() {
		return services.Wrap(services.ErrTransient, "mqtt", "publish", "client disconnected", nil)
	}
	s.client.Publish(s.topic, 0, false, frame)
	return nil
}

// Close disconnects from the broker, allowing a short drain for queued
// messages.
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}

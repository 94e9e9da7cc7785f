package camera

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"emojisaic/internal/services"
)

// Camera is the capture collaborator contract. Open failures are camera
// access errors; capture failures inside a running stream are transient.
type Camera interface {
	Open(ctx context.Context) error
	Capture(ctx context.Context) (image.Image, error)
	Close() error
}

// Device captures single frames from a V4L2 device through ffmpeg.
type Device struct {
	path   string
	format string

	mu   sync.Mutex
	open bool
}

// Option configures the device.
type Option func(*Device)

// WithInputFormat overrides the default v4l2 input format.
func WithInputFormat(format string) Option {
	return func(d *Device) {
		if format != "" {
			d.format = format
		}
	}
}

// NewDevice constructs a camera over the given device path.
func NewDevice(path string, opts ...Option) *Device {
	device := &Device{path: path, format: "v4l2"}
	for _, opt := range opts {
		opt(device)
	}
	return device
}

// Open acquires the device. A missing or inaccessible device node is a
// camera access error for this attempt only; the caller may retry.
func (d *Device) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return nil
	}
	if _, err := os.Stat(d.path); err != nil {
		return services.Wrap(services.ErrCameraAccess, "camera", "open", d.path, err)
	}
	d.open = true
	return nil
}

// Capture grabs one frame from the device. The device must be open.
func (d *Device) Capture(ctx context.Context) (image.Image, error) {
	d.mu.Lock()
	open := d.open
	d.mu.Unlock()
	if !open {
		return nil, services.Wrap(services.ErrCameraAccess, "camera", "capture", "device not open", nil)
	}

	var out bytes.Buffer
	cmd := ffmpeg.Input(d.path, ffmpeg.KwArgs{"f": d.format}).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":   "image2pipe",
			"vcodec":   "png",
			"frames:v": "1",
		}).
		WithOutput(&out).
		WithErrorOutput(io.Discard)
	cmd.Context = ctx

	if err := cmd.Run(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "camera", "capture", d.path, err)
	}

	img, err := png.Decode(&out)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "camera", "decode frame", "", err)
	}
	return img, nil
}

// Close releases the device handle.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return nil
}

var _ Camera = (*Device)(nil)

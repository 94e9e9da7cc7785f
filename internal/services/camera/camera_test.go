package camera

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"emojisaic/internal/services"
)

func TestOpenMissingDeviceIsCameraAccessError(t *testing.T) {
	device := NewDevice(filepath.Join(t.TempDir(), "video9"))
	err := device.Open(context.Background())
	if !errors.Is(err, services.ErrCameraAccess) {
		t.Fatalf("expected ErrCameraAccess, got %v", err)
	}
}

func TestOpenExistingDeviceNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video0")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("create fake device: %v", err)
	}

	device := NewDevice(path)
	if err := device.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	// Second open is idempotent.
	if err := device.Open(context.Background()); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := device.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCaptureRequiresOpenDevice(t *testing.T) {
	device := NewDevice("/dev/video0")
	if _, err := device.Capture(context.Background()); !errors.Is(err, services.ErrCameraAccess) {
		t.Fatalf("expected ErrCameraAccess before Open, got %v", err)
	}
}

func TestWithInputFormatOverride(t *testing.T) {
	device := NewDevice("/dev/video0", WithInputFormat("avfoundation"))
	if device.format != "avfoundation" {
		t.Fatalf("expected format override, got %q", device.format)
	}
	keep := NewDevice("/dev/video0", WithInputFormat(""))
	if keep.format != "v4l2" {
		t.Fatalf("expected empty override to keep default, got %q", keep.format)
	}
}

func TestMonitorAvailableDefaultsTrue(t *testing.T) {
	var m *Monitor
	if !m.Available() {
		t.Fatal("nil monitor should report available")
	}

	monitor := NewMonitor(nil, "/dev/video0")
	if !monitor.Available() {
		t.Fatal("unstarted monitor should report available")
	}
}

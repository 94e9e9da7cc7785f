package camera

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"emojisaic/internal/logging"
)

// Monitor listens for udev netlink events on the video4linux subsystem and
// tracks whether the configured camera device is present. It exists so the
// live controller can report a useful reason when a start attempt fails
// after the camera was unplugged.
type Monitor struct {
	logger *slog.Logger
	device string

	mu        sync.Mutex
	conn      *netlink.UEventConn
	quit      chan struct{}
	running   bool
	available bool
}

// NewMonitor creates a hotplug monitor for the given device path.
func NewMonitor(logger *slog.Logger, device string) *Monitor {
	return &Monitor{
		logger: logging.NewComponentLogger(logger, "camera-monitor"),
		device: strings.TrimSpace(device),
	}
}

// Start begins listening for udev events. A connect failure is non-fatal:
// the live controller still works, it just cannot distinguish "unplugged"
// from other open failures.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil || m.device == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; camera hotplug detection unavailable",
			logging.Error(err))
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true
	m.available = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("camera monitor started", logging.String("device", m.device))
	return nil
}

// Stop shuts down the monitor.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("camera monitor stopped")
}

// Available reports whether the device is believed present. Before any event
// arrives, or when the monitor never started, the device is assumed present.
func (m *Monitor) Available() bool {
	if m == nil {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return true
	}
	return m.available
}

func (m *Monitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, m.buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("camera monitor netlink error", logging.Error(err))
		}
	}
}

// buildMatcher matches add/remove events on the video4linux subsystem.
func (m *Monitor) buildMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "video4linux",
		},
	})
	return rules
}

func (m *Monitor) handleEvent(uevent netlink.UEvent) {
	devname := uevent.Env["DEVNAME"]
	if devname == "" {
		return
	}
	if !strings.HasPrefix(devname, "/dev/") {
		devname = filepath.Join("/dev", devname)
	}
	if devname != m.device {
		return
	}

	present := uevent.Action == netlink.ADD

	m.mu.Lock()
	m.available = present
	m.mu.Unlock()

	m.logger.Info("camera availability changed",
		logging.String("device", m.device),
		logging.Bool("available", present),
	)
}

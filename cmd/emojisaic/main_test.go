package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emojisaic/internal/jobs"
	"emojisaic/internal/services"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "palette_dir") {
		t.Fatal("sample config missing palette_dir")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("existing"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	cmd := newRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", "--path", target})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestRenderJobSummaryShowsFailures(t *testing.T) {
	list := []*jobs.Job{
		{SourcePath: "a.mp4", Status: jobs.StatusCompleted, FramesDone: 30, FramesTotal: 30, OutputPath: "/out/a_mosaic.mp4"},
		{SourcePath: "b.mp4", Status: jobs.StatusFailed, ErrorMsg: "probe failed"},
	}

	rendered := renderJobSummary(list)
	for _, want := range []string{"a.mp4", "completed", "30/30", "b.mp4", "failed", "probe failed"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("summary missing %q:\n%s", want, rendered)
		}
	}
}

func TestVideoOutputPath(t *testing.T) {
	if got := videoOutputPath("", "/media/clip.mp4", "mp4"); got != "" {
		t.Fatalf("expected empty path without out dir, got %q", got)
	}
	if got := videoOutputPath("/out", "/media/clip.mp4", "gif"); got != filepath.Join("/out", "clip_mosaic.gif") {
		t.Fatalf("unexpected gif path %q", got)
	}
	if got := videoOutputPath("/out", "clip.mov", "mp4"); got != filepath.Join("/out", "clip_mosaic.mp4") {
		t.Fatalf("unexpected mp4 path %q", got)
	}
}

func TestLiveStartErrorReportsUnpluggedDevice(t *testing.T) {
	openErr := services.Wrap(services.ErrCameraAccess, "camera", "open", "/dev/video0", nil)

	got := liveStartError(openErr, "/dev/video0", false)
	if !errors.Is(got, services.ErrCameraAccess) {
		t.Fatalf("expected wrapped camera access error, got %v", got)
	}
	if !strings.Contains(got.Error(), "unplugged") {
		t.Fatalf("expected unplugged hint, got %q", got.Error())
	}

	// With the device still present the open error passes through untouched.
	if got := liveStartError(openErr, "/dev/video0", true); got != openErr {
		t.Fatalf("expected original error when device is available, got %v", got)
	}
}

func TestResolveInt(t *testing.T) {
	if resolveInt(0, 12) != 12 {
		t.Fatal("zero flag should fall back to config")
	}
	if resolveInt(6, 12) != 6 {
		t.Fatal("explicit flag should win")
	}
}

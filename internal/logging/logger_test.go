package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewConsoleIncludesComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	NewComponentLogger(logger, "engine").Info("mosaic complete", Int("blocks", 12))

	line := buf.String()
	if !strings.Contains(line, "INFO engine: mosaic complete") {
		t.Fatalf("expected component prefix in output, got %q", line)
	}
	if !strings.Contains(line, "blocks=12") {
		t.Fatalf("expected attr in output, got %q", line)
	}
}

func TestNewConsoleQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("capture failed", Error(errors.New("device busy")))

	if !strings.Contains(buf.String(), `error="device busy"`) {
		t.Fatalf("expected quoted error value, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewNopDiscardsOutput(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", String("key", "value"))
	if logger.Enabled(nil, slog.LevelError) { //nolint:staticcheck
		t.Fatal("expected no-op logger to be disabled")
	}
}

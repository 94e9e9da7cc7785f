package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "ffmpeg", "encode", "mp4 assembly failed", base)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "live", "emit", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected nil marker to default to ErrTransient, got %v", err)
	}
}

func TestIsFatalToJob(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{nil, false},
		{Wrap(ErrTransient, "live", "emit", "", nil), false},
		{Wrap(ErrInput, "engine", "decode", "", nil), true},
		{Wrap(ErrExternalTool, "ffmpeg", "extract", "", nil), true},
		{Wrap(ErrFrameDecode, "ffmpeg", "decode frame 3", "", nil), true},
	}
	for _, tc := range cases {
		if got := IsFatalToJob(tc.err); got != tc.fatal {
			t.Fatalf("IsFatalToJob(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}

func TestWrapWithoutDetailUsesFallback(t *testing.T) {
	err := Wrap(ErrInput, "", "", "", nil)
	if got := err.Error(); got != "input error: service failure" {
		t.Fatalf("unexpected message: %q", got)
	}
}

package ffmpeg

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"emojisaic/internal/services"
)

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestSplitPNGStream(t *testing.T) {
	first := pngBytes(t, color.RGBA{R: 255, A: 255})
	second := pngBytes(t, color.RGBA{G: 255, A: 255})
	third := pngBytes(t, color.RGBA{B: 255, A: 255})

	var stream bytes.Buffer
	stream.Write(first)
	stream.Write(second)
	stream.Write(third)

	segments := splitPNGStream(stream.Bytes())
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	for i, segment := range segments {
		if _, err := png.Decode(bytes.NewReader(segment)); err != nil {
			t.Fatalf("segment %d failed to decode: %v", i, err)
		}
	}
	if !bytes.Equal(segments[0], first) || !bytes.Equal(segments[2], third) {
		t.Fatal("segments do not match input order")
	}
}

func TestSplitPNGStreamEmpty(t *testing.T) {
	if got := splitPNGStream(nil); got != nil {
		t.Fatalf("expected nil for empty stream, got %d segments", len(got))
	}
	if got := splitPNGStream([]byte("garbage with no signature")); got != nil {
		t.Fatalf("expected nil for garbage, got %d segments", len(got))
	}
}

func TestParseProbeReadsDurationAndDimensions(t *testing.T) {
	payload := `{
		"streams": [
			{"codec_type": "audio"},
			{"codec_type": "video", "width": 1920, "height": 1080, "duration": "2.5"}
		],
		"format": {"duration": "3.004"}
	}`
	info, err := parseProbe(payload)
	if err != nil {
		t.Fatalf("parseProbe: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Fatalf("unexpected dimensions: %+v", info)
	}
	if info.DurationSeconds != 3.004 {
		t.Fatalf("expected container duration 3.004, got %v", info.DurationSeconds)
	}
}

func TestParseProbeFallsBackToStreamDuration(t *testing.T) {
	payload := `{
		"streams": [{"codec_type": "video", "width": 640, "height": 480, "duration": "1.25"}],
		"format": {}
	}`
	info, err := parseProbe(payload)
	if err != nil {
		t.Fatalf("parseProbe: %v", err)
	}
	if info.DurationSeconds != 1.25 {
		t.Fatalf("expected stream duration fallback, got %v", info.DurationSeconds)
	}
}

func TestParseProbeWithoutVideoStream(t *testing.T) {
	_, err := parseProbe(`{"streams": [{"codec_type": "audio"}], "format": {}}`)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestParseProbeRejectsMalformedJSON(t *testing.T) {
	if _, err := parseProbe("not json"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestScaleFilter(t *testing.T) {
	if got := scaleFilter(640); got != "scale='min(640,iw)':-2" {
		t.Fatalf("unexpected filter %q", got)
	}
	// A non-positive width must not produce a filter at all; scale='min(0,iw)'
	// is rejected by the tool.
	if got := scaleFilter(0); got != "" {
		t.Fatalf("expected no filter for zero width, got %q", got)
	}
	if got := scaleFilter(-1); got != "" {
		t.Fatalf("expected no filter for negative width, got %q", got)
	}
}

func TestGIFPalettePathStaysBesideInput(t *testing.T) {
	got := gifPalettePath("/staging/job-1/intermediate.mp4")
	if filepath.Dir(got) != "/staging/job-1" {
		t.Fatalf("palette must live in the input's directory, got %q", got)
	}
	if filepath.Ext(got) != ".png" {
		t.Fatalf("palette must be a png, got %q", got)
	}
}

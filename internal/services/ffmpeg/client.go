package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"emojisaic/internal/services"
)

// Info describes the probed video stream.
type Info struct {
	DurationSeconds float64
	Width           int
	Height          int
}

// Client defines the external transcoder contract. Extraction returns frames
// in presentation order; encoding reassembles numbered frames at a fixed
// rate. Any tool failure is fatal to the calling job.
type Client interface {
	Probe(ctx context.Context, path string) (Info, error)
	ExtractFrames(ctx context.Context, path string, fps, maxWidth int) ([]image.Image, error)
	EncodeVideo(ctx context.Context, framesDir, pattern string, fps int, outPath string) error
	EncodeGIF(ctx context.Context, inPath, outPath string) error
}

// CLI drives the ffmpeg binary through ffmpeg-go.
type CLI struct{}

// NewCLI constructs the default transcoder client.
func NewCLI() *CLI {
	return &CLI{}
}

// ExtractFrames decodes the video into PNG frames at the requested rate,
// scaled down to maxWidth when the source is wider. Frames stream through
// image2pipe and are split on PNG signatures, so ordering follows the
// container's presentation order.
func (c *CLI) ExtractFrames(ctx context.Context, path string, fps, maxWidth int) ([]image.Image, error) {
	if fps <= 0 {
		fps = 1
	}

	kwargs := ffmpeg.KwArgs{
		"format": "image2pipe",
		"vcodec": "png",
		"r":      strconv.Itoa(fps),
	}
	if filter := scaleFilter(maxWidth); filter != "" {
		kwargs["vf"] = filter
	}

	var out bytes.Buffer
	cmd := ffmpeg.Input(path).
		Output("pipe:1", kwargs).
		WithOutput(&out).
		WithErrorOutput(io.Discard)
	cmd.Context = ctx

	if err := cmd.Run(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", "extract frames", path, err)
	}

	segments := splitPNGStream(out.Bytes())
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", "extract frames", "no frames extracted", nil)
	}

	frames := make([]image.Image, 0, len(segments))
	for index, segment := range segments {
		img, err := png.Decode(bytes.NewReader(segment))
		if err != nil {
			return nil, services.Wrap(services.ErrFrameDecode, "ffmpeg", fmt.Sprintf("decode frame %d", index), "", err)
		}
		frames = append(frames, img)
	}
	return frames, nil
}

// EncodeVideo assembles the numbered PNG frames under framesDir into an
// H.264 MP4 at the given frame rate.
func (c *CLI) EncodeVideo(ctx context.Context, framesDir, pattern string, fps int, outPath string) error {
	if fps <= 0 {
		fps = 1
	}

	cmd := ffmpeg.Input(filepath.Join(framesDir, pattern), ffmpeg.KwArgs{
		"framerate": strconv.Itoa(fps),
	}).
		Output(outPath, ffmpeg.KwArgs{
			"c:v":     "libx264",
			"pix_fmt": "yuv420p",
			"r":       strconv.Itoa(fps),
		}).
		OverWriteOutput().
		WithErrorOutput(io.Discard)
	cmd.Context = ctx

	if err := cmd.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "encode video", outPath, err)
	}
	return nil
}

// EncodeGIF re-encodes a finished MP4 as a GIF using the two-pass
// palettegen/paletteuse pipeline. The intermediate palette image lives
// beside the input and is removed once the GIF is written.
func (c *CLI) EncodeGIF(ctx context.Context, inPath, outPath string) error {
	palettePath := gifPalettePath(inPath)
	defer os.Remove(palettePath)

	pass1 := ffmpeg.Input(inPath).
		Output(palettePath, ffmpeg.KwArgs{"vf": "fps=10,palettegen"}).
		OverWriteOutput().
		WithErrorOutput(io.Discard)
	pass1.Context = ctx
	if err := pass1.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "gif palette", inPath, err)
	}

	pass2 := ffmpeg.Output(
		[]*ffmpeg.Stream{ffmpeg.Input(inPath), ffmpeg.Input(palettePath)},
		outPath,
		ffmpeg.KwArgs{"lavfi": "fps=10,paletteuse"},
	).
		OverWriteOutput().
		WithErrorOutput(io.Discard)
	pass2.Context = ctx
	if err := pass2.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "gif encode", outPath, err)
	}
	return nil
}

var _ Client = (*CLI)(nil)

// scaleFilter caps frame width while preserving aspect ratio. A non-positive
// limit disables scaling entirely rather than producing a filter ffmpeg
// would reject.
func scaleFilter(maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return fmt.Sprintf("scale='min(%d,iw)':-2", maxWidth)
}

// gifPalettePath names the palettegen output. Anchoring it to the input
// keeps it inside the job work directory, where it is swept up with the
// other intermediates even if the removal here is skipped.
func gifPalettePath(inPath string) string {
	return inPath + ".palette.png"
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// splitPNGStream cuts a concatenated PNG byte stream into individual
// images. Splitting on the signature avoids trusting any decoder to stop
// exactly at an image boundary.
func splitPNGStream(data []byte) [][]byte {
	var segments [][]byte
	start := bytes.Index(data, pngSignature)
	for start >= 0 {
		next := bytes.Index(data[start+len(pngSignature):], pngSignature)
		if next < 0 {
			segments = append(segments, data[start:])
			break
		}
		end := start + len(pngSignature) + next
		segments = append(segments, data[start:end])
		start = end
	}
	return segments
}

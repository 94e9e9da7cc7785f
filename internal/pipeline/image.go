package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"emojisaic/internal/jobs"
	"emojisaic/internal/logging"
	"emojisaic/internal/mosaic"
	"emojisaic/internal/services"
)

const jpegQuality = 90

func (p *Pipeline) runImage(ctx context.Context, job *jobs.Job) error {
	p.reportStage(ctx, job, "Decoding input", 5)

	src, err := decodeImageFile(job.SourcePath)
	if err != nil {
		return err
	}

	pal, err := p.palettes.For(job.CellSize)
	if err != nil {
		return err
	}

	p.reportStage(ctx, job, "Generating mosaic", 30)
	out, err := mosaic.Generate(src, pal, mosaic.Options{CellSize: job.CellSize, MaxBlock: job.MaxBlock})
	if err != nil {
		return err
	}

	format := normalizeImageFormat(job.OutFormat)
	outPath := job.OutputPath
	if outPath == "" {
		outPath = p.outputPathFor(job, "_mosaic."+format)
	}

	p.reportStage(ctx, job, "Writing output", 90)
	if err := writeImage(outPath, out, format); err != nil {
		return err
	}

	job.OutputPath = outPath
	logging.WithContext(ctx, p.logger).Info("image job finished",
		logging.String("output", outPath))
	return nil
}

func (p *Pipeline) outputPathFor(job *jobs.Job, suffix string) string {
	base := filepath.Base(job.SourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.cfg.Paths.OutputDir, stem+suffix)
}

// normalizeImageFormat maps the requested output format onto png or jpg,
// defaulting to png.
func normalizeImageFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpg", "jpeg":
		return "jpg"
	default:
		return "png"
	}
}

func decodeImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrInput, "pipeline", "open input", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, services.Wrap(services.ErrInput, "pipeline", "decode input", path, err)
	}
	return img, nil
}

func writeImage(path string, img image.Image, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	defer file.Close()

	switch format {
	case "jpg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		return fmt.Errorf("encode output %s: %w", path, err)
	}
	return nil
}

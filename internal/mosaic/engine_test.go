package mosaic

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"emojisaic/internal/palette"
	"emojisaic/internal/services"
)

func testPalette(t *testing.T) *palette.Palette {
	t.Helper()
	tile := func(c color.RGBA) *image.RGBA {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				img.SetRGBA(x, y, c)
			}
		}
		return img
	}
	p, err := palette.New([]palette.Entry{
		{Name: "black", Color: palette.RGB{}, Tile: tile(color.RGBA{A: 255})},
		{Name: "red", Color: palette.RGB{R: 255}, Tile: tile(color.RGBA{R: 255, A: 255})},
		{Name: "green", Color: palette.RGB{G: 255}, Tile: tile(color.RGBA{G: 255, A: 255})},
		{Name: "white", Color: palette.RGB{R: 255, G: 255, B: 255}, Tile: tile(color.RGBA{R: 255, G: 255, B: 255, A: 255})},
	}, 8)
	if err != nil {
		t.Fatalf("palette.New: %v", err)
	}
	return p
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateRejectsNilAndZeroArea(t *testing.T) {
	pal := testPalette(t)
	if _, err := Generate(nil, pal, Options{CellSize: 8, MaxBlock: 4}); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected ErrInput for nil image, got %v", err)
	}
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := Generate(empty, pal, Options{CellSize: 8, MaxBlock: 4}); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected ErrInput for zero-area image, got %v", err)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	pal := testPalette(t)
	img := image.NewRGBA(image.Rect(0, 0, 97, 61))
	for y := 0; y < 61; y++ {
		for x := 0; x < 97; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 4), B: uint8(x ^ y), A: 255})
		}
	}

	first, err := Generate(img, pal, Options{CellSize: 8, MaxBlock: 4})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := Generate(img, pal, Options{CellSize: 8, MaxBlock: 4})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !bytes.Equal(encodePNG(t, first), encodePNG(t, second)) {
		t.Fatal("expected byte-identical output for identical inputs")
	}
}

func TestPlanCoversGridExactly(t *testing.T) {
	pal := testPalette(t)
	img := image.NewRGBA(image.Rect(0, 0, 100, 70)) // not multiples of 8
	for y := 0; y < 70; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}

	layout, err := Plan(img, pal, Options{CellSize: 8, MaxBlock: 6})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	seen := make([]int, layout.Rows*layout.Cols)
	for _, block := range layout.Blocks {
		if block.Side < 1 || block.Side > 6 {
			t.Fatalf("block side %d outside [1, max_block]", block.Side)
		}
		if block.Row+block.Side > layout.Rows || block.Col+block.Side > layout.Cols {
			t.Fatalf("block %+v crosses the grid boundary", block)
		}
		for r := block.Row; r < block.Row+block.Side; r++ {
			for c := block.Col; c < block.Col+block.Side; c++ {
				seen[r*layout.Cols+c]++
			}
		}
	}
	for i, count := range seen {
		if count != 1 {
			t.Fatalf("cell %d covered %d times, want exactly once", i, count)
		}
	}
}

func TestMaxBlockOneMatchesNaivePerCellMapping(t *testing.T) {
	pal := testPalette(t)
	img := image.NewRGBA(image.Rect(0, 0, 64, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 5), B: 0, A: 255})
		}
	}

	layout, err := Plan(img, pal, Options{CellSize: 8, MaxBlock: 1})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(layout.Blocks) != layout.Rows*layout.Cols {
		t.Fatalf("expected one block per cell, got %d blocks for %d cells",
			len(layout.Blocks), layout.Rows*layout.Cols)
	}
	for _, block := range layout.Blocks {
		if block.Side != 1 {
			t.Fatalf("expected side 1 everywhere, got %+v", block)
		}
	}

	merged, err := Plan(img, pal, Options{CellSize: 8, MaxBlock: 4})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	// Per-cell glyph assignment is independent of merging.
	naive := make(map[[2]int]int)
	for _, block := range layout.Blocks {
		naive[[2]int{block.Row, block.Col}] = block.Glyph
	}
	for _, block := range merged.Blocks {
		if naive[[2]int{block.Row, block.Col}] != block.Glyph {
			t.Fatalf("merged block %+v disagrees with naive mapping", block)
		}
	}
}

func TestUniformRegionMerges(t *testing.T) {
	pal := testPalette(t)
	// 4×4 cells of solid red at cell size 8: expect a block of at least 2×2.
	img := solidImage(32, 32, color.RGBA{R: 255, A: 255})

	layout, err := Plan(img, pal, Options{CellSize: 8, MaxBlock: 4})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(layout.Blocks) != 1 {
		t.Fatalf("expected a single 4×4 block for a uniform image, got %d blocks", len(layout.Blocks))
	}
	if layout.Blocks[0].Side != 4 {
		t.Fatalf("expected side 4, got %d", layout.Blocks[0].Side)
	}
}

func TestMergeNeverExceedsMaxBlock(t *testing.T) {
	pal := testPalette(t)
	img := solidImage(160, 160, color.RGBA{G: 255, A: 255}) // 20×20 cells

	layout, err := Plan(img, pal, Options{CellSize: 8, MaxBlock: 3})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, block := range layout.Blocks {
		if block.Side > 3 {
			t.Fatalf("block %+v exceeds max block side 3", block)
		}
	}
}

func TestOptionsClamping(t *testing.T) {
	pal := testPalette(t)
	img := solidImage(96, 96, color.RGBA{R: 255, A: 255})

	// size=2 behaves as size=4; size=100 behaves as size=48.
	small, err := Plan(img, pal, Options{CellSize: 2, MaxBlock: 1})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if small.CellSize != 4 {
		t.Fatalf("expected cell size clamped to 4, got %d", small.CellSize)
	}
	large, err := Plan(img, pal, Options{CellSize: 100, MaxBlock: 1})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if large.CellSize != 48 {
		t.Fatalf("expected cell size clamped to 48, got %d", large.CellSize)
	}

	// max_block=0 behaves as 1; max_block=50 behaves as 20.
	noMerge, err := Plan(img, pal, Options{CellSize: 8, MaxBlock: 0})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, block := range noMerge.Blocks {
		if block.Side != 1 {
			t.Fatalf("max_block=0 should behave as 1, got block %+v", block)
		}
	}
	big, err := Plan(solidImage(8*25, 8*25, color.RGBA{R: 255, A: 255}), pal, Options{CellSize: 8, MaxBlock: 50})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	maxSide := 0
	for _, block := range big.Blocks {
		if block.Side > maxSide {
			maxSide = block.Side
		}
	}
	if maxSide != 20 {
		t.Fatalf("max_block=50 should behave as 20, largest side was %d", maxSide)
	}
}

func TestGenerateCanvasIsCellRounded(t *testing.T) {
	pal := testPalette(t)
	img := solidImage(30, 18, color.RGBA{R: 255, A: 255})

	out, err := Generate(img, pal, Options{CellSize: 8, MaxBlock: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// 30→4 cols, 18→3 rows at size 8.
	if out.Bounds().Dx() != 32 || out.Bounds().Dy() != 24 {
		t.Fatalf("expected 32x24 canvas, got %v", out.Bounds())
	}
}

func TestFitWithinDownscalesOnlyWhenNeeded(t *testing.T) {
	small := solidImage(100, 50, color.RGBA{A: 255})
	if got := FitWithin(small, 640); got != small {
		t.Fatal("expected image within limit to pass through unchanged")
	}

	wide := solidImage(1280, 720, color.RGBA{A: 255})
	scaled := FitWithin(wide, 640)
	if scaled.Bounds().Dx() != 640 || scaled.Bounds().Dy() != 360 {
		t.Fatalf("expected 640x360, got %v", scaled.Bounds())
	}
}

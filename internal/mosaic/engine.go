package mosaic

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"emojisaic/internal/config"
	"emojisaic/internal/palette"
	"emojisaic/internal/services"
)

// Options carries the engine parameters. Out-of-range values are clamped,
// never rejected.
type Options struct {
	CellSize int
	MaxBlock int
}

func (o Options) clamped() Options {
	return Options{
		CellSize: config.ClampCellSize(o.CellSize),
		MaxBlock: config.ClampMaxBlock(o.MaxBlock),
	}
}

// Block is a square group of merged cells resolved to a single glyph.
type Block struct {
	Row, Col int
	Side     int
	Glyph    int
}

// Layout is the block partition of an input image: every cell belongs to
// exactly one block, with no overlaps and no gaps.
type Layout struct {
	Rows, Cols int
	CellSize   int
	Blocks     []Block
}

// Generate renders img as a mosaic of glyph tiles. The output canvas is the
// cell-rounded input extent (cols*size × rows*size). The function is pure:
// identical image, palette, and options always produce a byte-identical
// mosaic. The only failure is a nil or zero-area input image.
func Generate(img image.Image, pal *palette.Palette, opts Options) (*image.RGBA, error) {
	layout, err := Plan(img, pal, opts)
	if err != nil {
		return nil, err
	}
	return Render(layout, pal), nil
}

// Plan partitions img into cells, resolves each cell to its nearest glyph,
// and greedily merges uniform regions into the largest eligible square
// blocks. Scan order is row-major; for each unvisited top-left cell the
// largest side is tried first, so the result is deterministic.
func Plan(img image.Image, pal *palette.Palette, opts Options) (Layout, error) {
	if img == nil {
		return Layout{}, services.Wrap(services.ErrInput, "mosaic", "plan", "nil image", nil)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return Layout{}, services.Wrap(services.ErrInput, "mosaic", "plan", "zero-area image", nil)
	}

	opts = opts.clamped()
	size := opts.CellSize

	src := toRGBA(img)
	width := src.Bounds().Dx()
	height := src.Bounds().Dy()
	cols := (width + size - 1) / size
	rows := (height + size - 1) / size

	// Cell grid: nearest glyph per cell average. Edge cells may be partial
	// but are still averaged and resolved, never dropped.
	grid := make([]int, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			avg := cellAverage(src, col*size, row*size, size)
			grid[row*cols+col] = pal.Nearest(avg)
		}
	}

	covered := make([]bool, rows*cols)
	blocks := make([]Block, 0, rows*cols)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if covered[row*cols+col] {
				continue
			}
			glyph := grid[row*cols+col]
			side := largestUniformSquare(grid, covered, rows, cols, row, col, glyph, opts.MaxBlock)
			for r := row; r < row+side; r++ {
				for c := col; c < col+side; c++ {
					covered[r*cols+c] = true
				}
			}
			blocks = append(blocks, Block{Row: row, Col: col, Side: side, Glyph: glyph})
		}
	}

	return Layout{Rows: rows, Cols: cols, CellSize: size, Blocks: blocks}, nil
}

// Render stamps each block's glyph tile, scaled to the block's pixel extent,
// onto an opaque black canvas.
func Render(layout Layout, pal *palette.Palette) *image.RGBA {
	size := layout.CellSize
	out := image.NewRGBA(image.Rect(0, 0, layout.Cols*size, layout.Rows*size))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for _, block := range layout.Blocks {
		tile := pal.Entry(block.Glyph).Tile
		extent := block.Side * size
		target := image.Rect(block.Col*size, block.Row*size, block.Col*size+extent, block.Row*size+extent)
		xdraw.CatmullRom.Scale(out, target, tile, tile.Bounds(), xdraw.Over, nil)
	}

	return out
}

// largestUniformSquare returns the side of the largest k×k cell square at
// (row, col) whose cells all resolve to glyph and are not yet covered,
// clamped to the grid boundary and maxSide. Largest candidates are tried
// first; a single cell is always eligible.
func largestUniformSquare(grid []int, covered []bool, rows, cols, row, col, glyph, maxSide int) int {
	maxPossible := maxSide
	if rest := rows - row; rest < maxPossible {
		maxPossible = rest
	}
	if rest := cols - col; rest < maxPossible {
		maxPossible = rest
	}

	for side := maxPossible; side > 1; side-- {
		if uniformSquare(grid, covered, cols, row, col, glyph, side) {
			return side
		}
	}
	return 1
}

func uniformSquare(grid []int, covered []bool, cols, row, col, glyph, side int) bool {
	for r := row; r < row+side; r++ {
		for c := col; c < col+side; c++ {
			idx := r*cols + c
			if covered[idx] || grid[idx] != glyph {
				return false
			}
		}
	}
	return true
}

// cellAverage computes the mean color of the size×size cell anchored at
// (x0, y0), truncated at the image boundary for partial edge cells.
func cellAverage(src *image.RGBA, x0, y0, size int) palette.RGB {
	bounds := src.Bounds()
	x1 := x0 + size
	y1 := y0 + size
	if x1 > bounds.Dx() {
		x1 = bounds.Dx()
	}
	if y1 > bounds.Dy() {
		y1 = bounds.Dy()
	}

	var rSum, gSum, bSum float64
	for y := y0; y < y1; y++ {
		offset := src.PixOffset(bounds.Min.X+x0, bounds.Min.Y+y)
		for x := x0; x < x1; x++ {
			rSum += float64(src.Pix[offset])
			gSum += float64(src.Pix[offset+1])
			bSum += float64(src.Pix[offset+2])
			offset += 4
		}
	}

	count := float64((x1 - x0) * (y1 - y0))
	if count == 0 {
		return palette.RGB{}
	}
	return palette.RGB{R: rSum / count, G: gSum / count, B: bSum / count}
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}

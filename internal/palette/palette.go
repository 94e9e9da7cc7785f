package palette

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	xdraw "golang.org/x/image/draw"

	"emojisaic/internal/config"
)

// RGB is a color in linear 8-bit space with float components, matching the
// precision of averaged cell colors.
type RGB struct {
	R, G, B float64
}

// Entry is one glyph in the palette: its file stem, the precomputed
// representative color, and the tile bitmap scaled to the palette cell size.
type Entry struct {
	Name  string
	Color RGB
	Tile  *image.RGBA
}

// Palette is an immutable ordered glyph table. Order is significant only as
// the deterministic tie-break in Nearest; it never changes after Load.
type Palette struct {
	entries  []Entry
	cellSize int
}

// Load builds a palette from the PNG files in dir, scaled to size×size
// tiles. Files are processed in lexical name order so palette indexes are
// stable across runs. An empty directory is an error: the palette must never
// be empty.
func Load(dir string, size int) (*Palette, error) {
	size = config.ClampCellSize(size)

	listing, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read palette directory: %w", err)
	}

	names := make([]string, 0, len(listing))
	for _, entry := range listing {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no glyph images in %s", dir)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open glyph %s: %w", name, err)
		}
		img, err := png.Decode(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("decode glyph %s: %w", name, err)
		}

		entries = append(entries, Entry{
			Name:  strings.TrimSuffix(name, filepath.Ext(name)),
			Color: AverageColor(img),
			Tile:  scaleTile(img, size),
		})
	}

	return &Palette{entries: entries, cellSize: size}, nil
}

// New assembles a palette directly from entries. Intended for tests and
// callers that synthesize glyphs.
func New(entries []Entry, cellSize int) (*Palette, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("palette must not be empty")
	}
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Palette{entries: cp, cellSize: config.ClampCellSize(cellSize)}, nil
}

// Len returns the number of glyph entries.
func (p *Palette) Len() int { return len(p.entries) }

// CellSize returns the tile side the palette was built for.
func (p *Palette) CellSize() int { return p.cellSize }

// Entry returns the glyph at index i.
func (p *Palette) Entry(i int) Entry { return p.entries[i] }

// Nearest returns the palette index whose representative color minimizes
// squared Euclidean distance to c. Ties resolve to the lowest index because
// only a strictly smaller distance replaces the current best. Does not
// allocate and is safe for concurrent use.
func (p *Palette) Nearest(c RGB) int {
	best := 0
	bestDist := distSq(c, p.entries[0].Color)
	for i := 1; i < len(p.entries); i++ {
		if d := distSq(c, p.entries[i].Color); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func distSq(a, b RGB) float64 {
	dr := a.R - b.R
	dg := a.G - b.G
	db := a.B - b.B
	return dr*dr + dg*dg + db*db
}

// AverageColor computes the mean color of img. Fully transparent pixels are
// excluded so a glyph's halo does not skew its representative color; a glyph
// with no opaque pixels averages to black.
func AverageColor(img image.Image) RGB {
	bounds := img.Bounds()
	var rSum, gSum, bSum float64
	var count int

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			rSum += float64(r >> 8)
			gSum += float64(g >> 8)
			bSum += float64(b >> 8)
			count++
		}
	}

	if count == 0 {
		return RGB{}
	}
	n := float64(count)
	return RGB{R: rSum / n, G: gSum / n, B: bSum / n}
}

func scaleTile(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

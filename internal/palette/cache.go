package palette

import (
	"sync"

	"emojisaic/internal/config"
)

// Cache builds palettes on demand and reuses them per cell size. Live frames
// and queued jobs may request differing sizes; each size is loaded once.
type Cache struct {
	dir string

	mu       sync.Mutex
	palettes map[int]*Palette
}

// NewCache creates a cache over the glyph directory.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir, palettes: make(map[int]*Palette)}
}

// For returns the palette for the given cell size, loading it on first use.
// The size is clamped before keying so out-of-range requests share the
// boundary palette.
func (c *Cache) For(size int) (*Palette, error) {
	size = config.ClampCellSize(size)

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.palettes[size]; ok {
		return p, nil
	}
	p, err := Load(c.dir, size)
	if err != nil {
		return nil, err
	}
	c.palettes[size] = p
	return p, nil
}

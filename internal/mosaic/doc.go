// Package mosaic implements the mosaic engine: it partitions an image into
// fixed-size cells, merges uniform regions into the largest eligible square
// blocks, and stamps each block with its nearest palette glyph.
//
// The engine is pure, synchronous, and CPU-bound. It never suspends and
// never mutates shared state, so independent jobs and live streams can call
// it concurrently against the same read-only palette.
package mosaic

// Package palette builds the immutable glyph table used by the mosaic
// engine and resolves colors to their nearest glyph.
//
// A palette is constructed once per cell size and read-only thereafter, so
// lookups require no synchronization even when multiple jobs and live
// streams share it.
package palette

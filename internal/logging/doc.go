// Package logging assembles structured slog loggers and formatting helpers
// used across emojisaic components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and provides attr aliases plus a no-op logger for tests and
// wiring code that cannot fail. Prefer these constructors over hand-rolled
// slog setup so every component emits lines with the same shape.
package logging

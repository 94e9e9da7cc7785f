// Package config loads, normalizes, and validates the emojisaic TOML
// configuration.
//
// Load applies defaults, decodes the file when present, expands ~ in path
// fields, and clamps engine parameters into their supported ranges. The
// clamp helpers are exported because the same bounds apply to CLI flags and
// live-stream parameters.
package config

// Package live drives continuous mosaic streaming from a camera.
//
// The controller owns the stream lifecycle (idle, starting, running,
// stopping) and guarantees a single in-flight cycle: capture, mosaic, emit.
// Sinks deliver finished JPEG frames to disk or an MQTT broker.
package live

// Package ffmpeg wraps the external transcoder behind a narrow contract:
// probe, ordered frame extraction, and video reassembly.
//
// A non-zero exit from the tool is always an external-tool failure; a frame
// that cannot be decoded mid-stream is a frame-decode failure. Both abort
// the calling job.
package ffmpeg

// Package pipeline orchestrates mosaic conversion jobs.
//
// Image jobs decode, mosaic, and encode in place. Video jobs probe the
// input, extract frames through the transcoder, mosaic each frame in
// ascending order into a per-job working directory, and reassemble the
// result. Every failure inside a job is fatal to that job; the pipeline
// never skips a frame.
package pipeline

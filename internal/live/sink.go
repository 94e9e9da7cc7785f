package live

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives finished mosaic frames as JPEG bytes.
type Sink interface {
	Emit(ctx context.Context, frame []byte) error
}

// Tee fans a frame out to every sink. A single sink is returned unwrapped.
func Tee(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) Emit(ctx context.Context, frame []byte) error {
	var firstErr error
	for _, sink := range t {
		if err := sink.Emit(ctx, frame); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FileSink writes each frame as a numbered file plus a stable latest.jpg.
// The latest file is replaced atomically so a concurrent reader never sees a
// half-written image.
type FileSink struct {
	dir string

	mu  sync.Mutex
	seq int
}

// NewFileSink creates the output directory and returns a sink over it.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create stream directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Emit writes the frame to the sequence and swaps it in as latest.jpg.
func (s *FileSink) Emit(ctx context.Context, frame []byte) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	framePath := filepath.Join(s.dir, fmt.Sprintf("frame-%06d.jpg", seq))
	if err := os.WriteFile(framePath, frame, 0o644); err != nil {
		return fmt.Errorf("write stream frame: %w", err)
	}

	latest := filepath.Join(s.dir, "latest.jpg")
	tmp := latest + ".tmp"
	if err := os.WriteFile(tmp, frame, 0o644); err != nil {
		return fmt.Errorf("write latest frame: %w", err)
	}
	if err := os.Rename(tmp, latest); err != nil {
		return fmt.Errorf("publish latest frame: %w", err)
	}
	return nil
}

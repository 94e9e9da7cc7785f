package services

import "context"

type contextKey string

const (
	jobIDKey    contextKey = "job_id"
	streamIDKey contextKey = "stream_id"
)

// WithJobID annotates context with the job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the job identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStreamID annotates context with the live stream identifier.
func WithStreamID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, streamIDKey, id)
}

// StreamIDFromContext extracts the live stream identifier if present.
func StreamIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(streamIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

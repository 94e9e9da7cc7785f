package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classify failures raised by collaborators and the engine.
var (
	// ErrInput marks unsupported or corrupt media handed to the engine.
	ErrInput = errors.New("input error")
	// ErrExternalTool marks a missing transcoder or a non-zero exit.
	ErrExternalTool = errors.New("external tool error")
	// ErrFrameDecode marks a single unreadable frame inside a stream.
	ErrFrameDecode = errors.New("frame decode error")
	// ErrCameraAccess marks an unavailable or denied camera device.
	ErrCameraAccess = errors.New("camera access error")
	// ErrTransient marks recoverable per-cycle failures in the live loop.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatalToJob reports whether an error should terminate a whole video job.
// Every taxonomy member except ErrTransient is fatal: extraction, encoding,
// and single-frame decode failures all abort with no partial output.
func IsFatalToJob(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrTransient)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks user supplied values that fail validation.
var ErrInvalidInput = errors.New("invalid input")

// ImageDecodeError reports malformed or unreadable image input.
type ImageDecodeError struct {
	Err error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// UnsupportedEnvironmentError reports a missing rendering capability.
type UnsupportedEnvironmentError struct {
	Capability string
	Err        error
}

func (e *UnsupportedEnvironmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported environment: %s: %v", e.Capability, e.Err)
	}
	return fmt.Sprintf("unsupported environment: %s", e.Capability)
}

func (e *UnsupportedEnvironmentError) Unwrap() error { return e.Err }

// UpstreamTransformError reports a failed generative transform call.
type UpstreamTransformError struct {
	Backend string
	Err     error
}

func (e *UpstreamTransformError) Error() string {
	return fmt.Sprintf("%s transform failed: %v", e.Backend, e.Err)
}

func (e *UpstreamTransformError) Unwrap() error { return e.Err }

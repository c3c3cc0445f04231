package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrEmptyArtifact     = errors.New("no audio captured")
)

// NetworkError reports a transport failure talking to the recognition service.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServiceError is a failure reported by the recognition service. Message is
// shown to the user verbatim.
type ServiceError struct {
	Message    string
	StatusCode int
}

func (e *ServiceError) Error() string {
	return e.Message
}

// EncodeError is a failure preparing captured audio for upload.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode audio: %v", e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

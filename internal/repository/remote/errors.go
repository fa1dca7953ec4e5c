package remote

import (
	"errors"
	"fmt"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError is returned for any non-2xx response that the operation does not
// treat as not-found. Code and Message come from the server's error envelope
// when it sent one.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("%s %s: %s %d", e.Method, path, ErrUnexpectedStatus, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %s %d (%s: %s)", e.Method, path, ErrUnexpectedStatus, e.StatusCode, e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

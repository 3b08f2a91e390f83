package llm

import (
	"context"
	"fmt"
	"net/http"

	"gitlab.com/tozd/go/errors"
)

// ErrClass partitions remote failures into the two retry classes.
type ErrClass int

const (
	// ClassTransient failures are expected to resolve on retry.
	ClassTransient ErrClass = iota
	// ClassFatal failures are surfaced without further attempts.
	ClassFatal
)

func (c ErrClass) String() string {
	if c == ClassFatal {
		return "fatal"
	}
	return "transient"
}

// ServiceError is a failure reported by the remote service.
type ServiceError struct {
	StatusCode int
	Message    string
	Class      ErrClass
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error (%s, status %d): %s", e.Class, e.StatusCode, e.Message)
}

// newServiceError classifies an HTTP status into a ServiceError. Rate
// limiting and server-side faults are the recognized transient classes;
// everything else keeps the conservative transient default so an
// unrecognized failure still gets its retry budget.
func newServiceError(statusCode int, message string) *ServiceError {
	class := ClassTransient
	switch {
	case statusCode == http.StatusTooManyRequests:
		class = ClassTransient
	case statusCode >= 500:
		class = ClassTransient
	}
	return &ServiceError{StatusCode: statusCode, Message: message, Class: class}
}

// Classify maps an error from the completion path to its retry class.
// Context cancellation is the only fatal class: retrying after the caller
// gave up is pointless. Everything else, recognized or not, defaults to
// transient.
func Classify(err error) ErrClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassFatal
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Class
	}
	return ClassTransient
}

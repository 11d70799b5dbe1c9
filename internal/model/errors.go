package model

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable is fatal for the current request, not the process.
	ErrModelUnavailable      = errors.New("model unavailable")
	ErrMalformedDistribution = errors.New("malformed next-token distribution")
	ErrQueueFull             = errors.New("inference queue full")
)

// ErrorCode classifies an inference failure.
type ErrorCode string

const (
	ErrorCodeUnavailable ErrorCode = "model_unavailable"
	ErrorCodeMalformed   ErrorCode = "malformed_distribution"
	ErrorCodeQueueFull   ErrorCode = "queue_full"
)

// InferenceError wraps a model failure with a code and message.
type InferenceError struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *InferenceError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *InferenceError) Unwrap() error {
	return e.Underlying
}

// Unavailable returns an InferenceError for a model that cannot serve.
func Unavailable(msg string, cause error) error {
	if cause == nil {
		cause = ErrModelUnavailable
	} else {
		cause = fmt.Errorf("%w: %w", ErrModelUnavailable, cause)
	}
	return &InferenceError{Code: ErrorCodeUnavailable, Message: msg, Underlying: cause}
}

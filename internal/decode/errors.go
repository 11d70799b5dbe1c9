package decode

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPrompt    = errors.New("prompt is empty after tokenization")
	ErrCancelled      = errors.New("generation cancelled")
	ErrInvalidRequest = errors.New("invalid generation request")
	ErrStreamPending  = errors.New("stream has not been consumed")
)

// GenerationError reports a model failure that aborted a generation.
type GenerationError struct {
	Step  int
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at step %d: %v", e.Step, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

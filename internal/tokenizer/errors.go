package tokenizer

import (
	"errors"
	"fmt"
)

// LoadError is returned when a tokenizer artifact cannot be read or parsed.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load tokenizer %s: %v", e.Path, e.Cause)
}
func (e *LoadError) Unwrap() error { return e.Cause }

var (
	ErrEmptyVocab     = errors.New("tokenizer vocabulary is empty")
	ErrMissingSpecial = errors.New("tokenizer vocabulary is missing a special token")
	ErrDuplicateID    = errors.New("tokenizer vocabulary has duplicate ids")
)

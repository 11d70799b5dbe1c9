package calendar

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// StoreError wraps a database failure with the operation that hit it.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Cause)
}
func (e *StoreError) Unwrap() error { return e.Cause }

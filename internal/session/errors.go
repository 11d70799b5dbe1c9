package session

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound never leaves this package; public operations treat a
// missing session as empty.
var ErrSessionNotFound = errors.New("session not found")

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrSessionNotFound }

package dispatch

import (
	"errors"
	"fmt"
)

// ErrNotATask is returned for chat and unknown intents, which have no handler.
var ErrNotATask = errors.New("intent is not a task")

// SlotDecodeError is returned when intent slots do not fit the handler's
// request type.
type SlotDecodeError struct {
	Tag   string
	Cause error
}

func (e *SlotDecodeError) Error() string {
	return fmt.Sprintf("invalid slots for %s: %v", e.Tag, e.Cause)
}
func (e *SlotDecodeError) Unwrap() error { return e.Cause }

package intent

import (
	"errors"
	"fmt"
)

var (
	// ErrClassificationAmbiguous never reaches callers; Classify degrades
	// it to TagUnknown.
	ErrClassificationAmbiguous = errors.New("utterance matches more than one task")
	ErrInvalidSlot             = errors.New("invalid slot value")
)

// SlotError describes a slot that failed validation.
type SlotError struct {
	Slot   string
	Value  string
	Reason string
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Slot, e.Value, e.Reason)
}

func (e *SlotError) Unwrap() error { return ErrInvalidSlot }

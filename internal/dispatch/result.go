package dispatch

import (
	"context"
	"errors"

	"github.com/Cyclone1070/nyx/internal/action"
	"github.com/Cyclone1070/nyx/internal/intent"
	"github.com/Cyclone1070/nyx/internal/sandbox"
)

// Outcome is the user-facing result class of a dispatched task.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDenied   Outcome = "denied"
	OutcomeNotFound Outcome = "not-found"
	OutcomeError    Outcome = "error"
)

// State is a step of the task lifecycle. Every dispatch ends in
// StateCompleted; failures skip straight there.
type State string

const (
	StateReceived   State = "received"
	StateValidated  State = "validated"
	StateAuthorized State = "authorized"
	StateExecuted   State = "executed"
	StateCompleted  State = "completed"
)

// Result is the outcome of one dispatch. Reached is the last state passed
// before completion, which tells where a failure happened.
type Result struct {
	Tag     intent.Tag
	Outcome Outcome
	State   State
	Reached State
	Payload action.Response
	Detail  string
	Err     error
}

// classify maps a handler error to an outcome.
func classify(err error) Outcome {
	switch {
	case errors.Is(err, sandbox.ErrPathOutsideSandbox),
		errors.Is(err, sandbox.ErrCommandNotAllowed),
		errors.Is(err, sandbox.ErrPayloadTooLarge),
		errors.Is(err, sandbox.ErrReservedPath):
		return OutcomeDenied
	case errors.Is(err, action.ErrFileMissing):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}

func detail(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled: " + err.Error()
	}
	return err.Error()
}

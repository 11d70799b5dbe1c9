package sandbox

import (
	"errors"
	"fmt"
)

var (
	ErrPathOutsideSandbox = errors.New("path is outside the sandbox root")
	ErrCommandNotAllowed  = errors.New("command is not allowed")
	ErrPayloadTooLarge    = errors.New("payload exceeds the size limit")
	ErrInvalidPath        = errors.New("invalid path")
	ErrSymlinkLoop        = errors.New("too many levels of symbolic links")
	ErrReservedPath       = errors.New("path is reserved for assistant state")
)

// RootError is returned when the configured root cannot be canonicalised.
type RootError struct {
	Root  string
	Cause error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("invalid sandbox root %s: %v", e.Root, e.Cause)
}
func (e *RootError) Unwrap() error { return e.Cause }

// PathError reports a path that failed resolution.
type PathError struct {
	Path  string
	Cause error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("cannot resolve %q: %v", e.Path, e.Cause)
}
func (e *PathError) Unwrap() error { return e.Cause }

// SymlinkLoopError is returned when a path needs more than maxHops symlink
// expansions to resolve.
type SymlinkLoopError struct {
	Path string
	Hops int
}

func (e *SymlinkLoopError) Error() string {
	return fmt.Sprintf("symlink loop resolving %q (gave up after %d hops)", e.Path, e.Hops)
}
func (e *SymlinkLoopError) Unwrap() error { return ErrSymlinkLoop }

// CommandError reports a command refused by the policy.
type CommandError struct {
	Command string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q is not in the allowed set", e.Command)
}
func (e *CommandError) Unwrap() error { return ErrCommandNotAllowed }

// SizeError reports a payload above the configured limit.
type SizeError struct {
	Size  int64
	Limit int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds limit of %d bytes", e.Size, e.Limit)
}
func (e *SizeError) Unwrap() error { return ErrPayloadTooLarge }

// ReservedError reports an attempt to change the assistant's state directory.
type ReservedError struct {
	Path string
}

func (e *ReservedError) Error() string {
	return fmt.Sprintf("%s is inside %s and cannot be changed", e.Path, StateDir)
}
func (e *ReservedError) Unwrap() error { return ErrReservedPath }

package fs

import (
	"errors"
	"fmt"
)

type TempFileError struct {
	Dir   string
	Cause error
}

func (e *TempFileError) Error() string {
	return fmt.Sprintf("failed to create temp file in %s: %v", e.Dir, e.Cause)
}
func (e *TempFileError) Unwrap() error { return e.Cause }

// WriteError covers the write, sync and close steps of a temp file.
type WriteError struct {
	Path  string
	Stage string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to %s temp file %s: %v", e.Stage, e.Path, e.Cause)
}
func (e *WriteError) Unwrap() error { return e.Cause }

// LinkError is returned when the finished temp file cannot be published at
// its final name. It wraps fs.ErrExist when the target is already taken.
type LinkError struct {
	Old   string
	New   string
	Cause error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link %s to %s: %v", e.Old, e.New, e.Cause)
}
func (e *LinkError) Unwrap() error { return e.Cause }

var (
	ErrIsDirectory = errors.New("is a directory")
	ErrNotRegular  = errors.New("not a regular file")
	ErrTooLarge    = errors.New("file larger than read limit")
)

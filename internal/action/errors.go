package action

import (
	"errors"
)

var (
	ErrPathRequired    = errors.New("path is required")
	ErrQueryRequired   = errors.New("search query is required")
	ErrCommandRequired = errors.New("command is required")
	ErrTitleRequired   = errors.New("event title is required")
	ErrTimeRequired    = errors.New("event time is required")

	ErrFileMissing   = errors.New("file or path does not exist")
	ErrFileExists    = errors.New("file already exists")
	ErrIsDirectory   = errors.New("path is a directory")
	ErrNotADirectory = errors.New("path is not a directory")
	ErrBinaryFile    = errors.New("file is binary")
)

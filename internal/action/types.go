// Package action implements the sandboxed task handlers. Each tool takes a
// request decoded from intent slots through three steps: Validate checks the
// request on its own, Authorize applies the sandbox policy and produces a
// resolved request, and Run performs the side effect.
package action

import (
	"strings"
	"time"
)

// Response is what every tool returns on success.
type Response interface {
	Summary() string
}

// -- Create File --

type CreateFileRequest struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

func (r CreateFileRequest) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return ErrPathRequired
	}
	return nil
}

type CreateFile struct {
	abs     string
	rel     string
	content []byte
}

// -- Read File --

type ReadFileRequest struct {
	Path string `mapstructure:"path"`
}

func (r ReadFileRequest) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return ErrPathRequired
	}
	return nil
}

type ReadFile struct {
	abs string
	rel string
}

// -- Delete File --

type DeleteFileRequest struct {
	Path string `mapstructure:"path"`
}

func (r DeleteFileRequest) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return ErrPathRequired
	}
	return nil
}

type DeleteFile struct {
	abs string
	rel string
}

// -- List Directory --

// ListDirectoryRequest lists the root when Path is empty.
type ListDirectoryRequest struct {
	Path string `mapstructure:"path"`
}

func (r ListDirectoryRequest) Validate() error { return nil }

type ListDirectory struct {
	abs string
	rel string
}

// -- Make Directory --

type MakeDirectoryRequest struct {
	Path string `mapstructure:"path"`
}

func (r MakeDirectoryRequest) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return ErrPathRequired
	}
	return nil
}

type MakeDirectory struct {
	abs string
	rel string
}

// -- Search --

// SearchRequest searches below Path, or the root when Path is empty.
type SearchRequest struct {
	Query string `mapstructure:"query"`
	Path  string `mapstructure:"path"`
}

func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrQueryRequired
	}
	return nil
}

type Search struct {
	query string
	abs   string
	rel   string
}

// -- Schedule --

type ScheduleRequest struct {
	Title string    `mapstructure:"title"`
	When  time.Time `mapstructure:"when"`
}

func (r ScheduleRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrTitleRequired
	}
	if r.When.IsZero() {
		return ErrTimeRequired
	}
	return nil
}

type Schedule struct {
	title string
	when  time.Time
}

// -- Exec --

type ExecRequest struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

func (r ExecRequest) Validate() error {
	if strings.TrimSpace(r.Command) == "" {
		return ErrCommandRequired
	}
	return nil
}

type Exec struct {
	argv []string
}

// Package git provides .gitignore matching for listing and search.
package git

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/nyx/internal/sandbox"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// maxIgnoreFileSize caps how much of a .gitignore is read.
const maxIgnoreFileSize = 1 << 20

// GitignoreReadError is returned when .gitignore exists but cannot be read.
type GitignoreReadError struct {
	Path  string
	Cause error
}

func (e *GitignoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *GitignoreReadError) Unwrap() error { return e.Cause }

type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, limit int64) ([]byte, error)
}

// IgnoreMatcher matches root-relative paths against the root .gitignore.
// The .git and assistant state directories are always ignored.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads <root>/.gitignore. A missing file yields a matcher
// that only hides those two.
func NewIgnoreMatcher(root string, fs fileSystem) (*IgnoreMatcher, error) {
	if root == "" {
		panic("root is required")
	}
	if fs == nil {
		panic("fs is required")
	}

	patterns := []gitignore.Pattern{
		gitignore.ParsePattern(".git", nil),
		gitignore.ParsePattern(sandbox.StateDir, nil),
	}

	path := filepath.Join(root, ".gitignore")
	if _, err := fs.Stat(path); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
		}
		return nil, &GitignoreReadError{Path: path, Cause: err}
	}
	data, err := fs.ReadFile(path, maxIgnoreFileSize)
	if err != nil {
		return nil, &GitignoreReadError{Path: path, Cause: err}
	}

	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimRight(line, " \t"), nil))
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore reports whether the root-relative path is ignored.
func (m *IgnoreMatcher) ShouldIgnore(rel string, isDir bool) bool {
	segments := splitPath(rel)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

func splitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}

// NoOpMatcher never ignores anything.
type NoOpMatcher struct{}

func (NoOpMatcher) ShouldIgnore(string, bool) bool { return false }

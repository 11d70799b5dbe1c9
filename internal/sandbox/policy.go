// Package sandbox decides what the dispatcher may touch: paths are resolved
// against a single canonical root and commands are checked against an exact
// allow list.
package sandbox

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Cyclone1070/nyx/internal/config"
)

// StateDir is the directory under the root where the assistant keeps its own
// data. It is hidden from listings and closed to changes.
const StateDir = ".nyx"

// FileSystem is the subset of filesystem access path resolution needs.
type FileSystem interface {
	Lstat(path string) (os.FileInfo, error)
	Readlink(path string) (string, error)
}

// Policy is immutable after construction and safe for concurrent use.
type Policy struct {
	root        string
	allowed     map[string]struct{}
	maxFileSize int64
	fs          FileSystem
}

// NewPolicy canonicalises cfg.Root and captures the allow list.
func NewPolicy(cfg config.SandboxConfig, fs FileSystem) (*Policy, error) {
	if fs == nil {
		panic("fs is required")
	}
	root, err := CanonicaliseRoot(cfg.Root)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedCommands))
	for _, c := range cfg.AllowedCommands {
		if c = strings.TrimSpace(c); c != "" {
			allowed[c] = struct{}{}
		}
	}
	return &Policy{
		root:        root,
		allowed:     allowed,
		maxFileSize: cfg.MaxFileSize,
		fs:          fs,
	}, nil
}

// CanonicaliseRoot makes root absolute, resolves its symlinks and checks it
// is an existing directory.
func CanonicaliseRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &RootError{Root: root, Cause: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &RootError{Root: root, Cause: err}
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", &RootError{Root: root, Cause: err}
	}
	if !info.IsDir() {
		return "", &RootError{Root: root, Cause: fmt.Errorf("not a directory: %s", resolved)}
	}
	return resolved, nil
}

// Root returns the canonical absolute root.
func (p *Policy) Root() string { return p.root }

// MaxFileSize returns the read/create payload limit in bytes.
func (p *Policy) MaxFileSize() int64 { return p.maxFileSize }

// AllowedCommands returns the allow list in sorted order.
func (p *Policy) AllowedCommands() []string {
	out := make([]string, 0, len(p.allowed))
	for c := range p.allowed {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// AuthorizeCommand checks that name appears verbatim in the allow list.
// Names containing a path separator are always refused.
func (p *Policy) AuthorizeCommand(name string) error {
	if name == "" || strings.ContainsRune(name, '/') {
		return &CommandError{Command: name}
	}
	if _, ok := p.allowed[name]; !ok {
		return &CommandError{Command: name}
	}
	return nil
}

// CheckSize rejects payloads larger than the configured maximum.
// A non-positive maximum disables the check.
func (p *Policy) CheckSize(n int64) error {
	if p.maxFileSize > 0 && n > p.maxFileSize {
		return &SizeError{Size: n, Limit: p.maxFileSize}
	}
	return nil
}

// Rel returns abs relative to the root using forward slashes, or "." for the
// root itself.
func (p *Policy) Rel(abs string) string {
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// Reserved reports whether rel, a root-relative slash path, is StateDir or
// lies under it. The comparison ignores case so that case-insensitive
// filesystems cannot be used to reach it.
func (p *Policy) Reserved(rel string) bool {
	first, _, _ := strings.Cut(path.Clean(rel), "/")
	return strings.EqualFold(first, StateDir)
}

// CheckMutable refuses changes to a resolved path inside StateDir.
func (p *Policy) CheckMutable(abs string) error {
	if rel := p.Rel(abs); p.Reserved(rel) {
		return &ReservedError{Path: rel}
	}
	return nil
}

package action

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path"
	"slices"
	"strings"

	"github.com/Cyclone1070/nyx/internal/sandbox"
	"github.com/dustin/go-humanize"
)

// -- List --

type DirectoryEntry struct {
	Name  string
	IsDir bool
	Size  int64
}

type ListDirectoryResponse struct {
	Path      string
	Entries   []DirectoryEntry
	Truncated bool
}

func (r *ListDirectoryResponse) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Files in %s:", r.Path)
	if len(r.Entries) == 0 {
		sb.WriteString(" (empty)")
	}
	for _, e := range r.Entries {
		if e.IsDir {
			fmt.Fprintf(&sb, "\n  %s/", e.Name)
		} else {
			fmt.Fprintf(&sb, "\n  %s (%s)", e.Name, humanize.Bytes(uint64(e.Size)))
		}
	}
	if r.Truncated {
		fmt.Fprintf(&sb, "\n  ... showing first %d entries", len(r.Entries))
	}
	return sb.String()
}

// ListDirectoryTool lists one directory level: directories first, then
// files, each group sorted by name. Gitignored entries are hidden.
type ListDirectoryTool struct {
	fs         dirLister
	ignore     ignoreMatcher
	policy     *sandbox.Policy
	maxEntries int
}

func NewListDirectoryTool(fs dirLister, ignore ignoreMatcher, policy *sandbox.Policy, maxEntries int) *ListDirectoryTool {
	if fs == nil {
		panic("fs is required")
	}
	if ignore == nil {
		panic("ignore is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &ListDirectoryTool{fs: fs, ignore: ignore, policy: policy, maxEntries: maxEntries}
}

func (t *ListDirectoryTool) Authorize(req ListDirectoryRequest) (*ListDirectory, error) {
	abs, rel, err := resolveDir(t.fs.Stat, t.policy, req.Path)
	if err != nil {
		return nil, err
	}
	return &ListDirectory{abs: abs, rel: rel}, nil
}

func (t *ListDirectoryTool) Run(ctx context.Context, op *ListDirectory) (*ListDirectoryResponse, error) {
	infos, err := t.fs.ListDir(op.abs)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, op.rel)
		}
		return nil, fmt.Errorf("failed to list directory %s: %w", op.rel, err)
	}

	entries := make([]DirectoryEntry, 0, len(infos))
	for _, info := range infos {
		rel := path.Join(op.rel, info.Name())
		if t.policy.Reserved(rel) || t.ignore.ShouldIgnore(rel, info.IsDir()) {
			continue
		}
		entries = append(entries, DirectoryEntry{Name: info.Name(), IsDir: info.IsDir(), Size: info.Size()})
	}

	slices.SortFunc(entries, func(a, b DirectoryEntry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})

	resp := &ListDirectoryResponse{Path: op.rel, Entries: entries}
	if t.maxEntries > 0 && len(entries) > t.maxEntries {
		resp.Entries = entries[:t.maxEntries]
		resp.Truncated = true
	}
	return resp, nil
}

// -- Make --

type MakeDirectoryResponse struct {
	Path string
}

func (r *MakeDirectoryResponse) Summary() string {
	return "Created folder: " + r.Path
}

// MakeDirectoryTool creates a directory and its missing parents. An existing
// directory is not an error.
type MakeDirectoryTool struct {
	fs     dirMaker
	policy *sandbox.Policy
}

func NewMakeDirectoryTool(fs dirMaker, policy *sandbox.Policy) *MakeDirectoryTool {
	if fs == nil {
		panic("fs is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &MakeDirectoryTool{fs: fs, policy: policy}
}

func (t *MakeDirectoryTool) Authorize(req MakeDirectoryRequest) (*MakeDirectory, error) {
	abs, err := t.policy.ResolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	if err := t.policy.CheckMutable(abs); err != nil {
		return nil, err
	}
	rel := t.policy.Rel(abs)
	info, err := t.fs.Stat(abs)
	if err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, rel)
	}
	return &MakeDirectory{abs: abs, rel: rel}, nil
}

func (t *MakeDirectoryTool) Run(ctx context.Context, op *MakeDirectory) (*MakeDirectoryResponse, error) {
	if err := t.fs.EnsureDirs(op.abs); err != nil {
		return nil, fmt.Errorf("failed to create folder %s: %w", op.rel, err)
	}
	return &MakeDirectoryResponse{Path: op.rel}, nil
}

// resolveDir resolves p, defaulting to the root, and checks it is an
// existing directory.
func resolveDir(stat func(string) (iofs.FileInfo, error), policy *sandbox.Policy, p string) (string, string, error) {
	if strings.TrimSpace(p) == "" {
		p = "."
	}
	abs, err := policy.ResolvePath(p)
	if err != nil {
		return "", "", err
	}
	rel := policy.Rel(abs)
	info, err := stat(abs)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", "", fmt.Errorf("%w: %s", ErrFileMissing, rel)
		}
		return "", "", err
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", ErrNotADirectory, rel)
	}
	return abs, rel, nil
}

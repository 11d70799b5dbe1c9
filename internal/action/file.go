package action

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/Cyclone1070/nyx/internal/action/service/fs"
	"github.com/Cyclone1070/nyx/internal/sandbox"
	"github.com/dustin/go-humanize"
)

const filePerm = 0o644

// -- Create --

type CreateFileResponse struct {
	Path  string
	Bytes int
}

func (r *CreateFileResponse) Summary() string {
	return fmt.Sprintf("Created file: %s (%s)", r.Path, humanize.Bytes(uint64(r.Bytes)))
}

// CreateFileTool writes new files. Existing files are never replaced.
type CreateFileTool struct {
	fs     fileCreator
	policy *sandbox.Policy
}

func NewCreateFileTool(fs fileCreator, policy *sandbox.Policy) *CreateFileTool {
	if fs == nil {
		panic("fs is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &CreateFileTool{fs: fs, policy: policy}
}

func (t *CreateFileTool) Authorize(req CreateFileRequest) (*CreateFile, error) {
	abs, err := t.policy.ResolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	if abs == t.policy.Root() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, req.Path)
	}
	if err := t.policy.CheckMutable(abs); err != nil {
		return nil, err
	}
	if err := t.policy.CheckSize(int64(len(req.Content))); err != nil {
		return nil, err
	}
	return &CreateFile{abs: abs, rel: t.policy.Rel(abs), content: []byte(req.Content)}, nil
}

// Run creates missing parent directories and then the file.
func (t *CreateFileTool) Run(ctx context.Context, op *CreateFile) (*CreateFileResponse, error) {
	if err := t.fs.EnsureDirs(filepath.Dir(op.abs)); err != nil {
		return nil, fmt.Errorf("failed to create parent directories for %s: %w", op.rel, err)
	}
	if err := t.fs.CreateFile(op.abs, op.content, filePerm); err != nil {
		if errors.Is(err, iofs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileExists, op.rel)
		}
		return nil, err
	}
	return &CreateFileResponse{Path: op.rel, Bytes: len(op.content)}, nil
}

// -- Read --

type ReadFileResponse struct {
	Path    string
	Content string
	Size    int64
}

func (r *ReadFileResponse) Summary() string {
	return fmt.Sprintf("Read file: %s (%s)\n%s", r.Path, humanize.Bytes(uint64(r.Size)), r.Content)
}

type ReadFileTool struct {
	fs     fileReader
	policy *sandbox.Policy
}

func NewReadFileTool(fs fileReader, policy *sandbox.Policy) *ReadFileTool {
	if fs == nil {
		panic("fs is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &ReadFileTool{fs: fs, policy: policy}
}

func (t *ReadFileTool) Authorize(req ReadFileRequest) (*ReadFile, error) {
	abs, err := t.policy.ResolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	rel := t.policy.Rel(abs)
	info, err := t.fs.Stat(abs)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, rel)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, rel)
	}
	if err := t.policy.CheckSize(info.Size()); err != nil {
		return nil, err
	}
	return &ReadFile{abs: abs, rel: rel}, nil
}

// Run reads the file. A file that grew past the limit after authorization
// is still refused.
func (t *ReadFileTool) Run(ctx context.Context, op *ReadFile) (*ReadFileResponse, error) {
	data, err := t.fs.ReadFile(op.abs, t.policy.MaxFileSize())
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrFileMissing, op.rel)
	case errors.Is(err, fs.ErrTooLarge):
		return nil, fmt.Errorf("%w: %s", sandbox.ErrPayloadTooLarge, op.rel)
	case errors.Is(err, fs.ErrIsDirectory):
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, op.rel)
	case err != nil:
		return nil, err
	}
	if fs.IsBinary(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryFile, op.rel)
	}
	return &ReadFileResponse{Path: op.rel, Content: string(data), Size: int64(len(data))}, nil
}

// -- Delete --

type DeleteFileResponse struct {
	Path string
}

func (r *DeleteFileResponse) Summary() string {
	return "Deleted file: " + r.Path
}

// DeleteFileTool removes files. A symlink is removed itself, never its
// target.
type DeleteFileTool struct {
	fs     fileRemover
	policy *sandbox.Policy
}

func NewDeleteFileTool(fs fileRemover, policy *sandbox.Policy) *DeleteFileTool {
	if fs == nil {
		panic("fs is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &DeleteFileTool{fs: fs, policy: policy}
}

func (t *DeleteFileTool) Authorize(req DeleteFileRequest) (*DeleteFile, error) {
	abs, err := t.policy.ResolveParent(req.Path)
	if err != nil {
		return nil, err
	}
	if err := t.policy.CheckMutable(abs); err != nil {
		return nil, err
	}
	rel := t.policy.Rel(abs)
	info, err := t.fs.Lstat(abs)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, rel)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, rel)
	}
	return &DeleteFile{abs: abs, rel: rel}, nil
}

func (t *DeleteFileTool) Run(ctx context.Context, op *DeleteFile) (*DeleteFileResponse, error) {
	if err := t.fs.RemoveFile(op.abs); err != nil {
		switch {
		case errors.Is(err, iofs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, op.rel)
		case errors.Is(err, fs.ErrIsDirectory):
			return nil, fmt.Errorf("%w: %s", ErrIsDirectory, op.rel)
		}
		return nil, err
	}
	return &DeleteFileResponse{Path: op.rel}, nil
}

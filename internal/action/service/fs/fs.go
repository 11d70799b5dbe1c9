// Package fs is the OS filesystem used by the action handlers. Paths reaching
// it have already been resolved by the sandbox policy.
package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements filesystem operations on the local disk.
type OSFileSystem struct{}

func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (f *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (f *OSFileSystem) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

func (f *OSFileSystem) Readlink(path string) (string, error) {
	return os.Readlink(path)
}

// ReadFile reads a regular file of at most limit bytes. A non-positive limit
// reads the whole file. Files that grow past the limit while being read are
// reported as ErrTooLarge rather than silently cut.
func (f *OSFileSystem) ReadFile(path string, limit int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrIsDirectory
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotRegular
	}
	if limit <= 0 {
		return io.ReadAll(file)
	}
	if info.Size() > limit {
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

// CreateFile writes content to a new file at path. The data is written to a
// temp file in the same directory, synced, and then hard-linked into place,
// so readers never observe a partial file and an existing file is never
// replaced. The returned error wraps fs.ErrExist when path is taken.
func (f *OSFileSystem) CreateFile(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".nyx-tmp-*")
	if err != nil {
		return &TempFileError{Dir: dir, Cause: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
		}
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		return &WriteError{Path: tmpPath, Stage: "write", Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		return &WriteError{Path: tmpPath, Stage: "sync", Cause: err}
	}
	err = tmp.Close()
	tmp = nil
	if err != nil {
		return &WriteError{Path: tmpPath, Stage: "close", Cause: err}
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return &WriteError{Path: tmpPath, Stage: "chmod", Cause: err}
	}

	if err := os.Link(tmpPath, path); err != nil {
		return &LinkError{Old: tmpPath, New: path, Cause: err}
	}
	return nil
}

// RemoveFile deletes a file or symlink. Directories are refused.
func (f *OSFileSystem) RemoveFile(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ErrIsDirectory
	}
	return os.Remove(path)
}

// EnsureDirs creates path and any missing parents.
func (f *OSFileSystem) EnsureDirs(path string) error {
	return os.MkdirAll(path, 0o755)
}

// ListDir lists a directory. Entries removed between the read and the stat
// are skipped.
func (f *OSFileSystem) ListDir(path string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	infos := make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Walk walks the tree rooted at root without following symlinks.
func (f *OSFileSystem) Walk(root string, fn iofs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

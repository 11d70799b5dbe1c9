package sandbox

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const maxHops = 64

// ResolvePath canonicalises path against the root one component at a time,
// following symlinks and "..", and returns the absolute result.
// Relative paths are taken from the root. Components that do not exist yet
// are kept as written so callers can create them.
func (p *Policy) ResolvePath(path string) (string, error) {
	if path == "" || strings.ContainsRune(path, 0) {
		return "", &PathError{Path: path, Cause: ErrInvalidPath}
	}

	rel := path
	if filepath.IsAbs(path) {
		clean := filepath.Clean(path)
		if !within(clean, p.root) {
			return "", &PathError{Path: path, Cause: ErrPathOutsideSandbox}
		}
		rel, _ = filepath.Rel(p.root, clean)
	}

	pending := split(rel)
	current := p.root
	hops := 0
	for len(pending) > 0 {
		part := pending[0]
		pending = pending[1:]

		switch part {
		case "", ".":
			continue
		case "..":
			if current == p.root {
				return "", &PathError{Path: path, Cause: ErrPathOutsideSandbox}
			}
			current = filepath.Dir(current)
			continue
		}

		next := filepath.Join(current, part)
		info, err := p.fs.Lstat(next)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				current = next
				continue
			}
			return "", &PathError{Path: path, Cause: err}
		}
		if info.Mode()&os.ModeSymlink == 0 {
			current = next
			continue
		}

		hops++
		if hops > maxHops {
			return "", &SymlinkLoopError{Path: path, Hops: maxHops}
		}
		target, err := p.fs.Readlink(next)
		if err != nil {
			return "", &PathError{Path: path, Cause: err}
		}
		if filepath.IsAbs(target) {
			t := filepath.Clean(target)
			if !within(t, p.root) {
				return "", &PathError{Path: path, Cause: ErrPathOutsideSandbox}
			}
			r, _ := filepath.Rel(p.root, t)
			current = p.root
			pending = append(split(r), pending...)
		} else {
			// relative targets are spliced in place of the link, so they
			// resolve against the link's directory
			pending = append(split(target), pending...)
		}
	}
	return current, nil
}

// ResolveParent resolves every component of path except the last, which is
// returned joined to the resolved parent without being followed. Deleting a
// symlink should remove the link, not its target.
func (p *Policy) ResolveParent(path string) (string, error) {
	if path == "" || strings.ContainsRune(path, 0) {
		return "", &PathError{Path: path, Cause: ErrInvalidPath}
	}
	clean := filepath.Clean(path)
	base := filepath.Base(clean)
	switch base {
	case "..":
		return "", &PathError{Path: path, Cause: ErrPathOutsideSandbox}
	case ".", string(filepath.Separator):
		return p.ResolvePath(clean)
	}
	parent, err := p.ResolvePath(filepath.Dir(clean))
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, base), nil
}

func split(p string) []string {
	return strings.Split(filepath.ToSlash(p), "/")
}

// within reports whether path is root or below it. Both must be clean.
func within(path, root string) bool {
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return strings.HasPrefix(path, root)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

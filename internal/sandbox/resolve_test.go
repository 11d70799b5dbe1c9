package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	p := newPolicy(t)
	root := p.Root()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Symlink("docs", filepath.Join(root, "d")))
	require.NoError(t, os.Symlink(filepath.Join(root, "docs", "a.txt"), filepath.Join(root, "abs-link")))
	require.NoError(t, os.Symlink("../a.txt", filepath.Join(root, "docs", "sub", "up")))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain file", "docs/a.txt", "docs/a.txt"},
		{"dot", ".", "."},
		{"dot dot inside", "docs/sub/../a.txt", "docs/a.txt"},
		{"relative symlink dir", "d/a.txt", "docs/a.txt"},
		{"absolute symlink inside root", "abs-link", "docs/a.txt"},
		{"relative symlink with parent", "docs/sub/up", "docs/a.txt"},
		{"missing leaf", "docs/new.txt", "docs/new.txt"},
		{"missing dirs", "x/y/z.txt", "x/y/z.txt"},
		{"absolute inside root", filepath.Join(root, "docs", "a.txt"), "docs/a.txt"},
		{"dot dot past symlink", "d/../docs/a.txt", "docs/a.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ResolvePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Rel(got))
		})
	}
}

func TestResolvePath_Escapes(t *testing.T) {
	p := newPolicy(t)
	root := p.Root()
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "out")))
	require.NoError(t, os.Symlink("../..", filepath.Join(root, "rel-out")))

	tests := []struct {
		name string
		in   string
	}{
		{"parent", ".."},
		{"nested parent", "a/../../etc/passwd"},
		{"absolute outside", "/etc/passwd"},
		{"absolute sibling prefix", root + "-other/file"},
		{"symlink to outside", "out/file"},
		{"relative symlink escaping", "rel-out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ResolvePath(tt.in)
			assert.ErrorIs(t, err, ErrPathOutsideSandbox)
		})
	}
}

func TestResolvePath_SymlinkLoop(t *testing.T) {
	p := newPolicy(t)
	root := p.Root()
	require.NoError(t, os.Symlink("b", filepath.Join(root, "a")))
	require.NoError(t, os.Symlink("a", filepath.Join(root, "b")))

	_, err := p.ResolvePath("a/file")

	assert.ErrorIs(t, err, ErrSymlinkLoop)
	var lerr *SymlinkLoopError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, maxHops, lerr.Hops)
}

func TestResolvePath_InvalidInput(t *testing.T) {
	p := newPolicy(t)
	for _, in := range []string{"", "a\x00b"} {
		_, err := p.ResolvePath(in)
		assert.ErrorIs(t, err, ErrInvalidPath)
	}
}

func TestResolveParent(t *testing.T) {
	p := newPolicy(t)
	root := p.Root()
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.Symlink("docs", filepath.Join(root, "d")))
	require.NoError(t, os.Symlink(t.TempDir(), filepath.Join(root, "out")))

	got, err := p.ResolveParent("d/link")
	require.NoError(t, err)
	assert.Equal(t, "docs/link", p.Rel(got))

	got, err = p.ResolveParent("out")
	require.NoError(t, err)
	assert.Equal(t, "out", p.Rel(got), "last component is not followed")

	got, err = p.ResolveParent(".")
	require.NoError(t, err)
	assert.Equal(t, root, got)

	for _, in := range []string{"..", "docs/../..", "out/x"} {
		_, err = p.ResolveParent(in)
		assert.ErrorIs(t, err, ErrPathOutsideSandbox, in)
	}
}

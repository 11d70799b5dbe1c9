package action

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/nyx/internal/action/service/fs"
	"github.com/Cyclone1070/nyx/internal/action/service/git"
	"github.com/Cyclone1070/nyx/internal/config"
	"github.com/Cyclone1070/nyx/internal/sandbox"
	"github.com/stretchr/testify/require"
)

func newTestPolicy(t *testing.T, commands ...string) *sandbox.Policy {
	t.Helper()
	p, err := sandbox.NewPolicy(config.SandboxConfig{
		Root:            t.TempDir(),
		AllowedCommands: commands,
		MaxFileSize:     64,
	}, fs.NewOSFileSystem())
	require.NoError(t, err)
	return p
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newMatcher(t *testing.T, root string) *git.IgnoreMatcher {
	t.Helper()
	m, err := git.NewIgnoreMatcher(root, fs.NewOSFileSystem())
	require.NoError(t, err)
	return m
}

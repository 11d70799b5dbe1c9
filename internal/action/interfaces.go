package action

import (
	"context"
	iofs "io/fs"
	"os"

	"github.com/Cyclone1070/nyx/internal/action/service/executor"
	"github.com/Cyclone1070/nyx/internal/calendar"
)

type fileCreator interface {
	EnsureDirs(path string) error
	CreateFile(path string, content []byte, perm os.FileMode) error
}

type fileReader interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, limit int64) ([]byte, error)
}

type fileRemover interface {
	Lstat(path string) (os.FileInfo, error)
	RemoveFile(path string) error
}

type dirLister interface {
	Stat(path string) (os.FileInfo, error)
	ListDir(path string) ([]os.FileInfo, error)
}

type dirMaker interface {
	Stat(path string) (os.FileInfo, error)
	EnsureDirs(path string) error
}

type treeWalker interface {
	Stat(path string) (os.FileInfo, error)
	Walk(root string, fn iofs.WalkDirFunc) error
}

type ignoreMatcher interface {
	ShouldIgnore(rel string, isDir bool) bool
}

type commandRunner interface {
	Run(ctx context.Context, argv []string, dir string) (*executor.Result, error)
}

type eventAdder interface {
	Add(ctx context.Context, ev calendar.Event) (calendar.Event, error)
}

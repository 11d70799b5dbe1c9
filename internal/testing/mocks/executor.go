package mocks

import (
	"context"
	"slices"
	"sync"

	"github.com/Cyclone1070/nyx/internal/action/service/executor"
)

// MockCommandRunner records every argv it is asked to run.
type MockCommandRunner struct {
	mu      sync.Mutex
	RunFunc func(ctx context.Context, argv []string, dir string) (*executor.Result, error)
	calls   [][]string
	dirs    []string
}

// Run returns RunFunc's result, or an empty successful result.
func (m *MockCommandRunner) Run(ctx context.Context, argv []string, dir string) (*executor.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, slices.Clone(argv))
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, argv, dir)
	}
	return &executor.Result{}, nil
}

func (m *MockCommandRunner) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *MockCommandRunner) Dirs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.dirs)
}

// Package executor runs allow-listed commands as argument vectors. Nothing
// here goes through a shell.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/Cyclone1070/nyx/internal/config"
)

// Result is the outcome of a finished command. A non-zero ExitCode is not
// an error.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	Duration  time.Duration
}

// OSCommandExecutor runs commands with os/exec.
type OSCommandExecutor struct {
	timeout   time.Duration
	grace     time.Duration
	maxOutput int
}

// NewOSCommandExecutor reads timeout, grace period and output cap from cfg.
func NewOSCommandExecutor(cfg config.SandboxConfig) *OSCommandExecutor {
	return &OSCommandExecutor{
		timeout:   time.Duration(cfg.ExecTimeoutSeconds) * time.Second,
		grace:     time.Duration(cfg.GracefulShutdownMs) * time.Millisecond,
		maxOutput: int(cfg.MaxExecOutputSize),
	}
}

// Run executes argv in dir with no stdin. On timeout the process gets an
// interrupt, then a kill after the grace period, and ErrTimeout is returned
// with whatever output was collected. Cancelling ctx kills the process.
func (e *OSCommandExecutor) Run(ctx context.Context, argv []string, dir string) (*Result, error) {
	if len(argv) == 0 {
		return nil, os.ErrInvalid
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = nil
	stdout := newCollector(e.maxOutput)
	stderr := newCollector(e.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// bounds the wait for pipes held open by orphaned grandchildren
	cmd.WaitDelay = e.grace

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: argv[0], Stage: "start", Cause: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	var execErr error
	select {
	case execErr = <-done:
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-timer.C:
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(e.grace):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	res := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case execErr == nil:
	case errors.Is(execErr, ErrTimeout), errors.Is(execErr, context.Canceled), errors.Is(execErr, context.DeadlineExceeded):
		res.ExitCode = -1
		return res, execErr
	case errors.As(execErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		return res, &CommandError{Cmd: argv[0], Stage: "wait", Cause: execErr}
	}
	return res, nil
}

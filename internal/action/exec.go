package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/nyx/internal/sandbox"
)

type ExecResponse struct {
	Argv      []string
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

func (r *ExecResponse) Summary() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(r.Stdout, "\n"))
	if r.Stderr != "" {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.TrimRight(r.Stderr, "\n"))
	}
	if r.Truncated {
		sb.WriteString("\n[output truncated]")
	}
	if r.ExitCode != 0 {
		fmt.Fprintf(&sb, "\n[exit status %d]", r.ExitCode)
	}
	if sb.Len() == 0 {
		return fmt.Sprintf("Ran %s", r.Argv[0])
	}
	return sb.String()
}

// ExecTool runs allow-listed commands in the sandbox root. Arguments are
// passed as a vector; shell metacharacters have no effect.
type ExecTool struct {
	runner commandRunner
	policy *sandbox.Policy
}

func NewExecTool(runner commandRunner, policy *sandbox.Policy) *ExecTool {
	if runner == nil {
		panic("runner is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &ExecTool{runner: runner, policy: policy}
}

func (t *ExecTool) Authorize(req ExecRequest) (*Exec, error) {
	if err := t.policy.AuthorizeCommand(req.Command); err != nil {
		return nil, err
	}
	if err := t.checkOperands(req.Args); err != nil {
		return nil, err
	}
	argv := make([]string, 0, len(req.Args)+1)
	argv = append(argv, req.Command)
	argv = append(argv, req.Args...)
	return &Exec{argv: argv}, nil
}

// checkOperands resolves every argument that could name a file, so that an
// allowed command such as cat cannot read outside the root or reach the
// state directory. Flags are skipped except for the value of a --flag=value
// pair.
func (t *ExecTool) checkOperands(args []string) error {
	for _, arg := range args {
		operand := arg
		if strings.HasPrefix(arg, "-") {
			_, value, ok := strings.Cut(arg, "=")
			if !ok {
				continue
			}
			operand = value
		}
		if operand == "" {
			continue
		}
		abs, err := t.policy.ResolvePath(operand)
		if err != nil {
			return err
		}
		if err := t.policy.CheckMutable(abs); err != nil {
			return err
		}
	}
	return nil
}

func (t *ExecTool) Run(ctx context.Context, op *Exec) (*ExecResponse, error) {
	res, err := t.runner.Run(ctx, op.argv, t.policy.Root())
	if err != nil {
		return nil, err
	}
	return &ExecResponse{
		Argv:      op.argv,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		ExitCode:  res.ExitCode,
		Truncated: res.Truncated,
	}, nil
}

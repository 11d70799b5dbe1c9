// Package dispatch routes task intents to their handlers and drives each one
// through validation, authorization and execution.
package dispatch

import (
	"context"
	"time"

	"github.com/Cyclone1070/nyx/internal/action"
	"github.com/Cyclone1070/nyx/internal/intent"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// Tools holds one handler per task tag.
type Tools struct {
	CreateFile    *action.CreateFileTool
	ReadFile      *action.ReadFileTool
	DeleteFile    *action.DeleteFileTool
	ListDirectory *action.ListDirectoryTool
	Search        *action.SearchTool
	MakeDirectory *action.MakeDirectoryTool
	Schedule      *action.ScheduleTool
	Exec          *action.ExecTool
}

// Dispatcher is stateless apart from its handlers and is safe for
// concurrent use.
type Dispatcher struct {
	tools  Tools
	logger *zap.Logger
}

func New(tools Tools, logger *zap.Logger) *Dispatcher {
	switch {
	case tools.CreateFile == nil:
		panic("create file tool is required")
	case tools.ReadFile == nil:
		panic("read file tool is required")
	case tools.DeleteFile == nil:
		panic("delete file tool is required")
	case tools.ListDirectory == nil:
		panic("list directory tool is required")
	case tools.Search == nil:
		panic("search tool is required")
	case tools.MakeDirectory == nil:
		panic("make directory tool is required")
	case tools.Schedule == nil:
		panic("schedule tool is required")
	case tools.Exec == nil:
		panic("exec tool is required")
	case logger == nil:
		panic("logger is required")
	}
	return &Dispatcher{tools: tools, logger: logger}
}

// Dispatch runs the task described by in. It never panics on bad input and
// never retries; every failure is reported in the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, in intent.Intent) Result {
	t := d.tools
	switch in.Tag {
	case intent.TagFileCreate:
		return run(ctx, d, in, t.CreateFile.Authorize, t.CreateFile.Run)
	case intent.TagFileRead:
		return run(ctx, d, in, t.ReadFile.Authorize, t.ReadFile.Run)
	case intent.TagFileDelete:
		return run(ctx, d, in, t.DeleteFile.Authorize, t.DeleteFile.Run)
	case intent.TagFileList:
		return run(ctx, d, in, t.ListDirectory.Authorize, t.ListDirectory.Run)
	case intent.TagFileSearch:
		return run(ctx, d, in, t.Search.Authorize, t.Search.Run)
	case intent.TagFolderCreate:
		return run(ctx, d, in, t.MakeDirectory.Authorize, t.MakeDirectory.Run)
	case intent.TagScheduleAdd:
		return run(ctx, d, in, t.Schedule.Authorize, t.Schedule.Run)
	case intent.TagSystemExec:
		return run(ctx, d, in, t.Exec.Authorize, t.Exec.Run)
	case intent.TagChat, intent.TagUnknown:
		return d.fail(in.Tag, StateReceived, ErrNotATask)
	default:
		return d.fail(in.Tag, StateReceived, ErrNotATask)
	}
}

type validator interface {
	Validate() error
}

func run[Req validator, Op any, Resp action.Response](
	ctx context.Context,
	d *Dispatcher,
	in intent.Intent,
	authorize func(Req) (Op, error),
	execute func(context.Context, Op) (Resp, error),
) Result {
	d.transition(in.Tag, StateReceived)

	req, err := decodeSlots[Req](in.Slots)
	if err != nil {
		return d.fail(in.Tag, StateReceived, &SlotDecodeError{Tag: string(in.Tag), Cause: err})
	}
	if err := req.Validate(); err != nil {
		return d.fail(in.Tag, StateReceived, err)
	}
	d.transition(in.Tag, StateValidated)

	op, err := authorize(req)
	if err != nil {
		return d.fail(in.Tag, StateValidated, err)
	}
	d.transition(in.Tag, StateAuthorized)

	if err := ctx.Err(); err != nil {
		return d.fail(in.Tag, StateAuthorized, err)
	}
	resp, err := execute(ctx, op)
	if err != nil {
		return d.fail(in.Tag, StateAuthorized, err)
	}
	d.transition(in.Tag, StateExecuted)
	d.transition(in.Tag, StateCompleted)

	return Result{
		Tag:     in.Tag,
		Outcome: OutcomeOK,
		State:   StateCompleted,
		Reached: StateExecuted,
		Payload: resp,
		Detail:  resp.Summary(),
	}
}

func decodeSlots[Req any](slots map[string]any) (Req, error) {
	var req Req
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeHookFunc(time.RFC3339),
		ErrorUnused: true,
		Result:      &req,
	})
	if err != nil {
		return req, err
	}
	err = dec.Decode(slots)
	return req, err
}

func (d *Dispatcher) transition(tag intent.Tag, s State) {
	d.logger.Debug("task state", zap.String("tag", string(tag)), zap.String("state", string(s)))
}

func (d *Dispatcher) fail(tag intent.Tag, reached State, err error) Result {
	outcome := classify(err)
	fields := []zap.Field{
		zap.String("tag", string(tag)),
		zap.String("reached", string(reached)),
		zap.String("outcome", string(outcome)),
		zap.Error(err),
	}
	if outcome == OutcomeDenied {
		d.logger.Warn("task denied", fields...)
	} else {
		d.logger.Debug("task failed", fields...)
	}
	return Result{
		Tag:     tag,
		Outcome: outcome,
		State:   StateCompleted,
		Reached: reached,
		Detail:  detail(err),
		Err:     err,
	}
}

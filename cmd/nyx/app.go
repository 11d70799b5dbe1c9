package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cyclone1070/nyx/internal/action"
	"github.com/Cyclone1070/nyx/internal/action/service/executor"
	"github.com/Cyclone1070/nyx/internal/action/service/fs"
	"github.com/Cyclone1070/nyx/internal/action/service/git"
	"github.com/Cyclone1070/nyx/internal/assistant"
	"github.com/Cyclone1070/nyx/internal/calendar"
	"github.com/Cyclone1070/nyx/internal/config"
	"github.com/Cyclone1070/nyx/internal/decode"
	"github.com/Cyclone1070/nyx/internal/dispatch"
	"github.com/Cyclone1070/nyx/internal/intent"
	"github.com/Cyclone1070/nyx/internal/model"
	"github.com/Cyclone1070/nyx/internal/model/ngram"
	"github.com/Cyclone1070/nyx/internal/sandbox"
	"github.com/Cyclone1070/nyx/internal/session"
	"github.com/Cyclone1070/nyx/internal/tokenizer"
	"go.uber.org/zap"
)

// App is a fully wired assistant plus the resources it owns.
type App struct {
	Assistant *assistant.Assistant
	Root      string
	TTL       time.Duration

	calendar *calendar.Store
}

// Close releases the calendar database.
func (a *App) Close() error {
	return a.calendar.Close()
}

// buildApp wires every component from cfg. A model or tokenizer that fails to
// load leaves chat on the fallback reply; sandbox and calendar failures are
// fatal.
func buildApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	osFS := fs.NewOSFileSystem()

	policy, err := sandbox.NewPolicy(cfg.Sandbox, osFS)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sandbox: %w", err)
	}
	root := policy.Root()

	var ignore interface {
		ShouldIgnore(rel string, isDir bool) bool
	}
	matcher, err := git.NewIgnoreMatcher(root, osFS)
	if err != nil {
		logger.Warn("gitignore unavailable, listing everything", zap.Error(err))
		ignore = git.NoOpMatcher{}
	} else {
		ignore = matcher
	}

	cal, err := calendar.Open(calendar.DefaultPath(root))
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar: %w", err)
	}

	tools := dispatch.Tools{
		CreateFile:    action.NewCreateFileTool(osFS, policy),
		ReadFile:      action.NewReadFileTool(osFS, policy),
		DeleteFile:    action.NewDeleteFileTool(osFS, policy),
		ListDirectory: action.NewListDirectoryTool(osFS, ignore, policy, cfg.Sandbox.MaxListEntries),
		Search:        action.NewSearchTool(osFS, ignore, policy, cfg.Sandbox.MaxSearchResults),
		MakeDirectory: action.NewMakeDirectoryTool(osFS, policy),
		Schedule:      action.NewScheduleTool(cal),
		Exec:          action.NewExecTool(executor.NewOSCommandExecutor(cfg.Sandbox), policy),
	}

	var engine *decode.Engine
	bpe, m, err := loadModel(cfg.Model)
	if err != nil {
		logger.Warn("model unavailable, chat will use the fallback reply", zap.Error(err))
	} else {
		engine = decode.NewEngine(m, bpe, model.NewSlots(cfg.Model.Replicas, cfg.Model.QueueLimit), logger)
	}

	opts := assistant.Options{
		Strategy: decode.Strategy(cfg.Decoding.Strategy),
		Params:   decode.ParamsFromConfig(cfg.Decoding),
		Timeout:  time.Duration(cfg.Runtime.RequestTimeoutSeconds) * time.Second,
	}
	classifier := intent.NewClassifier(time.Now, logger)
	dispatcher := dispatch.New(tools, logger)

	// A nil *BPE must not reach the interface-typed parameters.
	var a *assistant.Assistant
	if engine != nil {
		a = assistant.New(session.NewStore(cfg.Context, bpe), classifier, dispatcher, engine, bpe, opts, logger)
	} else {
		a = assistant.New(session.NewStore(cfg.Context, nil), classifier, dispatcher, nil, nil, opts, logger)
	}

	logger.Info("assistant ready",
		zap.String("root", root),
		zap.Bool("model", engine != nil),
		zap.Strings("allowed_commands", policy.AllowedCommands()))

	return &App{
		Assistant: a,
		Root:      root,
		TTL:       time.Duration(cfg.Context.SessionTTLSeconds) * time.Second,
		calendar:  cal,
	}, nil
}

func loadModel(cfg config.ModelConfig) (*tokenizer.BPE, *ngram.Model, error) {
	bpe, err := tokenizer.Load(cfg.TokenizerPath)
	if err != nil {
		return nil, nil, err
	}
	m, err := ngram.Load(cfg.ModelPath)
	if err != nil {
		return nil, nil, err
	}
	if m.VocabSize() != bpe.VocabSize() {
		return nil, nil, model.Unavailable(
			fmt.Sprintf("model vocabulary %d does not match tokenizer %d", m.VocabSize(), bpe.VocabSize()), nil)
	}
	return bpe, m, nil
}

// janitorInterval sweeps a few times per TTL, at most once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	return min(ttl/4, time.Minute)
}

// startJanitor runs session expiry until ctx is done and returns a wait func.
func (a *App) startJanitor(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Assistant.RunJanitor(ctx, janitorInterval(a.TTL))
	}()
	return func() { <-done }
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, decode.ErrCancelled)
}

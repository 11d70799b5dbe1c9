// Package decode turns next-token distributions into finished token
// sequences using greedy, beam or sampling strategies.
package decode

import (
	"context"
	"errors"

	"github.com/Cyclone1070/nyx/internal/model"
	"go.uber.org/zap"
)

// Tokenizer is the subset of the tokenizer the engine needs.
type Tokenizer interface {
	Encode(text string) []int
	EOS() int
}

// Engine runs generations against a shared model. Model access is
// serialised through slots; the engine itself holds no mutable state.
type Engine struct {
	model  model.Model
	tok    Tokenizer
	slots  *model.Slots
	logger *zap.Logger
}

// NewEngine creates an engine. All dependencies are required.
func NewEngine(m model.Model, tok Tokenizer, slots *model.Slots, logger *zap.Logger) *Engine {
	if m == nil {
		panic("model is required")
	}
	if tok == nil {
		panic("tokenizer is required")
	}
	if slots == nil {
		panic("slots is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Engine{model: m, tok: tok, slots: slots, logger: logger}
}

// job is a prepared generation.
type job struct {
	prompt []int
	stops  [][]int
	params Params
	strat  Strategy
	eos    int
}

func (e *Engine) prepare(req Request) (job, error) {
	prompt := e.tok.Encode(req.Prompt())
	if len(prompt) == 0 {
		return job{}, ErrEmptyPrompt
	}
	p := req.Params()
	var stops [][]int
	for _, s := range p.StopSequences {
		if ids := e.tok.Encode(s); len(ids) > 0 {
			stops = append(stops, ids)
		}
	}
	return job{prompt: prompt, stops: stops, params: p, strat: req.Strategy(), eos: e.tok.EOS()}, nil
}

// Generate runs req to completion. A cancelled generation returns the
// tokens produced so far with FinishCancelled and an error wrapping
// ErrCancelled.
func (e *Engine) Generate(ctx context.Context, req Request) (Result, error) {
	j, err := e.prepare(req)
	if err != nil {
		return Result{}, err
	}
	return e.run(ctx, j, nil)
}

// run acquires a slot and dispatches on strategy. emit, when set, receives
// every token as it is committed and may stop the generation by returning
// false.
func (e *Engine) run(ctx context.Context, j job, emit func(int) bool) (Result, error) {
	if j.params.MaxNewTokens == 0 {
		return Result{Tokens: []int{}, Finish: FinishMaxLength}, nil
	}
	release, err := e.slots.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Tokens: []int{}, Finish: FinishCancelled}, cancelled(ctx.Err())
		}
		return Result{}, &GenerationError{Step: 0, Cause: err}
	}
	defer release()

	var res Result
	switch j.strat {
	case StrategyGreedy:
		res, err = e.single(ctx, j, argmax, emit)
	case StrategySampling:
		res, err = e.single(ctx, j, newSampler(j.params), emit)
	case StrategyBeam:
		res, err = e.beam(ctx, j)
		if err == nil && emit != nil {
			res, err = replay(res, emit)
		}
	default:
		return Result{}, ErrInvalidRequest
	}
	e.logger.Debug("generation finished",
		zap.String("strategy", string(j.strat)),
		zap.String("finish", string(res.Finish)),
		zap.Int("tokens", len(res.Tokens)),
		zap.Error(err))
	return res, err
}

// next fetches and validates one distribution. Context errors surfaced by
// the model are reported as cancellation.
func (e *Engine) next(ctx context.Context, step int, prefix, prompt []int) ([]float64, error) {
	dist, err := e.model.NextTokenDistribution(ctx, prefix, prompt)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, cancelled(err)
		}
		return nil, &GenerationError{Step: step, Cause: err}
	}
	if err := model.CheckDistribution(dist, e.model.VocabSize()); err != nil {
		return nil, &GenerationError{Step: step, Cause: err}
	}
	return dist, nil
}

// replay feeds a completed beam result through emit.
func replay(res Result, emit func(int) bool) (Result, error) {
	for i, tok := range res.Tokens {
		if !emit(tok) {
			return Result{Tokens: res.Tokens[:i+1], Finish: FinishCancelled, Score: res.Score}, cancelled(errStopped)
		}
	}
	return res, nil
}

var errStopped = errors.New("consumer stopped reading")

// hasStopSuffix reports whether tokens ends with any full stop sequence.
func hasStopSuffix(tokens []int, stops [][]int) bool {
	for _, s := range stops {
		if len(s) > len(tokens) {
			continue
		}
		tail := tokens[len(tokens)-len(s):]
		match := true
		for i := range s {
			if tail[i] != s[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

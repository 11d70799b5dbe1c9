package decode

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Cyclone1070/nyx/internal/config"
)

// Strategy selects the decoding algorithm.
type Strategy string

const (
	StrategyGreedy   Strategy = "greedy"
	StrategyBeam     Strategy = "beam"
	StrategySampling Strategy = "sampling"
)

// FinishReason explains why a generation stopped.
type FinishReason string

const (
	FinishStopSequence FinishReason = "stop-sequence"
	FinishMaxLength    FinishReason = "max-length"
	FinishEOS          FinishReason = "eos"
	FinishCancelled    FinishReason = "cancelled"
)

// DefaultLengthPenalty replaces an unset beam length penalty, ranking beams
// by mean log-probability.
const DefaultLengthPenalty = 1.0

// Params are the tunables of a generation. Fields irrelevant to the chosen
// strategy are ignored.
type Params struct {
	MaxNewTokens  int
	BeamWidth     int
	LengthPenalty float64
	Temperature   float64
	TopK          int // 0 disables
	TopP          float64
	Seed          int64
	StopSequences []string
}

// ParamsFromConfig maps decoding configuration onto Params.
func ParamsFromConfig(cfg config.DecodingConfig) Params {
	return Params{
		MaxNewTokens:  cfg.MaxNewTokens,
		BeamWidth:     cfg.BeamWidth,
		LengthPenalty: cfg.LengthPenalty,
		Temperature:   cfg.Temperature,
		TopK:          cfg.TopK,
		TopP:          cfg.TopP,
		Seed:          cfg.Seed,
		StopSequences: slices.Clone(cfg.StopSequences),
	}
}

// Request is an immutable generation request. Build it with NewRequest.
type Request struct {
	prompt   string
	strategy Strategy
	params   Params
}

// NewRequest validates the inputs and returns a request that shares no
// memory with the caller.
func NewRequest(prompt string, strategy Strategy, p Params) (Request, error) {
	var errs []string
	switch strategy {
	case StrategyGreedy, StrategyBeam, StrategySampling:
	default:
		errs = append(errs, fmt.Sprintf("unknown strategy %q", strategy))
	}
	if p.MaxNewTokens < 0 {
		errs = append(errs, "max new tokens must be non-negative")
	}
	if strategy == StrategyBeam {
		if p.BeamWidth < 1 {
			errs = append(errs, "beam width must be positive")
		}
		if p.LengthPenalty < 0 {
			errs = append(errs, "length penalty must be non-negative")
		}
		if p.LengthPenalty == 0 {
			p.LengthPenalty = DefaultLengthPenalty
		}
	}
	if strategy == StrategySampling {
		if p.Temperature <= 0 {
			errs = append(errs, "temperature must be positive")
		}
		if p.TopK < 0 {
			errs = append(errs, "top-k must be non-negative")
		}
		if p.TopP <= 0 || p.TopP > 1 {
			errs = append(errs, "top-p must be in (0, 1]")
		}
	}
	if len(errs) > 0 {
		return Request{}, fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(errs, "; "))
	}
	p.StopSequences = slices.Clone(p.StopSequences)
	return Request{prompt: prompt, strategy: strategy, params: p}, nil
}

func (r Request) Prompt() string     { return r.prompt }
func (r Request) Strategy() Strategy { return r.strategy }

// Params returns a copy of the request parameters.
func (r Request) Params() Params {
	p := r.params
	p.StopSequences = slices.Clone(p.StopSequences)
	return p
}

// Result is a finished generation. Tokens never exceed MaxNewTokens and
// nothing follows a stop condition.
type Result struct {
	Tokens []int
	Finish FinishReason
	// Score is the cumulative log-probability for greedy and sampling, and
	// the length-normalised log-probability for beam search.
	Score float64
}

// Package model defines the language model contract used by the decoding
// engine and the inference slots that serialise access to a shared model.
package model

import (
	"context"
	"fmt"
	"math"
)

// Model produces a probability distribution over the vocabulary for the next
// token. prefix holds the tokens generated so far in the current sequence and
// context holds the encoded prompt. Implementations need not be reentrant;
// callers hold a slot for the duration of a generation.
type Model interface {
	NextTokenDistribution(ctx context.Context, prefix, context []int) ([]float64, error)
	VocabSize() int
}

// massTolerance bounds how far a distribution may drift from summing to one.
const massTolerance = 1e-3

// CheckDistribution reports a *InferenceError wrapping
// ErrMalformedDistribution unless dist has exactly vocabSize finite,
// non-negative entries whose mass is one within tolerance.
func CheckDistribution(dist []float64, vocabSize int) error {
	if len(dist) != vocabSize {
		return malformed(fmt.Sprintf("got %d probabilities for vocabulary of %d", len(dist), vocabSize))
	}
	var mass float64
	for i, p := range dist {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return malformed(fmt.Sprintf("probability at %d is not finite", i))
		}
		if p < 0 {
			return malformed(fmt.Sprintf("probability at %d is negative", i))
		}
		mass += p
	}
	if mass <= 0 {
		return malformed("distribution has zero mass")
	}
	if math.Abs(mass-1) > massTolerance {
		return malformed(fmt.Sprintf("distribution mass %.6f is not 1", mass))
	}
	return nil
}

func malformed(msg string) error {
	return &InferenceError{Code: ErrorCodeMalformed, Message: msg, Underlying: ErrMalformedDistribution}
}

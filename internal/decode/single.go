package decode

import (
	"context"
	"math"
)

// picker chooses the next token from a validated distribution.
type picker func(dist []float64) int

// argmax picks the most probable token, lowest id on ties.
func argmax(dist []float64) int {
	best := 0
	for i, p := range dist {
		if p > dist[best] {
			best = i
		}
	}
	return best
}

// single extends one sequence a token at a time; greedy and sampling
// differ only in pick.
func (e *Engine) single(ctx context.Context, j job, pick picker, emit func(int) bool) (Result, error) {
	res := Result{Tokens: make([]int, 0, min(j.params.MaxNewTokens, 256))}
	for step := 0; step < j.params.MaxNewTokens; step++ {
		if err := ctx.Err(); err != nil {
			res.Finish = FinishCancelled
			return res, cancelled(err)
		}
		dist, err := e.next(ctx, step, res.Tokens, j.prompt)
		if err != nil {
			if ctx.Err() != nil {
				res.Finish = FinishCancelled
				return res, err
			}
			return Result{}, err
		}
		tok := pick(dist)
		res.Tokens = append(res.Tokens, tok)
		res.Score += math.Log(dist[tok])

		if emit != nil && !emit(tok) {
			res.Finish = FinishCancelled
			return res, cancelled(errStopped)
		}
		if tok == j.eos {
			res.Finish = FinishEOS
			return res, nil
		}
		if hasStopSuffix(res.Tokens, j.stops) {
			res.Finish = FinishStopSequence
			return res, nil
		}
	}
	res.Finish = FinishMaxLength
	return res, nil
}

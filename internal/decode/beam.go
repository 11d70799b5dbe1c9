package decode

import (
	"context"
	"math"
	"slices"
	"sort"
)

type beam struct {
	tokens []int
	logp   float64
	// frozenAt is the step at which the beam terminated, or -1 while live.
	frozenAt int
	finish   FinishReason
}

func (b beam) live() bool { return b.frozenAt < 0 }

func (b beam) score(penalty float64) float64 {
	return b.logp / math.Pow(float64(len(b.tokens)), penalty)
}

// better orders beams by score, then earliest termination, then token
// order.
func better(a, b beam, penalty float64) bool {
	sa, sb := a.score(penalty), b.score(penalty)
	if sa != sb {
		return sa > sb
	}
	ta, tb := a.frozenAt, b.frozenAt
	if ta < 0 {
		ta = math.MaxInt
	}
	if tb < 0 {
		tb = math.MaxInt
	}
	if ta != tb {
		return ta < tb
	}
	return slices.Compare(a.tokens, b.tokens) < 0
}

// beam runs length-normalised beam search. Beams that emit EOS or complete
// a stop sequence freeze but keep competing for the top k.
func (e *Engine) beam(ctx context.Context, j job) (Result, error) {
	width, penalty := j.params.BeamWidth, j.params.LengthPenalty
	var beams []beam

	for step := 0; step < j.params.MaxNewTokens; step++ {
		if err := ctx.Err(); err != nil {
			return bestPartial(beams, penalty), cancelled(err)
		}

		var cands []beam
		anyLive := false
		if step == 0 {
			beams = []beam{{tokens: nil, frozenAt: -1}}
		}
		for _, b := range beams {
			if !b.live() {
				cands = append(cands, b)
				continue
			}
			anyLive = true
			dist, err := e.next(ctx, step, b.tokens, j.prompt)
			if err != nil {
				if ctx.Err() != nil {
					return bestPartial(beams, penalty), err
				}
				return Result{}, err
			}
			for _, tok := range topIndices(dist, width) {
				nb := beam{
					tokens:   append(slices.Clip(b.tokens), tok),
					logp:     b.logp + math.Log(dist[tok]),
					frozenAt: -1,
				}
				switch {
				case tok == j.eos:
					nb.frozenAt, nb.finish = step, FinishEOS
				case hasStopSuffix(nb.tokens, j.stops):
					nb.frozenAt, nb.finish = step, FinishStopSequence
				}
				cands = append(cands, nb)
			}
		}
		if !anyLive {
			break
		}
		sort.SliceStable(cands, func(a, b int) bool { return better(cands[a], cands[b], penalty) })
		if len(cands) > width {
			cands = cands[:width]
		}
		beams = cands
	}

	best := beams[0]
	for _, b := range beams[1:] {
		if better(b, best, penalty) {
			best = b
		}
	}
	finish := best.finish
	if best.live() {
		finish = FinishMaxLength
	}
	return Result{Tokens: best.tokens, Finish: finish, Score: best.score(penalty)}, nil
}

// bestPartial reports the leading beam of an interrupted search.
func bestPartial(beams []beam, penalty float64) Result {
	res := Result{Tokens: []int{}, Finish: FinishCancelled}
	var best *beam
	for i := range beams {
		if len(beams[i].tokens) == 0 {
			continue
		}
		if best == nil || better(beams[i], *best, penalty) {
			best = &beams[i]
		}
	}
	if best != nil {
		res.Tokens, res.Score = best.tokens, best.score(penalty)
	}
	return res
}

// topIndices returns up to k indices with non-zero probability, highest
// first, lowest id on ties.
func topIndices(dist []float64, k int) []int {
	idx := make([]int, 0, len(dist))
	for i, p := range dist {
		if p > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return dist[idx[a]] > dist[idx[b]] })
	if len(idx) > k {
		idx = idx[:k]
	}
	return idx
}

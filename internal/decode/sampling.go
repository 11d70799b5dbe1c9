package decode

import (
	"math"
	"math/rand/v2"
	"sort"
)

// newSampler returns a picker drawing from a generator seeded by p.Seed, so
// identical requests produce identical sequences.
func newSampler(p Params) picker {
	rng := rand.New(rand.NewPCG(uint64(p.Seed), 0))
	return func(dist []float64) int {
		return draw(rng, filterDistribution(dist, p.Temperature, p.TopK, p.TopP))
	}
}

// filterDistribution applies temperature, then top-k, then nucleus
// filtering, and returns unnormalised weights.
func filterDistribution(dist []float64, temperature float64, topK int, topP float64) []float64 {
	maxLog := math.Inf(-1)
	for _, p := range dist {
		if p > 0 {
			maxLog = max(maxLog, math.Log(p))
		}
	}
	w := make([]float64, len(dist))
	for i, p := range dist {
		if p > 0 {
			// log-space keeps low temperatures from underflowing to zero
			w[i] = math.Exp((math.Log(p) - maxLog) / temperature)
		}
	}

	order := make([]int, len(w))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return w[order[a]] > w[order[b]] })

	if topK > 0 && topK < len(order) {
		for _, id := range order[topK:] {
			w[id] = 0
		}
		order = order[:topK]
	}

	if topP < 1 {
		var total float64
		for _, id := range order {
			total += w[id]
		}
		var cum float64
		for i, id := range order {
			cum += w[id] / total
			if cum >= topP {
				for _, drop := range order[i+1:] {
					w[drop] = 0
				}
				break
			}
		}
	}
	return w
}

// draw picks an index with probability proportional to its weight.
func draw(rng *rand.Rand, w []float64) int {
	var total float64
	last := 0
	for i, x := range w {
		if x > 0 {
			total += x
			last = i
		}
	}
	r := rng.Float64() * total
	for i, x := range w {
		if x <= 0 {
			continue
		}
		if r < x {
			return i
		}
		r -= x
	}
	return last
}

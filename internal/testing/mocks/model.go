package mocks

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// MockModel implements model.Model with a per-prefix distribution table.
// Prefixes absent from Table fall back to Default, then to uniform.
type MockModel struct {
	Vocab   int
	Table   map[string][]float64
	Default []float64
	// NextFunc overrides the table when set.
	NextFunc func(ctx context.Context, prefix, context []int) ([]float64, error)

	mu       sync.Mutex
	calls    int
	prefixes [][]int
}

// NewMockModel returns a model over vocab tokens with an empty table.
func NewMockModel(vocab int) *MockModel {
	return &MockModel{Vocab: vocab, Table: map[string][]float64{}}
}

// Key renders a prefix the way Table is keyed.
func Key(prefix ...int) string {
	parts := make([]string, len(prefix))
	for i, id := range prefix {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

// Set registers the distribution returned after prefix.
func (m *MockModel) Set(dist []float64, prefix ...int) *MockModel {
	m.Table[Key(prefix...)] = dist
	return m
}

func (m *MockModel) VocabSize() int { return m.Vocab }

func (m *MockModel) NextTokenDistribution(ctx context.Context, prefix, context []int) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	m.prefixes = append(m.prefixes, append([]int(nil), prefix...))
	m.mu.Unlock()

	if m.NextFunc != nil {
		return m.NextFunc(ctx, prefix, context)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d, ok := m.Table[Key(prefix...)]; ok {
		return append([]float64(nil), d...), nil
	}
	if m.Default != nil {
		return append([]float64(nil), m.Default...), nil
	}
	d := make([]float64, m.Vocab)
	for i := range d {
		d[i] = 1 / float64(m.Vocab)
	}
	return d, nil
}

// Calls returns how many distributions were requested.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prefixes returns every prefix the model was asked about, in order.
func (m *MockModel) Prefixes() [][]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]int(nil), m.prefixes...)
}

// OneHot returns a distribution over vocab putting mass p on id and
// spreading the rest evenly.
func OneHot(vocab, id int, p float64) []float64 {
	d := make([]float64, vocab)
	rest := (1 - p) / float64(vocab-1)
	for i := range d {
		d[i] = rest
	}
	d[id] = p
	return d
}

// Package ngram is a count-based next-token model loaded from a CBOR
// artifact. It backs off from the longest matching history to shorter ones
// and applies additive smoothing over the full vocabulary, so every token
// always has non-zero probability.
package ngram

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Cyclone1070/nyx/internal/model"
	"github.com/fxamacker/cbor/v2"
)

// Artifact is the serialised model.
type Artifact struct {
	Order     int     `cbor:"order"`
	VocabSize int     `cbor:"vocab_size"`
	Smoothing float64 `cbor:"smoothing"`
	Entries   []Entry `cbor:"entries"`
}

// Entry holds next-token counts observed after History. An empty History is
// the unigram table.
type Entry struct {
	History []int          `cbor:"history"`
	Next    map[int]uint32 `cbor:"next"`
}

type table struct {
	next  map[int]uint32
	total uint64
}

// Model implements model.Model. It is read-only after construction.
type Model struct {
	order     int
	vocabSize int
	smoothing float64
	tables    map[string]table
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("ngram: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("ngram: CBOR decoder initialization failed: " + err.Error())
	}
}

// Load reads and decodes an artifact from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.Unavailable(fmt.Sprintf("cannot read %s", path), err)
	}
	var a Artifact
	if err := decMode.Unmarshal(data, &a); err != nil {
		return nil, model.Unavailable(fmt.Sprintf("cannot decode %s", path), err)
	}
	return New(a)
}

// Marshal encodes an artifact deterministically.
func Marshal(a Artifact) ([]byte, error) {
	return encMode.Marshal(a)
}

// New validates an artifact and builds the model.
func New(a Artifact) (*Model, error) {
	if a.Order < 1 {
		return nil, model.Unavailable("order must be at least 1", nil)
	}
	if a.VocabSize < 1 {
		return nil, model.Unavailable("vocab_size must be positive", nil)
	}
	if a.Smoothing <= 0 {
		a.Smoothing = 1
	}
	m := &Model{
		order:     a.Order,
		vocabSize: a.VocabSize,
		smoothing: a.Smoothing,
		tables:    make(map[string]table, len(a.Entries)),
	}
	for _, e := range a.Entries {
		if len(e.History) >= a.Order {
			return nil, model.Unavailable(fmt.Sprintf("history %v longer than order %d allows", e.History, a.Order), nil)
		}
		var total uint64
		for id, c := range e.Next {
			if id < 0 || id >= a.VocabSize {
				return nil, model.Unavailable(fmt.Sprintf("token %d outside vocabulary", id), nil)
			}
			total += uint64(c)
		}
		m.tables[key(e.History)] = table{next: e.Next, total: total}
	}
	return m, nil
}

// VocabSize returns the vocabulary size.
func (m *Model) VocabSize() int { return m.vocabSize }

// NextTokenDistribution conditions on the tail of context followed by prefix.
func (m *Model) NextTokenDistribution(ctx context.Context, prefix, context []int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	history := make([]int, 0, len(context)+len(prefix))
	history = append(history, context...)
	history = append(history, prefix...)

	t := m.lookup(history)
	dist := make([]float64, m.vocabSize)
	denom := float64(t.total) + m.smoothing*float64(m.vocabSize)
	for i := range dist {
		dist[i] = (float64(t.next[i]) + m.smoothing) / denom
	}
	return dist, nil
}

// lookup returns the table for the longest suffix of history that was
// observed, falling back to the unigram table or an empty one.
func (m *Model) lookup(history []int) table {
	n := m.order - 1
	if n > len(history) {
		n = len(history)
	}
	for ; n >= 0; n-- {
		if t, ok := m.tables[key(history[len(history)-n:])]; ok && t.total > 0 {
			return t
		}
	}
	return table{}
}

func key(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

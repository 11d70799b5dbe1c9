package ngram

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/nyx/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bigram() Artifact {
	return Artifact{
		Order:     2,
		VocabSize: 4,
		Smoothing: 1,
		Entries: []Entry{
			{History: nil, Next: map[int]uint32{0: 1, 1: 1, 2: 1, 3: 1}},
			{History: []int{1}, Next: map[int]uint32{2: 6}},
		},
	}
}

func TestNextTokenDistribution_UsesLongestHistory(t *testing.T) {
	m, err := New(bigram())
	require.NoError(t, err)

	dist, err := m.NextTokenDistribution(context.Background(), []int{1}, []int{3})

	require.NoError(t, err)
	require.NoError(t, model.CheckDistribution(dist, 4))
	assert.InDelta(t, 0.7, dist[2], 1e-9)
	assert.InDelta(t, 0.1, dist[0], 1e-9)
}

func TestNextTokenDistribution_BacksOffToUnigram(t *testing.T) {
	m, err := New(bigram())
	require.NoError(t, err)

	dist, err := m.NextTokenDistribution(context.Background(), nil, []int{0})

	require.NoError(t, err)
	for _, p := range dist {
		assert.InDelta(t, 0.25, p, 1e-9)
	}
}

func TestNextTokenDistribution_EmptyTablesAreUniform(t *testing.T) {
	m, err := New(Artifact{Order: 3, VocabSize: 5})
	require.NoError(t, err)

	dist, err := m.NextTokenDistribution(context.Background(), []int{1, 2}, nil)

	require.NoError(t, err)
	require.NoError(t, model.CheckDistribution(dist, 5))
	assert.InDelta(t, 0.2, dist[4], 1e-9)
}

func TestNextTokenDistribution_CancelledContext(t *testing.T) {
	m, err := New(bigram())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.NextTokenDistribution(ctx, nil, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name string
		a    Artifact
	}{
		{"zero order", Artifact{Order: 0, VocabSize: 2}},
		{"zero vocab", Artifact{Order: 1, VocabSize: 0}},
		{"history too long", Artifact{Order: 2, VocabSize: 2, Entries: []Entry{{History: []int{0, 1}}}}},
		{"token outside vocab", Artifact{Order: 1, VocabSize: 2, Entries: []Entry{{Next: map[int]uint32{5: 1}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.a)
			assert.ErrorIs(t, err, model.ErrModelUnavailable)
		})
	}
}

func TestLoad_FromCBORFile(t *testing.T) {
	data, err := Marshal(bigram())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.cbor")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 4, m.VocabSize())
	dist, err := m.NextTokenDistribution(context.Background(), []int{1}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, dist[2], 1e-9)
}

func TestLoad_MissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.cbor"))
	assert.ErrorIs(t, err, model.ErrModelUnavailable)

	corrupt := filepath.Join(dir, "corrupt.cbor")
	require.NoError(t, os.WriteFile(corrupt, []byte{0xff, 0x00}, 0o644))
	_, err = Load(corrupt)
	assert.ErrorIs(t, err, model.ErrModelUnavailable)
}

package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocab() map[string]int {
	return map[string]int{
		PadToken: 0, UnkToken: 1, BosToken: 2, EosToken: 3,
		"h": 4, "e": 5, "l": 6, "o": 7, "</w>": 8,
		"he": 9, "ll": 10, "hell": 11, "o</w>": 12, "hello</w>": 13,
		"w": 14, "r": 15, "d": 16, "d</w>": 17,
	}
}

func testMerges() [][2]string {
	return [][2]string{
		{"h", "e"},
		{"l", "l"},
		{"he", "ll"},
		{"o", "</w>"},
		{"hell", "o</w>"},
		{"d", "</w>"},
	}
}

func newTestBPE(t *testing.T) *BPE {
	t.Helper()
	b, err := New(testVocab(), testMerges(), []string{PadToken, UnkToken, BosToken, EosToken})
	require.NoError(t, err)
	return b
}

func TestEncode_AppliesMergesInRankOrder(t *testing.T) {
	b := newTestBPE(t)

	assert.Equal(t, []int{13}, b.Encode("hello"))
	assert.Equal(t, []int{13, 13}, b.Encode("  HELLO\thello "))
}

func TestEncode_UnknownSymbolsMapToUnk(t *testing.T) {
	b := newTestBPE(t)

	// "world": w, o, r, l, d</w> with 'o' unmerged since "o" is not followed by </w>
	ids := b.Encode("world")
	assert.Equal(t, []int{14, 7, 15, 6, 17}, ids)

	ids = b.Encode("zed")
	assert.Equal(t, []int{1, 5, 17}, ids)
}

func TestEncode_EmptyInput(t *testing.T) {
	b := newTestBPE(t)
	assert.Empty(t, b.Encode(""))
	assert.Empty(t, b.Encode("   \n"))
}

func TestDecode_InverseUpToWhitespace(t *testing.T) {
	b := newTestBPE(t)

	ids := b.Encode("Hello   world")
	assert.Equal(t, "hello world", b.Decode(ids))
}

func TestDecode_SkipsSpecialAndUnknownIDs(t *testing.T) {
	b := newTestBPE(t)
	assert.Equal(t, "hello", b.Decode([]int{2, 13, 3, 0, 999}))
}

func TestDecodeToken_KeepsWordBoundary(t *testing.T) {
	b := newTestBPE(t)
	assert.Equal(t, "hello ", b.DecodeToken(13))
	assert.Equal(t, "he", b.DecodeToken(9))
	assert.Equal(t, "", b.DecodeToken(3))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyVocab)

	_, err = New(map[string]int{"a": 0}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingSpecial)

	_, err = New(map[string]int{EosToken: 0, "a": 0}, nil, nil)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestNew_NoUnkDropsUnknownSymbols(t *testing.T) {
	b, err := New(map[string]int{EosToken: 0, "a</w>": 1}, [][2]string{{"a", "</w>"}}, []string{EosToken})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, b.Encode("a b"))
}

func TestEncode_DuplicateMergeKeepsLaterRanks(t *testing.T) {
	vocab := map[string]int{
		EosToken: 0, "a": 1, "b": 2, "c": 3, "d": 4, "</w>": 5, "ab": 6, "cd": 7,
	}
	merges := [][2]string{{"a", "b"}, {"a", "b"}, {"c", "d"}}
	b, err := New(vocab, merges, []string{EosToken})
	require.NoError(t, err)

	assert.Equal(t, []int{7, 5}, b.Encode("cd"))
	assert.Equal(t, []int{6, 5}, b.Encode("ab"))
}

func TestLoad_FromArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	artifact := `{
		"vocab_size": 6,
		"special_tokens": ["<pad>", "<unk>", "<bos>", "<eos>"],
		"merges": [["h", "i"], ["hi", "</w>"]],
		"vocab": {"<pad>": 0, "<unk>": 1, "<bos>": 2, "<eos>": 3, "hi</w>": 4, "h": 5}
	}`
	require.NoError(t, os.WriteFile(path, []byte(artifact), 0o644))

	b, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 3, b.EOS())
	assert.Equal(t, 6, b.VocabSize())
	assert.Equal(t, []int{4}, b.Encode("hi"))
	assert.Equal(t, "hi", b.Decode([]int{4}))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	assert.True(t, os.IsNotExist(lerr.Cause))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.ErrorAs(t, err, &lerr)
}

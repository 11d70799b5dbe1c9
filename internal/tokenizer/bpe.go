// Package tokenizer loads a trained byte-pair-encoding vocabulary and applies
// it. Training the merges is done elsewhere; this package only encodes and
// decodes with an existing artifact.
package tokenizer

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

const endOfWord = "</w>"

// Well-known special tokens.
const (
	PadToken = "<pad>"
	UnkToken = "<unk>"
	BosToken = "<bos>"
	EosToken = "<eos>"
)

// artifact is the on-disk tokenizer format.
type artifact struct {
	VocabSize     int            `json:"vocab_size"`
	SpecialTokens []string       `json:"special_tokens"`
	Merges        [][2]string    `json:"merges"`
	Vocab         map[string]int `json:"vocab"`
}

// BPE is an immutable byte-pair encoder. Safe for concurrent use.
type BPE struct {
	vocab   map[string]int
	inverse map[int]string
	special map[string]bool
	ranks   map[[2]string]int
	unk     int
	eos     int
}

// Load reads a tokenizer artifact from path.
func Load(path string) (*BPE, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	bpe, err := New(a.Vocab, a.Merges, a.SpecialTokens)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	return bpe, nil
}

// New builds an encoder from an explicit vocabulary and ordered merge list.
// The vocabulary must contain the end-of-sequence token.
func New(vocab map[string]int, merges [][2]string, specials []string) (*BPE, error) {
	if len(vocab) == 0 {
		return nil, ErrEmptyVocab
	}
	eos, ok := vocab[EosToken]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSpecial, EosToken)
	}
	unk, ok := vocab[UnkToken]
	if !ok {
		unk = -1
	}

	b := &BPE{
		vocab:   make(map[string]int, len(vocab)),
		inverse: make(map[int]string, len(vocab)),
		special: make(map[string]bool, len(specials)),
		ranks:   make(map[[2]string]int, len(merges)),
		unk:     unk,
		eos:     eos,
	}
	for tok, id := range vocab {
		if prev, dup := b.inverse[id]; dup {
			return nil, fmt.Errorf("%w: %q and %q share id %d", ErrDuplicateID, prev, tok, id)
		}
		b.vocab[tok] = id
		b.inverse[id] = tok
	}
	for _, s := range specials {
		b.special[s] = true
	}
	for i, m := range merges {
		if _, seen := b.ranks[m]; !seen {
			b.ranks[m] = i
		}
	}
	return b, nil
}

// Encode lowercases and whitespace-splits text, applies the merges to every
// word and maps the resulting symbols to ids. Symbols absent from the
// vocabulary map to <unk> when present, and are dropped otherwise.
func (b *BPE) Encode(text string) []int {
	words := strings.Fields(strings.ToLower(text))
	ids := make([]int, 0, len(words)*2)
	for _, w := range words {
		for _, sym := range b.applyMerges(w) {
			if id, ok := b.vocab[sym]; ok {
				ids = append(ids, id)
			} else if b.unk >= 0 {
				ids = append(ids, b.unk)
			}
		}
	}
	return ids
}

// Decode maps ids back to text, skipping special tokens and unknown ids.
func (b *BPE) Decode(ids []int) string {
	var sb strings.Builder
	for _, id := range ids {
		tok, ok := b.inverse[id]
		if !ok || b.special[tok] {
			continue
		}
		sb.WriteString(tok)
	}
	return strings.TrimSpace(strings.ReplaceAll(sb.String(), endOfWord, " "))
}

// DecodeToken renders a single id the way it would appear inside a longer
// decoded string, keeping the trailing space of a word boundary.
func (b *BPE) DecodeToken(id int) string {
	tok, ok := b.inverse[id]
	if !ok || b.special[tok] {
		return ""
	}
	return strings.ReplaceAll(tok, endOfWord, " ")
}

// EOS returns the end-of-sequence id.
func (b *BPE) EOS() int { return b.eos }

// VocabSize returns the number of entries in the vocabulary.
func (b *BPE) VocabSize() int { return len(b.vocab) }

// applyMerges splits word into characters plus the end-of-word marker and
// repeatedly merges the adjacent pair with the lowest merge rank.
func (b *BPE) applyMerges(word string) []string {
	syms := make([]string, 0, len(word)+1)
	for _, r := range word {
		syms = append(syms, string(r))
	}
	syms = append(syms, endOfWord)

	for len(syms) > 1 {
		best, bestRank := -1, math.MaxInt
		for i := 0; i < len(syms)-1; i++ {
			if r, ok := b.ranks[[2]string{syms[i], syms[i+1]}]; ok && r < bestRank {
				best, bestRank = i, r
			}
		}
		if best < 0 {
			break
		}
		merged := syms[best] + syms[best+1]
		syms = append(syms[:best+1], syms[best+2:]...)
		syms[best] = merged
	}
	return syms
}

package mocks

import "strings"

// MockTokenizer is a whitespace word tokenizer over a fixed word list.
// Id 0 is <eos> and id 1 is <unk>; words follow from id 2.
type MockTokenizer struct {
	words []string
	ids   map[string]int
}

const (
	MockEOS = 0
	MockUnk = 1
)

// NewMockTokenizer builds a tokenizer whose vocabulary is <eos>, <unk> and
// words in order.
func NewMockTokenizer(words ...string) *MockTokenizer {
	t := &MockTokenizer{
		words: append([]string{"<eos>", "<unk>"}, words...),
		ids:   map[string]int{},
	}
	for i, w := range t.words {
		t.ids[w] = i
	}
	return t
}

func (t *MockTokenizer) Encode(text string) []int {
	fields := strings.Fields(strings.ToLower(text))
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		if id, ok := t.ids[f]; ok {
			ids = append(ids, id)
		} else {
			ids = append(ids, MockUnk)
		}
	}
	return ids
}

func (t *MockTokenizer) Decode(ids []int) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id <= MockUnk || id >= len(t.words) {
			continue
		}
		out = append(out, t.words[id])
	}
	return strings.Join(out, " ")
}

func (t *MockTokenizer) DecodeToken(id int) string {
	if id <= MockUnk || id >= len(t.words) {
		return ""
	}
	return t.words[id] + " "
}

func (t *MockTokenizer) EOS() int { return MockEOS }

// VocabSize returns the number of ids, including the special ones.
func (t *MockTokenizer) VocabSize() int { return len(t.words) }

package ecosystem

import (
	"encoding/json"
	"sort"

	"gorm.io/datatypes"
)

// WordSet is an unordered set of folded words.
type WordSet map[string]struct{}

func NewWordSet(words ...string) WordSet {
	out := make(WordSet, len(words))
	for _, w := range words {
		if w != "" {
			out[w] = struct{}{}
		}
	}
	return out
}

func (s WordSet) Add(w string) {
	if w != "" {
		s[w] = struct{}{}
	}
}

func (s WordSet) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

func (s WordSet) Len() int { return len(s) }

// Sorted returns the members in lexical order.
func (s WordSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Union returns a new set holding the members of every input.
func Union(sets ...WordSet) WordSet {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make(WordSet, n)
	for _, s := range sets {
		for w := range s {
			out[w] = struct{}{}
		}
	}
	return out
}

// EncodeWords stores a set as a sorted JSON array so equal sets produce
// equal column values.
func EncodeWords(s WordSet) datatypes.JSON {
	b, _ := json.Marshal(s.Sorted())
	return datatypes.JSON(b)
}

func DecodeWords(raw datatypes.JSON) (WordSet, error) {
	if len(raw) == 0 {
		return WordSet{}, nil
	}
	var words []string
	if err := json.Unmarshal(raw, &words); err != nil {
		return nil, err
	}
	return NewWordSet(words...), nil
}

// EncodeRelevance stores word relevance scores. encoding/json sorts map keys.
func EncodeRelevance(m map[string]float64) datatypes.JSON {
	if m == nil {
		m = map[string]float64{}
	}
	b, _ := json.Marshal(m)
	return datatypes.JSON(b)
}

func DecodeRelevance(raw datatypes.JSON) (map[string]float64, error) {
	out := map[string]float64{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

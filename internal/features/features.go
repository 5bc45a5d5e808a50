package features

import (
	"iter"
)

// Canonical feature names. The order is fixed and shared with weights.
const (
	StemWordCount       = "stem_word_count"
	OptionWordCount     = "option_word_count"
	InnovationWordCount = "innovation_word_count"
	DomainWordCount     = "domain_word_count"
	BadWordCount        = "bad_word_count"
	CommonWordCount     = "common_word_count"
)

// Keys lists every feature in canonical order.
var Keys = []string{
	StemWordCount,
	OptionWordCount,
	InnovationWordCount,
	DomainWordCount,
	BadWordCount,
	CommonWordCount,
}

// IsKey reports whether name is a canonical feature.
func IsKey(name string) bool {
	for _, k := range Keys {
		if k == name {
			return true
		}
	}
	return false
}

// WordSet is any membership test over folded words.
type WordSet interface {
	Contains(word string) bool
}

type emptySet struct{}

func (emptySet) Contains(string) bool { return false }

// Empty is a WordSet with no members.
var Empty WordSet = emptySet{}

// Vocabulary carries the book-scoped word sets used for one response.
type Vocabulary struct {
	Stem       WordSet
	Option     WordSet
	Innovation WordSet
	Domain     WordSet
}

// Lexicons are the book-independent word lists.
type Lexicons struct {
	Bad    WordSet
	Common WordSet
}

type Vector struct {
	StemWordCount       int `json:"stem_word_count"`
	OptionWordCount     int `json:"option_word_count"`
	InnovationWordCount int `json:"innovation_word_count"`
	DomainWordCount     int `json:"domain_word_count"`
	BadWordCount        int `json:"bad_word_count"`
	CommonWordCount     int `json:"common_word_count"`
}

// Get returns the value of a named feature.
func (v Vector) Get(key string) (int, bool) {
	switch key {
	case StemWordCount:
		return v.StemWordCount, true
	case OptionWordCount:
		return v.OptionWordCount, true
	case InnovationWordCount:
		return v.InnovationWordCount, true
	case DomainWordCount:
		return v.DomainWordCount, true
	case BadWordCount:
		return v.BadWordCount, true
	case CommonWordCount:
		return v.CommonWordCount, true
	}
	return 0, false
}

func (v Vector) Map() map[string]int {
	out := make(map[string]int, len(Keys))
	for _, k := range Keys {
		out[k], _ = v.Get(k)
	}
	return out
}

// Extract counts tokens against each vocabulary. Membership is not exclusive:
// a token found in several sets increments each of their counts. Repeated
// tokens count once per occurrence.
func Extract(tokens iter.Seq[string], vocab Vocabulary, lex Lexicons) Vector {
	stem := orEmpty(vocab.Stem)
	option := orEmpty(vocab.Option)
	innovation := orEmpty(vocab.Innovation)
	domain := orEmpty(vocab.Domain)
	bad := orEmpty(lex.Bad)
	common := orEmpty(lex.Common)

	var v Vector
	for tok := range tokens {
		if stem.Contains(tok) {
			v.StemWordCount++
		}
		if option.Contains(tok) {
			v.OptionWordCount++
		}
		if innovation.Contains(tok) {
			v.InnovationWordCount++
		}
		if domain.Contains(tok) {
			v.DomainWordCount++
		}
		if bad.Contains(tok) {
			v.BadWordCount++
		}
		if common.Contains(tok) {
			v.CommonWordCount++
		}
	}
	return v
}

// ExtractSlice is Extract over an already materialized token list.
func ExtractSlice(tokens []string, vocab Vocabulary, lex Lexicons) Vector {
	return Extract(func(yield func(string) bool) {
		for _, t := range tokens {
			if !yield(t) {
				return
			}
		}
	}, vocab, lex)
}

func orEmpty(s WordSet) WordSet {
	if s == nil {
		return Empty
	}
	return s
}

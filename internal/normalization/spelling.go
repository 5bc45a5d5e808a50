package normalization

import (
	"unicode/utf8"
)

// SpellChecker maps a token to its corrected form. Implementations must be
// deterministic and free of side effects.
type SpellChecker interface {
	Correct(token string) string
}

// FrequencySource reports how often a word occurs in a reference corpus.
// Zero means unknown.
type FrequencySource interface {
	Frequency(word string) int
}

// NoopSpellChecker returns every token unchanged.
type NoopSpellChecker struct{}

func (NoopSpellChecker) Correct(token string) string { return token }

const (
	maxCorrectableLen = 24
	alphabet          = "abcdefghijklmnopqrstuvwxyz"
)

// LexiconSpellChecker corrects tokens at edit distance one from a known word.
// Among candidates the most frequent wins, ties break lexically.
type LexiconSpellChecker struct {
	words FrequencySource
}

func NewLexiconSpellChecker(words FrequencySource) *LexiconSpellChecker {
	return &LexiconSpellChecker{words: words}
}

func (c *LexiconSpellChecker) Correct(token string) string {
	if c == nil || c.words == nil || token == "" {
		return token
	}
	if len(token) > maxCorrectableLen || !isASCIIWord(token) {
		return token
	}
	if c.words.Frequency(token) > 0 {
		return token
	}
	best, bestFreq := token, 0
	for _, cand := range edits1(token) {
		f := c.words.Frequency(cand)
		if f == 0 {
			continue
		}
		if f > bestFreq || (f == bestFreq && cand < best) {
			best, bestFreq = cand, f
		}
	}
	return best
}

func isASCIIWord(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if (b < 'a' || b > 'z') && b != '\'' {
			return false
		}
	}
	return true
}

// edits1 lists deletions, transpositions, replacements and insertions.
func edits1(word string) []string {
	n := len(word)
	out := make([]string, 0, 54*n+25)
	for i := 0; i <= n; i++ {
		left, right := word[:i], word[i:]
		if len(right) > 0 {
			out = append(out, left+right[1:])
		}
		if len(right) > 1 {
			out = append(out, left+string(right[1])+string(right[0])+right[2:])
		}
		for j := 0; j < len(alphabet); j++ {
			ch := string(alphabet[j])
			if len(right) > 0 {
				out = append(out, left+ch+right[1:])
			}
			out = append(out, left+ch+right)
		}
	}
	return out
}

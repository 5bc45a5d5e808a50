package normalization

import (
	"iter"
)

// Vocabulary is the combined domain and common word set of a book.
type Vocabulary interface {
	Contains(word string) bool
}

// Normalizer turns raw response text into scoring tokens. It holds only
// read-only collaborators and is safe for concurrent use.
type Normalizer struct {
	stopwords StopwordSet
	speller   SpellChecker
}

// NewNormalizer wires the stopword list and spell checker. Nil arguments fall
// back to the embedded stopwords and a no-op checker.
func NewNormalizer(stop StopwordSet, speller SpellChecker) *Normalizer {
	if stop == nil {
		stop = DefaultStopwords()
	}
	if speller == nil {
		speller = NoopSpellChecker{}
	}
	return &Normalizer{stopwords: stop, speller: speller}
}

// Result is a fully materialized normalization.
type Result struct {
	Tokens      []string
	Corrections int
}

// Normalize returns a lazy token sequence. Each iteration re-runs the
// pipeline from text, so the sequence can be ranged over repeatedly.
func (n *Normalizer) Normalize(text string, opts Options, vocab Vocabulary) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, tok := range n.run(text, opts, vocab, nil) {
			if !yield(tok) {
				return
			}
		}
	}
}

// NormalizeDetailed runs the pipeline eagerly and counts spelling changes.
func (n *Normalizer) NormalizeDetailed(text string, opts Options, vocab Vocabulary) Result {
	var corrections int
	tokens := n.run(text, opts, vocab, &corrections)
	return Result{Tokens: tokens, Corrections: corrections}
}

func (n *Normalizer) run(text string, opts Options, vocab Vocabulary, corrections *int) []string {
	tokens := Tokenize(text)
	next := make([]string, len(tokens))
	for i := 0; i+1 < len(tokens); i++ {
		next[i] = tokens[i+1]
	}

	if opts.RemoveStopwords {
		kept, keptNext := tokens[:0], next[:0]
		for i, t := range tokens {
			if !n.stopwords.Contains(t) {
				kept = append(kept, t)
				keptNext = append(keptNext, next[i])
			}
		}
		tokens, next = kept, keptNext
	}

	if opts.TagNumeric != Off {
		tagged := make([]string, len(tokens))
		for i, t := range tokens {
			if shouldTagNumeric(t, next[i], opts.TagNumeric, vocab) {
				tagged[i] = NumericToken
			} else {
				tagged[i] = t
			}
		}
		tokens = tagged
	}

	if opts.SpellingCorrection != Off {
		for i, t := range tokens {
			if !shouldCorrect(t, opts.SpellingCorrection, vocab) {
				continue
			}
			fixed := n.speller.Correct(t)
			if fixed != t {
				tokens[i] = fixed
				if corrections != nil {
					*corrections++
				}
			}
		}
	}

	if opts.RemoveNonwords {
		kept := tokens[:0]
		for _, t := range tokens {
			if hasAlnum(t) {
				kept = append(kept, t)
			}
		}
		tokens = kept
	}
	return tokens
}

func shouldCorrect(tok string, mode Mode, vocab Vocabulary) bool {
	if tok == NumericToken || !IsAlphabetic(tok) {
		return false
	}
	switch mode {
	case On:
		return true
	case Auto:
		return vocab == nil || !vocab.Contains(tok)
	default:
		return false
	}
}

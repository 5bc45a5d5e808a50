package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold applies compatibility normalization and Unicode case folding.
// A Caser is stateful, so one is built per call.
func Fold(text string) string {
	text = norm.NFKC.String(text)
	text = strings.NewReplacer("’", "'", "‘", "'").Replace(text)
	return cases.Fold().String(text)
}

// Tokenize splits folded text into word, number and symbol tokens.
//
// Word tokens keep apostrophes between letters ("don't"). Number tokens keep
// '.', ',' and '/' between digits and a trailing '%'. Any other run of
// non-space punctuation becomes its own symbol token ("???", ":)").
func Tokenize(text string) []string {
	runes := []rune(Fold(text))
	var out []string
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			end := scanWord(runes, i)
			out = append(out, string(runes[i:end]))
			i = end
		default:
			end := i + 1
			for end < len(runes) && !unicode.IsSpace(runes[end]) && !isWordRune(runes[end]) {
				end++
			}
			if sym := strings.TrimSpace(string(runes[i:end])); sym != "" {
				out = append(out, sym)
			}
			i = end
		}
	}
	return out
}

func scanWord(runes []rune, start int) int {
	end := start
	for end < len(runes) {
		r := runes[end]
		if isWordRune(r) {
			end++
			continue
		}
		if end+1 < len(runes) && end > start {
			prev, next := runes[end-1], runes[end+1]
			switch {
			case r == '\'' && unicode.IsLetter(prev) && unicode.IsLetter(next):
				end++
				continue
			case (r == '.' || r == ',' || r == '/') && unicode.IsDigit(prev) && unicode.IsDigit(next):
				end++
				continue
			}
		}
		if r == '%' && end > start && unicode.IsDigit(runes[end-1]) {
			end++
		}
		break
	}
	return end
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// IsNumeric reports whether tok is a numeric literal such as 42, 3.14,
// 1,000, 1/2 or 50%.
func IsNumeric(tok string) bool {
	tok = strings.TrimSuffix(tok, "%")
	if tok == "" {
		return false
	}
	prevDigit := false
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			prevDigit = true
		case r == '.' || r == ',' || r == '/':
			if !prevDigit {
				return false
			}
			prevDigit = false
		default:
			return false
		}
	}
	return prevDigit
}

// IsAlphabetic reports whether tok consists of letters, optionally joined by
// apostrophes.
func IsAlphabetic(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) && r != '\'' && !unicode.Is(unicode.Mn, r) {
			return false
		}
	}
	return true
}

func hasAlnum(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

package vocabulary

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/response-validator/internal/normalization"
)

//go:embed data/common.txt
var commonText string

//go:embed data/bad.txt
var badText string

// Lexicon is an immutable word frequency table.
type Lexicon struct {
	freq  map[string]int
	total int
}

func NewLexicon(freq map[string]int) *Lexicon {
	l := &Lexicon{freq: make(map[string]int, len(freq))}
	for w, n := range freq {
		if w == "" || n <= 0 {
			continue
		}
		l.freq[w] = n
		l.total += n
	}
	return l
}

// LoadLexicon reads either a word list ("word" or "word<space>count" per
// line) or free prose. Lines holding one word with an optional count are
// taken as list entries; anything else is tokenized and counted.
func LoadLexicon(r io.Reader) (*Lexicon, error) {
	freq := map[string]int{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
				if w := normalization.Fold(fields[0]); normalization.IsAlphabetic(w) {
					freq[w] += n
					continue
				}
			}
		}
		for _, tok := range normalization.Tokenize(line) {
			if normalization.IsAlphabetic(tok) {
				freq[tok]++
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return NewLexicon(freq), nil
}

func LoadLexiconFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon %s: %w", path, err)
	}
	defer f.Close()
	return LoadLexicon(f)
}

// DefaultCommon is the embedded list of frequent English words.
func DefaultCommon() *Lexicon { return mustLoad(commonText) }

// DefaultBad is the embedded list of garbage markers and mild profanity.
func DefaultBad() *Lexicon { return mustLoad(badText) }

func mustLoad(text string) *Lexicon {
	l, err := LoadLexicon(strings.NewReader(text))
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Lexicon) Contains(word string) bool {
	if l == nil {
		return false
	}
	_, ok := l.freq[word]
	return ok
}

// Frequency returns the count for word, zero when absent.
func (l *Lexicon) Frequency(word string) int {
	if l == nil {
		return 0
	}
	return l.freq[word]
}

func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.freq)
}

// Words returns all entries in lexical order.
func (l *Lexicon) Words() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.freq))
	for w := range l.freq {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

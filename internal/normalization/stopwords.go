package normalization

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

//go:embed stopwords.txt
var defaultStopwordsText string

// StopwordSet answers membership for function words removed before scoring.
type StopwordSet interface {
	Contains(word string) bool
}

// WordList is a plain set of folded words.
type WordList map[string]struct{}

func (w WordList) Contains(word string) bool {
	_, ok := w[word]
	return ok
}

func (w WordList) Len() int { return len(w) }

// LoadStopwords reads one word per line. Blank lines and '#' comments are
// skipped.
func LoadStopwords(r io.Reader) (WordList, error) {
	out := WordList{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out[Fold(line)] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stopwords: %w", err)
	}
	return out, nil
}

// LoadStopwordsFile reads a stopword list from disk.
func LoadStopwordsFile(path string) (WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stopwords %s: %w", path, err)
	}
	defer f.Close()
	return LoadStopwords(f)
}

var (
	defaultStopwordsOnce sync.Once
	defaultStopwords     WordList
)

// DefaultStopwords returns the embedded English list. The returned set is
// shared and must not be modified.
func DefaultStopwords() WordList {
	defaultStopwordsOnce.Do(func() {
		list, err := LoadStopwords(strings.NewReader(defaultStopwordsText))
		if err != nil {
			panic(err)
		}
		defaultStopwords = list
	})
	return defaultStopwords
}

package normalization

import (
	"reflect"
	"slices"
	"strings"
	"testing"
)

type wordSet map[string]bool

func (w wordSet) Contains(s string) bool { return w[s] }

type mapSpeller map[string]string

func (m mapSpeller) Correct(s string) string {
	if v, ok := m[s]; ok {
		return v
	}
	return s
}

type freqs map[string]int

func (f freqs) Frequency(s string) int { return f[s] }

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Don't panic!! It's 3.5 kg, 50% ok :)", []string{"don't", "panic", "!!", "it's", "3.5", "kg", ",", "50%", "ok", ":)"}},
		{"  ", nil},
		{"ＦＵＬＬ width", []string{"full", "width"}},
		{"well-known 1,000 people", []string{"well", "-", "known", "1,000", "people"}},
		{"STRASSE ok", []string{"strasse", "ok"}},
		{"???", []string{"???"}},
	}
	for _, tc := range cases {
		got := Tokenize(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Tokenize(%q): expected %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	for _, tok := range []string{"42", "3.14", "1,000", "1/2", "50%"} {
		if !IsNumeric(tok) {
			t.Fatalf("expected %q numeric", tok)
		}
	}
	for _, tok := range []string{"", "%", "3.", ".5", "abc", "4th", "1..2"} {
		if IsNumeric(tok) {
			t.Fatalf("expected %q not numeric", tok)
		}
	}
}

func TestNormalize_DefaultPipeline(t *testing.T) {
	n := NewNormalizer(nil, NoopSpellChecker{})
	got := slices.Collect(n.Normalize("The cell has 3 nuclei ?!", DefaultOptions(), wordSet{"cell": true}))
	want := []string{"cell", NumericToken, "nuclei"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestNormalize_KeepsStopwordsAndSymbolsWhenDisabled(t *testing.T) {
	n := NewNormalizer(nil, nil)
	opts := Options{RemoveStopwords: false, TagNumeric: Off, SpellingCorrection: Off, RemoveNonwords: false}
	got := slices.Collect(n.Normalize("The 3 cells !", opts, nil))
	want := []string{"the", "3", "cells", "!"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestNormalize_TagNumericModes(t *testing.T) {
	n := NewNormalizer(WordList{}, nil)
	base := Options{RemoveNonwords: true}

	base.TagNumeric = On
	if got := slices.Collect(n.Normalize("12 kg", base, nil)); !reflect.DeepEqual(got, []string{NumericToken, "kg"}) {
		t.Fatalf("on: got %q", got)
	}
	base.TagNumeric = Auto
	if got := slices.Collect(n.Normalize("12 kg and 7", base, nil)); !reflect.DeepEqual(got, []string{"12", "kg", "and", NumericToken}) {
		t.Fatalf("auto: got %q", got)
	}
	if got := slices.Collect(n.Normalize("1984", base, wordSet{"1984": true})); !reflect.DeepEqual(got, []string{"1984"}) {
		t.Fatalf("auto vocab: got %q", got)
	}
	base.TagNumeric = Off
	if got := slices.Collect(n.Normalize("12", base, nil)); !reflect.DeepEqual(got, []string{"12"}) {
		t.Fatalf("off: got %q", got)
	}
}

func TestNormalize_AutoNumericSeesUnitsDroppedAsStopwords(t *testing.T) {
	n := NewNormalizer(nil, nil)
	opts := DefaultOptions()
	opts.TagNumeric = Auto
	if !n.stopwords.Contains("in") || !IsUnit("in") {
		t.Fatalf("expected \"in\" to be both a stopword and a unit")
	}
	cases := []struct {
		text string
		want []string
	}{
		{"5 in", []string{"5"}},
		{"grew 3 m taller", []string{"grew", "3", "taller"}},
		{"5 dogs", []string{NumericToken, "dogs"}},
	}
	for _, tc := range cases {
		if got := n.NormalizeDetailed(tc.text, opts, nil).Tokens; !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%q: expected %q got %q", tc.text, tc.want, got)
		}
	}
}

func TestNormalize_SpellingModes(t *testing.T) {
	speller := mapSpeller{"osmosis": "osmotic", "celll": "cell"}
	n := NewNormalizer(WordList{}, speller)
	vocab := wordSet{"osmosis": true}
	opts := Options{SpellingCorrection: Auto}

	res := n.NormalizeDetailed("osmosis celll", opts, vocab)
	if !reflect.DeepEqual(res.Tokens, []string{"osmosis", "cell"}) || res.Corrections != 1 {
		t.Fatalf("auto: got %+v", res)
	}
	opts.SpellingCorrection = On
	res = n.NormalizeDetailed("osmosis celll", opts, vocab)
	if !reflect.DeepEqual(res.Tokens, []string{"osmotic", "cell"}) || res.Corrections != 2 {
		t.Fatalf("on: got %+v", res)
	}
	opts.SpellingCorrection = Off
	res = n.NormalizeDetailed("osmosis celll", opts, vocab)
	if res.Corrections != 0 || res.Tokens[1] != "celll" {
		t.Fatalf("off: got %+v", res)
	}
}

func TestNormalize_PlaceholderNeverCorrected(t *testing.T) {
	n := NewNormalizer(WordList{}, mapSpeller{NumericToken: "broken"})
	opts := Options{TagNumeric: On, SpellingCorrection: On}
	if got := slices.Collect(n.Normalize("5", opts, nil)); !reflect.DeepEqual(got, []string{NumericToken}) {
		t.Fatalf("got %q", got)
	}
}

func TestNormalize_Restartable(t *testing.T) {
	n := NewNormalizer(nil, nil)
	seq := n.Normalize("Photosynthesis makes sugar from light", DefaultOptions(), nil)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) == 0 || !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical runs, got %q and %q", first, second)
	}
	var firstOnly []string
	for tok := range seq {
		firstOnly = append(firstOnly, tok)
		break
	}
	if len(firstOnly) != 1 || firstOnly[0] != first[0] {
		t.Fatalf("early stop yielded %q", firstOnly)
	}
}

func TestLexiconSpellChecker(t *testing.T) {
	c := NewLexiconSpellChecker(freqs{"cell": 10, "cells": 3, "sell": 10, "the": 100})
	cases := map[string]string{
		"cel":   "cell",
		"cells": "cells",
		"teh":   "the",
		"zzzzz": "zzzzz",
		"éclat": "éclat",
		"cels":  "cell",
	}
	for in, want := range cases {
		if got := c.Correct(in); got != want {
			t.Fatalf("Correct(%q): expected %q got %q", in, want, got)
		}
	}
	// "xell" is one edit from both cell and sell with equal frequency.
	if got := c.Correct("xell"); got != "cell" {
		t.Fatalf("expected lexical tie-break to cell, got %q", got)
	}
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(map[string]string{"tag_numeric": "false", "spelling_correction": "TRUE", "remove_stopwords": "0"})
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if opts.TagNumeric != Off || opts.SpellingCorrection != On || opts.RemoveStopwords || !opts.RemoveNonwords {
		t.Fatalf("unexpected options %+v", opts)
	}
	if _, err := ParseOptions(map[string]string{"remove_nonwords": "auto"}); err == nil || !strings.Contains(err.Error(), "remove_nonwords") {
		t.Fatalf("expected remove_nonwords error, got %v", err)
	}
}

func TestDefaultStopwords(t *testing.T) {
	sw := DefaultStopwords()
	for _, w := range []string{"the", "and", "don't", "ourselves"} {
		if !sw.Contains(w) {
			t.Fatalf("expected stopword %q", w)
		}
	}
	if sw.Contains("cell") {
		t.Fatalf("cell should not be a stopword")
	}
}

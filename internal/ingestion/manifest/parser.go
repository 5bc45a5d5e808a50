package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/normalization"
	"github.com/yungbote/response-validator/internal/platform/apperr"
)

// DefaultInnovationMarkers are used when a manifest names none.
var DefaultInnovationMarkers = []string{"term", "key-term"}

const maxManifestBytes = 64 << 20

// Lexicon is the common-word list excluded from domain vocabularies.
type Lexicon interface {
	Contains(word string) bool
}

// Result is one parsed manifest.
type Result struct {
	Title  string
	Books  []*ecosystem.Book
	Tables ecosystem.Tables
}

// Parser turns manifests into vocabulary tables. It holds read-only word
// lists and can be shared between goroutines.
type Parser struct {
	stopwords normalization.StopwordSet
	common    Lexicon
}

func NewParser(stopwords normalization.StopwordSet, common Lexicon) *Parser {
	if stopwords == nil {
		stopwords = normalization.DefaultStopwords()
	}
	return &Parser{stopwords: stopwords, common: common}
}

func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxManifestBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeManifestParse, "manifest.ParseReader", err)
	}
	if len(data) > maxManifestBytes {
		return nil, parseErr("manifest.ParseReader", "", 0, "manifest exceeds %d bytes", maxManifestBytes)
	}
	return p.ParseBytes(data)
}

// ParseFile reads name relative to dir. Names that escape dir are rejected.
func (p *Parser) ParseFile(dir, name string) (*Result, error) {
	const op = "manifest.ParseFile"
	clean := filepath.Clean(strings.TrimSpace(name))
	if name == "" || !filepath.IsLocal(clean) {
		return nil, apperr.Newf(apperr.CodeInvalidArgument, op, "manifest name %q must be relative to the manifest directory", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, clean))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Newf(apperr.CodeNotFound, op, "manifest %q not found", name)
		}
		return nil, apperr.Wrap(apperr.CodeInternal, op, err)
	}
	return p.ParseBytes(data)
}

func (p *Parser) ParseBytes(data []byte) (*Result, error) {
	const op = "manifest.ParseBytes"
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, parseErr(op, "", 0, "manifest is empty")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, parseErr(op, "", 0, "invalid yaml: %v", err)
	}
	return p.build(m)
}

func (p *Parser) build(m Manifest) (*Result, error) {
	const op = "manifest.Parse"
	if len(m.Books) == 0 {
		return nil, parseErr(op, "books", 0, "manifest has no books")
	}
	markers := markerSet(m.InnovationMarkers)
	res := &Result{Title: strings.TrimSpace(m.Title)}
	seen := map[string]struct{}{}

	for bi, bn := range m.Books {
		bpath := fmt.Sprintf("books[%d]", bi)
		if strings.TrimSpace(bn.UUID) == "" {
			return nil, parseErr(op, bpath+".uuid", bn.line, "book uuid is required")
		}
		if len(bn.Pages) == 0 {
			return nil, parseErr(op, bpath+".pages", bn.line, "book has no pages")
		}
		name := strings.TrimSpace(bn.Name)
		if name == "" {
			name = res.Title
		}
		book := ecosystem.NewBook(ecosystem.VUID(bn.UUID, bn.Version), name)
		if _, dup := seen[book.VUID]; dup {
			return nil, parseErr(op, bpath, bn.line, "book %s appears twice", book.VUID)
		}
		seen[book.VUID] = struct{}{}
		seenQuestions := map[string]struct{}{}

		for pi, pn := range bn.Pages {
			ppath := fmt.Sprintf("%s.pages[%d]", bpath, pi)
			if strings.TrimSpace(pn.UUID) == "" {
				return nil, parseErr(op, ppath+".uuid", pn.line, "page uuid is required")
			}
			text, err := extractProse(pn.Content, markers)
			if err != nil {
				return nil, parseErr(op, ppath+".content", pn.line, "unparsable markup: %v", err)
			}
			page := &ecosystem.Page{
				VUID:            ecosystem.VUID(pn.UUID, pn.Version),
				Position:        pi,
				Title:           strings.TrimSpace(pn.Title),
				InnovationWords: p.relevance(text.marked),
			}
			p.addDomainWords(book.DomainWords, page.Title)
			for _, chunk := range text.all {
				p.addDomainWords(book.DomainWords, chunk)
			}
			if err := book.AddPage(page); err != nil {
				return nil, parseErr(op, ppath, pn.line, "%v", err)
			}
			for ei, en := range pn.Exercises {
				epath := fmt.Sprintf("%s.exercises[%d]", ppath, ei)
				qs, err := p.exerciseQuestions(op, epath, book.VUID, page.VUID, en)
				if err != nil {
					return nil, err
				}
				for _, q := range qs {
					key := page.VUID + "\x00" + q.ExerciseUID + "\x00" + strconv.Itoa(q.Position)
					if _, dup := seenQuestions[key]; dup {
						return nil, parseErr(op, epath, en.line, "question %s appears twice on page %s", q.ExerciseUID, page.VUID)
					}
					seenQuestions[key] = struct{}{}
				}
				page.Questions = append(page.Questions, qs...)
			}
		}
		res.Books = append(res.Books, book)
	}
	res.Tables = ecosystem.Flatten(res.Books)
	return res, nil
}

func (p *Parser) exerciseQuestions(op, epath, bookVUID, pageVUID string, en ExerciseNode) ([]*ecosystem.Question, error) {
	id := strings.TrimSpace(en.ID)
	uid := strings.TrimSpace(en.UID)
	if id == "" && uid == "" {
		return nil, parseErr(op, epath+".id", en.line, "exercise id is required")
	}
	if len(en.Questions) == 0 {
		return nil, parseErr(op, epath+".questions", en.line, "exercise has no questions")
	}
	out := make([]*ecosystem.Question, 0, len(en.Questions))
	for qi, qn := range en.Questions {
		qpath := fmt.Sprintf("%s.questions[%d]", epath, qi)
		if strings.TrimSpace(qn.Stem) == "" && strings.TrimSpace(qn.Stimulus) == "" {
			return nil, parseErr(op, qpath+".stem", qn.line, "question has no stem")
		}
		out = append(out, p.question(questionUID(id, uid, qi), qi+1, bookVUID, pageVUID, qn.Stimulus, qn.Stem, qn.Answers))
	}
	return out, nil
}

// questionUID uses the explicit uid, otherwise "{id}@{n}" with a 1-based
// question index.
func questionUID(id, uid string, index int) string {
	if uid != "" {
		return uid
	}
	return id + "@" + strconv.Itoa(index+1)
}

func (p *Parser) question(uid string, position int, bookVUID, pageVUID, stimulus, stem string, answers []Answer) *ecosystem.Question {
	q := &ecosystem.Question{
		ExerciseUID: uid,
		Position:    position,
		BookVUID:    bookVUID,
		PageVUID:    pageVUID,
		StemWords:   ecosystem.WordSet{},
		OptionWords: ecosystem.WordSet{},
	}
	p.addQuestionWords(q.StemWords, plainText(stimulus))
	p.addQuestionWords(q.StemWords, plainText(stem))
	for _, a := range answers {
		p.addQuestionWords(q.OptionWords, plainText(a.Content))
	}
	return q
}

// ParseContent builds a single book from an explicit question list. Pages
// are created in first-reference order and the domain vocabulary is drawn
// from the question text.
func (p *Parser) ParseContent(bookVUID, name string, exercises []ContentExercise) (*Result, error) {
	const op = "manifest.ParseContent"
	bookVUID = strings.TrimSpace(bookVUID)
	if bookVUID == "" {
		return nil, parseErr(op, "book_id", 0, "book id is required")
	}
	if len(exercises) == 0 {
		return nil, parseErr(op, "question_list", 0, "question list is empty")
	}
	book := ecosystem.NewBook(bookVUID, strings.TrimSpace(name))
	counts := map[string]int{}
	seenQuestions := map[string]struct{}{}
	for i, ex := range exercises {
		path := fmt.Sprintf("question_list[%d]", i)
		pageVUID := strings.TrimSpace(ex.PageVUID)
		if pageVUID == "" && strings.TrimSpace(ex.PageUUID) != "" {
			pageVUID = ecosystem.VUID(ex.PageUUID, ex.PageVersion)
		}
		if pageVUID == "" {
			return nil, parseErr(op, path+".page_vuid", 0, "page is required")
		}
		if strings.TrimSpace(ex.ID) == "" && strings.TrimSpace(ex.UID) == "" {
			return nil, parseErr(op, path+".uid", 0, "exercise id is required")
		}
		if strings.TrimSpace(ex.Stem) == "" && strings.TrimSpace(ex.Stimulus) == "" {
			return nil, parseErr(op, path+".stem", 0, "question has no stem")
		}
		page, ok := book.Page(pageVUID)
		if !ok {
			page = &ecosystem.Page{VUID: pageVUID, Position: len(book.Pages), Title: strings.TrimSpace(ex.PageTitle), InnovationWords: map[string]float64{}}
			if err := book.AddPage(page); err != nil {
				return nil, parseErr(op, path+".page_vuid", 0, "%v", err)
			}
		}
		id := strings.TrimSpace(ex.ID)
		index := counts[pageVUID+"\x00"+id]
		counts[pageVUID+"\x00"+id]++
		q := p.question(questionUID(id, strings.TrimSpace(ex.UID), index), index+1, bookVUID, pageVUID, ex.Stimulus, ex.Stem, ex.Answers)
		key := pageVUID + "\x00" + q.ExerciseUID + "\x00" + strconv.Itoa(q.Position)
		if _, dup := seenQuestions[key]; dup {
			return nil, parseErr(op, path+".uid", 0, "question %s appears twice on page %s", q.ExerciseUID, pageVUID)
		}
		seenQuestions[key] = struct{}{}
		page.Questions = append(page.Questions, q)

		p.addDomainWords(book.DomainWords, plainText(ex.Stimulus))
		p.addDomainWords(book.DomainWords, plainText(ex.Stem))
		for _, a := range ex.Answers {
			p.addDomainWords(book.DomainWords, plainText(a.Content))
		}
	}
	books := []*ecosystem.Book{book}
	return &Result{Title: book.Name, Books: books, Tables: ecosystem.Flatten(books)}, nil
}

// contentWord is the filter for domain and innovation vocabularies.
func (p *Parser) contentWord(tok string) bool {
	if utf8.RuneCountInString(tok) < 2 || !normalization.IsAlphabetic(tok) {
		return false
	}
	if p.stopwords.Contains(tok) {
		return false
	}
	return p.common == nil || !p.common.Contains(tok)
}

func (p *Parser) addDomainWords(dst ecosystem.WordSet, text string) {
	for _, tok := range normalization.Tokenize(text) {
		if p.contentWord(tok) {
			dst.Add(tok)
		}
	}
}

func (p *Parser) addQuestionWords(dst ecosystem.WordSet, text string) {
	for _, tok := range normalization.Tokenize(text) {
		if normalization.IsAlphabetic(tok) && !p.stopwords.Contains(tok) {
			dst.Add(tok)
		}
	}
}

// relevance scores each marked word by its share of all marked words.
func (p *Parser) relevance(chunks []string) map[string]float64 {
	counts := map[string]int{}
	total := 0
	for _, chunk := range chunks {
		for _, tok := range normalization.Tokenize(chunk) {
			if p.contentWord(tok) {
				counts[tok]++
				total++
			}
		}
	}
	out := make(map[string]float64, len(counts))
	for w, n := range counts {
		out[w] = float64(n) / float64(total)
	}
	return out
}

func markerSet(markers []string) map[string]struct{} {
	if len(markers) == 0 {
		markers = DefaultInnovationMarkers
	}
	out := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			out[m] = struct{}{}
		}
	}
	return out
}

package ecosystem

import (
	"fmt"
	"sort"
	"strings"
)

// VUID composes a versioned identifier.
func VUID(uuid, version string) string {
	uuid = strings.TrimSpace(uuid)
	version = strings.TrimSpace(version)
	if version == "" {
		return uuid
	}
	return uuid + "@" + version
}

// CVUID is the legacy composite page id "{book}:{page}".
func CVUID(bookVUID, pageVUID string) string {
	return bookVUID + ":" + pageVUID
}

type Book struct {
	VUID        string
	Name        string
	Ordinal     int64
	Pages       []*Page
	DomainWords WordSet

	pageIndex map[string]*Page
}

func NewBook(vuid, name string) *Book {
	return &Book{VUID: vuid, Name: name, DomainWords: WordSet{}, pageIndex: map[string]*Page{}}
}

// AddPage appends p, rejecting a second page with the same vuid.
func (b *Book) AddPage(p *Page) error {
	if b.pageIndex == nil {
		b.pageIndex = map[string]*Page{}
	}
	if _, dup := b.pageIndex[p.VUID]; dup {
		return fmt.Errorf("duplicate page %s in book %s", p.VUID, b.VUID)
	}
	p.BookVUID = b.VUID
	b.pageIndex[p.VUID] = p
	b.Pages = append(b.Pages, p)
	return nil
}

// Page returns the page with the given vuid.
func (b *Book) Page(vuid string) (*Page, bool) {
	p, ok := b.pageIndex[vuid]
	return p, ok
}

// InnovationWords unions the innovation vocabularies of every page.
func (b *Book) InnovationWords() WordSet {
	out := WordSet{}
	for _, p := range b.Pages {
		for w := range p.InnovationWords {
			out[w] = struct{}{}
		}
	}
	return out
}

// QuestionCount counts questions across pages.
func (b *Book) QuestionCount() int {
	n := 0
	for _, p := range b.Pages {
		n += len(p.Questions)
	}
	return n
}

type Page struct {
	VUID            string
	BookVUID        string
	Position        int
	Title           string
	InnovationWords map[string]float64
	Questions       []*Question
}

func (p *Page) CVUID() string { return CVUID(p.BookVUID, p.VUID) }

// InnovationSet drops the relevance scores.
func (p *Page) InnovationSet() WordSet {
	out := make(WordSet, len(p.InnovationWords))
	for w := range p.InnovationWords {
		out[w] = struct{}{}
	}
	return out
}

type Question struct {
	ExerciseUID string
	Position    int
	BookVUID    string
	PageVUID    string
	StemWords   WordSet
	OptionWords WordSet
}

// Assemble rebuilds books from flattened rows. Books come back in
// ordinal order, pages in position order and questions in ordinal order.
func Assemble(t Tables) ([]*Book, error) {
	books := make(map[string]*Book, len(t.Books))
	order := make([]*Book, 0, len(t.Books))
	for _, r := range t.Books {
		if _, dup := books[r.VUID]; dup {
			return nil, fmt.Errorf("duplicate book %s", r.VUID)
		}
		b := NewBook(r.VUID, r.Name)
		b.Ordinal = r.Ordinal
		books[r.VUID] = b
		order = append(order, b)
	}
	for _, r := range t.Domain {
		b, ok := books[r.BookVUID]
		if !ok {
			return nil, fmt.Errorf("domain row for unknown book %s", r.BookVUID)
		}
		words, err := DecodeWords(r.Words)
		if err != nil {
			return nil, fmt.Errorf("decode domain words for %s: %w", r.BookVUID, err)
		}
		b.DomainWords = words
	}
	for _, r := range t.Innovation {
		b, ok := books[r.BookVUID]
		if !ok {
			return nil, fmt.Errorf("innovation row for unknown book %s", r.BookVUID)
		}
		words, err := DecodeRelevance(r.Words)
		if err != nil {
			return nil, fmt.Errorf("decode innovation words for %s: %w", r.PageVUID, err)
		}
		p := &Page{VUID: r.PageVUID, Position: r.Position, Title: r.Title, InnovationWords: words}
		if err := b.AddPage(p); err != nil {
			return nil, err
		}
	}
	type ordered struct {
		q   *Question
		ord int
	}
	perPage := map[*Page][]ordered{}
	for _, r := range t.Questions {
		b, ok := books[r.BookVUID]
		if !ok {
			return nil, fmt.Errorf("question row for unknown book %s", r.BookVUID)
		}
		p, ok := b.pageIndex[r.PageVUID]
		if !ok {
			return nil, fmt.Errorf("question %s references unknown page %s", r.ExerciseUID, r.PageVUID)
		}
		stem, err := DecodeWords(r.StemWords)
		if err != nil {
			return nil, fmt.Errorf("decode stem words for %s: %w", r.ExerciseUID, err)
		}
		opts, err := DecodeWords(r.OptionWords)
		if err != nil {
			return nil, fmt.Errorf("decode option words for %s: %w", r.ExerciseUID, err)
		}
		q := &Question{ExerciseUID: r.ExerciseUID, Position: r.Position, BookVUID: r.BookVUID, PageVUID: r.PageVUID, StemWords: stem, OptionWords: opts}
		perPage[p] = append(perPage[p], ordered{q: q, ord: r.Ordinal})
	}
	for p, qs := range perPage {
		sort.SliceStable(qs, func(i, j int) bool { return qs[i].ord < qs[j].ord })
		p.Questions = make([]*Question, len(qs))
		for i := range qs {
			p.Questions[i] = qs[i].q
		}
	}
	for _, b := range order {
		sort.SliceStable(b.Pages, func(i, j int) bool { return b.Pages[i].Position < b.Pages[j].Position })
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].Ordinal < order[j].Ordinal })
	return order, nil
}

// Flatten is the inverse of Assemble for a set of books.
func Flatten(books []*Book) Tables {
	var t Tables
	for _, b := range books {
		t.Books = append(t.Books, BookRow{VUID: b.VUID, Name: b.Name, PageCount: len(b.Pages), Ordinal: b.Ordinal})
		t.Domain = append(t.Domain, DomainRow{BookVUID: b.VUID, Words: EncodeWords(b.DomainWords)})
		ord := 0
		for _, p := range b.Pages {
			t.Innovation = append(t.Innovation, InnovationRow{
				BookVUID: b.VUID, PageVUID: p.VUID, CVUID: p.CVUID(),
				Position: p.Position, Title: p.Title, Words: EncodeRelevance(p.InnovationWords),
			})
			for _, q := range p.Questions {
				t.Questions = append(t.Questions, QuestionRow{
					BookVUID: b.VUID, PageVUID: p.VUID, ExerciseUID: q.ExerciseUID, Position: q.Position,
					Ordinal: ord, CVUID: p.CVUID(),
					StemWords: EncodeWords(q.StemWords), OptionWords: EncodeWords(q.OptionWords),
				})
				ord++
			}
		}
	}
	return t
}

package vocabulary

import (
	"sort"

	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/features"
	"github.com/yungbote/response-validator/internal/normalization"
	"github.com/yungbote/response-validator/internal/platform/apperr"
)

// Kind selects one of a book's vocabularies.
type Kind string

const (
	KindDomain     Kind = "domain"
	KindInnovation Kind = "innovation"
	KindQuestions  Kind = "questions"
)

func ParseKind(raw string) (Kind, bool) {
	switch Kind(normalization.ParseInputString(raw)) {
	case KindDomain:
		return KindDomain, true
	case KindInnovation:
		return KindInnovation, true
	case KindQuestions:
		return KindQuestions, true
	}
	return "", false
}

// Snapshot is an immutable view of every imported book. Readers keep using
// the snapshot they loaded even while a newer one is published.
type Snapshot struct {
	books       map[string]*ecosystem.Book
	order       []*ecosystem.Book
	byUID       map[string][]*ecosystem.Question
	common      *Lexicon
	bad         *Lexicon
	nextOrdinal int64
}

func newSnapshot(books []*ecosystem.Book, common, bad *Lexicon) *Snapshot {
	s := &Snapshot{
		books:  make(map[string]*ecosystem.Book, len(books)),
		order:  make([]*ecosystem.Book, 0, len(books)),
		byUID:  map[string][]*ecosystem.Question{},
		common: common,
		bad:    bad,
	}
	sorted := append([]*ecosystem.Book(nil), books...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })
	for _, b := range sorted {
		s.books[b.VUID] = b
		s.order = append(s.order, b)
		if b.Ordinal >= s.nextOrdinal {
			s.nextOrdinal = b.Ordinal + 1
		}
		for _, p := range b.Pages {
			for _, q := range p.Questions {
				s.byUID[q.ExerciseUID] = append(s.byUID[q.ExerciseUID], q)
			}
		}
	}
	return s
}

// Books returns books in import order.
func (s *Snapshot) Books() []*ecosystem.Book {
	return append([]*ecosystem.Book(nil), s.order...)
}

func (s *Snapshot) Book(vuid string) (*ecosystem.Book, bool) {
	b, ok := s.books[vuid]
	return b, ok
}

func (s *Snapshot) HasBook(vuid string) bool {
	_, ok := s.books[vuid]
	return ok
}

// Questions lists every question in book, page and question order.
func (s *Snapshot) Questions() []*ecosystem.Question {
	var out []*ecosystem.Question
	for _, b := range s.order {
		for _, p := range b.Pages {
			out = append(out, p.Questions...)
		}
	}
	return out
}

// QuestionsByUID returns every question carrying uid across all books.
func (s *Snapshot) QuestionsByUID(uid string) []*ecosystem.Question {
	return append([]*ecosystem.Question(nil), s.byUID[uid]...)
}

// FindQuestion resolves uid, preferring a match inside bookVUID when given.
func (s *Snapshot) FindQuestion(bookVUID, uid string) (*ecosystem.Question, bool) {
	if uid == "" {
		return nil, false
	}
	for _, q := range s.byUID[uid] {
		if bookVUID == "" || q.BookVUID == bookVUID {
			return q, true
		}
	}
	return nil, false
}

func (s *Snapshot) QuestionsByPage(bookVUID, pageVUID string) ([]*ecosystem.Question, error) {
	const op = "vocabulary.QuestionsByPage"
	b, ok := s.books[bookVUID]
	if !ok {
		return nil, apperr.New(apperr.CodeInvalidBook, op, "Invalid book vuid.", nil)
	}
	p, ok := b.Page(pageVUID)
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, op, "No such page in book", nil)
	}
	return append([]*ecosystem.Question(nil), p.Questions...), nil
}

// Vocabulary lists a book vocabulary in lexical order. pageVUID narrows the
// innovation and question vocabularies to one page; it is ignored for domain.
func (s *Snapshot) Vocabulary(bookVUID string, kind Kind, pageVUID string) ([]string, error) {
	const op = "vocabulary.Vocabulary"
	b, ok := s.books[bookVUID]
	if !ok {
		return nil, apperr.New(apperr.CodeInvalidBook, op, "Invalid book vuid.", nil)
	}
	pages := b.Pages
	if pageVUID != "" && kind != KindDomain {
		p, ok := b.Page(pageVUID)
		if !ok {
			return nil, apperr.New(apperr.CodeNotFound, op, "No such page in book", nil)
		}
		pages = []*ecosystem.Page{p}
	}
	switch kind {
	case KindDomain:
		return b.DomainWords.Sorted(), nil
	case KindInnovation:
		set := ecosystem.WordSet{}
		for _, p := range pages {
			for w := range p.InnovationWords {
				set.Add(w)
			}
		}
		return set.Sorted(), nil
	case KindQuestions:
		set := ecosystem.WordSet{}
		for _, p := range pages {
			for _, q := range p.Questions {
				set = ecosystem.Union(set, q.StemWords, q.OptionWords)
			}
		}
		return set.Sorted(), nil
	default:
		return nil, apperr.Newf(apperr.CodeInvalidArgument, op, "unknown vocabulary kind %q", kind)
	}
}

// BookVocabulary assembles the extractor inputs for one response. A question
// contributes its stem and option words and its page's innovation words;
// without one the innovation words of the whole book apply.
func (s *Snapshot) BookVocabulary(bookVUID string, q *ecosystem.Question) features.Vocabulary {
	b, ok := s.books[bookVUID]
	if !ok {
		return features.Vocabulary{}
	}
	v := features.Vocabulary{Domain: b.DomainWords}
	if q != nil && q.BookVUID == bookVUID {
		v.Stem = q.StemWords
		v.Option = q.OptionWords
		if p, ok := b.Page(q.PageVUID); ok {
			v.Innovation = p.InnovationSet()
		}
		return v
	}
	v.Innovation = b.InnovationWords()
	return v
}

// Lexicons returns the global bad and common word lists.
func (s *Snapshot) Lexicons() features.Lexicons {
	return features.Lexicons{Bad: s.bad, Common: s.common}
}

// NormalizerVocabulary is the combined domain and common vocabulary used by
// the auto normalization policies. An unknown or empty book yields the
// common lexicon alone.
func (s *Snapshot) NormalizerVocabulary(bookVUID string) normalization.Vocabulary {
	combined := combinedVocabulary{common: s.common}
	if b, ok := s.books[bookVUID]; ok {
		combined.domain = b.DomainWords
	}
	return combined
}

type combinedVocabulary struct {
	domain ecosystem.WordSet
	common *Lexicon
}

func (c combinedVocabulary) Contains(word string) bool {
	return c.domain.Contains(word) || c.common.Contains(word)
}

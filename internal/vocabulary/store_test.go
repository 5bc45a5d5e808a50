package vocabulary

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/platform/apperr"
)

type recordingPersister struct {
	saved []ecosystem.Tables
	fail  error
}

func (r *recordingPersister) SaveBooks(_ context.Context, t ecosystem.Tables) error {
	if r.fail != nil {
		return r.fail
	}
	r.saved = append(r.saved, t)
	return nil
}

func bookTables(vuid string, domain ...string) ecosystem.Tables {
	b := ecosystem.NewBook(vuid, "Book "+vuid)
	b.DomainWords = ecosystem.NewWordSet(domain...)
	page := &ecosystem.Page{VUID: "page@1", Title: "Intro", InnovationWords: map[string]float64{"mitosis": 1}}
	page.Questions = []*ecosystem.Question{{
		ExerciseUID: "1@1", Position: 1, BookVUID: vuid, PageVUID: "page@1",
		StemWords: ecosystem.NewWordSet("cell"), OptionWords: ecosystem.NewWordSet("nucleus", "wall"),
	}}
	_ = b.AddPage(page)
	return ecosystem.Flatten([]*ecosystem.Book{b})
}

func TestReplaceBooksScopesToImportedBooks(t *testing.T) {
	p := &recordingPersister{}
	s := NewStore(nil, p, DefaultCommon(), DefaultBad())
	ctx := context.Background()

	if _, err := s.ReplaceBooks(ctx, bookTables("a@1", "alpha")); err != nil {
		t.Fatalf("import a: %v", err)
	}
	if _, err := s.ReplaceBooks(ctx, bookTables("b@1", "beta")); err != nil {
		t.Fatalf("import b: %v", err)
	}
	before := s.Snapshot()
	bBefore, _ := before.Book("b@1")

	snap, err := s.ReplaceBooks(ctx, bookTables("a@1", "gamma", "delta"))
	if err != nil {
		t.Fatalf("reimport a: %v", err)
	}
	got, _ := snap.Vocabulary("a@1", KindDomain, "")
	if !reflect.DeepEqual(got, []string{"delta", "gamma"}) {
		t.Fatalf("expected a replaced, got %v", got)
	}
	bAfter, _ := snap.Book("b@1")
	if bAfter != bBefore {
		t.Fatalf("book b should be carried over untouched")
	}
	books := snap.Books()
	if len(books) != 2 || books[0].VUID != "a@1" || books[1].VUID != "b@1" {
		t.Fatalf("import order not preserved: %v", books)
	}
	if old, _ := before.Vocabulary("a@1", KindDomain, ""); !reflect.DeepEqual(old, []string{"alpha"}) {
		t.Fatalf("earlier snapshot must not change, got %v", old)
	}
	if len(p.saved) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(p.saved))
	}
}

func TestReplaceBooksIsIdempotent(t *testing.T) {
	s := NewStore(nil, nil, DefaultCommon(), DefaultBad())
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := s.ReplaceBooks(ctx, bookTables("a@1", "alpha", "beta")); err != nil {
			t.Fatalf("import %d: %v", i, err)
		}
	}
	snap := s.Snapshot()
	if len(snap.Books()) != 1 || len(snap.Questions()) != 1 || len(snap.QuestionsByUID("1@1")) != 1 {
		t.Fatalf("re-import duplicated rows")
	}
}

func TestReplaceBooksPersistenceFailureKeepsSnapshot(t *testing.T) {
	p := &recordingPersister{}
	s := NewStore(nil, p, DefaultCommon(), DefaultBad())
	ctx := context.Background()
	if _, err := s.ReplaceBooks(ctx, bookTables("a@1", "alpha")); err != nil {
		t.Fatalf("import: %v", err)
	}
	before := s.Snapshot()

	p.fail = errors.New("disk full")
	_, err := s.ReplaceBooks(ctx, bookTables("a@1", "omega"))
	if !apperr.IsCode(err, apperr.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if s.Snapshot() != before {
		t.Fatalf("snapshot must be unchanged after a failed write")
	}
}

func TestSnapshotLookups(t *testing.T) {
	s := NewStore(nil, nil, DefaultCommon(), DefaultBad())
	snap, err := s.ReplaceBooks(context.Background(), bookTables("a@1", "alpha"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := snap.Vocabulary("zzz", KindDomain, ""); !apperr.IsCode(err, apperr.CodeInvalidBook) {
		t.Fatalf("expected invalid book, got %v", err)
	}
	if _, err := snap.QuestionsByPage("a@1", "nope"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	qs, err := snap.Vocabulary("a@1", KindQuestions, "page@1")
	if err != nil || !reflect.DeepEqual(qs, []string{"cell", "nucleus", "wall"}) {
		t.Fatalf("question vocabulary: %v %v", qs, err)
	}

	q, ok := snap.FindQuestion("", "1@1")
	if !ok {
		t.Fatalf("expected question 1@1")
	}
	v := snap.BookVocabulary("a@1", q)
	if !v.Stem.Contains("cell") || !v.Option.Contains("wall") || !v.Innovation.Contains("mitosis") || !v.Domain.Contains("alpha") {
		t.Fatalf("unexpected book vocabulary %+v", v)
	}
	v = snap.BookVocabulary("a@1", nil)
	if v.Stem != nil || !v.Innovation.Contains("mitosis") {
		t.Fatalf("book-wide vocabulary should use all innovation words")
	}

	vocab := snap.NormalizerVocabulary("a@1")
	if !vocab.Contains("alpha") || !vocab.Contains("the") || vocab.Contains("qwzx") {
		t.Fatalf("combined vocabulary mismatch")
	}
}

func TestLoadLexicon(t *testing.T) {
	lex, err := LoadLexicon(strings.NewReader("# comment\ncell 40\nThe cell divides. The CELL grows!\n"))
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	if lex.Frequency("cell") != 42 || lex.Frequency("the") != 2 || lex.Contains("!") {
		t.Fatalf("unexpected frequencies: cell=%d the=%d", lex.Frequency("cell"), lex.Frequency("the"))
	}
	if !DefaultBad().Contains("idk") || !DefaultCommon().Contains("water") {
		t.Fatalf("embedded lexicons missing entries")
	}
}

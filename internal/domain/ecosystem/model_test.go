package ecosystem

import (
	"testing"
)

func sampleBook() *Book {
	b := NewBook("b1@1", "Biology")
	b.DomainWords = NewWordSet("cell", "osmosis")
	p1 := &Page{VUID: "p1@2", Position: 0, Title: "Cells", InnovationWords: map[string]float64{"membrane": 0.5, "organelle": 0.5}}
	p1.Questions = []*Question{
		{ExerciseUID: "10@1", Position: 1, BookVUID: "b1@1", PageVUID: "p1@2", StemWords: NewWordSet("cell"), OptionWords: NewWordSet("wall", "nucleus")},
		{ExerciseUID: "10@2", Position: 2, BookVUID: "b1@1", PageVUID: "p1@2", StemWords: NewWordSet("membrane"), OptionWords: WordSet{}},
	}
	p2 := &Page{VUID: "p2@1", Position: 1, Title: "Transport", InnovationWords: map[string]float64{}}
	_ = b.AddPage(p1)
	_ = b.AddPage(p2)
	return b
}

func TestAssembleRestoresFlattenedBooks(t *testing.T) {
	tables := Flatten([]*Book{sampleBook()})
	if len(tables.Innovation) != 2 || len(tables.Questions) != 2 {
		t.Fatalf("expected 2 pages and 2 questions, got %d/%d", len(tables.Innovation), len(tables.Questions))
	}
	if tables.Innovation[0].CVUID != "b1@1:p1@2" {
		t.Fatalf("unexpected cvuid %q", tables.Innovation[0].CVUID)
	}
	// Reverse row order; Assemble must restore positions.
	tables.Innovation[0], tables.Innovation[1] = tables.Innovation[1], tables.Innovation[0]
	tables.Questions[0], tables.Questions[1] = tables.Questions[1], tables.Questions[0]

	books, err := Assemble(tables)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}
	b := books[0]
	if b.Pages[0].VUID != "p1@2" || b.Pages[1].VUID != "p2@1" {
		t.Fatalf("pages out of order: %s, %s", b.Pages[0].VUID, b.Pages[1].VUID)
	}
	p, ok := b.Page("p1@2")
	if !ok || len(p.Questions) != 2 || p.Questions[0].ExerciseUID != "10@1" {
		t.Fatalf("questions not restored: %+v", p)
	}
	if !p.Questions[0].OptionWords.Contains("nucleus") || p.InnovationWords["membrane"] != 0.5 {
		t.Fatalf("word sets not restored")
	}
	if !b.DomainWords.Contains("osmosis") || b.InnovationWords().Len() != 2 || b.QuestionCount() != 2 {
		t.Fatalf("book vocabularies not restored")
	}
}

func TestAssembleRejectsOrphans(t *testing.T) {
	tables := Flatten([]*Book{sampleBook()})
	tables.Questions[0].PageVUID = "missing@1"
	if _, err := Assemble(tables); err == nil {
		t.Fatalf("expected error for question on unknown page")
	}
	tables = Flatten([]*Book{sampleBook()})
	tables.Domain[0].BookVUID = "other@1"
	if _, err := Assemble(tables); err == nil {
		t.Fatalf("expected error for domain row on unknown book")
	}
}

func TestAddPageRejectsDuplicate(t *testing.T) {
	b := NewBook("b@1", "B")
	if err := b.AddPage(&Page{VUID: "p@1"}); err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	if err := b.AddPage(&Page{VUID: "p@1"}); err == nil {
		t.Fatalf("expected duplicate page error")
	}
}

func TestEncodeWordsIsOrderIndependent(t *testing.T) {
	a := EncodeWords(NewWordSet("b", "a", "c"))
	b := EncodeWords(NewWordSet("c", "b", "a"))
	if string(a) != string(b) || string(a) != `["a","b","c"]` {
		t.Fatalf("expected sorted encoding, got %s and %s", a, b)
	}
}

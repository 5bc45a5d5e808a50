package manifest

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/yungbote/response-validator/internal/normalization"
	"github.com/yungbote/response-validator/internal/platform/apperr"
)

func testParser() *Parser {
	common := normalization.WordList{"count": {}, "water": {}, "inside": {}}
	return NewParser(normalization.DefaultStopwords(), common)
}

func TestParseFile_Biology(t *testing.T) {
	res, err := testParser().ParseFile("testdata", "biology.yml")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(res.Books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(res.Books))
	}
	b := res.Books[0]
	if b.VUID != "185cbf87-c72e-48f5-b51e-f14f21b5eabd@4" || b.Name != "Biology Basics" {
		t.Fatalf("unexpected book %s %q", b.VUID, b.Name)
	}
	wantDomain := []string{"cell", "crosses", "cytoplasm", "every", "membranes", "organelle", "osmosis", "sits", "structure", "varies"}
	if got := b.DomainWords.Sorted(); !reflect.DeepEqual(got, wantDomain) {
		t.Fatalf("domain words: expected %v got %v", wantDomain, got)
	}

	if len(b.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(b.Pages))
	}
	p1 := b.Pages[0]
	if math.Abs(p1.InnovationWords["organelle"]-2.0/3.0) > 1e-9 || math.Abs(p1.InnovationWords["cytoplasm"]-1.0/3.0) > 1e-9 || len(p1.InnovationWords) != 2 {
		t.Fatalf("unexpected innovation words %v", p1.InnovationWords)
	}
	if len(b.Pages[1].InnovationWords) != 0 {
		t.Fatalf("page without markers should have no innovation words")
	}

	if len(p1.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(p1.Questions))
	}
	q1, q2 := p1.Questions[0], p1.Questions[1]
	if q1.ExerciseUID != "101@1" || q2.ExerciseUID != "101@2" || q2.Position != 2 {
		t.Fatalf("unexpected uids %s %s", q1.ExerciseUID, q2.ExerciseUID)
	}
	if got := q1.StemWords.Sorted(); !reflect.DeepEqual(got, []string{"found", "organelles"}) {
		t.Fatalf("q1 stem words %v", got)
	}
	if got := q1.OptionWords.Sorted(); !reflect.DeepEqual(got, []string{"cytoplasm", "membrane", "outside"}) {
		t.Fatalf("q1 option words %v", got)
	}
	if got := q2.StemWords.Sorted(); !reflect.DeepEqual(got, []string{"cell", "consider", "name", "one", "plant", "structure"}) {
		t.Fatalf("q2 stem words %v", got)
	}

	if len(res.Tables.Innovation) != 2 || len(res.Tables.Questions) != 2 || res.Tables.Innovation[0].CVUID != b.VUID+":"+p1.VUID {
		t.Fatalf("unexpected tables %+v", res.Tables)
	}
}

func TestParseFile_ReportsNodePath(t *testing.T) {
	_, err := testParser().ParseFile("testdata", "missing_exercise_id.yml")
	if !apperr.IsCode(err, apperr.CodeManifestParse) {
		t.Fatalf("expected manifest parse error, got %v", err)
	}
	pe, ok := AsParseError(err)
	if !ok {
		t.Fatalf("expected ParseError in chain")
	}
	if pe.Path != "books[0].pages[1].exercises[0].id" || pe.Line != 13 {
		t.Fatalf("unexpected location %s line %d", pe.Path, pe.Line)
	}
}

func TestParseFile_RejectsEscapingPaths(t *testing.T) {
	for _, name := range []string{"../go.mod", "/etc/passwd", ""} {
		if _, err := testParser().ParseFile("testdata", name); !apperr.IsCode(err, apperr.CodeInvalidArgument) {
			t.Fatalf("%q: expected invalid argument, got %v", name, err)
		}
	}
	if _, err := testParser().ParseFile("testdata", "nope.yml"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseBytes_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":        "   ",
		"not yaml":     "books: [",
		"no books":     "title: x\n",
		"no pages":     "books:\n  - uuid: b\n    pages: []\n",
		"no page uuid": "books:\n  - uuid: b\n    pages:\n      - title: t\n",
		"no stem":      "books:\n  - uuid: b\n    pages:\n      - uuid: p\n        exercises:\n          - id: \"1\"\n            questions:\n              - answers: [a]\n",
		"dup book":     "books:\n  - uuid: b\n    pages: [{uuid: p}]\n  - uuid: b\n    pages: [{uuid: p}]\n",
		"bad answer":   "books:\n  - uuid: b\n    pages:\n      - uuid: p\n        exercises:\n          - id: \"1\"\n            questions:\n              - stem: s\n                answers: [[a]]\n",
	}
	for name, doc := range cases {
		if _, err := testParser().ParseBytes([]byte(doc)); !apperr.IsCode(err, apperr.CodeManifestParse) {
			t.Fatalf("%s: expected manifest parse error, got %v", name, err)
		}
	}
}

func TestParseBytes_ExplicitUIDAndMultipleBooks(t *testing.T) {
	doc := `
books:
  - uuid: a
    version: "1"
    pages:
      - uuid: p
        content: "<p>alpha</p>"
        exercises:
          - id: "9"
            uid: "9@7"
            questions:
              - stem: "gamma?"
  - uuid: b
    version: "2"
    pages:
      - uuid: q
        content: "<p>beta</p>"
`
	res, err := testParser().ParseReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if got := res.Tables.BookVUIDs(); !reflect.DeepEqual(got, []string{"a@1", "b@2"}) {
		t.Fatalf("unexpected books %v", got)
	}
	if res.Tables.Questions[0].ExerciseUID != "9@7" {
		t.Fatalf("explicit uid not kept: %s", res.Tables.Questions[0].ExerciseUID)
	}
}

func TestParseContent(t *testing.T) {
	exercises := []ContentExercise{
		{ID: "5", PageUUID: "pg", PageVersion: "3", Stem: "What drives osmosis?", Answers: []Answer{{Content: "Concentration gradients"}}},
		{ID: "5", PageVUID: "pg@3", Stem: "Define diffusion."},
		{UID: "77@1", PageVUID: "other@1", Stimulus: "<b>Mitosis</b> stages", Stem: "List them."},
	}
	res, err := testParser().ParseContent("book@1", "Bio", exercises)
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}
	b := res.Books[0]
	if len(b.Pages) != 2 || b.Pages[0].VUID != "pg@3" || b.Pages[1].VUID != "other@1" {
		t.Fatalf("unexpected pages %+v", b.Pages)
	}
	uids := []string{b.Pages[0].Questions[0].ExerciseUID, b.Pages[0].Questions[1].ExerciseUID, b.Pages[1].Questions[0].ExerciseUID}
	if !reflect.DeepEqual(uids, []string{"5@1", "5@2", "77@1"}) {
		t.Fatalf("unexpected uids %v", uids)
	}
	for _, w := range []string{"osmosis", "gradients", "diffusion", "mitosis"} {
		if !b.DomainWords.Contains(w) {
			t.Fatalf("expected domain word %q in %v", w, b.DomainWords.Sorted())
		}
	}
	if !b.Pages[1].Questions[0].StemWords.Contains("mitosis") {
		t.Fatalf("markup should be stripped from stimulus")
	}

	if _, err := testParser().ParseContent("book@1", "Bio", []ContentExercise{{ID: "1", Stem: "x"}}); !apperr.IsCode(err, apperr.CodeManifestParse) {
		t.Fatalf("expected parse error for missing page, got %v", err)
	}
	if _, err := testParser().ParseContent("", "Bio", exercises); !apperr.IsCode(err, apperr.CodeManifestParse) {
		t.Fatalf("expected parse error for missing book, got %v", err)
	}
}

func TestParseContent_RejectsDuplicateQuestionKey(t *testing.T) {
	exercises := []ContentExercise{
		{ID: "a", UID: "9@1", PageVUID: "p@1", Stem: "First stem."},
		{ID: "b", UID: "9@1", PageVUID: "p@1", Stem: "Second stem."},
	}
	_, err := testParser().ParseContent("bk@1", "Bio", exercises)
	if !apperr.IsCode(err, apperr.CodeManifestParse) {
		t.Fatalf("expected manifest parse error, got %v", err)
	}
	pe, ok := AsParseError(err)
	if !ok || pe.Path != "question_list[1].uid" {
		t.Fatalf("unexpected parse error %+v", pe)
	}

	// The same uid on another page is a distinct question.
	exercises[1].PageVUID = "q@1"
	res, err := testParser().ParseContent("bk@1", "Bio", exercises)
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}
	if res.Books[0].QuestionCount() != 2 {
		t.Fatalf("expected 2 questions, got %d", res.Books[0].QuestionCount())
	}
}

func TestRelevanceSumsToOne(t *testing.T) {
	rel := testParser().relevance([]string{"mitosis meiosis", "mitosis"})
	var sum float64
	for _, v := range rel {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("relevance should sum to 1, got %v", sum)
	}
}

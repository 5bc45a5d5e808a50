package manifest_test

import (
	"testing"

	"github.com/yungbote/response-validator/internal/ingestion/manifest"
	"github.com/yungbote/response-validator/internal/ingestion/manifest/manifesttest"
	"github.com/yungbote/response-validator/internal/normalization"
	"github.com/yungbote/response-validator/internal/vocabulary"
)

func TestSociologyFixtureSizes(t *testing.T) {
	p := manifest.NewParser(normalization.DefaultStopwords(), vocabulary.DefaultCommon())
	res, err := p.ParseBytes(manifesttest.Sociology())
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(res.Books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(res.Books))
	}
	b := res.Books[0]
	if b.VUID != manifesttest.SociologyBookVUID || b.Name != manifesttest.SociologyBookName {
		t.Fatalf("unexpected book %s %q", b.VUID, b.Name)
	}
	if len(b.Pages) != manifesttest.PageCount {
		t.Fatalf("expected %d pages, got %d", manifesttest.PageCount, len(b.Pages))
	}
	if b.DomainWords.Len() != manifesttest.DomainWordCount || !b.DomainWords.Contains("anecdote") {
		t.Fatalf("expected %d domain words, got %d", manifesttest.DomainWordCount, b.DomainWords.Len())
	}

	page, ok := b.Page(manifesttest.InnovationPageVUID)
	if !ok {
		t.Fatalf("innovation page missing")
	}
	if len(page.InnovationWords) != manifesttest.InnovationWordCount || page.InnovationWords["relevance"] == 0 {
		t.Fatalf("expected %d innovation words, got %d", manifesttest.InnovationWordCount, len(page.InnovationWords))
	}

	withQuestions := 0
	for _, p := range b.Pages {
		if len(p.Questions) > 0 {
			withQuestions++
		}
	}
	if withQuestions != manifesttest.PagesWithQuestions {
		t.Fatalf("expected %d pages with questions, got %d", manifesttest.PagesWithQuestions, withQuestions)
	}

	qpage, _ := b.Page(manifesttest.QuestionPageVUID)
	if qpage == nil || len(qpage.Questions) != manifesttest.QuestionPageCount {
		t.Fatalf("expected %d questions on the question page", manifesttest.QuestionPageCount)
	}
	var probe bool
	for _, q := range qpage.Questions {
		if q.ExerciseUID != manifesttest.ProbeExerciseUID {
			continue
		}
		probe = true
		if q.StemWords.Len() != manifesttest.ProbeStemWordCount || !q.StemWords.Contains("sociological") {
			t.Fatalf("probe stem words %v", q.StemWords.Sorted())
		}
		if q.OptionWords.Len() != manifesttest.ProbeOptionWordCount || !q.OptionWords.Contains("extroverts") {
			t.Fatalf("probe option words %v", q.OptionWords.Sorted())
		}
	}
	if !probe {
		t.Fatalf("probe question %s missing", manifesttest.ProbeExerciseUID)
	}
}

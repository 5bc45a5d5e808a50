// Package manifesttest builds manifests for tests.
package manifesttest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/response-validator/internal/ingestion/manifest"
)

const (
	SociologyBookUUID    = "02040312-72c8-441e-a685-20e9333f3e1d"
	SociologyBookVersion = "10.1"
	SociologyBookVUID    = SociologyBookUUID + "@" + SociologyBookVersion
	SociologyBookName    = "Introduction to Sociology 2e"

	InnovationPageVUID = "325e4afd-80b6-44dd-87b6-35aff4f40eac@6"
	QuestionPageVUID   = "08e4a1f1-738c-4296-b07d-e13fa2973681@3"
	ProbeExerciseUID   = "6012@2"

	DomainWordCount      = 7592
	PageCount            = 96
	InnovationWordCount  = 199
	PagesWithQuestions   = 82
	QuestionPageCount    = 20
	ProbeStemWordCount   = 6
	ProbeOptionWordCount = 30
)

// Word returns a synthetic vocabulary word that is neither a stopword nor a
// common English word.
func Word(prefix string, i int) string {
	var b strings.Builder
	b.WriteString(prefix)
	for k := 0; k < 3; k++ {
		b.WriteByte(byte('a' + i%26))
		i /= 26
	}
	return b.String()
}

// Sociology returns a manifest with the sizes of the sociology reference
// book: 96 pages, 7592 domain words, 199 innovation words on one page,
// 82 pages with questions and a probe question with 6 stem and 30 option
// words.
func Sociology() []byte {
	domain := []string{"anecdote", "relevance"}
	for i := 0; len(domain) < DomainWordCount; i++ {
		domain = append(domain, Word("vx", i))
	}

	pages := make([]manifest.PageNode, PageCount)
	perPage := (len(domain) + PageCount - 1) / PageCount
	for i := range pages {
		lo := min(i*perPage, len(domain))
		hi := min(lo+perPage, len(domain))
		uuid := fmt.Sprintf("00000000-0000-4000-8000-%012d", i)
		version := "1"
		if i == 0 {
			uuid, version = "325e4afd-80b6-44dd-87b6-35aff4f40eac", "6"
		}
		if i == 1 {
			uuid, version = "08e4a1f1-738c-4296-b07d-e13fa2973681", "3"
		}
		content := "<p>" + strings.Join(domain[lo:hi], " ") + ".</p>"
		if i == 0 {
			innovation := append([]string{"relevance"}, domain[2:InnovationWordCount+1]...)
			content += `<p>The <span data-type="term">` + strings.Join(innovation, `</span> and <span data-type="term">`) + "</span>.</p>"
		}
		pages[i] = manifest.PageNode{UUID: uuid, Version: version, Content: content}
	}

	// Page 1 carries 20 questions including the probe exercise.
	probeStem := []string{"sociological"}
	for i := 0; len(probeStem) < ProbeStemWordCount; i++ {
		probeStem = append(probeStem, Word("qs", i))
	}
	probeOptions := []string{"extroverts"}
	for i := 0; len(probeOptions) < ProbeOptionWordCount; i++ {
		probeOptions = append(probeOptions, Word("qo", i))
	}
	var answers []manifest.Answer
	for i := 0; i < len(probeOptions); i += 6 {
		answers = append(answers, manifest.Answer{Content: strings.Join(probeOptions[i:min(i+6, len(probeOptions))], " ")})
	}
	pages[1].Exercises = append(pages[1].Exercises, manifest.ExerciseNode{
		ID: "6012",
		Questions: []manifest.QuestionNode{
			{Stem: "What is a " + Word("qa", 0) + "?", Answers: []manifest.Answer{{Content: Word("qa", 1)}}},
			{Stem: "Which of the " + strings.Join(probeStem, " ") + "?", Answers: answers},
		},
	})
	for q := 2; q < QuestionPageCount; q++ {
		pages[1].Exercises = append(pages[1].Exercises, manifest.ExerciseNode{
			ID:        fmt.Sprintf("%d", 7000+q),
			Questions: []manifest.QuestionNode{{Stem: "Explain " + Word("qe", q) + ".", Answers: []manifest.Answer{{Content: Word("qr", q)}}}},
		})
	}
	// Pages 2..82 carry one question each.
	for i := 2; i < PagesWithQuestions+1; i++ {
		pages[i].Exercises = []manifest.ExerciseNode{{
			ID:        fmt.Sprintf("%d", 8000+i),
			Questions: []manifest.QuestionNode{{Stem: "Describe " + Word("qd", i) + ".", Answers: []manifest.Answer{{Content: Word("qr", i)}}}},
		}}
	}

	m := manifest.Manifest{
		Title: SociologyBookName,
		Books: []manifest.BookNode{{
			UUID:    SociologyBookUUID,
			Version: SociologyBookVersion,
			Name:    SociologyBookName,
			Pages:   pages,
		}},
	}
	out, err := yaml.Marshal(m)
	if err != nil {
		panic(err)
	}
	return out
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/http/response"
	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/services"
	"github.com/yungbote/response-validator/internal/vocabulary"
)

var vocabularyKinds = []string{
	string(vocabulary.KindDomain),
	string(vocabulary.KindInnovation),
	string(vocabulary.KindQuestions),
}

// DatasetHandler exposes read-only views of the imported books.
type DatasetHandler struct {
	eco *services.EcosystemService
	fw  *services.FeatureWeightService
}

func NewDatasetHandler(eco *services.EcosystemService, fw *services.FeatureWeightService) *DatasetHandler {
	return &DatasetHandler{eco: eco, fw: fw}
}

type bookView struct {
	Name             string   `json:"name"`
	VUID             string   `json:"vuid"`
	FeatureWeightsID string   `json:"feature_weights_id"`
	Vocabularies     []string `json:"vocabularies"`
	Pages            []string `json:"pages,omitempty"`
}

type pageView struct {
	VUID            string             `json:"page_vuid"`
	CVUID           string             `json:"cvuid"`
	BookVUID        string             `json:"book_vuid"`
	Position        int                `json:"position"`
	Title           string             `json:"title"`
	InnovationWords map[string]float64 `json:"innovation_words"`
	Questions       []string           `json:"questions"`
}

type questionView struct {
	ExerciseUID string   `json:"exercise_uid"`
	BookVUID    string   `json:"book_vuid"`
	PageVUID    string   `json:"page_vuid"`
	CVUID       string   `json:"cvuid"`
	StemWords   []string `json:"stem_words"`
	OptionWords []string `json:"option_words"`
}

type pageInnovation struct {
	PageVUID        string   `json:"page_vuid"`
	InnovationWords []string `json:"innovation_words"`
}

type pageQuestions struct {
	PageVUID  string         `json:"page_vuid"`
	Questions []questionView `json:"questions"`
}

func (h *DatasetHandler) bookView(b *ecosystem.Book, withPages bool) bookView {
	v := bookView{Name: b.Name, VUID: b.VUID, Vocabularies: vocabularyKinds}
	if h.fw != nil {
		v.FeatureWeightsID = h.fw.EffectiveBookDefault(b.VUID)
	}
	if withPages {
		v.Pages = make([]string, 0, len(b.Pages))
		for _, p := range b.Pages {
			v.Pages = append(v.Pages, p.VUID)
		}
	}
	return v
}

func newPageView(p *ecosystem.Page) pageView {
	v := pageView{
		VUID:            p.VUID,
		CVUID:           p.CVUID(),
		BookVUID:        p.BookVUID,
		Position:        p.Position,
		Title:           p.Title,
		InnovationWords: p.InnovationWords,
		Questions:       make([]string, 0, len(p.Questions)),
	}
	if v.InnovationWords == nil {
		v.InnovationWords = map[string]float64{}
	}
	for _, q := range p.Questions {
		v.Questions = append(v.Questions, q.ExerciseUID)
	}
	return v
}

func newQuestionViews(qs []*ecosystem.Question) []questionView {
	out := make([]questionView, 0, len(qs))
	for _, q := range qs {
		out = append(out, questionView{
			ExerciseUID: q.ExerciseUID,
			BookVUID:    q.BookVUID,
			PageVUID:    q.PageVUID,
			CVUID:       ecosystem.CVUID(q.BookVUID, q.PageVUID),
			StemWords:   q.StemWords.Sorted(),
			OptionWords: q.OptionWords.Sorted(),
		})
	}
	return out
}

func (h *DatasetHandler) book(c *gin.Context) (*vocabulary.Snapshot, *ecosystem.Book, bool) {
	snap := h.eco.Snapshot()
	vuid := c.Param("vuid")
	b, ok := snap.Book(vuid)
	if !ok {
		response.RespondAppError(c, apperr.Newf(apperr.CodeUnknownBook, "http.Datasets", "Unknown book vuid %s.", vuid))
		return nil, nil, false
	}
	return snap, b, true
}

func (h *DatasetHandler) kind(c *gin.Context) (vocabulary.Kind, bool) {
	k, ok := vocabulary.ParseKind(c.Param("kind"))
	if !ok {
		response.RespondAppError(c, apperr.Newf(apperr.CodeNotFound, "http.Datasets", "No such vocabulary %s.", c.Param("kind")))
	}
	return k, ok
}

// GET /datasets/books
func (h *DatasetHandler) ListBooks(c *gin.Context) {
	books := h.eco.Snapshot().Books()
	out := make([]bookView, 0, len(books))
	for _, b := range books {
		out = append(out, h.bookView(b, false))
	}
	response.RespondOK(c, out)
}

// GET /datasets/books/:vuid
func (h *DatasetHandler) GetBook(c *gin.Context) {
	_, b, ok := h.book(c)
	if !ok {
		return
	}
	response.RespondOK(c, h.bookView(b, true))
}

// GET /datasets/books/:vuid/pages
func (h *DatasetHandler) ListPages(c *gin.Context) {
	_, b, ok := h.book(c)
	if !ok {
		return
	}
	out := make([]pageView, 0, len(b.Pages))
	for _, p := range b.Pages {
		out = append(out, newPageView(p))
	}
	response.RespondOK(c, out)
}

// GET /datasets/books/:vuid/pages/:page
func (h *DatasetHandler) GetPage(c *gin.Context) {
	_, b, ok := h.book(c)
	if !ok {
		return
	}
	p, ok := b.Page(c.Param("page"))
	if !ok {
		response.RespondAppError(c, apperr.New(apperr.CodeNotFound, "http.GetPage", "No such page in book", nil))
		return
	}
	response.RespondOK(c, newPageView(p))
}

// GET /datasets/books/:vuid/vocabularies
func (h *DatasetHandler) ListVocabularies(c *gin.Context) {
	if _, _, ok := h.book(c); !ok {
		return
	}
	response.RespondOK(c, vocabularyKinds)
}

// GET /datasets/books/:vuid/vocabularies/:kind
func (h *DatasetHandler) GetVocabulary(c *gin.Context) {
	_, b, ok := h.book(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	switch kind {
	case vocabulary.KindDomain:
		response.RespondOK(c, b.DomainWords.Sorted())
	case vocabulary.KindInnovation:
		out := make([]pageInnovation, 0, len(b.Pages))
		for _, p := range b.Pages {
			out = append(out, pageInnovation{PageVUID: p.VUID, InnovationWords: p.InnovationSet().Sorted()})
		}
		response.RespondOK(c, out)
	case vocabulary.KindQuestions:
		out := []pageQuestions{}
		for _, p := range b.Pages {
			if len(p.Questions) == 0 {
				continue
			}
			out = append(out, pageQuestions{PageVUID: p.VUID, Questions: newQuestionViews(p.Questions)})
		}
		response.RespondOK(c, out)
	}
}

// GET /datasets/books/:vuid/vocabularies/:kind/:page
func (h *DatasetHandler) GetPageVocabulary(c *gin.Context) {
	snap, b, ok := h.book(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	if kind == vocabulary.KindQuestions {
		qs, err := snap.QuestionsByPage(b.VUID, c.Param("page"))
		if err != nil {
			response.RespondAppError(c, err)
			return
		}
		response.RespondOK(c, newQuestionViews(qs))
		return
	}
	words, err := snap.Vocabulary(b.VUID, kind, c.Param("page"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, words)
}

// GET /datasets/questions
func (h *DatasetHandler) ListQuestions(c *gin.Context) {
	response.RespondOK(c, newQuestionViews(h.eco.Snapshot().Questions()))
}

// GET /datasets/questions/:uid
func (h *DatasetHandler) GetQuestions(c *gin.Context) {
	response.RespondOK(c, newQuestionViews(h.eco.Snapshot().QuestionsByUID(c.Param("uid"))))
}

package services

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/ingestion/manifest"
	"github.com/yungbote/response-validator/internal/observability"
	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/platform/logger"
	"github.com/yungbote/response-validator/internal/vocabulary"
)

// Import sources, used for logs and metrics.
const (
	SourceManifest = "manifest"
	SourceFile     = "file"
	SourceContent  = "content"
)

type BookSummary struct {
	VUID            string `json:"vuid"`
	Name            string `json:"name"`
	Pages           int    `json:"pages"`
	DomainWords     int    `json:"domain_words"`
	InnovationWords int    `json:"innovation_words"`
	Questions       int    `json:"questions"`
}

type ImportSummary struct {
	Books []BookSummary `json:"books"`
}

type EcosystemDeps struct {
	Log         *logger.Logger
	Parser      *manifest.Parser
	Vocabulary  *vocabulary.Store
	Metrics     *observability.Metrics
	ManifestDir string
}

// EcosystemService imports course manifests into the vocabulary store.
// Every import replaces the imported books wholesale or not at all.
type EcosystemService struct {
	log         *logger.Logger
	parser      *manifest.Parser
	vocab       *vocabulary.Store
	metrics     *observability.Metrics
	manifestDir string
}

func NewEcosystemService(deps EcosystemDeps) *EcosystemService {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &EcosystemService{
		log:         log.With("service", "EcosystemService"),
		parser:      deps.Parser,
		vocab:       deps.Vocabulary,
		metrics:     deps.Metrics,
		manifestDir: deps.ManifestDir,
	}
}

func (s *EcosystemService) Snapshot() *vocabulary.Snapshot {
	return s.vocab.Snapshot()
}

func (s *EcosystemService) ImportManifest(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	return s.run(ctx, SourceManifest, func() (*manifest.Result, error) {
		return s.parser.ParseReader(r)
	})
}

func (s *EcosystemService) ImportBytes(ctx context.Context, data []byte) (*ImportSummary, error) {
	return s.run(ctx, SourceManifest, func() (*manifest.Result, error) {
		return s.parser.ParseBytes(data)
	})
}

// ImportFile reads name relative to the configured manifest directory.
func (s *EcosystemService) ImportFile(ctx context.Context, name string) (*ImportSummary, error) {
	return s.run(ctx, SourceFile, func() (*manifest.Result, error) {
		return s.parser.ParseFile(s.manifestDir, name)
	})
}

func (s *EcosystemService) ImportContent(ctx context.Context, bookVUID, name string, exercises []manifest.ContentExercise) (*ImportSummary, error) {
	return s.run(ctx, SourceContent, func() (*manifest.Result, error) {
		return s.parser.ParseContent(bookVUID, name, exercises)
	})
}

func (s *EcosystemService) run(ctx context.Context, source string, parse func() (*manifest.Result, error)) (*ImportSummary, error) {
	ctx, span := observability.Tracer().Start(ctx, "ecosystem.Import")
	defer span.End()
	span.SetAttributes(attribute.String("source", source))

	res, err := parse()
	if err == nil {
		_, err = s.vocab.ReplaceBooks(ctx, res.Tables)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.MessageOf(err))
		s.metrics.ObserveImport(source, string(apperr.CodeOf(err)), 0)
		s.log.Warn("Ecosystem import rejected", "source", source, "error", err)
		return nil, err
	}

	summary := summarize(res.Books)
	span.SetAttributes(attribute.Int("books", len(summary.Books)))
	s.metrics.ObserveImport(source, "success", len(summary.Books))
	RecordDatasetSizes(s.metrics, s.vocab.Snapshot())
	s.log.Info("Ecosystem imported", "source", source, "books", res.Tables.BookVUIDs())
	return summary, nil
}

func summarize(books []*ecosystem.Book) *ImportSummary {
	out := &ImportSummary{Books: make([]BookSummary, 0, len(books))}
	for _, b := range books {
		out.Books = append(out.Books, BookSummary{
			VUID:            b.VUID,
			Name:            b.Name,
			Pages:           len(b.Pages),
			DomainWords:     b.DomainWords.Len(),
			InnovationWords: b.InnovationWords().Len(),
			Questions:       b.QuestionCount(),
		})
	}
	return out
}

// RecordDatasetSizes refreshes the dataset gauges from snap.
func RecordDatasetSizes(m *observability.Metrics, snap *vocabulary.Snapshot) {
	if m == nil || snap == nil {
		return
	}
	books := snap.Books()
	words := map[string]int{
		string(vocabulary.KindDomain):     0,
		string(vocabulary.KindInnovation): 0,
		string(vocabulary.KindQuestions):  0,
	}
	for _, b := range books {
		words[string(vocabulary.KindDomain)] += b.DomainWords.Len()
		words[string(vocabulary.KindInnovation)] += b.InnovationWords().Len()
		words[string(vocabulary.KindQuestions)] += b.QuestionCount()
	}
	m.SetDatasetSizes(len(books), words)
}

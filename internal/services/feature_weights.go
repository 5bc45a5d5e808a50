package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/response-validator/internal/observability"
	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/platform/logger"
	"github.com/yungbote/response-validator/internal/weights"
)

// FeatureWeightService is the request-facing side of the weight registry.
type FeatureWeightService struct {
	log     *logger.Logger
	store   *weights.Store
	metrics *observability.Metrics
}

func NewFeatureWeightService(log *logger.Logger, store *weights.Store, metrics *observability.Metrics) *FeatureWeightService {
	if log == nil {
		log = logger.Nop()
	}
	return &FeatureWeightService{log: log.With("service", "FeatureWeightService"), store: store, metrics: metrics}
}

// Store decodes a JSON weight object and registers it.
func (s *FeatureWeightService) Store(ctx context.Context, raw []byte) (string, bool, error) {
	ctx, span := observability.Tracer().Start(ctx, "featureweights.Store")
	defer span.End()

	w, err := weights.DecodeWeights(raw)
	if err != nil {
		span.SetStatus(codes.Error, apperr.MessageOf(err))
		return "", false, err
	}
	id, created, err := s.store.StoreWeights(ctx, w)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.MessageOf(err))
		return "", false, err
	}
	span.SetAttributes(attribute.String("feature_weights_id", id), attribute.Bool("created", created))
	s.metrics.SetFeatureWeightSets(s.store.Len())
	return id, created, nil
}

func (s *FeatureWeightService) Get(id string) (weights.Weights, error) {
	return s.store.Get(id)
}

func (s *FeatureWeightService) List() []weights.SetRecord {
	return s.store.List()
}

// BookDefaults lists the per-book overrides sorted by book.
func (s *FeatureWeightService) BookDefaults() []weights.DefaultRecord {
	return s.store.BookDefaults()
}

func (s *FeatureWeightService) GlobalDefault() string {
	return s.store.GlobalDefault()
}

// EffectiveBookDefault is the set a book resolves to without an explicit
// override.
func (s *FeatureWeightService) EffectiveBookDefault(bookVUID string) string {
	if id := s.store.BookDefault(bookVUID); id != "" {
		return id
	}
	return s.store.GlobalDefault()
}

func (s *FeatureWeightService) SetGlobalDefault(ctx context.Context, id string) error {
	ctx, span := observability.Tracer().Start(ctx, "featureweights.SetGlobalDefault")
	defer span.End()
	if err := s.store.SetGlobalDefault(ctx, id); err != nil {
		span.SetStatus(codes.Error, apperr.MessageOf(err))
		return err
	}
	return nil
}

func (s *FeatureWeightService) SetBookDefault(ctx context.Context, bookVUID, id string) error {
	ctx, span := observability.Tracer().Start(ctx, "featureweights.SetBookDefault")
	defer span.End()
	span.SetAttributes(attribute.String("book_vuid", bookVUID))
	if err := s.store.SetBookDefault(ctx, bookVUID, id); err != nil {
		span.SetStatus(codes.Error, apperr.MessageOf(err))
		return err
	}
	return nil
}

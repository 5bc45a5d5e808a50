package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/response-validator/internal/classifier"
	"github.com/yungbote/response-validator/internal/features"
	"github.com/yungbote/response-validator/internal/normalization"
	"github.com/yungbote/response-validator/internal/observability"
	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/platform/logger"
	"github.com/yungbote/response-validator/internal/vocabulary"
	"github.com/yungbote/response-validator/internal/weights"
)

const defaultBatchConcurrency = 8

// ValidationRequest is one response to classify. BookVUID and UID are both
// optional context.
type ValidationRequest struct {
	Response         string                `json:"response"`
	UID              string                `json:"uid,omitempty"`
	BookVUID         string                `json:"book_vuid,omitempty"`
	Options          normalization.Options `json:"options"`
	FeatureWeightsID string                `json:"feature_weights_set_id,omitempty"`
}

// UnmarshalJSON starts from the default normalization options so a payload
// only names the toggles it changes.
func (r *ValidationRequest) UnmarshalJSON(b []byte) error {
	type plain ValidationRequest
	p := plain{Options: normalization.DefaultOptions()}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = ValidationRequest(p)
	return nil
}

type ValidationResult struct {
	IsValid                bool                  `json:"valid"`
	Score                  float64               `json:"score"`
	Features               features.Vector       `json:"features"`
	Response               string                `json:"response"`
	ProcessedResponse      string                `json:"processed_response"`
	NumSpellingCorrections int                   `json:"num_spelling_correction"`
	Options                normalization.Options `json:"options"`
	BookVUID               string                `json:"book_vuid"`
	FeatureWeightsID       string                `json:"feature_weights_set_id"`
	UID                    string                `json:"uid,omitempty"`
	UIDUsed                bool                  `json:"uid_used"`
	UIDFound               bool                  `json:"uid_found"`
	ComputationTime        time.Duration         `json:"-"`
	ComputationSeconds     float64               `json:"computation_time"`
}

// BatchItem pairs a batch entry with its outcome. Exactly one of Result and
// Err is set.
type BatchItem struct {
	Result *ValidationResult
	Err    error
}

type ValidatorDeps struct {
	Log              *logger.Logger
	Vocabulary       *vocabulary.Store
	Weights          *weights.Store
	Normalizer       *normalization.Normalizer
	Metrics          *observability.Metrics
	BatchConcurrency int
}

// Validator runs the normalize, extract and classify pipeline against the
// current vocabulary snapshot. It only reads shared state.
type Validator struct {
	log        *logger.Logger
	vocab      *vocabulary.Store
	weights    *weights.Store
	normalizer *normalization.Normalizer
	metrics    *observability.Metrics
	batchLimit int
}

func NewValidator(deps ValidatorDeps) *Validator {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = normalization.NewNormalizer(nil, nil)
	}
	limit := deps.BatchConcurrency
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}
	return &Validator{
		log:        log.With("service", "Validator"),
		vocab:      deps.Vocabulary,
		weights:    deps.Weights,
		normalizer: normalizer,
		metrics:    deps.Metrics,
		batchLimit: limit,
	}
}

func (v *Validator) Validate(ctx context.Context, req ValidationRequest) (*ValidationResult, error) {
	const op = "services.Validate"
	ctx, span := observability.Tracer().Start(ctx, "validator.Validate")
	defer span.End()

	res, err := v.validate(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.MessageOf(err))
		v.metrics.ObserveValidation(string(apperr.CodeOf(err)), 0)
		v.log.Debug("Validation rejected", "op", op, "book_vuid", req.BookVUID, "error", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("book_vuid", res.BookVUID),
		attribute.String("feature_weights_id", res.FeatureWeightsID),
		attribute.Bool("uid_used", res.UIDUsed),
		attribute.Bool("valid", res.IsValid),
	)
	outcome := "invalid"
	if res.IsValid {
		outcome = "valid"
	}
	v.metrics.ObserveValidation(outcome, res.ComputationTime)
	v.log.Debug("Validated response",
		"response", req.Response,
		"book_vuid", res.BookVUID,
		"score", res.Score,
		"valid", res.IsValid,
		"computation_time", res.ComputationTime,
	)
	return res, nil
}

func (v *Validator) validate(req ValidationRequest) (*ValidationResult, error) {
	const op = "services.Validate"
	snap := v.vocab.Snapshot()
	bookVUID := strings.TrimSpace(req.BookVUID)
	uid := strings.TrimSpace(req.UID)

	if bookVUID != "" && !snap.HasBook(bookVUID) {
		return nil, apperr.Newf(apperr.CodeUnknownBook, op, "Unknown book vuid %s.", bookVUID)
	}
	q, used := snap.FindQuestion(bookVUID, uid)
	found := used || (uid != "" && len(snap.QuestionsByUID(uid)) > 0)
	if bookVUID == "" && used {
		bookVUID = q.BookVUID
	}

	weightsID, w, err := v.weights.Resolve(strings.TrimSpace(req.FeatureWeightsID), bookVUID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	norm := v.normalizer.NormalizeDetailed(req.Response, req.Options, snap.NormalizerVocabulary(bookVUID))
	vec := features.ExtractSlice(norm.Tokens, snap.BookVocabulary(bookVUID, q), snap.Lexicons())
	decision := classifier.Classify(vec, w)
	elapsed := time.Since(start)

	return &ValidationResult{
		IsValid:                decision.IsValid,
		Score:                  decision.Score,
		Features:               vec,
		Response:               req.Response,
		ProcessedResponse:      strings.Join(norm.Tokens, " "),
		NumSpellingCorrections: norm.Corrections,
		Options:                req.Options,
		BookVUID:               bookVUID,
		FeatureWeightsID:       weightsID,
		UID:                    uid,
		UIDUsed:                used,
		UIDFound:               found,
		ComputationTime:        elapsed,
		ComputationSeconds:     elapsed.Seconds(),
	}, nil
}

// ValidateBatch validates every request concurrently and returns the
// outcomes in request order. A failing entry does not stop the others.
func (v *Validator) ValidateBatch(ctx context.Context, reqs []ValidationRequest) []BatchItem {
	ctx, span := observability.Tracer().Start(ctx, "validator.ValidateBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("batch_size", len(reqs)))

	out := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.batchLimit)
	for i := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i] = BatchItem{Err: err}
				return nil
			}
			res, err := v.Validate(gctx, reqs[i])
			out[i] = BatchItem{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

package aggregates

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/response-validator/internal/data/repos/dataset"
	"github.com/yungbote/response-validator/internal/data/repos/scoring"
	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/domain/featureweights"
	"github.com/yungbote/response-validator/internal/weights"
)

// DatasetAggregate is the write-through boundary for the vocabulary
// tables and the feature weight registry. Each call is one transaction.
type DatasetAggregate struct {
	deps    BaseDeps
	eco     dataset.EcosystemRepo
	weights scoring.FeatureWeightRepo
}

func NewDatasetAggregate(deps BaseDeps) *DatasetAggregate {
	deps = deps.withDefaults()
	return &DatasetAggregate{
		deps:    deps,
		eco:     dataset.NewEcosystemRepo(deps.DB, deps.Log),
		weights: scoring.NewFeatureWeightRepo(deps.DB, deps.Log),
	}
}

// SaveBooks replaces every row of the books named in t.
func (a *DatasetAggregate) SaveBooks(ctx context.Context, t ecosystem.Tables) error {
	return executeWrite(ctx, a.deps, "dataset.SaveBooks", func(tx *gorm.DB) error {
		return a.eco.ReplaceBooks(ctx, tx, t)
	})
}

// SaveRegistry applies one registry change. Sets whose content hash is
// already stored are skipped.
func (a *DatasetAggregate) SaveRegistry(ctx context.Context, c weights.Change) error {
	return executeWrite(ctx, a.deps, "dataset.SaveRegistry", func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, rec := range c.Sets {
			raw, err := json.Marshal(rec.Weights)
			if err != nil {
				return err
			}
			row := &featureweights.SetRow{
				ID:          rec.ID,
				ContentHash: rec.Hash,
				Weights:     datatypes.JSON(raw),
				CreatedAt:   now,
			}
			if err := a.weights.CreateSet(ctx, tx, row); err != nil {
				return err
			}
		}
		for _, d := range c.Defaults {
			row := &featureweights.DefaultRow{Scope: d.Scope, FeatureWeightsID: d.ID, UpdatedAt: now}
			if err := a.weights.UpsertDefault(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *DatasetAggregate) LoadTables(ctx context.Context) (ecosystem.Tables, error) {
	t, err := a.eco.LoadTables(ctx, nil)
	if err != nil {
		return ecosystem.Tables{}, MapError("dataset.LoadTables", err)
	}
	return t, nil
}

// LoadRegistry reads every stored set and default. Rows whose weights no
// longer decode are skipped with a warning.
func (a *DatasetAggregate) LoadRegistry(ctx context.Context) ([]weights.SetRecord, []weights.DefaultRecord, error) {
	const op = "dataset.LoadRegistry"
	setRows, err := a.weights.ListSets(ctx, nil)
	if err != nil {
		return nil, nil, MapError(op, err)
	}
	defaultRows, err := a.weights.ListDefaults(ctx, nil)
	if err != nil {
		return nil, nil, MapError(op, err)
	}
	sets := make([]weights.SetRecord, 0, len(setRows))
	for _, row := range setRows {
		w, err := weights.DecodeWeights(row.Weights)
		if err != nil {
			a.deps.Log.Warn("Skipping undecodable feature weight set", "feature_weights_id", row.ID, "error", err)
			continue
		}
		sets = append(sets, weights.SetRecord{ID: row.ID, Hash: row.ContentHash, Weights: w})
	}
	defaults := make([]weights.DefaultRecord, 0, len(defaultRows))
	for _, row := range defaultRows {
		defaults = append(defaults, weights.DefaultRecord{Scope: row.Scope, ID: row.FeatureWeightsID})
	}
	return sets, defaults, nil
}

package scoring

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/response-validator/internal/domain/featureweights"
	"github.com/yungbote/response-validator/internal/platform/logger"
)

type FeatureWeightRepo interface {
	ListSets(ctx context.Context, tx *gorm.DB) ([]*featureweights.SetRow, error)
	CreateSet(ctx context.Context, tx *gorm.DB, row *featureweights.SetRow) error
	ListDefaults(ctx context.Context, tx *gorm.DB) ([]*featureweights.DefaultRow, error)
	UpsertDefault(ctx context.Context, tx *gorm.DB, row *featureweights.DefaultRow) error
}

type featureWeightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeatureWeightRepo(db *gorm.DB, baseLog *logger.Logger) FeatureWeightRepo {
	return &featureWeightRepo{db: db, log: baseLog.With("repo", "FeatureWeightRepo")}
}

func (r *featureWeightRepo) ListSets(ctx context.Context, tx *gorm.DB) ([]*featureweights.SetRow, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*featureweights.SetRow
	if err := t.WithContext(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSet inserts row. A row with the same content hash already present
// is left as is.
func (r *featureWeightRepo) CreateSet(ctx context.Context, tx *gorm.DB, row *featureweights.SetRow) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *featureWeightRepo) ListDefaults(ctx context.Context, tx *gorm.DB) ([]*featureweights.DefaultRow, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*featureweights.DefaultRow
	if err := t.WithContext(ctx).Order("scope ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *featureWeightRepo) UpsertDefault(ctx context.Context, tx *gorm.DB, row *featureweights.DefaultRow) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}},
			DoUpdates: clause.AssignmentColumns([]string{"feature_weights_id", "updated_at"}),
		}).
		Create(row).Error
}

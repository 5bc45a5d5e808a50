package featureweights

import (
	"time"

	"gorm.io/datatypes"
)

// SetRow is one stored weight vector. ContentHash is the structural
// identity used for deduplication.
type SetRow struct {
	ID          string         `gorm:"column:id;primaryKey" json:"id"`
	ContentHash string         `gorm:"column:content_hash;not null;uniqueIndex" json:"content_hash"`
	Weights     datatypes.JSON `gorm:"column:weights;not null" json:"weights"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (SetRow) TableName() string { return "feature_weight_set" }

// DefaultRow points a scope at a set. Scope is "global" or a book vuid.
type DefaultRow struct {
	Scope            string    `gorm:"column:scope;primaryKey" json:"scope"`
	FeatureWeightsID string    `gorm:"column:feature_weights_id;not null;index" json:"feature_weights_id"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (DefaultRow) TableName() string { return "feature_weight_default" }

func Models() []any {
	return []any{&SetRow{}, &DefaultRow{}}
}

package classifier

import (
	"github.com/yungbote/response-validator/internal/features"
	"github.com/yungbote/response-validator/internal/weights"
)

type Decision struct {
	IsValid bool    `json:"valid"`
	Score   float64 `json:"score"`
}

// Classify scores v as the dot product with w. A response is valid when the
// score is strictly positive.
func Classify(v features.Vector, w weights.Weights) Decision {
	var score float64
	for _, k := range features.Keys {
		f, _ := v.Get(k)
		c, _ := w.Get(k)
		score += float64(f) * c
	}
	return Decision{IsValid: score > 0, Score: score}
}

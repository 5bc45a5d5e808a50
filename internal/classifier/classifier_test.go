package classifier

import (
	"testing"

	"github.com/yungbote/response-validator/internal/features"
	"github.com/yungbote/response-validator/internal/weights"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		v     features.Vector
		w     weights.Weights
		score float64
		valid bool
	}{
		{"empty", features.Vector{}, weights.Default, 0, false},
		{"domain term", features.Vector{DomainWordCount: 1}, weights.Default, 2.5, true},
		{"bad words win", features.Vector{BadWordCount: 2, CommonWordCount: 1}, weights.Default, -5.3, false},
		{"all features", features.Vector{StemWordCount: 1, OptionWordCount: 2, InnovationWordCount: 3, DomainWordCount: 4, BadWordCount: 5, CommonWordCount: 6}, weights.Weights{StemWordCount: 1, OptionWordCount: 1, InnovationWordCount: 1, DomainWordCount: 1, BadWordCount: 1, CommonWordCount: 1}, 21, true},
	}
	for _, tc := range cases {
		got := Classify(tc.v, tc.w)
		if diff := got.Score - tc.score; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("%s: expected score %v got %v", tc.name, tc.score, got.Score)
		}
		if got.IsValid != tc.valid {
			t.Fatalf("%s: expected valid=%v got %v", tc.name, tc.valid, got.IsValid)
		}
	}
}

func TestClassifySignInvariant(t *testing.T) {
	for i := -20; i <= 20; i++ {
		w := weights.Weights{DomainWordCount: float64(i) / 4, BadWordCount: -1}
		v := features.Vector{DomainWordCount: 3, BadWordCount: 1}
		d := Classify(v, w)
		if d.IsValid != (d.Score > 0) {
			t.Fatalf("weight %v: valid=%v score=%v", w.DomainWordCount, d.IsValid, d.Score)
		}
	}
}

package weights

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yungbote/response-validator/internal/features"
	"github.com/yungbote/response-validator/internal/platform/apperr"
)

const schemaMessage = "Incomplete or incorrect feature weight keys"

// Weights holds one coefficient per canonical feature.
type Weights struct {
	StemWordCount       float64 `json:"stem_word_count"`
	OptionWordCount     float64 `json:"option_word_count"`
	InnovationWordCount float64 `json:"innovation_word_count"`
	DomainWordCount     float64 `json:"domain_word_count"`
	BadWordCount        float64 `json:"bad_word_count"`
	CommonWordCount     float64 `json:"common_word_count"`
}

// Default is the stock weighting used to seed an empty registry.
var Default = Weights{
	StemWordCount:       0,
	OptionWordCount:     0,
	InnovationWordCount: 2.2,
	DomainWordCount:     2.5,
	BadWordCount:        -3,
	CommonWordCount:     0.7,
}

// DefaultID is the identifier the stock weighting is stored under.
const DefaultID = "d3732be6-a759-43aa-9e1a-3e9bd94f8b6b"

func (w Weights) Get(key string) (float64, bool) {
	switch key {
	case features.StemWordCount:
		return w.StemWordCount, true
	case features.OptionWordCount:
		return w.OptionWordCount, true
	case features.InnovationWordCount:
		return w.InnovationWordCount, true
	case features.DomainWordCount:
		return w.DomainWordCount, true
	case features.BadWordCount:
		return w.BadWordCount, true
	case features.CommonWordCount:
		return w.CommonWordCount, true
	}
	return 0, false
}

func (w *Weights) set(key string, v float64) bool {
	switch key {
	case features.StemWordCount:
		w.StemWordCount = v
	case features.OptionWordCount:
		w.OptionWordCount = v
	case features.InnovationWordCount:
		w.InnovationWordCount = v
	case features.DomainWordCount:
		w.DomainWordCount = v
	case features.BadWordCount:
		w.BadWordCount = v
	case features.CommonWordCount:
		w.CommonWordCount = v
	default:
		return false
	}
	return true
}

func (w Weights) Map() map[string]float64 {
	out := make(map[string]float64, len(features.Keys))
	for _, k := range features.Keys {
		out[k], _ = w.Get(k)
	}
	return out
}

// ParseWeights requires exactly the canonical key set.
func ParseWeights(m map[string]float64) (Weights, error) {
	const op = "weights.ParseWeights"
	var missing, extra []string
	for _, k := range features.Keys {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	for k := range m {
		if !features.IsKey(k) {
			extra = append(extra, k)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(extra)
		return Weights{}, apperr.New(apperr.CodeSchema, op, schemaMessage, &SchemaError{Missing: missing, Extra: extra})
	}
	var w Weights
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Weights{}, apperr.Newf(apperr.CodeSchema, op, "%s: weight %s must be finite", schemaMessage, k)
		}
		w.set(k, v)
	}
	return w, nil
}

// DecodeWeights parses a JSON object of weights. Non-numeric values are
// schema errors.
func DecodeWeights(raw []byte) (Weights, error) {
	const op = "weights.DecodeWeights"
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Weights{}, apperr.New(apperr.CodeSchema, op, "feature weights must be a JSON object", err)
	}
	m := make(map[string]float64, len(generic))
	for k, v := range generic {
		var f float64
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) || json.Unmarshal(v, &f) != nil {
			return Weights{}, apperr.Newf(apperr.CodeSchema, op, "%s: weight %s is not a number", schemaMessage, k)
		}
		m[k] = f
	}
	return ParseWeights(m)
}

// SchemaError lists the keys that differ from the canonical set.
type SchemaError struct {
	Missing []string
	Extra   []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Extra, ", "))
	}
	return strings.Join(parts, "; ")
}

// Hash is the structural identity of w: sha256 over JSON with sorted keys.
func (w Weights) Hash() string {
	m := w.Map()
	for k, v := range m {
		if v == 0 {
			m[k] = 0
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("weights hash: %v", err))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

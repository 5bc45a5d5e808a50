package normalization

import (
	"encoding/json"
	"fmt"
)

// Mode is a tri-state toggle for steps that support a heuristic setting.
type Mode int

const (
	Off Mode = iota
	On
	Auto
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "false"
	case On:
		return "true"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the boolean spellings used by query strings plus "auto".
func ParseMode(raw string) (Mode, error) {
	switch ParseInputString(raw) {
	case "auto":
		return Auto, nil
	case "1", "true", "t", "yes", "y", "on":
		return On, nil
	case "0", "false", "f", "no", "n", "off":
		return Off, nil
	}
	return Off, fmt.Errorf("invalid mode %q: expected true, false or auto", raw)
}

func ParseBool(raw string) (bool, error) {
	m, err := ParseMode(raw)
	if err != nil || m == Auto {
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
	return m == On, nil
}

func (m Mode) MarshalJSON() ([]byte, error) {
	switch m {
	case On:
		return []byte("true"), nil
	case Auto:
		return []byte(`"auto"`), nil
	default:
		return []byte("false"), nil
	}
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var asBool bool
	if err := json.Unmarshal(b, &asBool); err == nil {
		if asBool {
			*m = On
		} else {
			*m = Off
		}
		return nil
	}
	var asString string
	if err := json.Unmarshal(b, &asString); err != nil {
		return fmt.Errorf("mode must be a boolean or string: %w", err)
	}
	parsed, err := ParseMode(asString)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

type Options struct {
	RemoveStopwords    bool `json:"remove_stopwords"`
	TagNumeric         Mode `json:"tag_numeric"`
	SpellingCorrection Mode `json:"spelling_correction"`
	RemoveNonwords     bool `json:"remove_nonwords"`
}

func DefaultOptions() Options {
	return Options{
		RemoveStopwords:    true,
		TagNumeric:         Auto,
		SpellingCorrection: Auto,
		RemoveNonwords:     true,
	}
}

// ParseOptions overlays string parameters onto DefaultOptions. Absent keys
// keep their default.
func ParseOptions(params map[string]string) (Options, error) {
	opts := DefaultOptions()
	if raw, ok := params["remove_stopwords"]; ok && raw != "" {
		v, err := ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("remove_stopwords: %w", err)
		}
		opts.RemoveStopwords = v
	}
	if raw, ok := params["tag_numeric"]; ok && raw != "" {
		v, err := ParseMode(raw)
		if err != nil {
			return opts, fmt.Errorf("tag_numeric: %w", err)
		}
		opts.TagNumeric = v
	}
	if raw, ok := params["spelling_correction"]; ok && raw != "" {
		v, err := ParseMode(raw)
		if err != nil {
			return opts, fmt.Errorf("spelling_correction: %w", err)
		}
		opts.SpellingCorrection = v
	}
	if raw, ok := params["remove_nonwords"]; ok && raw != "" {
		v, err := ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("remove_nonwords: %w", err)
		}
		opts.RemoveNonwords = v
	}
	return opts, nil
}

package normalization

// NumericToken replaces numeric literals when tagging is applied.
const NumericToken = "numeric_value"

// Units that make a preceding number meaningful on its own in auto mode.
var measurementUnits = map[string]struct{}{
	"%": {}, "percent": {}, "percentage": {},
	"mm": {}, "cm": {}, "m": {}, "km": {}, "in": {}, "inch": {}, "inches": {}, "ft": {}, "feet": {}, "mi": {}, "mile": {}, "miles": {},
	"mg": {}, "g": {}, "kg": {}, "lb": {}, "lbs": {}, "oz": {}, "ton": {}, "tons": {},
	"ml": {}, "l": {}, "liter": {}, "liters": {}, "gal": {}, "gallon": {}, "gallons": {},
	"s": {}, "sec": {}, "second": {}, "seconds": {}, "min": {}, "minute": {}, "minutes": {}, "h": {}, "hr": {}, "hour": {}, "hours": {},
	"day": {}, "days": {}, "year": {}, "years": {}, "month": {}, "months": {},
	"mph": {}, "kph": {}, "hz": {}, "khz": {}, "mhz": {},
	"j": {}, "kj": {}, "cal": {}, "kcal": {}, "w": {}, "kw": {}, "v": {}, "a": {}, "n": {},
	"°c": {}, "°f": {}, "c": {}, "f": {}, "k": {}, "degrees": {}, "mol": {}, "moles": {},
	"dollars": {}, "cents": {}, "people": {}, "million": {}, "billion": {}, "thousand": {},
}

// IsUnit reports whether tok names a unit of measure or a quantity word.
func IsUnit(tok string) bool {
	_, ok := measurementUnits[tok]
	return ok
}

// shouldTagNumeric decides whether tok is replaced by NumericToken. next is
// the token that followed tok in the text, before any stopword removal.
func shouldTagNumeric(tok, next string, mode Mode, vocab Vocabulary) bool {
	if !IsNumeric(tok) {
		return false
	}
	switch mode {
	case On:
		return true
	case Auto:
		if vocab != nil && vocab.Contains(tok) {
			return false
		}
		return !IsUnit(next)
	default:
		return false
	}
}

package feedback

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// The model's response is decoded defensively: the top-level shape must
// parse, but each writing row is coerced field by field so one malformed row
// never sinks the whole call.

type llmResponse struct {
	Writing []json.RawMessage `json:"writing"`
	Overall struct {
		Notes string `json:"notes"`
	} `json:"overall"`
}

type scoreRow struct {
	Name           string      `json:"name"`
	Score          flexFloat   `json:"score"`
	Total          flexFloat   `json:"total"`
	Rationale      string      `json:"rationale"`
	Suggestion     string      `json:"suggestion"`
	EvidenceQuotes flexStrings `json:"evidence_quotes"`
	AppliedCaps    flexStrings `json:"applied_caps"`
}

// flexFloat coerces a number, a numeric string, or a label with an embedded
// numeral ("7 points") to float64. Anything else becomes 0.
type flexFloat float64

var embeddedNumeral = regexp.MustCompile(`-?[0-9]+(?:\.[0-9]+)?`)

func (f *flexFloat) UnmarshalJSON(raw []byte) error {
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if m := embeddedNumeral.FindString(s); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				*f = flexFloat(v)
				return nil
			}
		}
	}
	*f = 0
	return nil
}

// flexStrings keeps only the string elements of a JSON array. A non-array
// value decodes to empty rather than erroring.
type flexStrings []string

func (fs *flexStrings) UnmarshalJSON(raw []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		*fs = nil
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			out = append(out, s)
		}
	}
	*fs = out
	return nil
}

package adjudicate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/llm"
)

var (
	ErrNoSections        = errors.New("no claim sections supplied")
	ErrModelCall         = errors.New("language model request failed")
	ErrMalformedResponse = errors.New("language model response is not a JSON object")
	ErrInvalidDecision   = errors.New("invalid decision in model response")
)

// ClaimVerdict is the validated adjudication result.
type ClaimVerdict struct {
	Decision        constants.Decision `json:"decision"`
	ConfidenceScore int                `json:"confidence_score"`
	Reasoning       []string           `json:"reasoning"`
	MissingInfo     []string           `json:"missing_info"`
}

// Normalize clamps the score and replaces nil lists. Applying it twice gives
// the same value as applying it once.
func (v ClaimVerdict) Normalize() ClaimVerdict {
	v.ConfidenceScore = clampScore(float64(v.ConfidenceScore))
	if v.Reasoning == nil {
		v.Reasoning = []string{}
	}
	if v.MissingInfo == nil {
		v.MissingInfo = []string{}
	}
	return v
}

var objectSchema = llm.MustCompileSchema(map[string]any{"type": "object"})

var decisionSchema = llm.MustCompileSchema(map[string]any{
	"type":     "object",
	"required": []string{"decision"},
	"properties": map[string]any{
		"decision": map[string]any{
			"type": "string",
			"enum": constants.Decisions(),
		},
	},
})

// ParseVerdict unwraps, validates and normalizes a raw model response. The
// decision must be one of the three exact values; nothing else is coerced
// into one.
func ParseVerdict(raw string) (ClaimVerdict, error) {
	obj, err := llm.DecodeObject(objectSchema, []byte(llm.StripFences(raw)))
	if err != nil {
		return ClaimVerdict{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := decisionSchema.Validate(obj); err != nil {
		return ClaimVerdict{}, fmt.Errorf("%w: %v", ErrInvalidDecision, err)
	}
	decision := constants.Decision(obj["decision"].(string))
	if !decision.IsValid() {
		return ClaimVerdict{}, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	v := ClaimVerdict{
		Decision:        decision,
		ConfidenceScore: score(obj["confidence_score"]),
		Reasoning:       stringList(obj["reasoning"]),
		MissingInfo:     stringList(obj["missing_info"]),
	}
	return v.Normalize(), nil
}

// score accepts numbers and numeric strings. Anything else is 0.
func score(v any) int {
	var f float64
	var err error
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0
	}
	if err != nil {
		return 0
	}
	return clampScore(f)
}

func clampScore(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(f))))
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
			continue
		}
		b, err := json.Marshal(it)
		if err != nil {
			continue
		}
		out = append(out, string(b))
	}
	return out
}

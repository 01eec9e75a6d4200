package adjudicate

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/extract"
	"github.com/kabir-fx/abhiraksha/internal/llm/llmtest"
)

func TestAnalyze_NoSectionsSkipsModel(t *testing.T) {
	gen := &llmtest.Fake{Response: `{"decision":"Accepted"}`}
	a := New(gen, nil)

	for _, in := range []ClaimInput{
		{},
		{Insurance: json.RawMessage("null"), Discharge: json.RawMessage(" null "), Bill: nil},
		{Insurance: json.RawMessage(`""`), Discharge: json.RawMessage("0"), Bill: json.RawMessage("false")},
	} {
		_, err := a.Analyze(t.Context(), in)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoSections)
		assert.ErrorIs(t, err, common.ErrPrecondition)
	}
	assert.Zero(t, gen.Calls())
}

func TestAnalyze_FencedResponse(t *testing.T) {
	gen := &llmtest.Fake{Response: "```json\n" + `{
  "decision": "Pending",
  "confidence_score": 72.6,
  "reasoning": ["Bill total does not match charges"],
  "missing_info": ["doctor_registration_number"]
}` + "\n```"}

	in, err := NewClaimInput(nil, &extract.DischargeSummary{PatientName: "Rahul Verma"}, nil)
	require.NoError(t, err)

	v, err := New(gen, nil).Analyze(t.Context(), in)
	require.NoError(t, err)

	assert.Equal(t, ClaimVerdict{
		Decision:        constants.Pending,
		ConfidenceScore: 73,
		Reasoning:       []string{"Bill total does not match charges"},
		MissingInfo:     []string{"doctor_registration_number"},
	}, v)

	require.Equal(t, 1, gen.Calls())
	prompt := gen.Requests()[0].Prompt
	assert.Contains(t, prompt, `"insurance": null`)
	assert.Contains(t, prompt, `"patient_name": "Rahul Verma"`)
	assert.Contains(t, prompt, `"bill": null`)
	assert.NotContains(t, prompt, inputPlaceholder)
}

func TestAnalyze_Failures(t *testing.T) {
	in := ClaimInput{Bill: json.RawMessage(`{"bill_number":"B-1"}`)}

	tests := []struct {
		name  string
		gen   *llmtest.Fake
		cause error
	}{
		{"model error", &llmtest.Fake{Err: errors.New("quota exceeded for key AIza...")}, ErrModelCall},
		{"maybe", &llmtest.Fake{Response: `{"decision":"Maybe","confidence_score":50}`}, ErrInvalidDecision},
		{"lower case", &llmtest.Fake{Response: `{"decision":"accepted"}`}, ErrInvalidDecision},
		{"missing decision", &llmtest.Fake{Response: `{"confidence_score":90}`}, ErrInvalidDecision},
		{"numeric decision", &llmtest.Fake{Response: `{"decision":1}`}, ErrInvalidDecision},
		{"not json", &llmtest.Fake{Response: "The claim looks fine."}, ErrMalformedResponse},
		{"array", &llmtest.Fake{Response: `["Accepted"]`}, ErrMalformedResponse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := New(tc.gen, nil).Analyze(t.Context(), in)

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.cause)
			assert.Equal(t, ClaimVerdict{}, v)
			assert.Equal(t, FailureMessage, common.PublicMessage(err, ""))
			assert.Equal(t, 1, tc.gen.Calls())
		})
	}
}

func TestParseVerdict_Normalization(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ClaimVerdict
	}{
		{
			name: "string score and missing lists",
			raw:  `{"decision":"Accepted","confidence_score":"88"}`,
			want: ClaimVerdict{Decision: constants.Accepted, ConfidenceScore: 88, Reasoning: []string{}, MissingInfo: []string{}},
		},
		{
			name: "non numeric score and non array lists",
			raw:  `{"decision":"Rejected","confidence_score":"high","reasoning":"one line","missing_info":null}`,
			want: ClaimVerdict{Decision: constants.Rejected, ConfidenceScore: 0, Reasoning: []string{}, MissingInfo: []string{}},
		},
		{
			name: "clamped score and mixed list",
			raw:  `{"decision":"Rejected","confidence_score":140,"reasoning":["a",2,true]}`,
			want: ClaimVerdict{Decision: constants.Rejected, ConfidenceScore: 100, Reasoning: []string{"a", "2", "true"}, MissingInfo: []string{}},
		},
		{
			name: "negative score",
			raw:  `{"decision":"Pending","confidence_score":-5}`,
			want: ClaimVerdict{Decision: constants.Pending, ConfidenceScore: 0, Reasoning: []string{}, MissingInfo: []string{}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseVerdict(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []ClaimVerdict{
		{Decision: constants.Accepted, ConfidenceScore: 250},
		{Decision: constants.Pending, ConfidenceScore: -3, Reasoning: []string{"x"}},
		{Decision: constants.Rejected, ConfidenceScore: 55, Reasoning: []string{}, MissingInfo: []string{"uhid"}},
	}
	for _, v := range inputs {
		once := v.Normalize()
		assert.Equal(t, once, once.Normalize())
	}

	parsed, err := ParseVerdict(`{"decision":"Accepted","confidence_score":99.5,"reasoning":["ok"]}`)
	require.NoError(t, err)
	assert.Equal(t, parsed, parsed.Normalize())

	b, err := json.Marshal(parsed)
	require.NoError(t, err)
	reparsed, err := ParseVerdict(string(b))
	require.NoError(t, err)
	assert.Equal(t, parsed, reparsed)
}

func TestConsolidate(t *testing.T) {
	in := ClaimInput{Insurance: json.RawMessage(`{"policy_number":"P-1"}`), Discharge: json.RawMessage(`""`), Bill: json.RawMessage("null")}

	b, err := in.Consolidate()
	require.NoError(t, err)

	want := strings.Join([]string{
		"{",
		`  "insurance": {`,
		`    "policy_number": "P-1"`,
		"  },",
		`  "discharge": null,`,
		`  "bill": null`,
		"}",
	}, "\n")
	assert.Equal(t, want, string(b))
}

func TestRenderPrompt_ReplacesOnce(t *testing.T) {
	p := renderPrompt([]byte(`{"note":"{INPUT_JSON}"}`))
	assert.Equal(t, 1, strings.Count(p, inputPlaceholder))
	assert.Contains(t, p, "four pillars")
}

package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabir-fx/abhiraksha/internal/llm/llmtest"
)

func TestAIDischargeExtractor_FencedResponse(t *testing.T) {
	gen := &llmtest.Fake{Response: "```json\n" + `{
  "patient_name": "  Rahul Verma ",
  "age": 45,
  "gender": "Male",
  "admission_date": "10-03-2024",
  "discharge_date": "15-03-2024",
  "primary_diagnosis": "Acute Appendicitis",
  "doctor_name": null,
  "hospital_name": "City Hospital"
}` + "\n```"}

	res := NewAIDischargeExtractor(gen, nil).Extract(t.Context(), "discharge text")

	require.True(t, res.Success)
	assert.Equal(t, "Rahul Verma", res.Data.PatientName)
	assert.Equal(t, "45", res.Data.Age)
	assert.Equal(t, "Acute Appendicitis", res.Data.PrimaryDiagnosis)
	assert.Empty(t, res.Data.DoctorName)
	assert.True(t, res.Confidence["age"])
	assert.False(t, res.Confidence["doctor_name"])
	assert.NotContains(t, res.Confidence, "hospital_name")
	assert.Len(t, res.Confidence, 14)
	assert.Equal(t, "discharge text", res.RawText)

	require.Equal(t, 1, gen.Calls())
	req := gen.Requests()[0]
	assert.True(t, req.JSON)
	assert.Contains(t, req.Prompt, "discharge text")
	assert.Contains(t, req.System, `"doctor_registration_number"`)
}

func TestAIDischargeExtractor_WhitespaceValuesAreNotFound(t *testing.T) {
	gen := &llmtest.Fake{Response: `{"patient_name": "   ", "age": "", "gender": "F"}`}

	res := NewAIDischargeExtractor(gen, nil).Extract(t.Context(), "x")

	assert.False(t, res.Success)
	assert.False(t, res.Confidence["patient_name"])
	assert.True(t, res.Confidence["gender"])
	assert.Equal(t, 1, res.Found())
}

func TestAIDischargeExtractor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		gen     *llmtest.Fake
		message string
	}{
		{"model error", &llmtest.Fake{Err: errors.New("401 invalid key")}, modelCallMessage},
		{"not json", &llmtest.Fake{Response: "I could not read that document."}, malformedMessage},
		{"array", &llmtest.Fake{Response: `[{"patient_name": "A"}]`}, malformedMessage},
		{"trailing text", &llmtest.Fake{Response: `{"age": "3"} thanks`}, malformedMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := NewAIDischargeExtractor(tc.gen, nil).Extract(t.Context(), "raw")

			assert.False(t, res.Success)
			assert.Equal(t, tc.message, res.Error)
			assert.Empty(t, res.Confidence)
			assert.NotNil(t, res.Confidence)
			assert.Equal(t, DischargeSummary{}, res.Data)
			assert.Equal(t, "raw", res.RawText)
			assert.NotContains(t, res.Error, "401")
		})
	}
}

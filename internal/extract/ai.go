package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kabir-fx/abhiraksha/internal/llm"
)

var (
	ErrModelCall         = errors.New("language model request failed")
	ErrMalformedResponse = errors.New("language model response is not a JSON object")
)

// Caller-facing failure messages. Causes are logged, never returned.
const (
	modelCallMessage   = "AI extraction failed. Please check API key and quota."
	malformedMessage   = "AI extraction failed. The model returned an unreadable response."
	dischargeUserIntro = "Here is the discharge summary text:\n\n"
)

const dischargeSystemPrompt = `You are an expert medical document parser. Your goal is to extract structured data from a discharge summary PDF text.
Return the result in strictly valid JSON format matching the following structure. Do not include markdown code blocks or any other text.

{
  "patient_name": "string",
  "age": "string",
  "gender": "string",
  "uhid_number": "string",
  "admission_date": "string (DD-MM-YYYY or DD/MM/YYYY)",
  "discharge_date": "string (DD-MM-YYYY or DD/MM/YYYY)",
  "primary_diagnosis": "string",
  "secondary_diagnosis": "string",
  "procedure_performed": "string",
  "clinical_summary": "string",
  "treatment_given": "string",
  "condition_at_discharge": "string",
  "doctor_name": "string",
  "doctor_registration_number": "string"
}

If a field is not found or ambiguous, leave it as an empty string "".
Clean up the text: remove excess whitespace, newlines, and artifacts.
Format dates consistently as DD-MM-YYYY if possible.`

var dischargeObjectSchema = llm.MustCompileSchema(map[string]any{
	"type": "object",
})

// AIDischargeExtractor delegates field recognition to a language model and
// scores the answer exactly like the pattern strategy.
type AIDischargeExtractor struct {
	gen    llm.Generator
	logger *slog.Logger
}

func NewAIDischargeExtractor(gen llm.Generator, logger *slog.Logger) *AIDischargeExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIDischargeExtractor{gen: gen, logger: logger}
}

func (e *AIDischargeExtractor) Extract(ctx context.Context, text string) Result[DischargeSummary] {
	rid := uuid.New().String()
	start := time.Now()

	raw, err := e.gen.Generate(ctx, llm.Request{
		Purpose: "extract.discharge",
		System:  dischargeSystemPrompt,
		Prompt:  dischargeUserIntro + text,
		JSON:    true,
	})
	if err != nil {
		e.logger.Error("extract.discharge_ai.model_error",
			"req_id", rid, "model", e.gen.Model(), "error", fmt.Errorf("%w: %w", ErrModelCall, err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return failed[DischargeSummary](text, modelCallMessage)
	}

	data, err := parseDischarge(raw, e.logger)
	if err != nil {
		e.logger.Error("extract.discharge_ai.malformed",
			"req_id", rid, "error", err, "response", raw,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return failed[DischargeSummary](text, malformedMessage)
	}

	res := Score(data, text)
	e.logger.Info("extract.discharge_ai.ok",
		"req_id", rid,
		"found", res.Found(),
		"success", res.Success,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// parseDischarge unwraps fences and merges the model object over an all-empty
// record.
func parseDischarge(raw string, logger *slog.Logger) (DischargeSummary, error) {
	obj, err := llm.DecodeObject(dischargeObjectSchema, []byte(llm.StripFences(raw)))
	if err != nil {
		return DischargeSummary{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	values := llm.CoerceStrings(obj, FieldNames[DischargeSummary](), logger)
	b, err := json.Marshal(values)
	if err != nil {
		return DischargeSummary{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	var data DischargeSummary
	if err := json.Unmarshal(b, &data); err != nil {
		return DischargeSummary{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return data, nil
}

// failed is the explicit failure record: empty data, empty confidence.
func failed[T Schema](text, message string) Result[T] {
	var zero T
	return Result[T]{
		Success:    false,
		Data:       zero,
		RawText:    text,
		Confidence: map[string]bool{},
		Error:      strings.TrimSpace(message),
	}
}

var _ Extractor[DischargeSummary] = (*AIDischargeExtractor)(nil)

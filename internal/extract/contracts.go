package extract

import (
	"context"
	"strings"

	"github.com/kabir-fx/abhiraksha/constants"
)

// Extractor turns one document's merged text into a scored record.
// The regex and model-backed implementations are interchangeable.
type Extractor[T Schema] interface {
	Extract(ctx context.Context, text string) Result[T]
}

// Schema is implemented by every record type. Fields lists values under the
// names reported in the confidence map, in declaration order.
type Schema interface {
	Document() constants.DocumentType
	Fields() []FieldValue
}

type FieldValue struct {
	Name  string
	Value string
}

// Result is the extraction envelope returned to callers. Success is derived
// from Confidence and is never set on its own.
type Result[T Schema] struct {
	Success    bool            `json:"success"`
	Data       T               `json:"data"`
	RawText    string          `json:"raw_text"`
	Confidence map[string]bool `json:"confidence"`
	Error      string          `json:"error,omitempty"`
}

// Outcome is the type-erased view of a Result used by transports and metrics.
type Outcome interface {
	DocumentType() constants.DocumentType
	OK() bool
	Found() int
	Failure() string
}

func (r Result[T]) DocumentType() constants.DocumentType { return r.Data.Document() }
func (r Result[T]) OK() bool                             { return r.Success }
func (r Result[T]) Failure() string                      { return r.Error }

func (r Result[T]) Found() int {
	n := 0
	for _, ok := range r.Confidence {
		if ok {
			n++
		}
	}
	return n
}

// LowConfidenceMessage is the error carried by a record that missed its
// document type's minimum.
const LowConfidenceMessage = "Too few fields were recognised in this document."

// Score builds the confidence map over every schema field and applies the
// document type's minimum.
func Score[T Schema](data T, rawText string) Result[T] {
	fields := data.Fields()
	confidence := make(map[string]bool, len(fields))
	found := 0
	for _, f := range fields {
		ok := strings.TrimSpace(f.Value) != ""
		confidence[f.Name] = ok
		if ok {
			found++
		}
	}
	res := Result[T]{
		Success:    found >= data.Document().MinFieldsFound(),
		Data:       data,
		RawText:    rawText,
		Confidence: confidence,
	}
	if !res.Success {
		res.Error = LowConfidenceMessage
	}
	return res
}

// FieldNames lists the confidence keys of a schema.
func FieldNames[T Schema]() []string {
	var zero T
	fields := zero.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

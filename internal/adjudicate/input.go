package adjudicate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/extract"
)

// ClaimInput carries up to three extracted sections. Sections are kept as
// raw JSON so records edited by a reviewer pass through untouched.
type ClaimInput struct {
	Insurance json.RawMessage `json:"insurance"`
	Discharge json.RawMessage `json:"discharge"`
	Bill      json.RawMessage `json:"bill"`
}

// NewClaimInput builds an input from typed records. Nil records are absent.
func NewClaimInput(insurance *extract.InsurancePolicy, discharge *extract.DischargeSummary, bill *extract.HospitalBill) (ClaimInput, error) {
	var in ClaimInput
	var err error
	if in.Insurance, err = section(insurance); err != nil {
		return ClaimInput{}, err
	}
	if in.Discharge, err = section(discharge); err != nil {
		return ClaimInput{}, err
	}
	if in.Bill, err = section(bill); err != nil {
		return ClaimInput{}, err
	}
	return in, nil
}

func section[T any](v *T) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode section: %w", err)
	}
	return b, nil
}

// present treats null, "", 0 and false as an absent section.
func present(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return len(bytes.TrimSpace(raw)) > 0
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	}
	return true
}

// Empty reports whether no section is present.
func (in ClaimInput) Empty() bool {
	return !present(in.Insurance) && !present(in.Discharge) && !present(in.Bill)
}

// Validate rejects an input with no sections before any model call.
func (in ClaimInput) Validate() error {
	if in.Empty() {
		return common.NewAppError(errCodeNoSections, noSectionsMessage,
			fmt.Errorf("%w: %w", ErrNoSections, common.ErrPrecondition))
	}
	return nil
}

// Consolidate renders {insurance, discharge, bill} indented by two spaces.
// Absent sections render as null.
func (in ClaimInput) Consolidate() ([]byte, error) {
	norm := func(raw json.RawMessage) json.RawMessage {
		if present(raw) {
			return raw
		}
		return nil
	}
	out := ClaimInput{
		Insurance: norm(in.Insurance),
		Discharge: norm(in.Discharge),
		Bill:      norm(in.Bill),
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("consolidate claim: %w", err)
	}
	return b, nil
}

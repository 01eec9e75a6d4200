package policy

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kabir-fx/abhiraksha/internal/extract"
)

// ImportFile is the YAML layout accepted by Import:
//
//	policies:
//	  - policy_number: SH/2024/987654
//	    insured_name: Rahul Verma
type ImportFile struct {
	Policies []extract.InsurancePolicy `yaml:"policies"`
}

// Import reads an ImportFile and upserts every policy. It stops at the first
// invalid entry and reports how many rows were written before it.
func Import(ctx context.Context, store Store, r io.Reader) (int, error) {
	var f ImportFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return 0, fmt.Errorf("parse policy file: %w", err)
	}
	for i, p := range f.Policies {
		if strings.TrimSpace(p.PolicyNumber) == "" {
			return i, fmt.Errorf("policy %d: policy_number is required", i+1)
		}
		if err := store.Upsert(ctx, trimPolicy(p)); err != nil {
			return i, fmt.Errorf("policy %d: %w", i+1, err)
		}
	}
	return len(f.Policies), nil
}

func trimPolicy(p extract.InsurancePolicy) extract.InsurancePolicy {
	t := strings.TrimSpace
	return extract.InsurancePolicy{
		PolicyNumber:      t(p.PolicyNumber),
		InsuredName:       t(p.InsuredName),
		Insurer:           t(p.Insurer),
		TPAName:           t(p.TPAName),
		SumInsured:        t(p.SumInsured),
		PolicyPeriodStart: t(p.PolicyPeriodStart),
		PolicyPeriodEnd:   t(p.PolicyPeriodEnd),
		PlanType:          t(p.PlanType),
		CoverageType:      t(p.CoverageType),
	}
}

package extract

import (
	"context"
	"log/slog"
)

const dateValue = `\d{1,2}[\-/.]\d{1,2}[\-/.]\d{2,4}|\d{1,2}\s*(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*[\s,]*\d{2,4}`

// Policy labels that end a value when the text arrives as one long line.
var policyLabels = []string{
	`Policy\s*(?:Number|No|#|Start|End|Expiry|From|To|Type|Holder|Period|Commencement)`,
	`Certificate\s*(?:Number|No)`, `Claim\s*(?:Number|No)`,
	`Insured\s*Name`, `Name\s*of`, `Member\s*Name`, `Employee\s*Name`, `Proposer\s*Name`, `Patient\s*Name`,
	`Insurance\s*(?:Company|Provider)`, `Insurer`, `Underwritten\s*by`, `Payer`,
	`TPA`, `Third\s*Party`,
	`Sum\s*(?:Insured|Assured)`, `Coverage\s*(?:Type|Amount)`, `Total\s*Sum`,
	`Period\s*of`, `(?:Start|From|Commencement|End|Expiry|To|Inception)\s*Date`,
	`Valid\s*(?:From|To|Till|Until)`, `Effective`, `Expiry`,
	`Plan\s*(?:Name|Type)`, `Product\s*(?:Name|Type)`, `Scheme`, `Type\s*of`,
}

var (
	policyNextField = StopSet(policyLabels...)
	policyStartStop = StopSet(append([]string{`To`}, policyLabels...)...)
)

type policyRules struct {
	policyNumber, insuredName, insurer, tpa Rules
	sumInsured, periodStart, periodEnd      Rules
	planType, coverageType                  Rules
}

func buildPolicyRules(t *LookupTable) policyRules {
	r := policyRules{
		policyNumber: Rules{
			Field(`(?:Policy\s*(?:Number|No\.?)|Certificate\s*(?:Number|No\.?)|Claim\s*(?:Number|No\.?))` + sep + `([A-Za-z0-9\-/]+)`),
			Field(`Policy\s*#` + optSep + `([A-Za-z0-9\-/]+)`),
		},
		insuredName: Rules{
			Labeled(`(?:Insured\s*(?:Name)?|Name\s*of\s*(?:the\s+)?(?:Insured|Policy\s*Holder)|Policy\s*Holder\s*(?:Name)?|Member\s*Name|Employee\s*Name|Proposer\s*Name)`+sep, policyNextField),
			Labeled(`(?:Patient\s*Name|Name\s*of\s*(?:the\s+)?Patient)`+sep, policyNextField),
		},
		insurer: Rules{
			Labeled(`(?:Insurance\s*Company|Insurer|Underwritten\s*by|Payer\s*(?:Name)?|Insurance\s*Provider)`+sep, policyNextField),
		},
		tpa: Rules{
			Labeled(`(?:TPA|Third\s*Party\s*Administrator|TPA\s*Name)`+sep, policyNextField),
		},
		sumInsured: Rules{
			Field(`(?:Sum\s*Insured|Sum\s*Assured|Coverage\s*Amount|\bSI\b|Total\s*(?:Sum\s*)?(?:Insured|Coverage))` + sep + currency + `([0-9,]+(?:\.\d{2})?)`),
			Field(`(?:Rs\.?\s*|INR\s*|₹\s*)([0-9,]+(?:\.\d{2})?)\s*(?:sum\s*insured|coverage)`),
		},
		periodStart: Rules{
			Labeled(`(?:Policy\s*(?:Start|From|Commencement)\s*Date|(?:Start|From|Commencement)\s*Date|Period\s*(?:of\s*Insurance\s*)?From|Inception\s*Date|Valid\s*From|Effective\s*(?:From|Date))`+sep, policyStartStop),
		},
		periodEnd: Rules{
			Labeled(`(?:Policy\s*(?:End|Expiry|To)\s*Date|(?:End|Expiry|To)\s*Date|Period\s*(?:of\s*Insurance\s*)?To|Expiry|Valid\s*(?:To|Till|Until))`+sep, policyNextField),
			Field(`From` + optSep + `(?:` + dateValue + `)\s*To` + optSep + `(` + dateValue + `)`),
		},
		planType: Rules{
			Labeled(`(?:Plan\s*(?:Name|Type)|Product\s*(?:Name|Type)|Scheme|Policy\s*Type)`+sep, policyNextField),
		},
		coverageType: Rules{
			Labeled(`(?:Coverage\s*Type|Type\s*of\s*(?:Cover(?:age)?|Insurance|Policy))`+sep, policyNextField),
		},
	}
	if len(t.Insurers) > 0 {
		r.insurer = append(r.insurer,
			Field(`(`+alternation(t.Insurers)+`(?:\s*(?:Insurance|Health|General))?(?:\s*(?:Company|Co\.?|Ltd\.?))?)`))
	}
	if len(t.TPAs) > 0 {
		r.tpa = append(r.tpa,
			Field(`(`+alternation(t.TPAs)+`(?:\s*(?:TPA|Insurance|Health))?(?:\s*(?:Services|Solutions|Ltd\.?|Pvt\.?|Private|Limited))*)`))
	}
	if len(t.PlanTypes) > 0 {
		r.planType = append(r.planType,
			Field(`(`+alternation(t.PlanTypes)+`\s*(?:Plan|Policy|Health\s*(?:Insurance|Plan))?)`))
	}
	if len(t.CoverageTypes) > 0 {
		r.coverageType = append(r.coverageType,
			Field(`(`+alternation(t.CoverageTypes)+`(?:\s*(?:Policy|Cover|Plan))?)`))
	}
	return r
}

// PolicyExtractor reads insurance policy documents.
type PolicyExtractor struct {
	rules  policyRules
	logger *slog.Logger
}

// NewPolicyExtractor compiles the pattern table against t. A nil table uses
// the embedded defaults.
func NewPolicyExtractor(t *LookupTable, logger *slog.Logger) *PolicyExtractor {
	if t == nil {
		t = DefaultLookupTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyExtractor{rules: buildPolicyRules(t), logger: logger}
}

func (e *PolicyExtractor) Extract(_ context.Context, text string) Result[InsurancePolicy] {
	r := e.rules
	data := InsurancePolicy{
		PolicyNumber:      Match(text, r.policyNumber),
		InsuredName:       Match(text, r.insuredName),
		Insurer:           Match(text, r.insurer),
		TPAName:           Match(text, r.tpa),
		SumInsured:        Match(text, r.sumInsured),
		PolicyPeriodStart: Match(text, r.periodStart),
		PolicyPeriodEnd:   Match(text, r.periodEnd),
		PlanType:          Match(text, r.planType),
		CoverageType:      Match(text, r.coverageType),
	}
	res := Score(data, text)
	e.logger.Debug("extract.policy.done", "found", res.Found(), "success", res.Success)
	return res
}

var _ Extractor[InsurancePolicy] = (*PolicyExtractor)(nil)

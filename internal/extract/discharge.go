package extract

import (
	"context"
	"log/slog"
)

const (
	sep         = `\s*[:\-–]\s*`
	optSep      = `\s*[:\-–]?\s*`
	numericDate = `(\d{1,2}[\-/.]\d{1,2}[\-/.]\d{2,4})`
	monthDate   = `(\d{1,2}\s*(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*[\s,]*\d{2,4})`
	money       = `(\d[\d,]*\.\d{2})`
	currency    = `(?:Rs\.?\s*|INR\s*|₹\s*)?`
)

// Labels that commonly follow a value in a discharge summary.
var dischargeNextField = StopSet(
	`Age`, `Gender`, `Sex`, `UHID`, `UH\.?ID`, `MR\.?\s*No`, `MRN`, `IP\s*No`, `IPD\s*No`,
	`Date\s*of`, `Admission\s*Date`, `Discharge\s*Date`, `DOA`, `DOD`,
	`Primary`, `Secondary`, `Diagnosis`, `Procedure`, `Surgery`, `Clinical`, `Treatment`,
	`Condition`, `Doctor`, `Consultant`, `Treating`, `Reg(?:istration)?`, `Medical\s*Council`,
	`Advice`, `Follow`, `Investigation`, `Lab\s*Result`, `Signature`, `Admitted`, `Discharged`,
)

const (
	admissionLabel = `(?:Date\s*of\s*Admission|Admission\s*Date|DOA|Admitted\s*(?:On|Date))`
	dischargeLabel = `(?:Date\s*of\s*Discharge|Discharge\s*Date|DOD|Discharged\s*(?:On|Date))`
)

// Section headings, indexed so each free-text field can exclude its own.
const (
	headingClinical = iota
	headingTreatment
)

var dischargeHeadings = compileAll(
	`(?:Clinical\s*Summary|History\s*of\s*(?:Present\s*)?Illness|Brief\s*History|Clinical\s*History)\b`,
	`(?:Treatment\s*Given|Treatment\s*Details|Course\s*(?:in|of)\s*Hospital)\b`,
	`(?:Condition\s*(?:at|on)\s*Discharge|Status\s*(?:at|on)\s*Discharge)\b`,
	`(?:Advice\s*(?:on|at)\s*Discharge|Discharge\s*Advice)\b`,
	`(?:Follow[\s-]*up|Review)\b`,
	`(?:Primary\s*Diagnosis|Principal\s*Diagnosis|Final\s*Diagnosis|Diagnosis)\b`,
	`(?:Secondary\s*Diagnosis|Other\s*Diagnosis|Co-?morbidities)\b`,
	`(?:Procedure\s*(?:Performed|Done)?|Surgery\s*(?:Performed|Done)?|Operative\s*Procedure)\b`,
	`(?:Investigation|Lab\s*Results)\b`,
	`(?:Treating\s*Doctor|Consultant|Doctor(?:'s)?\s*Name|Signature)\b`,
)

type dischargeRules struct {
	patientName, age, gender, uhid                  Rules
	admissionDate, dischargeDate                    Rules
	primaryDiagnosis, secondaryDiagnosis, procedure Rules
	clinicalSummary, treatmentGiven, condition      Rules
	doctorName, doctorRegistration                  Rules
}

var dischargeTable = dischargeRules{
	patientName: Rules{
		Labeled(`(?:Patient\s*Name|Name\s*of\s*(?:the\s+)?Patient|Pt\.?\s*Name)`+sep, dischargeNextField),
	},
	age: Rules{
		Field(`(?:Age|Age\s*/\s*Sex)` + sep + `(\d+\s*(?:years?|yrs?|Y)?)`),
		Field(`(\d+)\s*(?:years?|yrs?|Y)\s*(?:old)?`),
	},
	gender: Rules{
		Field(`(?:Gender|Sex)` + sep + `(Male|Female|M|F|Other|Transgender)`),
		Field(`Age\s*/\s*Sex` + sep + `\d+\s*(?:years?|yrs?|Y)?\s*/?\s*(Male|Female|M|F)`),
	},
	uhid: Rules{
		Field(`(?:UHID|UH\.?ID|MR\.?\s*No\.?|MRN|Medical\s*Record\s*No\.?|Hospital\s*(?:Reg\.?\s*)?(?:Number|No\.?)|IP\s*No\.?|IPD\s*No\.?|Registration\s*No\.?)` + sep + `([A-Za-z0-9\-/]+)`),
	},
	admissionDate: Rules{
		Field(admissionLabel + sep + numericDate),
		Field(admissionLabel + sep + monthDate),
	},
	dischargeDate: Rules{
		Field(dischargeLabel + sep + numericDate),
		Field(dischargeLabel + sep + monthDate),
	},
	primaryDiagnosis: Rules{
		Labeled(`(?:Primary\s*Diagnosis|Principal\s*Diagnosis|Final\s*Diagnosis)`+sep,
			StopSet(`Secondary`, `Other\s*Diagnosis`, `Co-?morbid`, `Procedure`, `Surgery`, `Treatment`, `Clinical`, `Condition`, `Doctor`, `Advice`, `Follow`, `Investigation`)),
		Labeled(`Diagnosis`+sep,
			StopSet(`Secondary`, `Procedure`, `Surgery`, `Treatment`, `Clinical`, `Condition`, `Doctor`)),
	},
	secondaryDiagnosis: Rules{
		Labeled(`(?:Secondary\s*Diagnosis|Other\s*Diagnosis|Co-?morbidities|Associated\s*Conditions)`+sep,
			StopSet(`Procedure`, `Surgery`, `Operation`, `Treatment`, `Clinical`, `Condition`, `Doctor`, `Advice`, `Follow`, `Investigation`)),
	},
	procedure: Rules{
		Labeled(`(?:Procedure\s*(?:Performed|Done)?|Surgery\s*(?:Performed|Done)?|Operation\s*(?:Performed|Done)?|Operative\s*Procedure|Name\s*of\s*(?:the\s+)?(?:Procedure|Surgery))`+sep,
			StopSet(`Clinical`, `Treatment`, `Condition`, `Doctor`, `Advice`, `Follow`, `Investigation`, `Diagnosis`)),
	},
	clinicalSummary: Rules{
		Section{
			Starts: compileAll(`(?:Clinical\s*Summary|History\s*of\s*(?:Present\s*)?Illness|Brief\s*History|Clinical\s*History|History)` + optSep),
			Stops:  excluding(dischargeHeadings, headingClinical),
		},
	},
	treatmentGiven: Rules{
		Section{
			Starts: compileAll(`(?:Treatment\s*Given|Treatment\s*Details|Course\s*(?:in|of)\s*Hospital|Treatment\s*(?:in|during)\s*Hospital|Treatment)` + optSep),
			Stops:  excluding(dischargeHeadings, headingTreatment),
		},
	},
	condition: Rules{
		Labeled(`(?:Condition\s*(?:at|on)\s*Discharge|Status\s*(?:at|on)\s*Discharge|General\s*Condition\s*(?:at|on)\s*Discharge)`+sep,
			StopSet(`Advice`, `Follow`, `Doctor`, `Consultant`, `Treating`, `Signature`, `Reg(?:istration)?`)),
	},
	doctorName: Rules{
		Labeled(`(?:Treating\s*Doctor|Consultant|Attending\s*(?:Doctor|Physician)|Doctor(?:'s)?\s*Name|Name\s*of\s*(?:the\s+)?Doctor)`+sep+`(?:Dr\.?\s*)?`,
			StopSet(`Reg(?:istration)?`, `Medical\s*Council`, `License`, `MC[IR]`, `Signature`, `Date`)),
	},
	doctorRegistration: Rules{
		Field(`(?:(?:Doctor's?\s*)?Reg(?:istration)?\.?\s*(?:Number|No\.?)|Medical\s*Council\s*(?:Reg\.?\s*)?(?:Number|No\.?)|MC(?:I|R)\s*(?:Number|No\.?)|License\s*(?:Number|No\.?))` + sep + `([A-Za-z0-9\-/]+)`),
	},
}

// DischargeExtractor is the pattern-table strategy for discharge summaries.
type DischargeExtractor struct {
	rules  dischargeRules
	logger *slog.Logger
}

func NewDischargeExtractor(logger *slog.Logger) *DischargeExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DischargeExtractor{rules: dischargeTable, logger: logger}
}

func (e *DischargeExtractor) Extract(_ context.Context, text string) Result[DischargeSummary] {
	r := e.rules
	data := DischargeSummary{
		PatientName:              Match(text, r.patientName),
		Age:                      Match(text, r.age),
		Gender:                   Match(text, r.gender),
		UHIDNumber:               Match(text, r.uhid),
		AdmissionDate:            Match(text, r.admissionDate),
		DischargeDate:            Match(text, r.dischargeDate),
		PrimaryDiagnosis:         Match(text, r.primaryDiagnosis),
		SecondaryDiagnosis:       Match(text, r.secondaryDiagnosis),
		ProcedurePerformed:       Match(text, r.procedure),
		ClinicalSummary:          Match(text, r.clinicalSummary),
		TreatmentGiven:           Match(text, r.treatmentGiven),
		ConditionAtDischarge:     Match(text, r.condition),
		DoctorName:               Match(text, r.doctorName),
		DoctorRegistrationNumber: Match(text, r.doctorRegistration),
	}
	res := Score(data, text)
	e.logger.Debug("extract.discharge.done", "found", res.Found(), "success", res.Success)
	return res
}

var _ Extractor[DischargeSummary] = (*DischargeExtractor)(nil)

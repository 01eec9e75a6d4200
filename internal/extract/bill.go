package extract

import (
	"context"
	"log/slog"
)

type billRules struct {
	billNumber, billDate, patientName      Rules
	roomRate, roomDays, roomTotal          Rules
	icu, nursing, doctorVisit, surgery     Rules
	anesthesia, operationTheatre, pharmacy Rules
	investigation, consumables, equipment  Rules
	registration, miscellaneous            Rules
	grossTotal, discount, netPayable       Rules
}

// charge matches "<label> Charge(s) ... 1,234.00".
func charge(label string) Recognizer {
	return Amount(label + `\s*Charges?\s+.*?` + money)
}

func buildBillRules(t *LookupTable) billRules {
	patientName := Labeled(`(?:Patient\s*Name|Name\s*of\s*(?:the\s+)?Patient|Pt\.?\s*Name)`+optSep,
		compile(`\s+(?:Bill|Admit|Age|Gender|UHID|IP\s*No)`))
	patientName.RequireStop = true

	r := billRules{
		billNumber: Rules{
			Field(`(?:Bill\s*(?:Number|No\.?)|Invoice\s*(?:Number|No\.?)|Receipt\s*(?:Number|No\.?))` + optSep + `([A-Za-z0-9\-/]+)`),
			Field(`\b(IP[\-\s]?\d{4}[\-\s]?\d{3,})\b`),
		},
		billDate: Rules{
			Field(`(?:Bill\s*Date|Invoice\s*Date|Date\s*of\s*Bill)` + optSep + numericDate),
			Field(`(?:Bill\s*Date|Invoice\s*Date)` + optSep + monthDate),
		},
		patientName: Rules{patientName},
		roomRate: Rules{
			Amount(`Room\s*Rent.*?Rate[:\s]*?` + money),
			Amount(`Room\s*Rent.*?` + money + `\s*(?:x|×)`),
		},
		roomDays: Rules{
			Field(`Room\s*Rent.*?(?:x|×)\s*(\d+)\s*Days?`),
			Field(`Room\s*Rent.*?(\d+)\s*Days?`),
		},
		// rate and total on one line; the rightmost group is the total
		roomTotal: Rules{
			Amount(`Room\s*Rent.*?` + money + `.*?` + money),
		},
		icu:     Rules{charge(`ICU`)},
		nursing: Rules{charge(`Nursing`)},
		doctorVisit: Rules{
			charge(`Doctor\s*(?:Visit\s*)?`),
			charge(`Consultation`),
		},
		surgery: Rules{
			charge(`Surgery`),
			charge(`Surgical`),
		},
		anesthesia: Rules{
			charge(`Anesth?esia`),
			charge(`Anaesth?esia`),
		},
		operationTheatre: Rules{
			charge(`Operation\s*Theat(?:re|er)`),
			charge(`O\.?\s*T\.?`),
		},
		pharmacy: Rules{
			charge(`Pharmacy`),
			charge(`Medicine`),
		},
		investigation: Rules{
			charge(`Investigation`),
			charge(`Lab(?:oratory)?`),
			Amount(`Pathology\s*(?:&|and)?\s*Imaging\s+.*?` + money),
		},
		consumables: Rules{charge(`Consumables?`)},
		equipment:   Rules{charge(`Equipment`)},
		grossTotal: Rules{
			Amount(`GROSS\s*TOTAL` + optSep + currency + money),
			Amount(`(?:Grand\s*Total|Total\s*Amount|Sub\s*Total)` + optSep + currency + money),
		},
		discount: Rules{
			Amount(`DISCOUNT` + optSep + `[-–]?\s*` + currency + money),
		},
		netPayable: Rules{
			Amount(`NET\s*PAYABLE` + optSep + currency + money),
			Amount(`(?:Net\s*(?:Amount|Bill)|Amount\s*Payable|Final\s*Amount|(?:Total\s*)?Payable)` + optSep + currency + money),
		},
	}
	for _, label := range t.RegistrationLabels {
		r.registration = append(r.registration, charge(namePattern(label)))
	}
	for _, label := range t.MiscellaneousLabels {
		r.miscellaneous = append(r.miscellaneous, charge(namePattern(label)))
	}
	if len(t.DiscountLabels) > 0 {
		r.discount = append(r.discount, Amount(alternation(t.DiscountLabels)+optSep+currency+money))
	}
	return r
}

// BillExtractor reads itemised hospital bills.
type BillExtractor struct {
	rules  billRules
	logger *slog.Logger
}

// NewBillExtractor compiles the pattern table against t. A nil table uses
// the embedded defaults.
func NewBillExtractor(t *LookupTable, logger *slog.Logger) *BillExtractor {
	if t == nil {
		t = DefaultLookupTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BillExtractor{rules: buildBillRules(t), logger: logger}
}

func (e *BillExtractor) Extract(_ context.Context, text string) Result[HospitalBill] {
	r := e.rules
	data := HospitalBill{
		BillNumber:  Match(text, r.billNumber),
		BillDate:    Match(text, r.billDate),
		PatientName: Match(text, r.patientName),
		RoomRent: RoomRent{
			RatePerDay:   Match(text, r.roomRate),
			NumberOfDays: Match(text, r.roomDays),
			Total:        Match(text, r.roomTotal),
		},
		ICUCharges:              Match(text, r.icu),
		NursingCharges:          Match(text, r.nursing),
		DoctorVisitCharges:      Match(text, r.doctorVisit),
		SurgeryCharges:          Match(text, r.surgery),
		AnesthesiaCharges:       Match(text, r.anesthesia),
		OperationTheatreCharges: Match(text, r.operationTheatre),
		PharmacyCharges:         Match(text, r.pharmacy),
		InvestigationCharges:    Match(text, r.investigation),
		ConsumablesCharges:      Match(text, r.consumables),
		EquipmentCharges:        Match(text, r.equipment),
		RegistrationCharges:     Match(text, r.registration),
		MiscellaneousCharges:    Match(text, r.miscellaneous),
		GrossTotal:              Match(text, r.grossTotal),
		Discount:                Match(text, r.discount),
		NetPayable:              Match(text, r.netPayable),
	}
	res := Score(data, text)
	e.logger.Debug("extract.bill.done", "found", res.Found(), "success", res.Success)
	return res
}

var _ Extractor[HospitalBill] = (*BillExtractor)(nil)

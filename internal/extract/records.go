package extract

import "github.com/kabir-fx/abhiraksha/constants"

type DischargeSummary struct {
	PatientName              string `json:"patient_name" yaml:"patient_name"`
	Age                      string `json:"age" yaml:"age"`
	Gender                   string `json:"gender" yaml:"gender"`
	UHIDNumber               string `json:"uhid_number" yaml:"uhid_number"`
	AdmissionDate            string `json:"admission_date" yaml:"admission_date"`
	DischargeDate            string `json:"discharge_date" yaml:"discharge_date"`
	PrimaryDiagnosis         string `json:"primary_diagnosis" yaml:"primary_diagnosis"`
	SecondaryDiagnosis       string `json:"secondary_diagnosis" yaml:"secondary_diagnosis"`
	ProcedurePerformed       string `json:"procedure_performed" yaml:"procedure_performed"`
	ClinicalSummary          string `json:"clinical_summary" yaml:"clinical_summary"`
	TreatmentGiven           string `json:"treatment_given" yaml:"treatment_given"`
	ConditionAtDischarge     string `json:"condition_at_discharge" yaml:"condition_at_discharge"`
	DoctorName               string `json:"doctor_name" yaml:"doctor_name"`
	DoctorRegistrationNumber string `json:"doctor_registration_number" yaml:"doctor_registration_number"`
}

func (DischargeSummary) Document() constants.DocumentType { return constants.Discharge }

func (d DischargeSummary) Fields() []FieldValue {
	return []FieldValue{
		{"patient_name", d.PatientName},
		{"age", d.Age},
		{"gender", d.Gender},
		{"uhid_number", d.UHIDNumber},
		{"admission_date", d.AdmissionDate},
		{"discharge_date", d.DischargeDate},
		{"primary_diagnosis", d.PrimaryDiagnosis},
		{"secondary_diagnosis", d.SecondaryDiagnosis},
		{"procedure_performed", d.ProcedurePerformed},
		{"clinical_summary", d.ClinicalSummary},
		{"treatment_given", d.TreatmentGiven},
		{"condition_at_discharge", d.ConditionAtDischarge},
		{"doctor_name", d.DoctorName},
		{"doctor_registration_number", d.DoctorRegistrationNumber},
	}
}

type InsurancePolicy struct {
	PolicyNumber      string `json:"policy_number" yaml:"policy_number"`
	InsuredName       string `json:"insured_name" yaml:"insured_name"`
	Insurer           string `json:"insurer" yaml:"insurer"`
	TPAName           string `json:"tpa_name" yaml:"tpa_name"`
	SumInsured        string `json:"sum_insured" yaml:"sum_insured"`
	PolicyPeriodStart string `json:"policy_period_start" yaml:"policy_period_start"`
	PolicyPeriodEnd   string `json:"policy_period_end" yaml:"policy_period_end"`
	PlanType          string `json:"plan_type" yaml:"plan_type"`
	CoverageType      string `json:"coverage_type" yaml:"coverage_type"`
}

func (InsurancePolicy) Document() constants.DocumentType { return constants.Insurance }

func (p InsurancePolicy) Fields() []FieldValue {
	return []FieldValue{
		{"policy_number", p.PolicyNumber},
		{"insured_name", p.InsuredName},
		{"insurer", p.Insurer},
		{"tpa_name", p.TPAName},
		{"sum_insured", p.SumInsured},
		{"policy_period_start", p.PolicyPeriodStart},
		{"policy_period_end", p.PolicyPeriodEnd},
		{"plan_type", p.PlanType},
		{"coverage_type", p.CoverageType},
	}
}

type RoomRent struct {
	RatePerDay   string `json:"rate_per_day" yaml:"rate_per_day"`
	NumberOfDays string `json:"number_of_days" yaml:"number_of_days"`
	Total        string `json:"total" yaml:"total"`
}

type HospitalBill struct {
	BillNumber              string   `json:"bill_number" yaml:"bill_number"`
	BillDate                string   `json:"bill_date" yaml:"bill_date"`
	PatientName             string   `json:"patient_name" yaml:"patient_name"`
	RoomRent                RoomRent `json:"room_rent" yaml:"room_rent"`
	ICUCharges              string   `json:"icu_charges" yaml:"icu_charges"`
	NursingCharges          string   `json:"nursing_charges" yaml:"nursing_charges"`
	DoctorVisitCharges      string   `json:"doctor_visit_charges" yaml:"doctor_visit_charges"`
	SurgeryCharges          string   `json:"surgery_charges" yaml:"surgery_charges"`
	AnesthesiaCharges       string   `json:"anesthesia_charges" yaml:"anesthesia_charges"`
	OperationTheatreCharges string   `json:"operation_theatre_charges" yaml:"operation_theatre_charges"`
	PharmacyCharges         string   `json:"pharmacy_charges" yaml:"pharmacy_charges"`
	InvestigationCharges    string   `json:"investigation_charges" yaml:"investigation_charges"`
	ConsumablesCharges      string   `json:"consumables_charges" yaml:"consumables_charges"`
	EquipmentCharges        string   `json:"equipment_charges" yaml:"equipment_charges"`
	RegistrationCharges     string   `json:"registration_charges" yaml:"registration_charges"`
	MiscellaneousCharges    string   `json:"miscellaneous_charges" yaml:"miscellaneous_charges"`
	GrossTotal              string   `json:"gross_total" yaml:"gross_total"`
	Discount                string   `json:"discount" yaml:"discount"`
	NetPayable              string   `json:"net_payable" yaml:"net_payable"`
}

func (HospitalBill) Document() constants.DocumentType { return constants.Bill }

// Fields flattens room_rent into dotted keys; the record keeps the nested shape.
func (b HospitalBill) Fields() []FieldValue {
	return []FieldValue{
		{"bill_number", b.BillNumber},
		{"bill_date", b.BillDate},
		{"patient_name", b.PatientName},
		{"room_rent.rate_per_day", b.RoomRent.RatePerDay},
		{"room_rent.number_of_days", b.RoomRent.NumberOfDays},
		{"room_rent.total", b.RoomRent.Total},
		{"icu_charges", b.ICUCharges},
		{"nursing_charges", b.NursingCharges},
		{"doctor_visit_charges", b.DoctorVisitCharges},
		{"surgery_charges", b.SurgeryCharges},
		{"anesthesia_charges", b.AnesthesiaCharges},
		{"operation_theatre_charges", b.OperationTheatreCharges},
		{"pharmacy_charges", b.PharmacyCharges},
		{"investigation_charges", b.InvestigationCharges},
		{"consumables_charges", b.ConsumablesCharges},
		{"equipment_charges", b.EquipmentCharges},
		{"registration_charges", b.RegistrationCharges},
		{"miscellaneous_charges", b.MiscellaneousCharges},
		{"gross_total", b.GrossTotal},
		{"discount", b.Discount},
		{"net_payable", b.NetPayable},
	}
}

package extract

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDischargeExtractor_IdentityLine(t *testing.T) {
	text := "Patient Name: Rahul Verma Age: 45 years Gender: Male UHID: UH2023001"
	res := NewDischargeExtractor(nil).Extract(t.Context(), text)

	assert.Equal(t, "Rahul Verma", res.Data.PatientName)
	assert.Equal(t, "45 years", res.Data.Age)
	assert.Equal(t, "Male", res.Data.Gender)
	assert.Equal(t, "UH2023001", res.Data.UHIDNumber)
	for _, k := range []string{"patient_name", "age", "gender", "uhid_number"} {
		assert.True(t, res.Confidence[k], k)
	}
	assert.True(t, res.Success)
	assert.Equal(t, text, res.RawText)
	assert.Empty(t, res.Error)
}

func TestDischargeExtractor_MergedSummary(t *testing.T) {
	text := "DISCHARGE SUMMARY Patient Name: Rahul Verma Age: 45 years Gender: Male UHID: UH2023001 " +
		"Date of Admission: 10/03/2024 Date of Discharge: 15/03/2024 " +
		"Primary Diagnosis: Acute Appendicitis Secondary Diagnosis: Type 2 Diabetes Mellitus " +
		"Procedure Performed: Laparoscopic Appendectomy " +
		"Clinical Summary: Patient presented with severe abdominal pain and fever. " +
		"Treatment Given: IV antibiotics and analgesics. " +
		"Condition at Discharge: Stable and afebrile Treating Doctor: Dr. Anil Mehta Registration No: MH-45821"

	res := NewDischargeExtractor(nil).Extract(t.Context(), text)

	want := DischargeSummary{
		PatientName:              "Rahul Verma",
		Age:                      "45 years",
		Gender:                   "Male",
		UHIDNumber:               "UH2023001",
		AdmissionDate:            "10/03/2024",
		DischargeDate:            "15/03/2024",
		PrimaryDiagnosis:         "Acute Appendicitis",
		SecondaryDiagnosis:       "Type 2 Diabetes Mellitus",
		ProcedurePerformed:       "Laparoscopic Appendectomy",
		ClinicalSummary:          "Patient presented with severe abdominal pain and fever.",
		TreatmentGiven:           "IV antibiotics and analgesics.",
		ConditionAtDischarge:     "Stable and afebrile",
		DoctorName:               "Anil Mehta",
		DoctorRegistrationNumber: "MH-45821",
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("discharge mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 14, res.Found())
	assert.True(t, res.Success)
}

func TestDischargeExtractor_MonthNameDates(t *testing.T) {
	text := "Admission Date: 3 March, 2024\nDischarge Date: 7 Mar 2024"
	res := NewDischargeExtractor(nil).Extract(t.Context(), text)

	assert.Equal(t, "3 March, 2024", res.Data.AdmissionDate)
	assert.Equal(t, "7 Mar 2024", res.Data.DischargeDate)
	assert.False(t, res.Success, "two fields are below the discharge minimum")
}

func TestDischargeExtractor_AgeFallsBackToBareYears(t *testing.T) {
	res := NewDischargeExtractor(nil).Extract(t.Context(), "A 62 years old male was admitted")
	assert.Equal(t, "62", res.Data.Age)
}

func TestDischargeExtractor_ConfidenceKeysMatchSchema(t *testing.T) {
	inputs := []string{
		"",
		"random words without labels",
		"Patient Name: A Age: 1 Gender: F",
	}
	want := FieldNames[DischargeSummary]()
	sort.Strings(want)
	require.Len(t, want, 14)

	ex := NewDischargeExtractor(nil)
	for _, in := range inputs {
		res := ex.Extract(t.Context(), in)
		got := make([]string, 0, len(res.Confidence))
		for k := range res.Confidence {
			got = append(got, k)
		}
		sort.Strings(got)
		assert.Equal(t, want, got)
		assert.Equal(t, res.Found() >= 3, res.Success)
	}
}

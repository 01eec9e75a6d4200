package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/adjudicate"
	"github.com/kabir-fx/abhiraksha/internal/extract"
)

func TestClaimXLSX(t *testing.T) {
	bill := extract.Score(extract.HospitalBill{BillNumber: "B-1", RoomRent: extract.RoomRent{Total: "19500.00"}}, "raw")
	insurance := extract.Result[extract.InsurancePolicy]{
		Success: true,
		Data:    extract.InsurancePolicy{PolicyNumber: "P-1"},
		RawText: constants.DatabaseLookup,
	}
	verdict := &adjudicate.ClaimVerdict{
		Decision:        constants.Rejected,
		ConfidenceScore: 80,
		Reasoning:       []string{"Net payable does not subtract the discount"},
		MissingInfo:     []string{"uhid_number"},
	}

	b, err := NewService(nil).ClaimXLSX(t.Context(), Claim{Insurance: &insurance, Bill: &bill, Verdict: verdict})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Fields"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Decision", "Rejected"}, summary[0])
	assert.Equal(t, []string{"Confidence Score", "80"}, summary[1])
	assert.Equal(t, []string{"", "Net payable does not subtract the discount"}, summary[4])

	rows, err := f.GetRows("Fields")
	require.NoError(t, err)
	assert.Equal(t, []string{"Document", "Field", "Value", "Found", "Source"}, rows[0])
	assert.Equal(t, []string{"insurance", "policy_number", "P-1", "yes", "Database Lookup"}, rows[1])
	assert.Len(t, rows, 1+9+21)

	var total []string
	for _, r := range rows {
		if len(r) > 1 && r[1] == "room_rent.total" {
			total = r
		}
	}
	assert.Equal(t, []string{"bill", "room_rent.total", "19500.00", "yes", "Text Extraction"}, total)
}

func TestClaimXLSX_Empty(t *testing.T) {
	b, err := NewService(nil).ClaimXLSX(t.Context(), Claim{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Not analyzed", v)
}

// Package export renders a claim (extracted records plus verdict) as an
// XLSX workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/adjudicate"
	"github.com/kabir-fx/abhiraksha/internal/extract"
)

const (
	summarySheet = "Summary"
	fieldsSheet  = "Fields"
)

// Claim is the content of one report. Any part may be nil.
type Claim struct {
	Insurance *extract.Result[extract.InsurancePolicy]  `json:"insurance"`
	Discharge *extract.Result[extract.DischargeSummary] `json:"discharge"`
	Bill      *extract.Result[extract.HospitalBill]     `json:"bill"`
	Verdict   *adjudicate.ClaimVerdict                  `json:"verdict"`
}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// section is one record flattened for the Fields sheet.
type section struct {
	doc        constants.DocumentType
	fields     []extract.FieldValue
	confidence map[string]bool
	source     string
}

func sectionOf[T extract.Schema](r *extract.Result[T]) *section {
	if r == nil {
		return nil
	}
	return &section{doc: r.Data.Document(), fields: r.Data.Fields(), confidence: r.Confidence, source: source(r.RawText)}
}

func source(raw string) string {
	if raw == constants.DatabaseLookup {
		return raw
	}
	return "Text Extraction"
}

// ClaimXLSX returns the workbook bytes.
func (s *Service) ClaimXLSX(_ context.Context, c Claim) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(fieldsSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(summarySheet)
	f.SetActiveSheet(activeIndex)

	writeSummary(f, c.Verdict)

	headers := []string{"Document", "Field", "Value", "Found", "Source"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(fieldsSheet, cell, h)
	}

	row := 2
	for _, sec := range []*section{sectionOf(c.Insurance), sectionOf(c.Discharge), sectionOf(c.Bill)} {
		if sec == nil {
			continue
		}
		for _, fv := range sec.fields {
			found, ok := sec.confidence[fv.Name]
			if !ok {
				found = strings.TrimSpace(fv.Value) != ""
			}
			writeRow(f, fieldsSheet, row, string(sec.doc), fv.Name, fv.Value, yesNo(found), sec.source)
			row++
		}
	}

	_ = f.SetColWidth(fieldsSheet, "A", "A", 12)
	_ = f.SetColWidth(fieldsSheet, "B", "B", 30)
	_ = f.SetColWidth(fieldsSheet, "C", "C", 60)
	_ = f.SetColWidth(fieldsSheet, "D", "E", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", row-2,
		"verdict", c.Verdict != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, v *adjudicate.ClaimVerdict) {
	if v == nil {
		writeRow(f, summarySheet, 1, "Decision", "Not analyzed")
		return
	}
	writeRow(f, summarySheet, 1, "Decision", string(v.Decision))
	writeRow(f, summarySheet, 2, "Confidence Score", v.ConfidenceScore)
	row := 4
	writeRow(f, summarySheet, row, "Reasoning")
	for _, r := range v.Reasoning {
		row++
		writeRow(f, summarySheet, row, "", r)
	}
	row += 2
	writeRow(f, summarySheet, row, "Missing Information")
	for _, m := range v.MissingInfo {
		row++
		writeRow(f, summarySheet, row, "", m)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 22)
	_ = f.SetColWidth(summarySheet, "B", "B", 90)
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

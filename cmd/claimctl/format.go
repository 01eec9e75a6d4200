package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kabir-fx/abhiraksha/internal/adjudicate"
	"github.com/kabir-fx/abhiraksha/internal/extract"
	"github.com/kabir-fx/abhiraksha/internal/ingest"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "-"
}

// renderResult prints one field per row with its confidence flag.
func renderResult[T extract.Schema](w io.Writer, r *extract.Result[T]) {
	if r == nil {
		return
	}
	t := newTable(w, string(r.Data.Document()))
	t.AppendHeader(table.Row{"Field", "Value", "Found"})
	for _, f := range r.Data.Fields() {
		t.AppendRow(table.Row{f.Name, f.Value, mark(r.Confidence[f.Name])})
	}
	t.AppendFooter(table.Row{"success", fmt.Sprintf("%d/%d", r.Found(), len(r.Confidence)), mark(r.Success)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
		{Number: 3, Align: text.AlignCenter},
	})
	t.Render()
}

// renderOutcome dispatches on the concrete record type.
func renderOutcome(w io.Writer, out extract.Outcome) error {
	switch r := out.(type) {
	case extract.Result[extract.InsurancePolicy]:
		renderResult(w, &r)
	case extract.Result[extract.DischargeSummary]:
		renderResult(w, &r)
	case extract.Result[extract.HospitalBill]:
		renderResult(w, &r)
	default:
		return fmt.Errorf("unexpected result type %T", out)
	}
	return nil
}

func renderVerdict(w io.Writer, v adjudicate.ClaimVerdict) {
	t := newTable(w, "verdict")
	t.AppendRow(table.Row{"Decision", v.Decision})
	t.AppendRow(table.Row{"Confidence", fmt.Sprintf("%d%%", v.ConfidenceScore)})
	for i, r := range v.Reasoning {
		label := ""
		if i == 0 {
			label = "Reasoning"
		}
		t.AppendRow(table.Row{label, r})
	}
	for i, m := range v.MissingInfo {
		label := ""
		if i == 0 {
			label = "Missing"
		}
		t.AppendRow(table.Row{label, m})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	t.Render()
}

func renderBatch(w io.Writer, results []ingest.FileResult, stats ingest.DirStats) {
	t := newTable(w, "batch")
	t.AppendHeader(table.Row{"File", "Type", "Output", "Error"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Path, r.Document, r.Output, r.Err})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("scanned %d", stats.Scanned),
		fmt.Sprintf("matched %d", stats.Matched),
		fmt.Sprintf("ok %d, skipped %d", stats.Succeeded, stats.Skipped),
		fmt.Sprintf("failed %d", stats.Failed),
	})
	t.Render()
}

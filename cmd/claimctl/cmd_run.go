package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kabir-fx/abhiraksha/internal/export"
	"github.com/kabir-fx/abhiraksha/internal/pipeline"
)

type runOptions struct {
	insurance string
	discharge string
	bill      string
	policy    string
	noAnalyze bool
	xlsx      string
	json      bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract every claim document, then adjudicate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.insurance == "" && opts.policy == "" && opts.discharge == "" && opts.bill == "" {
				return errors.New("at least one of --insurance, --policy, --discharge or --bill is required")
			}
			deps, err := root.deps(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			report, err := deps.Processor.ExtractClaim(cmd.Context(), pipeline.ClaimDocuments{
				InsurancePath: opts.insurance,
				DischargePath: opts.discharge,
				BillPath:      opts.bill,
				PolicyNumber:  opts.policy,
				Analyze:       !opts.noAnalyze,
			})
			if err != nil {
				return err
			}

			if opts.xlsx != "" {
				b, err := export.NewService(deps.Logger).ClaimXLSX(cmd.Context(), export.Claim{
					Insurance: report.Insurance,
					Discharge: report.Discharge,
					Bill:      report.Bill,
					Verdict:   report.Verdict,
				})
				if err != nil {
					return err
				}
				if err := os.WriteFile(opts.xlsx, b, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(w, report)
			}
			fmt.Fprintf(w, "discharge strategy: %s\n", report.Strategy)
			renderResult(w, report.Insurance)
			renderResult(w, report.Discharge)
			renderResult(w, report.Bill)
			switch {
			case report.Verdict != nil:
				renderVerdict(w, *report.Verdict)
			case report.AnalyzeError != "":
				fmt.Fprintf(w, "analysis failed: %s\n", report.AnalyzeError)
			}
			if opts.xlsx != "" {
				fmt.Fprintf(w, "report: %s\n", opts.xlsx)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.insurance, "insurance", "", "Insurance policy document")
	f.StringVar(&opts.policy, "policy", "", "Policy number to look up instead of --insurance")
	f.StringVar(&opts.discharge, "discharge", "", "Discharge summary document")
	f.StringVar(&opts.bill, "bill", "", "Hospital bill document")
	f.BoolVar(&opts.noAnalyze, "no-analyze", false, "Stop after extraction")
	f.StringVar(&opts.xlsx, "xlsx", "", "Write an XLSX claim report to this path")
	f.BoolVar(&opts.json, "json", false, "Print the report as JSON")
	cmd.MarkFlagsMutuallyExclusive("insurance", "policy")
	return cmd
}

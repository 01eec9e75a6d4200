package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kabir-fx/abhiraksha/constants"
)

func newExtractCmd(root *rootOptions) *cobra.Command {
	var docType string
	var asTable bool

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract one document into a scored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, ok := constants.ParseDocumentType(docType)
			if !ok {
				return fmt.Errorf("invalid --type %q: must be insurance, discharge or bill", docType)
			}
			deps, err := root.deps(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			out, err := deps.Processor.ExtractFile(cmd.Context(), doc, args[0])
			if err != nil {
				return fmt.Errorf("extract %s: %w", args[0], err)
			}
			w := cmd.OutOrStdout()
			if asTable {
				fmt.Fprintf(w, "strategy: %s\n", deps.Processor.StrategyFor(doc))
				return renderOutcome(w, out)
			}
			return writeJSON(w, out)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&docType, "type", "t", "", "Document type: insurance, discharge or bill (required)")
	f.BoolVar(&asTable, "table", false, "Print a field table instead of JSON")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kabir-fx/abhiraksha/internal/adjudicate"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:   "analyze [claim.json]",
		Short: "Adjudicate a claim from its extracted records",
		Long:  "Reads {\"insurance\":…, \"discharge\":…, \"bill\":…} from the file or stdin\nand prints the model's verdict.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var in adjudicate.ClaimInput
			if err := json.NewDecoder(r).Decode(&in); err != nil {
				return fmt.Errorf("parse claim: %w", err)
			}

			deps, err := root.deps(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			v, err := deps.Processor.Analyze(cmd.Context(), in)
			if err != nil {
				return err
			}
			if asTable {
				renderVerdict(cmd.OutOrStdout(), v)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "Print a table instead of JSON")
	return cmd
}

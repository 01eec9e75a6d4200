package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kabir-fx/abhiraksha/internal/app"
	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/policy"
)

func newPolicyCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Read and load stored insurance policies",
	}
	cmd.AddCommand(newPolicyGetCmd(root), newPolicyImportCmd(root))
	return cmd
}

func newPolicyGetCmd(root *rootOptions) *cobra.Command {
	var asTable bool
	cmd := &cobra.Command{
		Use:   "get <policy-number>",
		Short: "Print one stored policy as an extraction result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := root.deps(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			res, err := deps.Processor.LookupPolicy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asTable {
				renderResult(cmd.OutOrStdout(), &res)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "Print a field table instead of JSON")
	return cmd
}

func newPolicyImportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Upsert policies from a YAML file",
		Long:  "The file holds a top-level \"policies\" list; each entry uses the\ninsurance record field names (policy_number, insured_name, insurer, …).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.store(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := policy.Import(cmd.Context(), store, f)
			if err != nil {
				return fmt.Errorf("imported %d before failing: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d policies\n", n)
			return nil
		},
	}
}

// store opens only the policy store, so imports work without a model or
// pdftotext.
func (o *rootOptions) store(cmd *cobra.Command) (policy.Store, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return app.OpenStore(cmd.Context(), cfg.Database, common.NewLogger(cfg.Log, cmd.ErrOrStderr()))
}

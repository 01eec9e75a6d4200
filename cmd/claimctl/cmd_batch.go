package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kabir-fx/abhiraksha/internal/ingest"
)

func newBatchCmd(root *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Extract every document under a directory into JSON files",
		Long:  "Walks <dir> once. The document type comes from the parent directory\n(insurance/, discharge/, bill/) or the filename prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := root.deps(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			inbox := ingest.NewInbox(args[0], outDir, 0, deps.Processor, deps.Logger)
			results, stats, err := inbox.ProcessDirectory(cmd.Context(), args[0])
			renderBatch(cmd.OutOrStdout(), results, stats)
			if err != nil {
				return err
			}
			if stats.Failed > 0 {
				return fmt.Errorf("%d of %d documents failed", stats.Failed, stats.Matched)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/kabir-fx/abhiraksha/internal/app"
	"github.com/kabir-fx/abhiraksha/internal/common"
)

// rootOptions override the environment for a single invocation.
type rootOptions struct {
	strategy string
	dsn      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "claimctl",
		Short:         "Extract, look up and adjudicate health insurance claims",
		Long:          "claimctl extracts structured records from policy, discharge and bill\ndocuments and asks the configured model for a claim decision.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.strategy, "strategy", "", "Discharge strategy: auto, ai or regex (default from DISCHARGE_STRATEGY)")
	f.StringVar(&opts.dsn, "db", "", "Policy store DSN (default from DB_URL)")
	f.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		newExtractCmd(opts),
		newAnalyzeCmd(opts),
		newRunCmd(opts),
		newBatchCmd(opts),
		newPolicyCmd(opts),
	)
	return root
}

func (o *rootOptions) config() (*common.Config, error) {
	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, err
	}
	if o.strategy != "" {
		cfg.Extraction.DischargeStrategy = o.strategy
	}
	if o.dsn != "" {
		cfg.Database.DSN = o.dsn
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// deps builds the pipeline with logs going to the command's stderr.
func (o *rootOptions) deps(cmd *cobra.Command) (*app.Deps, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	logger := common.NewLogger(cfg.Log, cmd.ErrOrStderr())
	return app.Build(cmd.Context(), cfg, logger, nil)
}

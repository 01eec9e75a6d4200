// Package app assembles the claim pipeline from configuration. Both the
// daemon and the CLI build their dependencies here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/extract"
	"github.com/kabir-fx/abhiraksha/internal/llm"
	"github.com/kabir-fx/abhiraksha/internal/llm/gemini"
	"github.com/kabir-fx/abhiraksha/internal/llm/openai"
	"github.com/kabir-fx/abhiraksha/internal/metrics"
	"github.com/kabir-fx/abhiraksha/internal/pipeline"
	"github.com/kabir-fx/abhiraksha/internal/policy"
	"github.com/kabir-fx/abhiraksha/internal/textract"
)

var ErrStoreDisabled = errors.New("policy store is not configured (set DB_URL)")

type Deps struct {
	Config    *common.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Generator llm.Generator
	Store     policy.Store
	Processor *pipeline.Processor
}

// NewGenerator returns the configured model client, or nil when no API key
// is set.
func NewGenerator(cfg common.LLMConfig, logger *slog.Logger) llm.Generator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	switch cfg.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	default:
		return gemini.NewClient(gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	}
}

// OpenStore opens the policy store named by cfg.DSN.
func OpenStore(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (policy.Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrStoreDisabled
	}
	return policy.Open(ctx, policy.Config{
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
}

// Build wires the processor. m may be nil. The store is opened only when a
// DSN is configured; without one, policy lookup reports itself unavailable.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger, m *metrics.Metrics) (*Deps, error) {
	if logger == nil {
		logger = slog.Default()
	}
	strategy, ok := constants.ParseStrategy(cfg.Extraction.DischargeStrategy)
	if !ok {
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown discharge strategy %q", cfg.Extraction.DischargeStrategy), common.ErrInvalidInput)
	}

	table := extract.DefaultLookupTable()
	if cfg.Extraction.LookupFile != "" {
		t, err := extract.LoadLookupTable(cfg.Extraction.LookupFile)
		if err != nil {
			return nil, fmt.Errorf("load lookup table: %w", err)
		}
		table = t
	}

	d := &Deps{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		Generator: NewGenerator(cfg.LLM, logger),
	}
	if d.Generator == nil {
		logger.Info("app.llm.disabled", "reason", "no API key")
	} else {
		logger.Info("app.llm.enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}

	var policies *policy.Service
	if cfg.StoreEnabled() {
		store, err := OpenStore(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		d.Store = store
		policies = policy.NewService(store, logger)
	}

	proc, err := pipeline.NewProcessor(pipeline.Options{
		Strategy:  strategy,
		Generator: d.Generator,
		Lookup:    table,
		Text:      textract.NewExtractor(textract.Config{Pdftotext: cfg.PDF.PdftotextBin}, logger),
		Policies:  policies,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Processor = proc
	return d, nil
}

// Ready reports whether the store, when configured, is reachable.
func (d *Deps) Ready(ctx context.Context) error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Ping(ctx)
}

func (d *Deps) Close() {
	if d.Store != nil {
		d.Store.Close()
	}
}

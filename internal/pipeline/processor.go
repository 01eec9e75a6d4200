// Package pipeline wires text extraction, field extraction, policy lookup
// and adjudication into the operations every transport exposes.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/adjudicate"
	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/extract"
	"github.com/kabir-fx/abhiraksha/internal/llm"
	"github.com/kabir-fx/abhiraksha/internal/metrics"
	"github.com/kabir-fx/abhiraksha/internal/policy"
)

const (
	lookupUnavailableMessage = "Policy lookup is not configured."
	analyzeUnavailable       = "Claim analysis is not configured."
)

type Options struct {
	Strategy  constants.Strategy
	Generator llm.Generator // nil disables the model-backed paths
	Lookup    *extract.LookupTable
	Text      TextSource
	Policies  *policy.Service // nil disables policy lookup
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Processor coordinates text extraction, field extraction and adjudication.
type Processor struct {
	Logger   *slog.Logger
	Text     *TextStage
	Extract  *ExtractStage
	adjudge  *adjudicate.Adjudicator
	policies *policy.Service
	metrics  *metrics.Metrics
}

func NewProcessor(opts Options) (*Processor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gen := opts.Generator
	if gen != nil {
		gen = metrics.InstrumentGenerator(gen, opts.Metrics)
	}
	stage, err := NewExtractStage(opts.Strategy, gen, opts.Lookup, opts.Metrics, logger)
	if err != nil {
		return nil, err
	}
	p := &Processor{
		Logger:   logger,
		Extract:  stage,
		policies: opts.Policies,
		metrics:  opts.Metrics,
	}
	if opts.Text != nil {
		p.Text = NewTextStage(opts.Text, logger)
	}
	if gen != nil {
		p.adjudge = adjudicate.New(gen, logger)
	}
	return p, nil
}

// ExtractText runs the extractor for doc over already-merged text.
func (p *Processor) ExtractText(ctx context.Context, doc constants.DocumentType, text string) (extract.Outcome, error) {
	return p.Extract.Run(ctx, doc, text)
}

// ExtractFile reads path into text and extracts it as doc.
func (p *Processor) ExtractFile(ctx context.Context, doc constants.DocumentType, path string) (extract.Outcome, error) {
	text, err := p.text().FromFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.Extract.Run(ctx, doc, text)
}

// ExtractUpload extracts an uploaded document held in memory.
func (p *Processor) ExtractUpload(ctx context.Context, doc constants.DocumentType, data []byte, ext string) (extract.Outcome, error) {
	text, err := p.text().FromUpload(ctx, data, ext)
	if err != nil {
		return nil, err
	}
	return p.Extract.Run(ctx, doc, text)
}

func (p *Processor) text() *TextStage {
	if p.Text == nil {
		return &TextStage{Source: unavailableSource{}, Logger: p.Logger}
	}
	return p.Text
}

// Analyze adjudicates a claim. Input without sections is rejected before the
// model is considered.
func (p *Processor) Analyze(ctx context.Context, in adjudicate.ClaimInput) (adjudicate.ClaimVerdict, error) {
	if err := in.Validate(); err != nil {
		return adjudicate.ClaimVerdict{}, err
	}
	if p.adjudge == nil {
		return adjudicate.ClaimVerdict{}, common.NewAppError("LLM_NOT_CONFIGURED", analyzeUnavailable, common.ErrUpstream)
	}
	v, err := p.adjudge.Analyze(ctx, in)
	p.metrics.ObserveAdjudication(string(v.Decision))
	return v, err
}

// LookupPolicy serves a stored policy.
func (p *Processor) LookupPolicy(ctx context.Context, number string) (extract.Result[extract.InsurancePolicy], error) {
	if p.policies == nil {
		return extract.Result[extract.InsurancePolicy]{}, common.NewAppError("LOOKUP_NOT_CONFIGURED", lookupUnavailableMessage, common.ErrUpstream)
	}
	return p.policies.Lookup(ctx, number)
}

// StrategyFor reports which strategy extracts doc.
func (p *Processor) StrategyFor(doc constants.DocumentType) constants.Strategy {
	return p.Extract.StrategyFor(doc)
}

// ClaimDocuments names the sources of one claim. Empty paths are skipped.
// PolicyNumber is used for the insurance section when InsurancePath is empty.
type ClaimDocuments struct {
	InsurancePath string
	DischargePath string
	BillPath      string
	PolicyNumber  string
	Analyze       bool
}

// ClaimReport is the outcome of one claim run.
type ClaimReport struct {
	Insurance *extract.Result[extract.InsurancePolicy]  `json:"insurance"`
	Discharge *extract.Result[extract.DischargeSummary] `json:"discharge"`
	Bill      *extract.Result[extract.HospitalBill]     `json:"bill"`
	Strategy  constants.Strategy                        `json:"strategy"`
	Verdict   *adjudicate.ClaimVerdict                  `json:"verdict,omitempty"`
	// AnalyzeError is the public message of a failed adjudication.
	AnalyzeError string `json:"analyze_error,omitempty"`
}

// ExtractClaim extracts every supplied document concurrently, then
// optionally adjudicates the records it produced.
func (p *Processor) ExtractClaim(ctx context.Context, docs ClaimDocuments) (*ClaimReport, error) {
	report := &ClaimReport{Strategy: p.StrategyFor(constants.Discharge)}

	g, gctx := errgroup.WithContext(ctx)
	switch {
	case docs.InsurancePath != "":
		g.Go(func() error {
			res, err := extractAs[extract.InsurancePolicy](gctx, p, constants.Insurance, docs.InsurancePath)
			report.Insurance = res
			return err
		})
	case strings.TrimSpace(docs.PolicyNumber) != "":
		g.Go(func() error {
			res, err := p.LookupPolicy(gctx, docs.PolicyNumber)
			if err != nil {
				return fmt.Errorf("insurance: %w", err)
			}
			report.Insurance = &res
			return nil
		})
	}
	if docs.DischargePath != "" {
		g.Go(func() error {
			res, err := extractAs[extract.DischargeSummary](gctx, p, constants.Discharge, docs.DischargePath)
			report.Discharge = res
			return err
		})
	}
	if docs.BillPath != "" {
		g.Go(func() error {
			res, err := extractAs[extract.HospitalBill](gctx, p, constants.Bill, docs.BillPath)
			report.Bill = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !docs.Analyze {
		return report, nil
	}
	in, err := adjudicate.NewClaimInput(data(report.Insurance), data(report.Discharge), data(report.Bill))
	if err != nil {
		return nil, err
	}
	v, err := p.Analyze(ctx, in)
	if err != nil {
		p.Logger.Warn("pipeline.claim.analyze_failed", "error", err)
		report.AnalyzeError = common.PublicMessage(err, adjudicate.FailureMessage)
		return report, nil
	}
	report.Verdict = &v
	return report, nil
}

func extractAs[T extract.Schema](ctx context.Context, p *Processor, doc constants.DocumentType, path string) (*extract.Result[T], error) {
	out, err := p.ExtractFile(ctx, doc, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc, err)
	}
	res, ok := out.(extract.Result[T])
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", doc, out)
	}
	return &res, nil
}

func data[T extract.Schema](r *extract.Result[T]) *T {
	if r == nil {
		return nil
	}
	return &r.Data
}

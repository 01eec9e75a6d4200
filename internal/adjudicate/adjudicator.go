// Package adjudicate asks a language model for a claim decision over the
// consolidated extraction records and validates the answer before it is
// trusted.
package adjudicate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/llm"
)

const (
	// FailureMessage is the only text callers see for a failed analysis.
	FailureMessage     = "Failed to analyze the claim. Please try again."
	noSectionsMessage  = "At least one section of data is required for analysis."
	adjudicatePurpose  = "adjudicate"
	errCodeNoSections  = "NO_SECTIONS"
	errCodeAdjudicate  = "ADJUDICATION_FAILED"
	errCodeBadDecision = "INVALID_DECISION"
)

type Adjudicator struct {
	gen    llm.Generator
	logger *slog.Logger
}

func New(gen llm.Generator, logger *slog.Logger) *Adjudicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adjudicator{gen: gen, logger: logger}
}

// Analyze runs consolidate, prompt, invoke, unwrap, validate and normalize
// in that order. The model is called at most once.
func (a *Adjudicator) Analyze(ctx context.Context, in ClaimInput) (ClaimVerdict, error) {
	if err := in.Validate(); err != nil {
		return ClaimVerdict{}, err
	}

	rid := uuid.New().String()
	start := time.Now()
	log := common.LoggerFromContext(ctx, a.logger)

	consolidated, err := in.Consolidate()
	if err != nil {
		log.Error("adjudicate.consolidate_error", "adj_id", rid, "error", err)
		return ClaimVerdict{}, common.NewAppError(errCodeAdjudicate, FailureMessage,
			fmt.Errorf("%w: %w", common.ErrInternal, err))
	}

	log.Info("adjudicate.start", "adj_id", rid, "model", a.gen.Model(), "input_bytes", len(consolidated))

	raw, err := a.gen.Generate(ctx, llm.Request{
		Purpose: adjudicatePurpose,
		Prompt:  renderPrompt(consolidated),
		JSON:    true,
	})
	if err != nil {
		log.Error("adjudicate.model_error",
			"adj_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return ClaimVerdict{}, common.NewAppError(errCodeAdjudicate, FailureMessage,
			fmt.Errorf("%w: %w: %w", ErrModelCall, common.ErrUpstream, err))
	}

	verdict, err := ParseVerdict(raw)
	if err != nil {
		event, code := "adjudicate.malformed", errCodeAdjudicate
		if errors.Is(err, ErrInvalidDecision) {
			event, code = "adjudicate.invalid_decision", errCodeBadDecision
		}
		log.Error(event,
			"adj_id", rid, "error", err, "response", raw,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return ClaimVerdict{}, common.NewAppError(code, FailureMessage,
			fmt.Errorf("%w: %w", common.ErrValidation, err))
	}

	log.Info("adjudicate.ok",
		"adj_id", rid,
		"decision", verdict.Decision,
		"confidence_score", verdict.ConfidenceScore,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return verdict, nil
}

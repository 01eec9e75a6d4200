package pipeline

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
	"github.com/kabir-fx/abhiraksha/internal/metrics"
)

var ErrNoGenerator = errors.New("strategy requires a language model client")

const emptyTextMessage = "Document text is required."

// ExtractStage routes text to the extractor for its document type. The
// discharge strategy is fixed at construction; the two discharge
// implementations are never blended.
type ExtractStage struct {
	policy    extract.Extractor[extract.InsurancePolicy]
	bill      extract.Extractor[extract.HospitalBill]
	discharge extract.Extractor[extract.DischargeSummary]
	strategy  constants.Strategy
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// ResolveStrategy turns auto into a concrete strategy. auto picks the model
// when one is configured.
func ResolveStrategy(s constants.Strategy, gen llm.Generator) (constants.Strategy, error) {
	switch s {
	case constants.StrategyAI:
		if gen == nil {
			return "", fmt.Errorf("%w: %s", ErrNoGenerator, s)
		}
		return constants.StrategyAI, nil
	case constants.StrategyRegex:
		return constants.StrategyRegex, nil
	case constants.StrategyAuto, "":
		if gen != nil {
			return constants.StrategyAI, nil
		}
		return constants.StrategyRegex, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", s)
	}
}

func NewExtractStage(strategy constants.Strategy, gen llm.Generator, table *extract.LookupTable, m *metrics.Metrics, logger *slog.Logger) (*ExtractStage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	resolved, err := ResolveStrategy(strategy, gen)
	if err != nil {
		return nil, err
	}
	var discharge extract.Extractor[extract.DischargeSummary]
	if resolved == constants.StrategyAI {
		discharge = extract.NewAIDischargeExtractor(gen, logger)
	} else {
		discharge = extract.NewDischargeExtractor(logger)
	}
	logger.Info("pipeline.strategy", "discharge", resolved)
	return &ExtractStage{
		policy:    extract.NewPolicyExtractor(table, logger),
		bill:      extract.NewBillExtractor(table, logger),
		discharge: discharge,
		strategy:  resolved,
		metrics:   m,
		logger:    logger,
	}, nil
}

// StrategyFor reports which strategy serves doc.
func (s *ExtractStage) StrategyFor(doc constants.DocumentType) constants.Strategy {
	if doc == constants.Discharge {
		return s.strategy
	}
	return constants.StrategyRegex
}

// Run extracts text as doc. Empty text is a precondition failure and no
// extractor is invoked.
func (s *ExtractStage) Run(ctx context.Context, doc constants.DocumentType, text string) (extract.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.NewAppError("EMPTY_TEXT", emptyTextMessage, common.ErrPrecondition)
	}
	var out extract.Outcome
	switch doc {
	case constants.Insurance:
		out = s.policy.Extract(ctx, text)
	case constants.Discharge:
		out = s.discharge.Extract(ctx, text)
	case constants.Bill:
		out = s.bill.Extract(ctx, text)
	default:
		return nil, common.NewAppError("INVALID_DOCUMENT_TYPE",
			"Invalid document type. Must be 'insurance', 'discharge', or 'bill'.", common.ErrInvalidInput)
	}

	strategy := s.StrategyFor(doc)
	s.metrics.ObserveExtraction(string(doc), string(strategy), out.OK(), out.Found())
	common.LoggerFromContext(ctx, s.logger).Info("pipeline.extract.done",
		"document", doc,
		"strategy", strategy,
		"found", out.Found(),
		"success", out.OK(),
	)
	return out, nil
}

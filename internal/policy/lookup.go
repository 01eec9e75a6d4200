package policy

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/extract"
)

const (
	missingNumberMessage = "Policy number is required"
	notFoundMessage      = "Policy not found. Please check the policy number."
	lookupFailedMessage  = "Failed to perform policy lookup"
)

// Service answers policy lookups from a Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Lookup returns the stored policy as an extraction result. Every field is
// reported as found and RawText carries the provenance sentinel.
func (s *Service) Lookup(ctx context.Context, policyNumber string) (extract.Result[extract.InsurancePolicy], error) {
	var zero extract.Result[extract.InsurancePolicy]
	number := strings.TrimSpace(policyNumber)
	if number == "" {
		return zero, common.NewAppError("MISSING_POLICY_NUMBER", missingNumberMessage, common.ErrInvalidInput)
	}

	log := common.LoggerFromContext(ctx, s.logger)
	start := time.Now()
	p, err := s.store.Get(ctx, number)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Info("policy.lookup.miss", "elapsed_ms", time.Since(start).Milliseconds())
		return zero, common.NewAppError("POLICY_NOT_FOUND", notFoundMessage, common.ErrNotFound)
	case err != nil:
		log.Error("policy.lookup.error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return zero, common.NewAppError("POLICY_LOOKUP_FAILED", lookupFailedMessage, errors.Join(common.ErrDatabase, err))
	}

	log.Info("policy.lookup.hit", "elapsed_ms", time.Since(start).Milliseconds())
	return FromRecord(p), nil
}

// FromRecord wraps a stored record in the lookup result shape.
func FromRecord(p extract.InsurancePolicy) extract.Result[extract.InsurancePolicy] {
	names := extract.FieldNames[extract.InsurancePolicy]()
	confidence := make(map[string]bool, len(names))
	for _, n := range names {
		confidence[n] = true
	}
	return extract.Result[extract.InsurancePolicy]{
		Success:    true,
		Data:       p,
		RawText:    constants.DatabaseLookup,
		Confidence: confidence,
	}
}

// Package policy is the stored-policy data source. Records come back shaped
// exactly like the insurance policy extraction output.
package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kabir-fx/abhiraksha/internal/extract"
)

var ErrNotFound = errors.New("policy not found")

// Store reads and writes policy rows keyed by policy number.
type Store interface {
	Get(ctx context.Context, policyNumber string) (extract.InsurancePolicy, error)
	Upsert(ctx context.Context, p extract.InsurancePolicy) error
	Ping(ctx context.Context) error
	Close()
}

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// Open picks the backend from the DSN: postgres:// and postgresql:// use
// pgx, sqlite: and file: use the embedded SQLite driver.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := strings.TrimSpace(cfg.DSN)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, cfg, logger)
	case strings.HasPrefix(dsn, "sqlite:"):
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite:"), logger)
	case strings.HasPrefix(dsn, "file:"):
		return OpenSQLite(ctx, dsn, logger)
	case dsn == "":
		return nil, fmt.Errorf("open policy store: empty DSN")
	default:
		return nil, fmt.Errorf("open policy store: unsupported DSN scheme")
	}
}

// columns is the row layout shared by both backends, in scan order.
var columns = []string{
	"policy_number",
	"insured_name",
	"insurer",
	"tpa_name",
	"sum_insured",
	"policy_period_start",
	"policy_period_end",
	"plan_type",
	"coverage_type",
}

const createTable = `CREATE TABLE IF NOT EXISTS insurance_policies (
	policy_number       TEXT PRIMARY KEY,
	insured_name        TEXT NOT NULL DEFAULT '',
	insurer             TEXT NOT NULL DEFAULT '',
	tpa_name            TEXT NOT NULL DEFAULT '',
	sum_insured         TEXT NOT NULL DEFAULT '',
	policy_period_start TEXT NOT NULL DEFAULT '',
	policy_period_end   TEXT NOT NULL DEFAULT '',
	plan_type           TEXT NOT NULL DEFAULT '',
	coverage_type       TEXT NOT NULL DEFAULT '',
	updated_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// placeholder renders the n-th (1-based) bind parameter.
type placeholder func(n int) string

func selectQuery(ph placeholder) string {
	return fmt.Sprintf("SELECT %s FROM insurance_policies WHERE policy_number = %s",
		strings.Join(columns, ", "), ph(1))
}

func upsertQuery(ph placeholder) string {
	params := make([]string, len(columns))
	updates := make([]string, 0, len(columns))
	for i, c := range columns {
		params[i] = ph(i + 1)
		if i > 0 {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	updates = append(updates, "updated_at = CURRENT_TIMESTAMP")
	return fmt.Sprintf("INSERT INTO insurance_policies (%s) VALUES (%s) ON CONFLICT (policy_number) DO UPDATE SET %s",
		strings.Join(columns, ", "), strings.Join(params, ", "), strings.Join(updates, ", "))
}

func args(p extract.InsurancePolicy) []any {
	return []any{
		p.PolicyNumber, p.InsuredName, p.Insurer, p.TPAName, p.SumInsured,
		p.PolicyPeriodStart, p.PolicyPeriodEnd, p.PlanType, p.CoverageType,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row scanner) (extract.InsurancePolicy, error) {
	var p extract.InsurancePolicy
	err := row.Scan(
		&p.PolicyNumber, &p.InsuredName, &p.Insurer, &p.TPAName, &p.SumInsured,
		&p.PolicyPeriodStart, &p.PolicyPeriodEnd, &p.PlanType, &p.CoverageType,
	)
	return p, err
}

func validateForUpsert(p extract.InsurancePolicy) error {
	if strings.TrimSpace(p.PolicyNumber) == "" {
		return fmt.Errorf("upsert policy: policy_number is required")
	}
	return nil
}

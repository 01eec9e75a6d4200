package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kabir-fx/abhiraksha/internal/extract"
)

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

// OpenPostgres creates a pgx pool and makes sure the policy table exists.
func OpenPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "backend", "postgres")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "abhiraksha"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if _, err := pool.Exec(dialCtx, createTable); err != nil {
		pool.Close()
		logger.Error("failed to prepare policy table", "error", err)
		return nil, fmt.Errorf("prepare policy table: %w", err)
	}

	logger.Info("successfully connected to database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Get(ctx context.Context, policyNumber string) (extract.InsurancePolicy, error) {
	p, err := scanPolicy(s.pool.QueryRow(ctx, selectQuery(dollar), policyNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return extract.InsurancePolicy{}, ErrNotFound
	}
	if err != nil {
		s.logger.Error("policy.get.error", "error", err)
		return extract.InsurancePolicy{}, fmt.Errorf("get policy: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, p extract.InsurancePolicy) error {
	if err := validateForUpsert(p); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, upsertQuery(dollar), args(p)...); err != nil {
		s.logger.Error("policy.upsert.error", "error", err)
		return fmt.Errorf("upsert policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.logger.Info("closing database connections")
	s.pool.Close()
}

var _ Store = (*PostgresStore)(nil)

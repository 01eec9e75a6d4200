package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/kabir-fx/abhiraksha/internal/extract"
)

type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func question(int) string { return "?" }

// OpenSQLite opens a file or ":memory:" database. Writes are serialized on
// one connection, which also keeps an in-memory database alive.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "backend", "sqlite")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		logger.Error("failed to prepare policy table", "error", err)
		return nil, fmt.Errorf("prepare policy table: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, policyNumber string) (extract.InsurancePolicy, error) {
	p, err := scanPolicy(s.db.QueryRowContext(ctx, selectQuery(question), policyNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return extract.InsurancePolicy{}, ErrNotFound
	}
	if err != nil {
		s.logger.Error("policy.get.error", "error", err)
		return extract.InsurancePolicy{}, fmt.Errorf("get policy: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, p extract.InsurancePolicy) error {
	if err := validateForUpsert(p); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertQuery(question), args(p)...); err != nil {
		s.logger.Error("policy.upsert.error", "error", err)
		return fmt.Errorf("upsert policy: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close sqlite", "error", err)
	}
}

var _ Store = (*SQLiteStore)(nil)

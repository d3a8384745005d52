// Package postgres provides a Postgres-backed job-history store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webnav/navigator/internal/navigator"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ErrNotFound is returned when a job ID has no recorded result.
var ErrNotFound = errors.New("job not found")

// StoreConfig controls the Postgres connection pool.
type StoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store writes job results into Postgres. The payload column holds
// the full JobResult document as JSONB.
type Store struct {
	pool  pgxPool
	table string
}

// NewStore creates a Postgres-backed store using the provided config.
//
// Expected schema:
//
//	CREATE TABLE job_results (
//	    id TEXT PRIMARY KEY,
//	    query TEXT NOT NULL,
//	    provider TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    payload JSONB NOT NULL
//	);
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("history.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "job_results"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewStoreWithPool(pool pgxPool, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "job_results"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	s.pool.Close()
}

// RecordJob upserts one job result row.
func (s *Store) RecordJob(ctx context.Context, result navigator.JobResult) error {
	if result.JobID == "" {
		return fmt.Errorf("job id is required")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal job result: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, query, provider, created_at, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload
	`, s.table)
	if _, err := s.pool.Exec(ctx, query,
		result.JobID,
		result.Query,
		result.ProviderUsed,
		result.Timestamp,
		payload,
	); err != nil {
		return fmt.Errorf("insert job result: %w", err)
	}
	return nil
}

// GetJob fetches the JobResult payload for an ID.
func (s *Store) GetJob(ctx context.Context, jobID string) (navigator.JobResult, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE id = $1`, s.table)
	var payload []byte
	if err := s.pool.QueryRow(ctx, query, jobID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return navigator.JobResult{}, ErrNotFound
		}
		return navigator.JobResult{}, fmt.Errorf("query job result: %w", err)
	}
	var result navigator.JobResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return navigator.JobResult{}, fmt.Errorf("unmarshal job result: %w", err)
	}
	return result, nil
}

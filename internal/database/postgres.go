package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/begonlabs/poligonos/internal/directorio"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the Postgres connection pool.
type PostgresConfig struct {
	DSN             string
	RunsTable       string
	ScansTable      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresProvider writes run summaries and scan results into Postgres.
//
// Expected schema:
//
//	CREATE TABLE run_summaries (
//		run_id UUID PRIMARY KEY,
//		zona TEXT NOT NULL,
//		input_file TEXT NOT NULL,
//		output_file TEXT NOT NULL,
//		procesados INT NOT NULL,
//		emails_verificados INT NOT NULL,
//		telefonos_verificados INT NOT NULL,
//		emails_nuevos INT NOT NULL,
//		duracion_segundos DOUBLE PRECISION NOT NULL,
//		started_at TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE scan_results (
//		id BIGSERIAL PRIMARY KEY,
//		poligono TEXT NOT NULL,
//		negocios_encontrados INT NOT NULL,
//		estado TEXT NOT NULL,
//		error TEXT,
//		ts TEXT NOT NULL
//	);
type PostgresProvider struct {
	pool       execCloser
	runsTable  string
	scansTable string
}

// NewPostgresProvider connects a pgx pool using the provided config.
func NewPostgresProvider(ctx context.Context, cfg PostgresConfig) (*PostgresProvider, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
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
	return NewPostgresProviderWithPool(pool, cfg.RunsTable, cfg.ScansTable)
}

// NewPostgresProviderWithPool constructs a provider from an existing pool,
// primarily for testing.
func NewPostgresProviderWithPool(pool execCloser, runsTable, scansTable string) (*PostgresProvider, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if runsTable == "" {
		runsTable = "run_summaries"
	}
	if scansTable == "" {
		scansTable = "scan_results"
	}
	if !validTableName.MatchString(runsTable) {
		return nil, fmt.Errorf("invalid table name %q", runsTable)
	}
	if !validTableName.MatchString(scansTable) {
		return nil, fmt.Errorf("invalid table name %q", scansTable)
	}
	return &PostgresProvider{pool: pool, runsTable: runsTable, scansTable: scansTable}, nil
}

// SaveRunSummary inserts one summary row.
func (p *PostgresProvider) SaveRunSummary(ctx context.Context, summary directorio.RunSummary) error {
	if p == nil || p.pool == nil {
		return fmt.Errorf("postgres provider is not configured")
	}
	if summary.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	zona,
	input_file,
	output_file,
	procesados,
	emails_verificados,
	telefonos_verificados,
	emails_nuevos,
	duracion_segundos,
	started_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)`, p.runsTable)

	args := []any{
		summary.RunID,
		summary.Zona,
		summary.InputFile,
		summary.OutputFile,
		summary.Processed,
		summary.VerifiedEmails,
		summary.VerifiedPhones,
		summary.NewEmails,
		summary.ElapsedSeconds,
		summary.StartedAt,
	}
	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// SaveScanResults inserts one row per scanned zone.
func (p *PostgresProvider) SaveScanResults(ctx context.Context, results []directorio.ScanResult) error {
	if p == nil || p.pool == nil {
		return fmt.Errorf("postgres provider is not configured")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	poligono,
	negocios_encontrados,
	estado,
	error,
	ts
) VALUES (
	$1,$2,$3,$4,$5
)`, p.scansTable)

	for _, res := range results {
		args := []any{
			res.Poligono,
			res.NegociosEncontrados,
			res.Estado,
			res.Error,
			res.Timestamp,
		}
		if _, err := p.pool.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert scan result for %q: %w", res.Poligono, err)
		}
	}
	return nil
}

// Close releases the underlying pool resources.
func (p *PostgresProvider) Close() error {
	if p == nil || p.pool == nil {
		return nil
	}
	p.pool.Close()
	return nil
}

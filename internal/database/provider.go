// Package database persists run summaries and discovery scan results so the
// pipeline's history outlives the JSON files on disk.
package database

import (
	"context"

	"github.com/begonlabs/poligonos/internal/directorio"
)

// Provider is the persistence seam for run metadata. A nil or NoOp provider
// keeps the pipeline fully functional without a database.
type Provider interface {
	// SaveRunSummary records the outcome of one verification run.
	SaveRunSummary(ctx context.Context, summary directorio.RunSummary) error

	// SaveScanResults records the per-zone outcome of a discovery pass.
	SaveScanResults(ctx context.Context, results []directorio.ScanResult) error

	// Close releases the underlying connection resources.
	Close() error
}

// NoOpProvider satisfies Provider without touching any backend.
type NoOpProvider struct{}

func (n *NoOpProvider) SaveRunSummary(_ context.Context, _ directorio.RunSummary) error {
	return nil
}

func (n *NoOpProvider) SaveScanResults(_ context.Context, _ []directorio.ScanResult) error {
	return nil
}

func (n *NoOpProvider) Close() error { return nil }

// Package publisher fans run summaries out to downstream consumers, so other
// systems can react to finished verification runs without polling the data
// directory.
package publisher

import (
	"context"

	"github.com/begonlabs/poligonos/internal/directorio"
)

// Publisher announces completed runs. Implementations must tolerate being
// called once per run with no ordering guarantees.
type Publisher interface {
	PublishRunSummary(ctx context.Context, summary directorio.RunSummary) error
	Close() error
}

// NoOp drops every summary. Used when publishing is disabled.
type NoOp struct{}

func (n *NoOp) PublishRunSummary(_ context.Context, _ directorio.RunSummary) error {
	return nil
}

func (n *NoOp) Close() error { return nil }

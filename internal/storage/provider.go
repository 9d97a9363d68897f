// Package storage abstracts the blob backend used to archive enriched
// directory files, so runs can ship their output to Google Cloud Storage, a
// local directory, or nowhere at all.
package storage

import "context"

// Provider saves a named blob to the configured backend.
type Provider interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// NoOpProvider discards everything. Used when archiving is disabled.
type NoOpProvider struct{}

func (n *NoOpProvider) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}

package publisher

import (
	"context"
	"sync"

	"github.com/begonlabs/poligonos/internal/directorio"
)

// Memory records summaries for inspection in tests.
type Memory struct {
	mu        sync.RWMutex
	summaries []directorio.RunSummary
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) PublishRunSummary(_ context.Context, summary directorio.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summary)
	return nil
}

func (m *Memory) Close() error { return nil }

// Summaries returns the recorded publishes.
func (m *Memory) Summaries() []directorio.RunSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]directorio.RunSummary, len(m.summaries))
	copy(out, m.summaries)
	return out
}

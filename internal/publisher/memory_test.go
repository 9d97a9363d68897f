package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/begonlabs/poligonos/internal/directorio"
)

func TestMemoryRecordsSummaries(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.PublishRunSummary(context.Background(), directorio.RunSummary{RunID: "a", Zona: "vallecas"}))
	require.NoError(t, m.PublishRunSummary(context.Background(), directorio.RunSummary{RunID: "b", Zona: "villaverde"}))

	got := m.Summaries()
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].RunID)
	require.Equal(t, "villaverde", got[1].Zona)
	require.NoError(t, m.Close())
}

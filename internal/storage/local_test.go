package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalProviderSaveCreatesNestedDirs(t *testing.T) {
	dir := t.TempDir()
	provider, err := NewLocalProvider(dir)
	require.NoError(t, err)

	err = provider.Save(context.Background(), "runs/abc/email_zona.json", []byte(`[]`))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "runs", "abc", "email_zona.json"))
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), data)
}

func TestLocalProviderRejectsEscapingNames(t *testing.T) {
	dir := t.TempDir()
	provider, err := NewLocalProvider(dir)
	require.NoError(t, err)

	err = provider.Save(context.Background(), "../fuera.json", []byte("x"))
	require.Error(t, err)
}

func TestNewLocalProviderCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nuevo")
	_, err := NewLocalProvider(dir)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestNewLocalProviderRequiresDir(t *testing.T) {
	_, err := NewLocalProvider("  ")
	require.Error(t, err)
}

func TestMemoryProviderRoundTrip(t *testing.T) {
	m := NewMemoryProvider()
	require.NoError(t, m.Save(context.Background(), "a/b", []byte("hola")))

	data, ok := m.Object("a/b")
	require.True(t, ok)
	require.Equal(t, []byte("hola"), data)
	require.Equal(t, 1, m.Len())
}

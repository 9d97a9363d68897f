package app

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/begonlabs/poligonos/internal/database"
	"github.com/begonlabs/poligonos/internal/publisher"
	"github.com/begonlabs/poligonos/internal/storage"
	"go.uber.org/zap"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestNewAppWithNoopProviders(t *testing.T) {
	resetViper(t)
	viper.Set("storage.provider", "noop")
	viper.Set("database.provider", "noop")
	viper.Set("publisher.provider", "memory")
	viper.Set("ops.enabled", false)

	a, err := NewApp(context.Background())
	require.NoError(t, err)
	defer a.Close()

	require.IsType(t, &storage.NoOpProvider{}, a.Storage())
	require.IsType(t, &database.NoOpProvider{}, a.Database())
	require.IsType(t, &publisher.Memory{}, a.Publisher())
	require.NotNil(t, a.Progress())
	require.NotNil(t, a.Logger())
}

func TestBuildStorageLocal(t *testing.T) {
	resetViper(t)
	viper.Set("storage.provider", "local")
	viper.Set("storage.local.base_dir", t.TempDir())

	store, err := buildStorage(context.Background(), zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &storage.LocalProvider{}, store)
}

func TestBuildStorageUnknownProvider(t *testing.T) {
	resetViper(t)
	viper.Set("storage.provider", "s3")

	_, err := buildStorage(context.Background(), zap.NewNop())
	require.ErrorContains(t, err, "unknown storage provider")
}

func TestBuildDatabasePostgresRequiresDSN(t *testing.T) {
	resetViper(t)
	viper.Set("database.provider", "postgres")

	_, err := buildDatabase(context.Background(), zap.NewNop())
	require.ErrorContains(t, err, "dsn")
}

func TestBuildPublisherPubSubRequiresProjectAndTopic(t *testing.T) {
	resetViper(t)
	viper.Set("publisher.provider", "pubsub")
	viper.Set("publisher.gcp.project_id", "proj")

	_, err := buildPublisher(context.Background(), zap.NewNop())
	require.ErrorContains(t, err, "project_id or topic_id")
}

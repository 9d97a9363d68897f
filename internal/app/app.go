// Package app initializes and holds the long-lived application services,
// acting as the dependency injection point between the CLI and the pipeline.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/begonlabs/poligonos/internal/api"
	"github.com/begonlabs/poligonos/internal/database"
	"github.com/begonlabs/poligonos/internal/logging"
	"github.com/begonlabs/poligonos/internal/progress"
	"github.com/begonlabs/poligonos/internal/progress/sinks"
	"github.com/begonlabs/poligonos/internal/publisher"
	"github.com/begonlabs/poligonos/internal/storage"
)

// App holds the shared services every command needs: configured providers,
// the progress hub, and the optional ops listener.
type App struct {
	logger   *zap.Logger
	storage  storage.Provider
	database database.Provider
	pub      publisher.Publisher
	hub      *progress.Hub
	registry *prometheus.Registry
	ops      *api.Server
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Storage exposes the configured archive provider.
func (a *App) Storage() storage.Provider { return a.storage }

// Database exposes the configured run-metadata provider.
func (a *App) Database() database.Provider { return a.database }

// Publisher exposes the configured run-summary publisher.
func (a *App) Publisher() publisher.Publisher { return a.pub }

// Progress exposes the event hub.
func (a *App) Progress() *progress.Hub { return a.hub }

// NewApp builds every service from Viper configuration, failing fast when a
// configured backend cannot be reached.
func NewApp(ctx context.Context) (*App, error) {
	l := logging.L
	l.Info("inicializando servicios")

	store, err := buildStorage(ctx, l)
	if err != nil {
		return nil, err
	}
	db, err := buildDatabase(ctx, l)
	if err != nil {
		return nil, err
	}
	pub, err := buildPublisher(ctx, l)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return nil, fmt.Errorf("registrar métricas: %w", err)
	}
	hub := progress.NewHub(l, sinks.NewLogSink(l), promSink)

	app := &App{
		logger:   l,
		storage:  store,
		database: db,
		pub:      pub,
		hub:      hub,
		registry: registry,
	}

	if viper.GetBool("ops.enabled") {
		app.ops = api.NewServer(viper.GetString("ops.addr"), registry, l.Named("ops"))
		go func() {
			if err := app.ops.Start(); err != nil {
				l.Error("servidor ops", zap.Error(err))
			}
		}()
	}

	return app, nil
}

// Close releases every service. Safe to call once at shutdown.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.ops != nil {
		if err := a.ops.Shutdown(ctx); err != nil {
			a.logger.Warn("apagando servidor ops", zap.Error(err))
		}
	}
	if err := a.hub.Close(ctx); err != nil {
		a.logger.Warn("cerrando hub de progreso", zap.Error(err))
	}
	if err := a.pub.Close(); err != nil {
		a.logger.Warn("cerrando publisher", zap.Error(err))
	}
	if err := a.database.Close(); err != nil {
		a.logger.Warn("cerrando base de datos", zap.Error(err))
	}
}

func buildStorage(ctx context.Context, l *zap.Logger) (storage.Provider, error) {
	provider := viper.GetString("storage.provider")
	switch provider {
	case "gcs":
		bucket := viper.GetString("storage.gcs.bucket_name")
		if bucket == "" {
			return nil, fmt.Errorf("storage.provider is 'gcs' but storage.gcs.bucket_name is not set")
		}
		l.Info("usando almacenamiento GCS", zap.String("bucket", bucket))
		return storage.NewGCSProvider(ctx, bucket)
	case "local":
		baseDir := viper.GetString("storage.local.base_dir")
		l.Info("usando almacenamiento local", zap.String("dir", baseDir))
		return storage.NewLocalProvider(baseDir)
	case "noop":
		return &storage.NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", provider)
	}
}

func buildDatabase(ctx context.Context, l *zap.Logger) (database.Provider, error) {
	provider := viper.GetString("database.provider")
	switch provider {
	case "postgres":
		dsn := viper.GetString("database.postgres.dsn")
		if dsn == "" {
			return nil, fmt.Errorf("database.provider is 'postgres' but database.postgres.dsn is not set")
		}
		l.Info("conectando a PostgreSQL")
		return database.NewPostgresProvider(ctx, database.PostgresConfig{
			DSN:        dsn,
			RunsTable:  viper.GetString("database.postgres.runs_table"),
			ScansTable: viper.GetString("database.postgres.scans_table"),
		})
	case "noop":
		return &database.NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown database provider: %s", provider)
	}
}

func buildPublisher(ctx context.Context, l *zap.Logger) (publisher.Publisher, error) {
	provider := viper.GetString("publisher.provider")
	switch provider {
	case "pubsub":
		projectID := viper.GetString("publisher.gcp.project_id")
		topicID := viper.GetString("publisher.gcp.topic_id")
		if projectID == "" || topicID == "" {
			return nil, fmt.Errorf("publisher.provider is 'pubsub' but project_id or topic_id is not set")
		}
		l.Info("conectando a Pub/Sub", zap.String("topic", topicID))
		return publisher.NewPubSub(ctx, projectID, topicID)
	case "memory":
		return publisher.NewMemory(), nil
	case "noop":
		return &publisher.NoOp{}, nil
	default:
		return nil, fmt.Errorf("unknown publisher provider: %s", provider)
	}
}

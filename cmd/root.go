// Package cmd defines and implements the CLI commands for the poligonos
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/begonlabs/poligonos/internal/app"
	"github.com/begonlabs/poligonos/internal/database"
	"github.com/begonlabs/poligonos/internal/logging"
	"github.com/begonlabs/poligonos/internal/progress"
	"github.com/begonlabs/poligonos/internal/publisher"
	"github.com/begonlabs/poligonos/internal/storage"
	"github.com/begonlabs/poligonos/pkg/config"
)

var cfgFile string

type appKeyType string

const appKey appKeyType = "app"

// App is the slice of the application container the commands use. Keeping it
// an interface lets tests inject a fake.
type App interface {
	Close()
	Logger() *zap.Logger
	Storage() storage.Provider
	Database() database.Provider
	Publisher() publisher.Publisher
	Progress() *progress.Hub
}

// newApp is a variable so tests can swap in a mock factory.
var newApp = func(ctx context.Context) (App, error) {
	return app.NewApp(ctx)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poligonos",
		Short: "Descubre y verifica negocios en polígonos industriales de Madrid",
		Long: `poligonos descubre negocios en polígonos industriales mediante la API de
Google Places y verifica sus datos de contacto (email, teléfono) visitando
sus sitios web con un motor concurrente de navegadores.`,

		// Runs after config loads and before the subcommand, so commands
		// always find a fully wired application in their context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("inicializar servicios: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "archivo de configuración (por defecto ./config.yaml)")

	cmd.AddCommand(newDiscoverCmd())
	cmd.AddCommand(newVerifyCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the CLI entry point.
func Execute() {
	logging.InitLogger(viper.GetBool("logging.development"))

	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("la ejecución del comando falló", zap.Error(err))
	}
}

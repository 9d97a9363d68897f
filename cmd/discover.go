package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/begonlabs/poligonos/internal/places"
)

func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Escanea zonas industriales y guarda los negocios encontrados",
		Long: `Lee un archivo de zonas (nombre y coordenadas por zona), busca negocios
alrededor de cada zona con la API de Google Places y escribe un archivo
negocios_<zona>.json por zona en el directorio de datos.`,

		RunE: runDiscoverCommand,
	}
	cmd.Flags().String("zones", "", "archivo JSON con las zonas a escanear")
	_ = cmd.MarkFlagRequired("zones")
	return cmd
}

func runDiscoverCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	zonesFile, _ := cmd.Flags().GetString("zones")
	zones, err := places.LoadZones(zonesFile)
	if err != nil {
		return fmt.Errorf("cargar zonas: %w", err)
	}

	client, err := places.NewClient(places.ClientConfig{
		APIKey: viper.GetString("discover.api_key"),
		QPS:    viper.GetFloat64("discover.qps"),
	}, appInstance.Logger())
	if err != nil {
		return fmt.Errorf("crear cliente de Places: %w", err)
	}

	scanner, err := places.NewScanner(client, places.ScannerConfig{
		DataDir:      viper.GetString("discover.data_dir"),
		RadiusMeters: viper.GetInt("discover.radius_meters"),
		ZonePause:    viper.GetDuration("discover.zone_pause"),
		SummaryEvery: viper.GetInt("discover.summary_every"),
	}, appInstance.Storage(), appInstance.Database(), appInstance.Logger())
	if err != nil {
		return fmt.Errorf("crear escáner: %w", err)
	}

	started := time.Now()
	results, err := scanner.ScanAll(cmd.Context(), zones)
	if err != nil {
		return fmt.Errorf("escanear zonas: %w", err)
	}
	appInstance.Logger().Info("descubrimiento terminado",
		zap.Int("zonas", len(results)),
		zap.Duration("duracion", time.Since(started)),
	)
	return nil
}

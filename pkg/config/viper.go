// Package config initializes the application's configuration. It uses Viper
// to merge a config file, environment variables and defaults into one view.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/begonlabs/poligonos/internal/logging"
)

// InitConfig loads the configuration once at startup. Missing config files
// are fine; defaults plus POLIGONOS_* environment variables always apply.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/poligonos/")
	viper.AddConfigPath("$HOME/.poligonos")

	viper.SetDefault("logging.development", false)

	// Verification engine.
	viper.SetDefault("verify.data_dir", "./data")
	viper.SetDefault("verify.max_concurrent_workers", 3)
	viper.SetDefault("verify.max_browsers", 2)
	viper.SetDefault("verify.navigation_timeout", "20s")
	viper.SetDefault("verify.settle_delay", "2s")
	viper.SetDefault("verify.politeness_delay", "1s")
	viper.SetDefault("verify.scheduler_pause", "1s")
	viper.SetDefault("verify.domain_qps", 0.0)
	viper.SetDefault("verify.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("verify.accept_language", "es-ES,es;q=0.9,en;q=0.8")
	viper.SetDefault("verify.locale", "es-ES")

	// Zone discovery.
	viper.SetDefault("discover.data_dir", "./data")
	viper.SetDefault("discover.radius_meters", 320)
	viper.SetDefault("discover.qps", 5.0)
	viper.SetDefault("discover.zone_pause", "1s")
	viper.SetDefault("discover.summary_every", 10)

	// Supporting services.
	viper.SetDefault("storage.provider", "noop")
	viper.SetDefault("storage.local.base_dir", "./archive")
	viper.SetDefault("database.provider", "noop")
	viper.SetDefault("database.postgres.runs_table", "run_summaries")
	viper.SetDefault("database.postgres.scans_table", "scan_results")
	viper.SetDefault("publisher.provider", "noop")
	viper.SetDefault("ops.enabled", false)
	viper.SetDefault("ops.addr", ":9090")

	viper.SetEnvPrefix("POLIGONOS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Warn("archivo de configuración no encontrado, usando valores por defecto")
		} else {
			logging.L.Error("error leyendo configuración", zap.Error(err))
		}
	} else {
		logging.L.Info("usando archivo de configuración", zap.String("path", viper.ConfigFileUsed()))
	}
}

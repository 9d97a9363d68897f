package verify

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.Set("verify.data_dir", "./data")
	v.Set("verify.max_concurrent_workers", 3)
	v.Set("verify.max_browsers", 2)
	v.Set("verify.navigation_timeout", "20s")
	v.Set("verify.settle_delay", "2s")
	v.Set("verify.politeness_delay", "1s")
	v.Set("verify.scheduler_pause", "1s")
	v.Set("verify.user_agent", "test-agent")
	return v
}

func TestLoadConfigFallsBackToDefaultContactPaths(t *testing.T) {
	cfg, err := LoadConfig(newConfigViper())
	require.NoError(t, err)

	require.Equal(t, DefaultContactPaths, cfg.ContactPaths)
	require.Equal(t, 20*time.Second, cfg.NavigationTimeout)
	require.Equal(t, 3, cfg.MaxConcurrentWorkers)
}

func TestLoadConfigKeepsExplicitContactPaths(t *testing.T) {
	v := newConfigViper()
	v.Set("verify.contact_paths", []string{"", "/contacto"})

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	require.Equal(t, []string{"", "/contacto"}, cfg.ContactPaths)
}

func TestLoadConfigRejectsZeroWorkers(t *testing.T) {
	v := newConfigViper()
	v.Set("verify.max_concurrent_workers", 0)

	_, err := LoadConfig(v)
	require.ErrorContains(t, err, "max_concurrent_workers")
}

func TestConfigValidateRejectsNegativeQPS(t *testing.T) {
	cfg, err := LoadConfig(newConfigViper())
	require.NoError(t, err)

	cfg.DomainQPS = -1
	require.ErrorContains(t, cfg.Validate(), "domain_qps")
}

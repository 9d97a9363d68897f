// Package verify implements the concurrent contact-verification engine: the
// browser-backed workers that crawl a bounded set of contact pages per
// business and the orchestrator that fans them out over zone files.
package verify

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DefaultContactPaths is the ordered list of relative paths conventionally
// hosting contact information on Spanish business sites. The empty path is
// the site root.
var DefaultContactPaths = []string{
	"",
	"/contacto",
	"/contact",
	"/contacta",
	"/sobre-nosotros",
	"/about",
	"/info",
	"/informacion",
}

// Config captures every knob of the verification engine. All values originate
// from Viper so the engine can be configured via file, env vars, or flags.
type Config struct {
	DataDir              string
	MaxConcurrentWorkers int
	MaxBrowsers          int
	ContactPaths         []string
	NavigationTimeout    time.Duration
	SettleDelay          time.Duration
	PolitenessDelay      time.Duration
	SchedulerPause       time.Duration
	DomainQPS            float64
	UserAgent            string
	AcceptLanguage       string
	Locale               string
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		DataDir:              v.GetString("verify.data_dir"),
		MaxConcurrentWorkers: v.GetInt("verify.max_concurrent_workers"),
		MaxBrowsers:          v.GetInt("verify.max_browsers"),
		ContactPaths:         v.GetStringSlice("verify.contact_paths"),
		NavigationTimeout:    v.GetDuration("verify.navigation_timeout"),
		SettleDelay:          v.GetDuration("verify.settle_delay"),
		PolitenessDelay:      v.GetDuration("verify.politeness_delay"),
		SchedulerPause:       v.GetDuration("verify.scheduler_pause"),
		DomainQPS:            v.GetFloat64("verify.domain_qps"),
		UserAgent:            v.GetString("verify.user_agent"),
		AcceptLanguage:       v.GetString("verify.accept_language"),
		Locale:               v.GetString("verify.locale"),
	}
	if len(cfg.ContactPaths) == 0 {
		cfg.ContactPaths = DefaultContactPaths
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("verify.data_dir must be set")
	}
	if c.MaxConcurrentWorkers <= 0 {
		return fmt.Errorf("verify.max_concurrent_workers must be > 0")
	}
	if c.MaxBrowsers <= 0 {
		return fmt.Errorf("verify.max_browsers must be > 0")
	}
	if len(c.ContactPaths) == 0 {
		return fmt.Errorf("verify.contact_paths must include at least one path")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("verify.navigation_timeout must be > 0")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("verify.settle_delay must be >= 0")
	}
	if c.PolitenessDelay < 0 {
		return fmt.Errorf("verify.politeness_delay must be >= 0")
	}
	if c.SchedulerPause < 0 {
		return fmt.Errorf("verify.scheduler_pause must be >= 0")
	}
	if c.DomainQPS < 0 {
		return fmt.Errorf("verify.domain_qps must be >= 0")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("verify.user_agent must be set")
	}
	return nil
}

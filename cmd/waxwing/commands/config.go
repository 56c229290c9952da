package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jmylchreest/waxwing/internal/config"
)

// setConfigDefaults seeds viper with the built-in defaults so flags, env
// vars, and the config file all override the same keys.
func setConfigDefaults() {
	def := config.Default()
	viper.SetDefault("base_url", def.BaseURL)
	viper.SetDefault("catalog", def.CatalogPath)
	viper.SetDefault("database", def.DatabasePath)
	viper.SetDefault("transport_log", def.TransportLogPath)
	viper.SetDefault("retry_log", def.RetryLogPath)
	viper.SetDefault("user_agent", def.UserAgent)
	viper.SetDefault("timeout", def.Timeout)
	viper.SetDefault("discover_concurrency", def.DiscoverWorkers)
	viper.SetDefault("fetch_concurrency", def.FetchWorkers)
}

// loadConfig resolves and validates the effective configuration.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Package config holds runtime settings shared by the waxwing commands.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is assembled from flags, environment, and the config file by the
// CLI layer, then validated once before a run starts.
type Config struct {
	BaseURL      string `mapstructure:"base_url" validate:"required,url"`
	CatalogPath  string `mapstructure:"catalog" validate:"required"`
	DatabasePath string `mapstructure:"database" validate:"required"`

	// Failure worklists for the fetch stage.
	TransportLogPath string `mapstructure:"transport_log" validate:"required"`
	RetryLogPath     string `mapstructure:"retry_log" validate:"required"`

	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`

	DiscoverWorkers int `mapstructure:"discover_concurrency" validate:"gte=1"`
	FetchWorkers    int `mapstructure:"fetch_concurrency" validate:"gte=0"`
}

// Default returns the settings used when nothing is overridden.
func Default() Config {
	return Config{
		BaseURL:          "https://pitchfork.com",
		CatalogPath:      "urls.csv",
		DatabasePath:     "reviews.db",
		TransportLogPath: "errors.txt",
		RetryLogPath:     "not_done.txt",
		Timeout:          30 * time.Second,
		DiscoverWorkers:  5,
		FetchWorkers:     0, // 0 = platform default
	}
}

// Validate checks the configuration before a run.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

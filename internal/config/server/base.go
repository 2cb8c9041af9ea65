package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogServerConfig      `mapstructure:"log"      yaml:"log"`
	HTTP     HTTPServerConfig     `mapstructure:"http"     yaml:"http"`
	Metadata MetadataServerConfig `mapstructure:"metadata" yaml:"metadata"`
	Search   SearchServerConfig   `mapstructure:"search"   yaml:"search"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks values viper cannot catch while unmarshalling.
func (cfg *BaseServerConfig) Validate() error {
	if _, err := time.ParseDuration(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout '%s': %w", cfg.ShutdownTimeout, err)
	}
	if err := cfg.Log.validate(); err != nil {
		return err
	}
	if err := cfg.Metadata.validate(); err != nil {
		return err
	}
	if cfg.Search.DefaultPageSize <= 0 {
		return fmt.Errorf("search.default_page_size must be > 0, got %d", cfg.Search.DefaultPageSize)
	}
	if cfg.Search.MaxPageSize < cfg.Search.DefaultPageSize {
		return fmt.Errorf("search.max_page_size must be >= search.default_page_size")
	}

	return nil
}

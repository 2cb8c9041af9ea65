package server

import "fmt"

// MetadataServerConfig selects the rule store and its initial catalog
type MetadataServerConfig struct {
	Type   string               `mapstructure:"type"   yaml:"type"`
	SQLite MetadataSQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
	// Seed is an optional rule catalog imported when the store is empty
	Seed string `mapstructure:"seed"   yaml:"seed"`
}

type MetadataSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// sqlite is the only store backend so far.
func (cfg MetadataServerConfig) validate() error {
	if cfg.Type != "sqlite" {
		return fmt.Errorf("unsupported metadata type '%s'", cfg.Type)
	}
	if cfg.SQLite.Path == "" {
		return fmt.Errorf("metadata.sqlite.path is required")
	}
	return nil
}

package server

import (
	"fmt"
	"slices"

	"gopkg.in/natefinch/lumberjack.v2"
)

type LogServerConfig struct {
	Level      string            `mapstructure:"level"       yaml:"level"`
	TimeFormat string            `mapstructure:"time_format" yaml:"time_format"`
	File       string            `mapstructure:"file"        yaml:"file"`
	NoColor    bool              `mapstructure:"no_color"    yaml:"no_color"`
	JSON       bool              `mapstructure:"json"        yaml:"json"`
	NoTerminal bool              `mapstructure:"no_terminal" yaml:"no_terminal"`
	Rotation   LogRotationConfig `mapstructure:"rotation"    yaml:"rotation"`
	Access     LogAccessConfig   `mapstructure:"access"      yaml:"access"`
}

// LogRotationConfig bounds the log file. Sizes are in megabytes, ages in days.
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"     yaml:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"  yaml:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"      yaml:"max_age"`
	Compress   bool `mapstructure:"compress"     yaml:"compress"`
}

// LogAccessConfig controls the per request lines of the rules API.
type LogAccessConfig struct {
	Disabled  bool     `mapstructure:"disabled"   yaml:"disabled"`
	SkipPaths []string `mapstructure:"skip_paths" yaml:"skip_paths"`
}

// FileWriter returns the rotating writer for File, or nil when file output is off.
func (cfg LogServerConfig) FileWriter() *lumberjack.Logger {
	if cfg.File == "" {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.Rotation.MaxSize,
		MaxBackups: cfg.Rotation.MaxBackups,
		MaxAge:     cfg.Rotation.MaxAge,
		Compress:   cfg.Rotation.Compress,
	}
}

// Colored reports whether entries may carry escape codes.
// Rotated files stay plain.
func (cfg LogServerConfig) Colored() bool {
	return !cfg.NoTerminal && !cfg.NoColor && cfg.File == ""
}

// Skip reports whether requests to path are left out of the access log.
func (cfg LogAccessConfig) Skip(path string) bool {
	return cfg.Disabled || slices.Contains(cfg.SkipPaths, path)
}

func (cfg LogServerConfig) validate() error {
	if cfg.Rotation.MaxSize < 0 || cfg.Rotation.MaxBackups < 0 || cfg.Rotation.MaxAge < 0 {
		return fmt.Errorf("log.rotation values must not be negative")
	}
	if cfg.NoTerminal && cfg.File == "" {
		return fmt.Errorf("log.file is required when log.no_terminal is set")
	}
	return nil
}

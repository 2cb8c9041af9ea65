package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
			Access: LogAccessConfig{
				Disabled:  false,
				SkipPaths: []string{"/health", "/metrics"},
			},
		},

		HTTP: HTTPServerConfig{
			Address: "127.0.0.1:9000",
			Mode:    "release",
		},

		Metadata: MetadataServerConfig{
			Type: "sqlite",
			SQLite: MetadataSQLiteConfig{
				Path: "codingrules.db",
			},
			Seed: "",
		},

		Search: SearchServerConfig{
			DefaultPageSize: 100,
			MaxPageSize:     500,
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)
	viper.SetDefault("log.access.disabled", defaults.Log.Access.Disabled)
	viper.SetDefault("log.access.skip_paths", defaults.Log.Access.SkipPaths)

	viper.SetDefault("http.address", defaults.HTTP.Address)
	viper.SetDefault("http.mode", defaults.HTTP.Mode)

	viper.SetDefault("metadata.type", defaults.Metadata.Type)
	viper.SetDefault("metadata.sqlite.path", defaults.Metadata.SQLite.Path)
	viper.SetDefault("metadata.seed", defaults.Metadata.Seed)

	viper.SetDefault("search.default_page_size", defaults.Search.DefaultPageSize)
	viper.SetDefault("search.max_page_size", defaults.Search.MaxPageSize)
}

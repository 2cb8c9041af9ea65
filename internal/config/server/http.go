package server

// HTTPServerConfig holds the rules API listener configuration
type HTTPServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
	// Mode is passed to gin (debug, release, test)
	Mode string `mapstructure:"mode"    yaml:"mode"`
}

// SearchServerConfig bounds rule search paging
type SearchServerConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" yaml:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"     yaml:"max_page_size"`
}

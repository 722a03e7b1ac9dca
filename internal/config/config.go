package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	MessageTTL        time.Duration `mapstructure:"message_ttl" yaml:"message_ttl"`
	MaxMessageLength  int           `mapstructure:"max_message_length" yaml:"max_message_length"`
	PurgeInterval     time.Duration `mapstructure:"purge_interval" yaml:"purge_interval"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "ezchat.db",
		LogLevel:          "info",
		MessageTTL:        24 * time.Hour,
		MaxMessageLength:  2000,
		PurgeInterval:     10 * time.Minute,
	}
}

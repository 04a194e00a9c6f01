// Package config loads engine settings from defaults, an optional
// .env file, and PAYMENTS_*-prefixed environment variables. Command
// line flags take final precedence and are applied by the caller.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Shards is the worker count for concurrent mode. 0 means use the
	// available hardware parallelism.
	Shards int `mapstructure:"SHARDS"`

	// ReportPort is the HTTP port for the optional report server.
	ReportPort int `mapstructure:"REPORT_PORT"`

	// ExportPath, if set, is the SQLite file final snapshots are
	// exported to.
	ExportPath string `mapstructure:"EXPORT_PATH"`

	Log LogConfig `mapstructure:"LOG"`
}

type LogConfig struct {
	Level  string `mapstructure:"LEVEL"`
	Pretty bool   `mapstructure:"PRETTY"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("SHARDS", 0)
	v.SetDefault("REPORT_PORT", 8080)
	v.SetDefault("EXPORT_PATH", "")
	v.SetDefault("LOG.LEVEL", "info")
	v.SetDefault("LOG.PRETTY", false)

	// Optional .env next to the binary; absence is fine.
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvPrefix("PAYMENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

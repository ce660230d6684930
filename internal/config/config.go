// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

// Package config loads server configuration from an optional YAML file
// and command-line flags. Flags set explicitly on the command line win
// over file values; file values win over flag defaults.
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default values for serve command flags.
const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
)

// Config holds the runtime configuration for the vaultshare server.
// Keys match the command-line flag names.
type Config struct {
	DatabaseURL string `koanf:"database-url"`
	ListenAddr  string `koanf:"listen-addr"`
	MetricsAddr string `koanf:"metrics-addr"`
	LogFormat   string `koanf:"log-format"`
	LogLevel    string `koanf:"log-level"`
}

// Validate checks that the configuration is valid.
func (cfg *Config) Validate() error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database-url is required")
	}
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen-addr is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log-level must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	return nil
}

// RegisterFlags adds the server configuration flags to the given flag set.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flags.String("listen-addr", DefaultListenAddr, "API listen address")
	flags.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flags.String("log-format", DefaultLogFormat, "log format (json or text)")
	flags.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
}

// Load builds a Config from an optional YAML file and the given flag set.
// path may be empty, in which case only flags are consulted.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_UNREADABLE").
				With("path", path).
				Wrapf(err, "loading config file")
		}
	}

	// Explicitly set flags override file values; flag defaults fill
	// whatever neither source provided.
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, oops.Code("CONFIG_FLAGS_INVALID").Wrapf(err, "loading flags")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrapf(err, "decoding configuration")
	}

	return &cfg, nil
}

package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds the process-wide settings. Each field can be set through the
// environment (or an env file) and overridden by the matching flag.
type Config struct {
	LogJSON     bool   `env:"FSM_LOG_JSON"     envDefault:"false"`
	LogLevel    string `env:"FSM_LOG_LEVEL"    envDefault:"info"`
	MetricsAddr string `env:"FSM_METRICS_ADDR"`
	NoBanner    bool   `env:"FSM_NO_BANNER"    envDefault:"false"`
}

// loadConfig reads envFile, if it exists, into the environment without
// overriding variables that are already set, then parses the environment.
func loadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
	}

	var config Config

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &config, nil
}

// applyFlags overrides config with the flags the user actually set.
func (c *Config) applyFlags(flags *pflag.FlagSet) error {
	var err error

	if flags.Changed(flagLogJSON) {
		c.LogJSON, err = flags.GetBool(flagLogJSON)
		if err != nil {
			return err
		}
	}

	if flags.Changed(flagLogLevel) {
		c.LogLevel, err = flags.GetString(flagLogLevel)
		if err != nil {
			return err
		}
	}

	if flags.Changed(flagMetricsAddr) {
		c.MetricsAddr, err = flags.GetString(flagMetricsAddr)
		if err != nil {
			return err
		}
	}

	return nil
}

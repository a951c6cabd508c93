package app

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the necessary configuration for an App instance to run.
// Exactly one mode is active: SpecPath selects a one-shot solve of a single
// specification file, ListenAddr selects the HTTP server.
type Config struct {
	SpecPath   string
	ListenAddr string

	LogFormat      string
	LogLevel       string
	SolverMaxNodes int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.SpecPath == "" && cfg.ListenAddr == "" {
		return nil, errors.New("either a specification path or a listen address is required")
	}
	if cfg.SpecPath != "" && cfg.ListenAddr != "" {
		return nil, errors.New("a specification path and a listen address are mutually exclusive")
	}
	return &cfg, nil
}

// Defaults resolves baseline configuration from the environment and an
// optional config file before CLI flags are applied on top. Every key is
// overridable via an OPTSPEC_ environment variable, for example
// OPTSPEC_LOG_LEVEL=debug. OPTSPEC_CONFIG may point at a YAML file with
// the same keys.
func Defaults() Config {
	v := viper.New()
	v.SetEnvPrefix("OPTSPEC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", "")
	v.SetDefault("spec", "")
	v.SetDefault("log-format", "json")
	v.SetDefault("log-level", "info")
	v.SetDefault("solver-max-nodes", 0)

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		// A missing or unreadable file falls back to env and defaults.
		_ = v.ReadInConfig()
	}

	return Config{
		SpecPath:       v.GetString("spec"),
		ListenAddr:     v.GetString("listen"),
		LogFormat:      v.GetString("log-format"),
		LogLevel:       v.GetString("log-level"),
		SolverMaxNodes: v.GetInt("solver-max-nodes"),
	}
}

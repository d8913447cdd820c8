// Package config resolves runtime settings from defaults, environment
// variables, and command-line flags, in increasing priority.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix scopes the environment variables this tool reads, e.g.
// RETENTION_IMPORT_DB_SCHEMA -> db_schema.
const envPrefix = "RETENTION_IMPORT_"

// Config holds the resolved settings for a run.
type Config struct {
	DBURL     string `koanf:"db_url"`
	DBSchema  string `koanf:"db_schema"`
	BatchSize int    `koanf:"batch_size"`
	Verbose   bool   `koanf:"verbose"`
}

// Load resolves the configuration. Flags may be nil (environment and
// defaults only). A plain DATABASE_URL is honored when no scoped variable
// or flag names the database, since that is what most deploy targets set.
func Load(flags *pflag.FlagSet, lookupEnv func(string) (string, bool)) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"db_url":     "",
		"db_schema":  "retention",
		"batch_size": 100,
		"verbose":    false,
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.DBURL == "" && lookupEnv != nil {
		if url, ok := lookupEnv("DATABASE_URL"); ok {
			cfg.DBURL = url
		}
	}
	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	return cfg, nil
}

// Package config loads the orchestrator's tunables via viper, ground
// truth byte911-tss's use of viper for YAML + environment configuration
// (byte911-tss/cmd/server/main.go).
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config mirrors the recognized-options table of the orchestrator's
// external interfaces: limits, cache, rateLimit, retry.
type Config struct {
	Limits struct {
		MaxConcurrency int `mapstructure:"maxConcurrency"`
	} `mapstructure:"limits"`

	Cache struct {
		Enabled bool `mapstructure:"enabled"`
		TTLMs   int  `mapstructure:"ttlMs"`
	} `mapstructure:"cache"`

	RateLimit struct {
		Enabled             bool `mapstructure:"enabled"`
		RequestsPerInterval int  `mapstructure:"requestsPerInterval"`
		IntervalMs          int  `mapstructure:"intervalMs"`
	} `mapstructure:"rateLimit"`

	Retry struct {
		MaxAttempts int `mapstructure:"maxAttempts"`
		BaseDelayMs int `mapstructure:"baseDelayMs"`
		MaxDelayMs  int `mapstructure:"maxDelayMs"`
	} `mapstructure:"retry"`

	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
}

// Load reads config.yaml from configPath (if present), overlays
// ORCHESTRATOR_-prefixed environment variables, and returns the decoded
// Config with defaults applied. A missing config file is not an error —
// defaults plus env vars are a valid configuration on their own.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORCHESTRATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("limits.maxConcurrency", 4)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttlMs", 5*60*1000)
	v.SetDefault("rateLimit.enabled", false)
	v.SetDefault("rateLimit.requestsPerInterval", 5)
	v.SetDefault("rateLimit.intervalMs", 1000)
	v.SetDefault("retry.maxAttempts", 3)
	v.SetDefault("retry.baseDelayMs", 200)
	v.SetDefault("retry.maxDelayMs", 5000)
	v.SetDefault("http.addr", ":8080")
}

// Package config loads server configuration from an optional YAML file
// with environment-variable overrides. Environment always wins so that
// container deployments need no config file at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr         string  `yaml:"addr"`
	DatabaseURL  string  `yaml:"database_url"`
	RedisURL     string  `yaml:"redis_url"`
	MigrationDir string  `yaml:"migration_dir"`
	RateLimit    float64 `yaml:"rate_limit"`
	RateBurst    int     `yaml:"rate_burst"`
	KMeansIters  int     `yaml:"kmeans_iters"`
}

// Default returns the configuration used when neither file nor
// environment says otherwise.
func Default() Config {
	return Config{
		Addr:         ":8080",
		MigrationDir: "db/migrations",
		RateLimit:    50,
		RateBurst:    100,
		KMeansIters:  100,
	}
}

// Load reads path (if non-empty and present) and applies env overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = Default().RateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = Default().RateBurst
	}
	if cfg.KMeansIters <= 0 {
		cfg.KMeansIters = Default().KMeansIters
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("KMEANS_ITERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.KMeansIters = n
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "GRIDPLAN_"

// LoadDotEnv loads .env from the working directory and from the config
// file's directory. Variables already set win.
func LoadDotEnv(configPath string) error {
	paths := []string{".env"}
	if configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(abs), ".env"))
		}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

func applyEnv(c *Config) {
	c.Search.Strategy = stringEnv("STRATEGY", c.Search.Strategy)
	c.Search.Weight = intEnv("WEIGHT", c.Search.Weight)
	c.Search.Seed = int64(intEnv("SEED", int(c.Search.Seed)))
	c.Search.MaxDepth = intEnv("MAX_DEPTH", c.Search.MaxDepth)
	c.Search.HelperBudget = intEnv("HELPER_BUDGET", c.Search.HelperBudget)
	c.Search.MaxExplored = intEnv("MAX_EXPLORED", c.Search.MaxExplored)
	c.Search.Timeout = durationEnv("SOLVE_TIMEOUT", c.Search.Timeout)
	c.Search.Workers = intEnv("WORKERS", c.Search.Workers)

	c.Client.Name = stringEnv("CLIENT_NAME", c.Client.Name)
	c.Client.OnFailure = stringEnv("ON_FAILURE", c.Client.OnFailure)
	c.Client.MaxReplans = intEnv("MAX_REPLANS", c.Client.MaxReplans)

	c.HTTP.Addr = stringEnv("HTTP_ADDR", c.HTTP.Addr)
	c.Metrics.Enabled = boolEnv("METRICS_ENABLED", c.Metrics.Enabled)
	c.Metrics.Addr = stringEnv("METRICS_ADDR", c.Metrics.Addr)
	c.DB.DSN = stringEnv("DB_DSN", c.DB.DSN)

	c.Log.Level = stringEnv("LOG_LEVEL", c.Log.Level)
	c.Log.JSON = boolEnv("LOG_JSON", c.Log.JSON)
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func boolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

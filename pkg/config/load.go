package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment after loading the first of
// envFiles found in the working directory or one of its parents.
// With no names it looks for .env.
func Load(envFiles ...string) (*App, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return LoadFrom(wd, envFiles...)
}

// LoadFrom is Load with an explicit directory to start the env file search from.
// Variables already set in the process environment win over the file.
func LoadFrom(startDir string, envFiles ...string) (*App, error) {
	logger := slog.Default()
	if len(envFiles) == 0 {
		envFiles = []string{defaultEnvFile}
	}

	for _, name := range envFiles {
		path, err := findEnvFile(startDir, name)
		if err != nil {
			logger.Debug("Environment file not found", "name", name, "error", err)
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Warn("Failed to load environment file", "path", path, "error", err)
			continue
		}
		logger.Debug("Environment file loaded", "path", path)
		break
	}
	return process()
}

func process() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	slog.Default().Debug("Configuration loaded",
		"env", cfg.Env,
		"rates_provider", cfg.RatesProvider,
		"rates_api_url", cfg.RatesAPI.URL,
		"rates_api_key", maskValue(cfg.RatesAPI.APIKey),
		"rates_api_timeout", cfg.RatesAPI.HTTPTimeout,
		"store_driver", cfg.Store.Driver,
		"store_dsn", maskValue(cfg.Store.DSN),
	)
	return &cfg, nil
}

// maskValue keeps enough of a secret to recognise it in logs.
func maskValue(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 6:
		return "****"
	default:
		return secret[:2] + "****" + secret[len(secret)-4:]
	}
}

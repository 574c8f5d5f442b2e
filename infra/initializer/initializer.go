package initializer

import (
	"fmt"
	"io"
	"log/slog"

	infra_provider "github.com/amirasaad/currency-converter/infra/provider"
	infra_store "github.com/amirasaad/currency-converter/infra/store"
	"github.com/amirasaad/currency-converter/pkg/app"
	"github.com/amirasaad/currency-converter/pkg/config"
	"github.com/amirasaad/currency-converter/pkg/provider"
)

// InitializeDependencies builds the logger, rates provider and store from cfg.
// Logs are written to logOut.
func InitializeDependencies(cfg *config.App, logOut io.Writer) (
	deps *app.Deps,
	err error,
) {
	deps = &app.Deps{}
	logger := setupLogger(cfg.Log, logOut)
	deps.Logger = logger

	deps.Rates, err = initRatesProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	deps.Store, err = infra_store.New(cfg.Store, cfg.Env, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Debug("Dependencies initialized",
		"rates_provider", deps.Rates.Name(),
		"store", cfg.Store.Driver,
	)
	return deps, nil
}

func initRatesProvider(cfg *config.App, logger *slog.Logger) (provider.Rates, error) {
	switch cfg.RatesProvider {
	case "", "http":
		if cfg.RatesAPI.URL == "" {
			logger.Warn("RATES_API_URL is not set; requests will use relative paths and fail")
		}
		return infra_provider.NewRatesAPI(cfg.RatesAPI, logger), nil
	case "fake":
		if cfg.FixturePath == "" {
			return infra_provider.NewFake(), nil
		}
		f, err := infra_provider.NewFakeFromFixture(cfg.FixturePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rates fixture: %w", err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown rates provider %q", cfg.RatesProvider)
	}
}

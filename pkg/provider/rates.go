package provider

import (
	"context"

	"github.com/amirasaad/currency-converter/pkg/domain"
)

// Rates defines the interface for remote exchange rate services.
type Rates interface {
	// FetchCurrencies returns the catalog of supported currencies.
	FetchCurrencies(ctx context.Context) (domain.Catalog, error)

	// FetchHistoricalRates returns the rates of every known currency against
	// base on date (YYYY-MM-DD).
	FetchHistoricalRates(ctx context.Context, date, base string) (domain.RateTable, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}

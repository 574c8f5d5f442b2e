package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/amirasaad/currency-converter/pkg/config"
	"github.com/amirasaad/currency-converter/pkg/domain"
	"github.com/amirasaad/currency-converter/pkg/provider"
)

// RatesAPI implements provider.Rates against a currencyapi-style HTTP service
// exposing /currencies and /historical.
type RatesAPI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// CurrenciesResponse is the body of GET /currencies.
type CurrenciesResponse struct {
	Data map[string]domain.Currency `json:"data"`
}

// HistoricalResponse is the body of GET /historical.
// Rates stay raw so that one malformed entry does not spoil the whole day.
type HistoricalResponse struct {
	Data map[string]map[string]json.RawMessage `json:"data"`
}

// NewRatesAPI creates a rates client from config.
// An empty URL means requests are relative to the current host and will fail
// unless a reverse proxy is configured, as with the browser build.
func NewRatesAPI(cfg *config.RatesAPI, logger *slog.Logger) *RatesAPI {
	return &RatesAPI{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

// FetchCurrencies implements provider.Rates.
func (p *RatesAPI) FetchCurrencies(ctx context.Context) (domain.Catalog, error) {
	var body CurrenciesResponse
	if err := p.get(ctx, "fetch currencies", "/currencies", nil, &body); err != nil {
		return nil, err
	}
	catalog := make(domain.Catalog, len(body.Data))
	for code, cur := range body.Data {
		if cur.Code == "" {
			cur.Code = code
		}
		catalog[code] = cur
	}
	p.logger.Debug("Currencies fetched", "provider", p.Name(), "count", len(catalog))
	return catalog, nil
}

// FetchHistoricalRates implements provider.Rates.
func (p *RatesAPI) FetchHistoricalRates(
	ctx context.Context,
	date, base string,
) (domain.RateTable, error) {
	query := url.Values{}
	query.Set("date", date)
	query.Set("base_currency", base)

	var body HistoricalResponse
	if err := p.get(ctx, "fetch historical rates", "/historical", query, &body); err != nil {
		return nil, err
	}
	table := make(domain.RateTable, len(body.Data))
	for day, raw := range body.Data {
		table[day] = p.dayRates(day, raw)
	}
	p.logger.Debug("Historical rates fetched",
		"provider", p.Name(),
		"date", date,
		"base", base,
		"days", len(table),
	)
	return table, nil
}

// dayRates keeps the numeric entries of one day; anything else is dropped
// and later reported as a missing rate for that currency.
func (p *RatesAPI) dayRates(day string, raw map[string]json.RawMessage) domain.DayRates {
	if raw == nil {
		return nil
	}
	rates := make(domain.DayRates, len(raw))
	for code, value := range raw {
		var rate float64
		if err := json.Unmarshal(value, &rate); err != nil {
			p.logger.Debug("Skipping non-numeric rate", "date", day, "currency", code, "value", string(value))
			continue
		}
		rates[code] = rate
	}
	return rates
}

// Name returns the provider's name
func (p *RatesAPI) Name() string {
	return "currencyapi"
}

func (p *RatesAPI) get(
	ctx context.Context,
	op, path string,
	query url.Values,
	out any,
) error {
	endpoint := p.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}

	p.logger.Debug("Calling rates service", "op", op, "path", path)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("failed to make request: %w", err)}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// Ensure RatesAPI implements provider.Rates
var _ provider.Rates = (*RatesAPI)(nil)

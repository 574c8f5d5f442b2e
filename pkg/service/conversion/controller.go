// Package conversion drives the historical currency conversion workflow: it
// loads the currency catalog, validates the form, resolves the rate for the
// chosen day and records every successful result in the history store.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/amirasaad/currency-converter/pkg/dateutil"
	"github.com/amirasaad/currency-converter/pkg/domain"
	"github.com/amirasaad/currency-converter/pkg/provider"
	"github.com/amirasaad/currency-converter/pkg/store"
	"github.com/google/uuid"
)

// User facing messages exposed through State.Error.
const (
	MsgLoadCurrencies = "Failed to load currencies. Please refresh the page."
	MsgRequiredFields = "Please fill in all required fields."
	MsgInvalidDate    = "Please select a valid date."
	MsgFetchRates     = "Failed to fetch historical rates. Please try again."
	MsgNoRatesForDate = "No exchange rates found for the selected date."
	MsgOutOfRange     = "The converted amount is too large. Please enter a smaller amount."
	msgRateNotFound   = "Exchange rate not found for %s."
)

// MsgRateNotFound returns the message shown when code has no usable rate.
func MsgRateNotFound(code string) string {
	return fmt.Sprintf(msgRateNotFound, code)
}

// State is a snapshot of the controller.
type State struct {
	Converting      bool
	IsLoading       bool
	Error           string
	Currencies      domain.Catalog
	ConvertedResult *domain.ConversionResult
	Form            domain.ConversionForm
}

// Controller owns the conversion form and its outcome.
// It is safe for concurrent use; rate requests run without holding the lock.
type Controller struct {
	rates  provider.Rates
	kv     store.KV
	logger *slog.Logger
	newID  func() string

	base   context.Context
	cancel context.CancelFunc

	initMu sync.Mutex
	mu     sync.Mutex
	state  State
	closed bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithIDGenerator overrides how result identifiers are produced.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// New creates a controller that reads rates from rates and appends results to kv.
func New(rates provider.Rates, kv store.KV, logger *slog.Logger, opts ...Option) *Controller {
	base, cancel := context.WithCancel(context.Background())
	c := &Controller{
		rates:  rates,
		kv:     kv,
		logger: logger,
		newID:  uuid.NewString,
		base:   base,
		cancel: cancel,
		state:  State{IsLoading: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Currencies = c.state.Currencies.Clone()
	s.Form = c.state.Form.Clone()
	if c.state.ConvertedResult != nil {
		r := *c.state.ConvertedResult
		s.ConvertedResult = &r
	}
	return s
}

// SetFromCurrency sets the code converted from, which is also the rate base.
func (c *Controller) SetFromCurrency(code string) {
	c.updateForm(func(f *domain.ConversionForm) { f.FromCurrency = &code })
}

// SetToCurrency sets the target currency code.
func (c *Controller) SetToCurrency(code string) {
	c.updateForm(func(f *domain.ConversionForm) { f.ToCurrency = &code })
}

// SetAmount sets the amount to convert.
func (c *Controller) SetAmount(amount float64) {
	c.updateForm(func(f *domain.ConversionForm) { f.Amount = &amount })
}

// SetDate sets the day whose rates are used.
func (c *Controller) SetDate(date time.Time) {
	c.updateForm(func(f *domain.ConversionForm) { f.Date = &date })
}

// SetForm replaces the whole form. Nil fields clear the corresponding input.
func (c *Controller) SetForm(form domain.ConversionForm) {
	c.updateForm(func(f *domain.ConversionForm) { *f = form.Clone() })
}

func (c *Controller) updateForm(fn func(*domain.ConversionForm)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state.Form)
}

// CanSubmit reports whether every field is filled with a usable value and no
// conversion is running. It is derived from the current state on every call.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return canSubmit(c.state)
}

func canSubmit(s State) bool {
	f := s.Form
	return f.FromCurrency != nil && *f.FromCurrency != "" &&
		f.ToCurrency != nil && *f.ToCurrency != "" &&
		f.Amount != nil && *f.Amount > 0 && !math.IsInf(*f.Amount, 0) &&
		f.Date != nil && !f.Date.IsZero() &&
		!s.Converting
}

// Initialize loads the currency catalog. Concurrent calls are serialized.
func (c *Controller) Initialize(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrControllerClosed
	}
	c.state.IsLoading = true
	c.state.Error = ""
	reqCtx, cancel := c.requestContext(ctx)
	c.mu.Unlock()
	defer cancel()

	catalog, err := c.rates.FetchCurrencies(reqCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.logger.Debug("Discarding currency catalog after close")
		return domain.ErrControllerClosed
	}
	c.state.IsLoading = false
	if err != nil {
		c.state.Error = MsgLoadCurrencies
		c.logger.Error("Failed to load currencies", "provider", c.rates.Name(), "error", err)
		return fmt.Errorf("failed to load currencies: %w", err)
	}
	c.state.Currencies = catalog
	c.state.Error = ""
	c.logger.Info("Currencies loaded", "provider", c.rates.Name(), "count", len(catalog))
	return nil
}

// Submit runs one conversion for the current form.
// On success the result is exposed through State and prepended to the
// history; a failed history write is logged and does not fail the call.
func (c *Controller) Submit(ctx context.Context) (*domain.ConversionResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, domain.ErrControllerClosed
	}
	if c.state.Converting {
		c.mu.Unlock()
		return nil, domain.ErrConversionInFlight
	}

	form := c.state.Form.Clone()
	if err := form.Validate(); err != nil {
		c.state.Error = MsgRequiredFields
		c.mu.Unlock()
		return nil, err
	}
	date := dateutil.Format(*form.Date)
	if date == "" {
		c.state.Error = MsgInvalidDate
		c.mu.Unlock()
		return nil, &domain.ValidationError{Field: "Date", Message: "must be a valid date"}
	}

	c.state.Converting = true
	c.state.Error = ""
	reqCtx, cancel := c.requestContext(ctx)
	c.mu.Unlock()
	defer cancel()
	defer c.finishConverting()

	from, to, amount := *form.FromCurrency, *form.ToCurrency, *form.Amount
	logger := c.logger.With("from", from, "to", to, "date", date)
	logger.Debug("Fetching historical rates", "provider", c.rates.Name())

	table, fetchErr := c.rates.FetchHistoricalRates(reqCtx, date, from)

	result, err := c.resolve(table, fetchErr, date, from, to, amount)
	if err != nil {
		if !errors.Is(err, domain.ErrControllerClosed) {
			logger.Warn("Conversion failed", "error", err)
		}
		return nil, err
	}

	if store.Prepend(context.WithoutCancel(ctx), logger, c.kv, domain.HistoryKey, *result) {
		logger.Debug("Conversion recorded", "id", result.ID)
	} else {
		logger.Warn("Conversion not recorded in history", "id", result.ID)
	}
	logger.Info("Conversion completed", "amount", amount, "rate", result.ToCurrencyRate,
		"converted", result.ConvertedAmount)
	out := *result
	return &out, nil
}

// resolve applies the rate response to the state under the lock.
func (c *Controller) resolve(
	table domain.RateTable,
	fetchErr error,
	date, from, to string,
	amount float64,
) (*domain.ConversionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.ErrControllerClosed
	}
	if fetchErr != nil {
		c.state.Error = MsgFetchRates
		return nil, fmt.Errorf("failed to fetch historical rates: %w", fetchErr)
	}
	day, ok := table.ForDate(date)
	if !ok {
		c.state.Error = MsgNoRatesForDate
		return nil, &domain.DataAbsentError{Date: date}
	}
	rate, ok := day.Rate(to)
	if !ok {
		c.state.Error = MsgRateNotFound(to)
		return nil, &domain.DataAbsentError{Date: date, Currency: to}
	}
	result, err := domain.NewConversionResult(c.newID(), amount, rate, from, to, date)
	if errors.Is(err, domain.ErrValidation) {
		c.state.Error = MsgOutOfRange
		return nil, err
	}
	if err != nil {
		c.state.Error = MsgRateNotFound(to)
		return nil, err
	}
	c.state.ConvertedResult = result
	return result, nil
}

// finishConverting clears the in-flight flag on every exit path of Submit.
func (c *Controller) finishConverting() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.state.Converting = false
	}
}

// requestContext derives a context cancelled by either ctx or Close.
func (c *Controller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.base, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}

// Close cancels in-flight requests. Responses arriving afterwards are
// discarded and later calls fail with domain.ErrControllerClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

package provider

import (
	"context"
	"sync"

	"github.com/amirasaad/currency-converter/internal/fixtures/currency"
	"github.com/amirasaad/currency-converter/pkg/domain"
	"github.com/amirasaad/currency-converter/pkg/provider"
)

// fakeEarliestDate is the first day the fake provider publishes rates for.
const fakeEarliestDate = "1999-01-04"

var loadEmbedded = sync.OnceValues(func() ([]currency.Meta, error) {
	return currency.LoadCurrencyMetaCSV("")
})

// Fake is a deterministic in-process provider.Rates used for offline runs and tests.
// Its catalog and USD rates come from the currency fixture.
type Fake struct {
	catalog  domain.Catalog
	usdRates map[string]float64
}

// NewFake returns a Fake seeded from the embedded fixture.
// It panics if the embedded fixture does not parse.
func NewFake() *Fake {
	metas, err := loadEmbedded()
	if err != nil {
		panic("provider: embedded currency fixture: " + err.Error())
	}
	return newFake(metas)
}

// NewFakeFromFixture returns a Fake seeded from the CSV fixture at path.
func NewFakeFromFixture(path string) (*Fake, error) {
	metas, err := currency.LoadCurrencyMetaCSV(path)
	if err != nil {
		return nil, err
	}
	return newFake(metas), nil
}

func newFake(metas []currency.Meta) *Fake {
	f := &Fake{
		catalog:  currency.Catalog(metas),
		usdRates: make(map[string]float64, len(metas)),
	}
	for _, m := range metas {
		f.usdRates[m.Code] = m.USDRate
	}
	return f
}

// FetchCurrencies implements provider.Rates.
func (f *Fake) FetchCurrencies(ctx context.Context) (domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Op: "fetch currencies", Err: err}
	}
	return f.catalog.Clone(), nil
}

// FetchHistoricalRates implements provider.Rates.
// Dates before fakeEarliestDate yield an empty table.
func (f *Fake) FetchHistoricalRates(
	ctx context.Context,
	date, base string,
) (domain.RateTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Op: "fetch historical rates", Err: err}
	}
	if date < fakeEarliestDate {
		return domain.RateTable{}, nil
	}
	day := domain.DayRates{}
	if baseRate, ok := f.usdRates[base]; ok {
		for code, rate := range f.usdRates {
			day[code] = rate / baseRate
		}
	}
	return domain.RateTable{date: day}, nil
}

// Name returns the provider's name
func (f *Fake) Name() string {
	return "fake"
}

var _ provider.Rates = (*Fake)(nil)

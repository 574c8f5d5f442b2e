package currency

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amirasaad/currency-converter/pkg/domain"
)

//go:embed meta.csv
var metaCSV string

// Meta is one fixture row: a currency and its rate in units per US dollar.
type Meta struct {
	domain.Currency
	USDRate float64
}

// LoadCurrencyMetaCSV loads currency metadata from a CSV file or embedded content.
// If path is empty, it uses the embedded CSV content. Inactive rows are skipped.
func LoadCurrencyMetaCSV(path string) ([]Meta, error) {
	var r io.Reader

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		r = f
	} else {
		r = strings.NewReader(metaCSV)
	}

	return parseCurrencyMetaCSV(r)
}

func parseCurrencyMetaCSV(r io.Reader) ([]Meta, error) {
	csvReader := csv.NewReader(r)
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	const expectedColumns = 5
	var metas []Meta
	for i, rec := range records {
		if i == 0 {
			if len(rec) < expectedColumns {
				return nil, fmt.Errorf(
					"invalid CSV format: expected at least %d columns, got %d",
					expectedColumns,
					len(rec),
				)
			}
			continue // skip header
		}

		// Skip malformed rows
		if len(rec) < expectedColumns {
			continue
		}
		if strings.ToLower(rec[4]) != "true" {
			continue
		}
		rate, err := strconv.ParseFloat(rec[3], 64)
		if err != nil || !domain.IsValidRate(rate) {
			return nil, fmt.Errorf("invalid usd_rate %q for %s on line %d", rec[3], rec[0], i+1)
		}

		metas = append(metas, Meta{
			Currency: domain.Currency{Code: rec[0], Name: rec[1], Symbol: rec[2]},
			USDRate:  rate,
		})
	}
	return metas, nil
}

// Catalog builds a catalog from fixture rows.
func Catalog(metas []Meta) domain.Catalog {
	cat := make(domain.Catalog, len(metas))
	for _, m := range metas {
		cat[m.Code] = m.Currency
	}
	return cat
}

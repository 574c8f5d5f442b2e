package domain

import "sort"

// Currency is an entry of the rates service catalog.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Catalog maps currency codes to their metadata.
// A catalog is replaced wholesale on refresh and never mutated in place.
type Catalog map[string]Currency

// Lookup returns the currency registered under code.
func (c Catalog) Lookup(code string) (Currency, bool) {
	cur, ok := c[code]
	return cur, ok
}

// Has reports whether code is part of the catalog.
func (c Catalog) Has(code string) bool {
	_, ok := c[code]
	return ok
}

// Codes returns the catalog codes in ascending order.
func (c Catalog) Codes() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Currencies returns the catalog entries ordered by code.
func (c Catalog) Currencies() []Currency {
	out := make([]Currency, 0, len(c))
	for _, code := range c.Codes() {
		out = append(out, c[code])
	}
	return out
}

// Clone returns an independent copy of the catalog.
func (c Catalog) Clone() Catalog {
	if c == nil {
		return nil
	}
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

package domain

import "math"

// DayRates maps a target currency code to its rate against the requested base.
type DayRates map[string]float64

// RateTable maps a YYYY-MM-DD date to the rates published for that day.
// Only the requested date is expected to be present.
type RateTable map[string]DayRates

// ForDate returns the rates published on date.
func (t RateTable) ForDate(date string) (DayRates, bool) {
	rates, ok := t[date]
	if !ok || rates == nil {
		return nil, false
	}
	return rates, true
}

// Rate returns the rate for code when it is a usable, strictly positive number.
func (d DayRates) Rate(code string) (float64, bool) {
	rate, ok := d[code]
	if !ok || !IsValidRate(rate) {
		return 0, false
	}
	return rate, true
}

// IsValidRate reports whether rate is finite and strictly positive.
func IsValidRate(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) && rate > 0
}

// Package currency provides amount conversion over a configured rate table.
// Rates are quoted against a single base currency; live rate feeds are a
// collaborator concern and conversions here happen only before an expense
// enters its approval chain.
package currency

import "fmt"

// Converter converts amounts using rates quoted against a base currency.
// A rate of r for currency C means 1 unit of the base equals r units of C.
type Converter struct {
	base  string
	rates map[string]float64
}

// NewConverter creates a converter. The base currency always has rate 1.
func NewConverter(base string, rates map[string]float64) *Converter {
	all := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		all[code] = rate
	}
	all[base] = 1
	return &Converter{base: base, rates: all}
}

// Base returns the base currency code
func (c *Converter) Base() string {
	return c.base
}

// Convert converts amount from one currency to another. Unknown currencies
// and non-positive rates are errors.
func (c *Converter) Convert(amount float64, from, to string) (float64, error) {
	if from == to {
		return amount, nil
	}

	fromRate, ok := c.rates[from]
	if !ok || fromRate <= 0 {
		return 0, fmt.Errorf("no exchange rate for currency %q", from)
	}
	toRate, ok := c.rates[to]
	if !ok || toRate <= 0 {
		return 0, fmt.Errorf("no exchange rate for currency %q", to)
	}

	return amount / fromRate * toRate, nil
}

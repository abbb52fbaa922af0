package normalize

import "github.com/shopspring/decimal"

// RoundCents rounds a dollar amount half-away-from-zero to two decimal places.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// OptionalAmount rounds v to cents and returns nil for zero amounts.
func OptionalAmount(v float64) *float64 {
	r := RoundCents(v)
	if r == 0 {
		return nil
	}
	return &r
}

// Package round centralizes the rounding policy for API payloads:
// rates carry four decimals, currency two, percentages one.
package round

import "github.com/shopspring/decimal"

// Rate rounds elasticity coefficients and R-squared values to 4 decimals.
func Rate(v float64) float64 {
	return places(v, 4)
}

// Currency rounds monetary amounts to 2 decimals.
func Currency(v float64) float64 {
	return places(v, 2)
}

// Percent rounds percentage metrics to 1 decimal.
func Percent(v float64) float64 {
	return places(v, 1)
}

// Metric rounds derived product metrics to 3 decimals.
func Metric(v float64) float64 {
	return places(v, 3)
}

// Quantity rounds to the nearest whole unit.
func Quantity(v float64) int64 {
	return decimal.NewFromFloat(v).Round(0).IntPart()
}

func places(v float64, n int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(n).Float64()
	return f
}

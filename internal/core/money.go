// Package core holds the billing domain: subscription records, the
// monthly-equivalent normalization rule, collection aggregation and
// budget evaluation. Everything here is pure and clock-free; callers
// inject "today" wherever calendar comparisons happen.
package core

import "math"

// MonthlyEquivalent converts a price and its billing cadence into the
// cost expressed as if billed every calendar month:
//
//	monthly    -> price
//	yearly     -> price / 12
//	quarterly  -> price / 3
//	weekly     -> price * 4
//	one-time   -> price
//
// An unrecognized schedule tag falls back to treating the price as
// already monthly. That is a deliberate policy, not an error: callers
// depend on always getting a number back. No rounding happens here;
// use Round2 at presentation time.
func MonthlyEquivalent(price float64, schedule Schedule) float64 {
	switch schedule {
	case Yearly:
		return price / 12
	case Quarterly:
		return price / 3
	case Weekly:
		return price * 4
	default:
		return price
	}
}

// YearlyEquivalent is the monthly-equivalent projected over twelve months.
func YearlyEquivalent(price float64, schedule Schedule) float64 {
	return MonthlyEquivalent(price, schedule) * 12
}

// Round2 rounds half away from zero to two decimal places. Presentation
// only; aggregation always runs on unrounded values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

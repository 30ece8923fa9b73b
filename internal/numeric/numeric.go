// Package numeric holds the rounding rules shared by every percentage the
// service reports.
package numeric

import "github.com/shopspring/decimal"

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Percent returns part/whole*100 rounded to places, or 0 when whole is 0.
func Percent(part, whole int, places int32) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(places).
		InexactFloat64()
}

// Ratio returns part/whole, or 0 when whole is 0.
func Ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

// Portion returns the whole number of cases in rate*n, truncated toward
// zero, without binary float drift (0.7*10 is 7, never 6).
func Portion(n int, rate float64) int {
	return int(decimal.NewFromInt(int64(n)).Mul(decimal.NewFromFloat(rate)).IntPart())
}

// Scale is Portion for an already fractional quantity such as a percentage.
func Scale(v, rate float64) int {
	return int(decimal.NewFromFloat(v).Mul(decimal.NewFromFloat(rate)).IntPart())
}

// Package pricing centralizes the marketplace commission math.
// Buyers pay the net price plus a 15% service fee; sellers always
// receive the net amount.
package pricing

import (
	"math"
	"strconv"
)

// markup is the commission multiplier applied to every buyer-facing total.
const markup = 1.15

// Total returns the buyer-facing amount for a net price, rounded to cents.
func Total(net float64) float64 {
	return math.Round(net*markup*100) / 100
}

// Format renders an amount with two decimals, e.g. "13.80".
func Format(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// USD renders an amount as a dollar string, e.g. "$13.80".
func USD(amount float64) string {
	return "$" + Format(amount)
}

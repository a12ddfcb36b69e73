package util

import "math"

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}

// Round2 rounds to cents; used for money amounts.
func Round2(x float64) float64 { return Round(x, 2) }

// Round4 rounds to four places; used for prices and rates.
func Round4(x float64) float64 { return Round(x, 4) }

// Round6 rounds to six places; used for share quantities.
func Round6(x float64) float64 { return Round(x, 6) }

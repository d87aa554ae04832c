package utils

import "math"

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// Round2 rounds a monetary value to 2 decimal places. Applied only at the
// point of final output, never at intermediate steps of an allocation
// chain.
func Round2(val float64) float64 {
	return RoundFloat(val, 2)
}

// ClampNonNegative forces a monetary field to zero when the source value
// came through negative.
func ClampNonNegative(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}

package payment

import "math"

// ToMinorUnits converts a price in major currency units to the integer minor
// units the processor expects (e.g. R$150.00 -> 15000). Rounding guards
// against float drift from quantity multiplication.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Package mathutil holds the rounding and interpolation primitives shared by
// the unit converter, the table interpolator and output formatting.
//
// Digits count places right of the decimal point; negative digits round to
// the left of it (-1 rounds to tens). Rounding is half-up, so 2.5 rounds to
// 3 and -2.5 rounds to -2.
package mathutil

import "math"

// scaled applies op to x shifted by digits and shifts the result back.
// Negative digits divide first so whole multiples of ten stay exact.
func scaled(x float64, digits int, op func(float64) float64) float64 {
	if digits < 0 {
		f := math.Pow(10, float64(-digits))
		return op(x/f) * f
	}
	f := math.Pow(10, float64(digits))
	return op(x*f) / f
}

func halfUp(x float64) float64 { return math.Floor(x + 0.5) }

// Round rounds x half-up to the given digits.
func Round(x float64, digits int) float64 {
	return scaled(x, digits, halfUp)
}

// RoundUp rounds x toward positive infinity at the given digits.
func RoundUp(x float64, digits int) float64 {
	return scaled(x, digits, math.Ceil)
}

// RoundDown rounds x toward negative infinity at the given digits.
func RoundDown(x float64, digits int) float64 {
	return scaled(x, digits, math.Floor)
}

// FindDigits returns the digits argument that keeps the rightmost non-zero
// digit of mult: 0.1 → 1, 5 → 0, 50 → -1, 0.25 → 2.
func FindDigits(mult float64) int {
	mult = math.Abs(mult)
	if mult == 0 {
		mult = 1
	}
	digits := int(math.Floor(math.Log10(mult)))
	n := mult / math.Pow(10, float64(digits))
	for i := 0; i < 15 && math.Abs(n-math.Floor(n+0.5)) > 1e-9; i++ {
		digits--
		n *= 10
	}
	return -digits
}

// RoundUpMult rounds x up to a multiple of mult.
func RoundUpMult(x, mult float64) float64 {
	return Round(math.Ceil(x/mult)*mult, FindDigits(mult))
}

// RoundDownMult rounds x down to a multiple of mult.
func RoundDownMult(x, mult float64) float64 {
	return Round(math.Floor(x/mult)*mult, FindDigits(mult))
}

// RoundMult rounds x half-up to a multiple of mult.
func RoundMult(x, mult float64) float64 {
	return Round(math.Floor(x/mult+0.5)*mult, FindDigits(mult))
}

// RoundTimeOfDay rounds minutes to the nearest whole minute and wraps the
// result into a single day.
func RoundTimeOfDay(minutes float64) float64 {
	m := math.Mod(math.Floor(minutes+0.5), 1440)
	if m < 0 {
		m += 1440
	}
	return m
}

// Interpolate linearly interpolates y at x between (x0, y0) and (x1, y1).
func Interpolate(x, x0, y0, x1, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// Package cmath provides the float32 complex helpers used by the analyzer.
// Values are plain complex64 so +, -, * and / come from the language; the
// helpers here cover what math/cmplx only offers for complex128.
package cmath

import (
	"github.com/chewxy/math32"
)

// Abs returns the modulus |c|.
func Abs(c complex64) float32 {
	return math32.Hypot(real(c), imag(c))
}

// Polar builds a complex value from modulus and argument.
func Polar(r, theta float32) complex64 {
	return complex(r*math32.Cos(theta), r*math32.Sin(theta))
}

// Real lifts a real number into the complex plane.
func Real(x float32) complex64 {
	return complex(x, 0)
}

// IsFinite reports whether both parts of c are neither NaN nor infinite.
func IsFinite(c complex64) bool {
	return finite(real(c)) && finite(imag(c))
}

// Near reports whether a and b are within tol of each other (by modulus of
// the difference).
func Near(a, b complex64, tol float32) bool {
	return Abs(a-b) <= tol
}

func finite(x float32) bool {
	return !math32.IsNaN(x) && !math32.IsInf(x, 0)
}

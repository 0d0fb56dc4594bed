// Package reflection converts between impedance and reflection coefficient
// and applies the short/open/load (SOL) error correction.
//
// None of the functions guard their singular points: z = -z0 for Gamma,
// gamma = 1 for Impedance and open = short for the SOL terms produce IEEE
// infinities or NaN rather than errors. Callers own those preconditions.
package reflection

import (
	"github.com/chewxy/math32"

	"github.com/itohio/gozeroii/pkg/cmath"
)

// Ideal standards in gamma space.
var (
	IdealShort complex64 = -1
	IdealOpen  complex64 = 1
	IdealLoad  complex64 = 0
)

// Gamma maps a measured impedance z to a reflection coefficient relative to
// the reference impedance z0: (z - z0) / (z + z0).
func Gamma(z complex64, z0 float32) complex64 {
	ref := cmath.Real(z0)
	return (z - ref) / (z + ref)
}

// Impedance is the inverse of Gamma: z0 * (1 + gamma) / (1 - gamma).
func Impedance(gamma complex64, z0 float32) complex64 {
	return cmath.Real(z0) * ((1 + gamma) / (1 - gamma))
}

// SWR returns the standing wave ratio for gamma. |gamma| >= 1 yields +Inf.
func SWR(gamma complex64) float32 {
	m := cmath.Abs(gamma)
	if m >= 1 {
		return math32.Inf(1)
	}
	return (1 + m) / (1 - m)
}

// ReturnLoss returns -20*log10(|gamma|) in dB. A perfect match is +Inf.
func ReturnLoss(gamma complex64) float32 {
	m := cmath.Abs(gamma)
	if m == 0 {
		return math32.Inf(1)
	}
	return -20 * math32.Log10(m)
}

// ErrorTerms holds the one-port error model derived from three measured
// standards.
type ErrorTerms struct {
	E01E10 complex64 // reflection tracking
	E11    complex64 // source match
	Load   complex64 // directivity, the raw load reading
}

// Terms derives the SOL error terms from the raw gamma readings of the short,
// open and load standards. open must differ from short.
func Terms(short, open, load complex64) ErrorTerms {
	span := open - short
	return ErrorTerms{
		E01E10: 2 * (open - load) * (load - short) / span,
		E11:    (short + open - 2*load) / span,
		Load:   load,
	}
}

// Apply corrects a raw reflection coefficient.
func (e ErrorTerms) Apply(raw complex64) complex64 {
	d := raw - e.Load
	return d / (e.E01E10 + e.E11*d)
}

// Calibrate applies the SOL correction to raw using the given standards.
// With ideal standards (-1, 1, 0) it returns raw unchanged.
func Calibrate(short, open, load, raw complex64) complex64 {
	return Terms(short, open, load).Apply(raw)
}

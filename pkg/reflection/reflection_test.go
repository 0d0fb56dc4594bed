package reflection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/gozeroii/pkg/cmath"
)

func TestGamma_Matched(t *testing.T) {
	for _, z0 := range []float32{25, 50, 75, 300} {
		g := Gamma(cmath.Real(z0), z0)
		assert.InDelta(t, 0, cmath.Abs(g), 1e-7, "z0=%v", z0)
		assert.InDelta(t, 1, SWR(g), 1e-6, "z0=%v", z0)
	}
}

func TestGamma_Short(t *testing.T) {
	g := Gamma(0, 50)
	assert.InDelta(t, -1, real(g), 1e-7)
	assert.InDelta(t, 0, imag(g), 1e-7)
	assert.True(t, math.IsInf(float64(SWR(g)), 1))
}

func TestImpedance_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		z    complex64
		z0   float32
	}{
		{name: "resistive low", z: complex(12.5, 0), z0: 50},
		{name: "inductive", z: complex(41.961, 16.353), z0: 50},
		{name: "capacitive", z: complex(75, -120), z0: 50},
		{name: "high z", z: complex(900, 300), z0: 75},
		{name: "negative real", z: complex(-10, 5), z0: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Impedance(Gamma(tt.z, tt.z0), tt.z0)
			tol := 1e-4 * cmath.Abs(tt.z)
			assert.InDelta(t, real(tt.z), real(got), float64(tol))
			assert.InDelta(t, imag(tt.z), imag(got), float64(tol))
		})
	}
}

func TestSWR(t *testing.T) {
	tests := []struct {
		name  string
		gamma complex64
		want  float64
	}{
		{name: "matched", gamma: 0, want: 1},
		{name: "half", gamma: complex(0.5, 0), want: 3},
		{name: "third imag", gamma: complex(0, 1.0/3), want: 2},
		{name: "unit", gamma: complex(0, -1), want: math.Inf(1)},
		{name: "beyond unit", gamma: complex(1.2, 0.3), want: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := float64(SWR(tt.gamma))
			if math.IsInf(tt.want, 1) {
				assert.True(t, math.IsInf(got, 1), "got %v", got)
				return
			}
			assert.InDelta(t, tt.want, got, 1e-5)
		})
	}
}

func TestReturnLoss(t *testing.T) {
	assert.InDelta(t, 20, ReturnLoss(complex(0.1, 0)), 1e-4)
	assert.InDelta(t, 0, ReturnLoss(complex(0, 1)), 1e-6)
	assert.True(t, math.IsInf(float64(ReturnLoss(0)), 1))
}

func TestCalibrate_IdealStandardsAreIdentity(t *testing.T) {
	terms := Terms(IdealShort, IdealOpen, IdealLoad)
	assert.Equal(t, complex64(1), terms.E01E10)
	assert.Equal(t, complex64(0), terms.E11)

	for _, g := range []complex64{0, 1, -1, complex(0.3, -0.4), complex(-0.7, 0.1), complex(2, 2)} {
		assert.Equal(t, g, Calibrate(IdealShort, IdealOpen, IdealLoad, g))
	}
}

func TestCalibrate_RecoversFixtureError(t *testing.T) {
	// Standard one-port error model: m = e00 + e01e10*g / (1 - e11*g).
	e00 := complex64(complex(0.05, -0.02))
	e11 := complex64(complex(0.1, 0.04))
	tracking := cmath.Polar(0.85, -0.4)
	measure := func(g complex64) complex64 {
		return e00 + tracking*g/(1-e11*g)
	}

	short, open, load := measure(-1), measure(1), measure(0)
	terms := Terms(short, open, load)
	assert.True(t, cmath.Near(tracking, terms.E01E10, 1e-5))
	assert.True(t, cmath.Near(e11, terms.E11, 1e-5))
	assert.Equal(t, e00, terms.Load)

	for _, g := range []complex64{0, complex(0.3, 0.2), complex(-0.5, -0.5), complex(0, 0.9)} {
		got := Calibrate(short, open, load, measure(g))
		assert.True(t, cmath.Near(g, got, 1e-4), "want %v got %v", g, got)
	}
}

func TestCalibrate_DegenerateStandards(t *testing.T) {
	got := Calibrate(0.5, 0.5, 0, complex(0.1, 0))
	assert.False(t, cmath.IsFinite(got))
}

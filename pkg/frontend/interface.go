// Package frontend talks to the reflection measurement front-end.
package frontend

// Measurer performs one raw impedance measurement at a frequency. The result
// is the uncalibrated impedance in ohms (resistance + j reactance).
type Measurer interface {
	Measure(fq uint32) (complex64, error)
}

// Device is a front-end that has to be connected before measuring.
type Device interface {
	Measurer
	Connect() error
	Close() error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

// Ensure Averaging implements Measurer.
var _ Measurer = (*Averaging)(nil)

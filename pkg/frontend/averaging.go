package frontend

import "fmt"

// Averaging reduces measurement noise by averaging n consecutive readings
// at the same frequency.
type Averaging struct {
	m Measurer
	n int
}

// NewAveraging wraps m. n <= 1 disables averaging.
func NewAveraging(m Measurer, n int) *Averaging {
	if n <= 0 {
		n = 1
	}
	return &Averaging{m: m, n: n}
}

// Measure returns the mean of n readings at fq.
func (a *Averaging) Measure(fq uint32) (complex64, error) {
	if a.n == 1 {
		return a.m.Measure(fq)
	}

	var sum complex64
	for i := range a.n {
		z, err := a.m.Measure(fq)
		if err != nil {
			return 0, fmt.Errorf("reading %d of %d: %w", i+1, a.n, err)
		}
		sum += z
	}
	return sum / complex(float32(a.n), 0), nil
}

package sweep

import (
	"errors"
	"fmt"
)

// DefaultCapacity bounds the number of points a results buffer holds.
const DefaultCapacity = 256

// ErrFull is returned when a point would exceed the buffer capacity.
var ErrFull = errors.New("sweep results full")

// Point is one raw (uncalibrated) impedance measurement.
type Point struct {
	Fq     uint32
	UncalZ complex64
}

// Results is a fixed-capacity buffer of sweep points.
type Results struct {
	points []Point
}

// NewResults creates an empty buffer. capacity <= 0 selects DefaultCapacity.
func NewResults(capacity int) *Results {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Results{points: make([]Point, 0, capacity)}
}

// Len returns the number of stored points.
func (r *Results) Len() int { return len(r.points) }

// Cap returns the fixed capacity.
func (r *Results) Cap() int { return cap(r.points) }

// Full reports whether no more points fit.
func (r *Results) Full() bool { return len(r.points) == cap(r.points) }

// At returns the i-th point.
func (r *Results) At(i int) Point { return r.points[i] }

// Points returns a copy of the stored points.
func (r *Results) Points() []Point {
	out := make([]Point, len(r.points))
	copy(out, r.points)
	return out
}

// Append adds a point.
func (r *Results) Append(p Point) error {
	if r.Full() {
		return ErrFull
	}
	r.points = append(r.points, p)
	return nil
}

// Reset empties the buffer.
func (r *Results) Reset() {
	r.points = r.points[:0]
}

// Replace overwrites the buffer with points, leaving it untouched when they
// do not fit.
func (r *Results) Replace(points []Point) error {
	if len(points) > cap(r.points) {
		return fmt.Errorf("%w: %d points, capacity %d", ErrFull, len(points), cap(r.points))
	}
	r.points = append(r.points[:0], points...)
	return nil
}

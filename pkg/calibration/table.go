// Package calibration holds the per-frequency SOL calibration table.
package calibration

import (
	"errors"
	"fmt"
	"sort"

	"github.com/itohio/gozeroii/pkg/reflection"
)

const (
	// DefaultZ0 is the reference impedance used when none is configured.
	DefaultZ0 float32 = 50.0
	// DefaultCapacity bounds the number of calibration points per table.
	DefaultCapacity = 256
)

var (
	// ErrFull is returned when a point would exceed the table capacity.
	ErrFull = errors.New("calibration table full")
	// ErrUnordered is returned when points are not in strictly ascending frequency order.
	ErrUnordered = errors.New("calibration points not in ascending frequency order")
)

// Point is the raw gamma of the three standards measured at one frequency.
type Point struct {
	Fq    uint32
	Short complex64
	Open  complex64
	Load  complex64
}

// Identity is the "no correction" point returned by an empty table.
var Identity = Point{
	Short: reflection.IdealShort,
	Open:  reflection.IdealOpen,
	Load:  reflection.IdealLoad,
}

// Terms returns the SOL error terms of the point.
func (p Point) Terms() reflection.ErrorTerms {
	return reflection.Terms(p.Short, p.Open, p.Load)
}

// Table is an ascending-frequency sequence of calibration points with a
// fixed capacity and the reference impedance they were measured against.
//
// Lookups assume the ordering invariant; it is enforced on insertion only.
type Table struct {
	z0     float32
	points []Point
}

// NewTable creates an empty table. capacity <= 0 selects DefaultCapacity and
// z0 <= 0 selects DefaultZ0.
func NewTable(capacity int, z0 float32) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if z0 <= 0 {
		z0 = DefaultZ0
	}
	return &Table{
		z0:     z0,
		points: make([]Point, 0, capacity),
	}
}

// Z0 returns the reference impedance.
func (t *Table) Z0() float32 { return t.z0 }

// SetZ0 changes the reference impedance.
func (t *Table) SetZ0(z0 float32) { t.z0 = z0 }

// Len returns the number of stored points.
func (t *Table) Len() int { return len(t.points) }

// Cap returns the fixed capacity.
func (t *Table) Cap() int { return cap(t.points) }

// At returns the i-th point.
func (t *Table) At(i int) Point { return t.points[i] }

// Points returns a copy of the stored points.
func (t *Table) Points() []Point {
	out := make([]Point, len(t.points))
	copy(out, t.points)
	return out
}

// Append adds a point at the end of the table. The point must be above
// every stored frequency.
func (t *Table) Append(p Point) error {
	if len(t.points) == cap(t.points) {
		return ErrFull
	}
	if n := len(t.points); n > 0 && p.Fq <= t.points[n-1].Fq {
		return fmt.Errorf("%w: %d after %d", ErrUnordered, p.Fq, t.points[n-1].Fq)
	}
	t.points = append(t.points, p)
	return nil
}

// Clear empties the table; lookups fall back to Identity.
func (t *Table) Clear() {
	t.points = t.points[:0]
}

// Replace overwrites the table with z0 and points. Nothing is changed when
// the points do not fit or are out of order.
func (t *Table) Replace(z0 float32, points []Point) error {
	if len(points) > cap(t.points) {
		return fmt.Errorf("%w: %d points, capacity %d", ErrFull, len(points), cap(t.points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Fq <= points[i-1].Fq {
			return fmt.Errorf("%w: %d after %d", ErrUnordered, points[i].Fq, points[i-1].Fq)
		}
	}
	t.z0 = z0
	t.points = append(t.points[:0], points...)
	return nil
}

// Find returns the first point whose frequency is >= fq. ok is false when
// the table is empty or fq is above every stored frequency.
func (t *Table) Find(fq uint32) (p Point, ok bool) {
	i := sort.Search(len(t.points), func(i int) bool {
		return t.points[i].Fq >= fq
	})
	if i == len(t.points) {
		return Point{}, false
	}
	return t.points[i], true
}

// Lookup returns the calibration point to use at fq. It snaps to the first
// point at or above fq; above the calibrated range it clamps to the last
// point and an empty table yields Identity.
func (t *Table) Lookup(fq uint32) Point {
	if len(t.points) == 0 {
		return Identity
	}
	if p, ok := t.Find(fq); ok {
		return p
	}
	return t.points[len(t.points)-1]
}

// CalibratedGamma converts a raw impedance measured at fq into a corrected
// reflection coefficient.
func (t *Table) CalibratedGamma(fq uint32, z complex64) complex64 {
	p := t.Lookup(fq)
	return reflection.Calibrate(p.Short, p.Open, p.Load, reflection.Gamma(z, t.z0))
}

// Package sweep produces measurement frequencies and holds raw sweep results.
package sweep

import (
	"iter"
	"math"
)

// Generator yields a geometrically spaced sequence of frequencies from start
// to end inclusive. It is single-use: once exhausted, create a new one.
//
// f(0) = start, f(i) = clamp(round(f(i-1)*r), start, end) and the last point
// is pinned to end, where r = (end/start)^(1/(steps-1)). A sweep with
// end <= start or steps <= 1 is degenerate and yields nothing.
type Generator struct {
	start uint32
	end   uint32
	steps int
	ratio float64

	idx int
	fq  uint32
}

// NewGenerator creates a generator for steps points between start and end.
func NewGenerator(start, end uint32, steps int) *Generator {
	g := &Generator{
		start: start,
		end:   end,
		fq:    start,
		ratio: 1.0,
	}
	if end > start && steps > 1 {
		g.steps = steps
		// A zero start frequency would make the ratio infinite; 1 Hz is the
		// lowest base the geometric spacing can grow from.
		base := math.Max(float64(start), 1)
		g.ratio = math.Pow(float64(end)/base, 1.0/float64(steps-1))
	}
	return g
}

// Len returns the number of frequencies the generator produces in total.
func (g *Generator) Len() int { return g.steps }

// Index returns how many frequencies have been produced so far.
func (g *Generator) Index() int { return g.idx }

// Done reports whether the sequence is exhausted.
func (g *Generator) Done() bool { return g.idx >= g.steps }

// Next returns the next frequency. ok is false once the sequence is exhausted.
func (g *Generator) Next() (fq uint32, ok bool) {
	if g.idx >= g.steps {
		return 0, false
	}
	fq = g.fq
	g.idx++
	g.fq = g.advance(fq)
	return fq, true
}

// All returns the remaining frequencies as an iterator. Ranging over it
// consumes the generator.
func (g *Generator) All() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for {
			fq, ok := g.Next()
			if !ok || !yield(fq) {
				return
			}
		}
	}
}

func (g *Generator) advance(fq uint32) uint32 {
	if g.idx >= g.steps-1 {
		return g.end
	}
	next := math.Round(math.Max(float64(fq), 1) * g.ratio)
	switch {
	case next < float64(g.start):
		return g.start
	case next > float64(g.end):
		return g.end
	}
	return uint32(next)
}

// Frequencies returns the full sequence for the given sweep parameters.
func Frequencies(start, end uint32, steps int) []uint32 {
	g := NewGenerator(start, end, steps)
	out := make([]uint32, 0, g.Len())
	for fq := range g.All() {
		out = append(out, fq)
	}
	return out
}

package sweep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_20m(t *testing.T) {
	fqs := Frequencies(14_000_000, 14_350_000, 5)

	require.Len(t, fqs, 5)
	assert.Equal(t, uint32(14_000_000), fqs[0])
	assert.Equal(t, uint32(14_350_000), fqs[4])
	for i := 1; i < len(fqs); i++ {
		assert.GreaterOrEqual(t, fqs[i], fqs[i-1], "index %d", i)
	}

	r := math.Pow(14_350_000.0/14_000_000.0, 0.25)
	assert.Equal(t, uint32(math.Round(14_000_000*r)), fqs[1])
}

func TestGenerator_Degenerate(t *testing.T) {
	tests := []struct {
		name       string
		start, end uint32
		steps      int
	}{
		{name: "zero steps", start: 1000, end: 2000, steps: 0},
		{name: "one step", start: 1000, end: 2000, steps: 1},
		{name: "negative steps", start: 1000, end: 2000, steps: -3},
		{name: "end equals start", start: 1000, end: 1000, steps: 10},
		{name: "end below start", start: 2000, end: 1000, steps: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.start, tt.end, tt.steps)
			assert.Equal(t, 0, g.Len())
			assert.True(t, g.Done())
			_, ok := g.Next()
			assert.False(t, ok)
			assert.Empty(t, Frequencies(tt.start, tt.end, tt.steps))
		})
	}
}

func TestGenerator_TwoSteps(t *testing.T) {
	assert.Equal(t, []uint32{7_000_000, 7_300_000}, Frequencies(7_000_000, 7_300_000, 2))
}

func TestGenerator_LastPointPinned(t *testing.T) {
	for _, steps := range []int{3, 7, 50, 101, 256} {
		fqs := Frequencies(100_000, 1_000_000_000, steps)
		require.Len(t, fqs, steps)
		assert.Equal(t, uint32(100_000), fqs[0])
		assert.Equal(t, uint32(1_000_000_000), fqs[steps-1])
		for i := 1; i < len(fqs); i++ {
			assert.GreaterOrEqual(t, fqs[i], fqs[i-1])
			assert.LessOrEqual(t, fqs[i], uint32(1_000_000_000))
		}
	}
}

func TestGenerator_NarrowSweepClamps(t *testing.T) {
	// More steps than hertz: rounding keeps repeating values but the
	// sequence still never leaves [start, end].
	fqs := Frequencies(1000, 1003, 10)
	require.Len(t, fqs, 10)
	for _, fq := range fqs {
		assert.GreaterOrEqual(t, fq, uint32(1000))
		assert.LessOrEqual(t, fq, uint32(1003))
	}
	assert.Equal(t, uint32(1003), fqs[9])
}

func TestGenerator_ZeroStart(t *testing.T) {
	fqs := Frequencies(0, 1000, 4)
	require.Len(t, fqs, 4)
	assert.Equal(t, uint32(0), fqs[0])
	assert.Equal(t, uint32(1000), fqs[3])
	for i := 1; i < len(fqs); i++ {
		assert.GreaterOrEqual(t, fqs[i], fqs[i-1])
	}
}

func TestGenerator_IsSingleUse(t *testing.T) {
	g := NewGenerator(1000, 2000, 3)
	var first []uint32
	for fq := range g.All() {
		first = append(first, fq)
		if len(first) == 2 {
			break
		}
	}
	assert.Equal(t, 2, g.Index())

	rest := []uint32{}
	for fq := range g.All() {
		rest = append(rest, fq)
	}
	assert.Equal(t, []uint32{2000}, rest)
	assert.True(t, g.Done())
}

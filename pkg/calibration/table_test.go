package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gozeroii/pkg/reflection"
)

func point(fq uint32, v float32) Point {
	return Point{
		Fq:    fq,
		Short: complex(-1+v, 0),
		Open:  complex(1-v, 0),
		Load:  complex(v, v),
	}
}

func TestNewTable_Defaults(t *testing.T) {
	tab := NewTable(0, 0)
	assert.Equal(t, DefaultCapacity, tab.Cap())
	assert.Equal(t, DefaultZ0, tab.Z0())
	assert.Equal(t, 0, tab.Len())
}

func TestLookup_EmptyTableIsIdentity(t *testing.T) {
	tab := NewTable(4, 50)
	for _, fq := range []uint32{0, 1, 14_000_000, 4_000_000_000} {
		p := tab.Lookup(fq)
		assert.Equal(t, complex64(-1), p.Short)
		assert.Equal(t, complex64(1), p.Open)
		assert.Equal(t, complex64(0), p.Load)
	}

	_, ok := tab.Find(1000)
	assert.False(t, ok)
}

func TestLookup_SnapsToNextHigher(t *testing.T) {
	tab := NewTable(8, 50)
	require.NoError(t, tab.Append(point(1000, 0.1)))
	require.NoError(t, tab.Append(point(2000, 0.2)))
	require.NoError(t, tab.Append(point(3000, 0.3)))

	tests := []struct {
		name string
		fq   uint32
		want uint32
	}{
		{name: "below range", fq: 10, want: 1000},
		{name: "exact first", fq: 1000, want: 1000},
		{name: "between", fq: 1001, want: 2000},
		{name: "exact middle", fq: 2000, want: 2000},
		{name: "exact last", fq: 3000, want: 3000},
		{name: "above range clamps", fq: 3001, want: 3000},
		{name: "far above range clamps", fq: 4_000_000_000, want: 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tab.Lookup(tt.fq).Fq)
		})
	}

	_, ok := tab.Find(3001)
	assert.False(t, ok, "Find reports out-of-range explicitly")
}

func TestAppend_Capacity(t *testing.T) {
	tab := NewTable(2, 50)
	require.NoError(t, tab.Append(point(1, 0)))
	require.NoError(t, tab.Append(point(2, 0)))
	assert.ErrorIs(t, tab.Append(point(3, 0)), ErrFull)
	assert.Equal(t, 2, tab.Len())
}

func TestAppend_Order(t *testing.T) {
	tab := NewTable(4, 50)
	require.NoError(t, tab.Append(point(100, 0)))
	assert.ErrorIs(t, tab.Append(point(100, 0)), ErrUnordered)
	assert.ErrorIs(t, tab.Append(point(50, 0)), ErrUnordered)
	assert.Equal(t, 1, tab.Len())
}

func TestReplace(t *testing.T) {
	tab := NewTable(3, 50)
	require.NoError(t, tab.Append(point(10, 0.1)))

	err := tab.Replace(75, []Point{point(1, 0), point(2, 0), point(3, 0), point(4, 0)})
	assert.ErrorIs(t, err, ErrFull)
	assert.Equal(t, float32(50), tab.Z0(), "failed replace must not mutate")
	assert.Equal(t, 1, tab.Len())

	err = tab.Replace(75, []Point{point(2, 0), point(1, 0)})
	assert.ErrorIs(t, err, ErrUnordered)
	assert.Equal(t, 1, tab.Len())

	require.NoError(t, tab.Replace(75, []Point{point(5, 0.1), point(6, 0.2)}))
	assert.Equal(t, float32(75), tab.Z0())
	assert.Equal(t, []Point{point(5, 0.1), point(6, 0.2)}, tab.Points())
}

func TestClear(t *testing.T) {
	tab := NewTable(3, 50)
	require.NoError(t, tab.Append(point(10, 0.1)))
	tab.Clear()
	assert.Equal(t, 0, tab.Len())
	assert.Equal(t, Identity, tab.Lookup(10))
}

func TestPointsIsACopy(t *testing.T) {
	tab := NewTable(3, 50)
	require.NoError(t, tab.Append(point(10, 0.1)))
	pts := tab.Points()
	pts[0].Fq = 99
	assert.Equal(t, uint32(10), tab.At(0).Fq)
}

func TestCalibratedGamma_Uncalibrated(t *testing.T) {
	tab := NewTable(3, 50)
	z := complex64(complex(25, 10))
	assert.Equal(t, reflection.Gamma(z, 50), tab.CalibratedGamma(7_000_000, z))
}

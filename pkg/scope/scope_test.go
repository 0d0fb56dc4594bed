package scope

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsample_NoDownsampling(t *testing.T) {
	src := []int{1, 2, 3}

	result := Downsample(nil, src, 10)
	assert.Equal(t, src, result)

	dst := make([]int, 0, 10)
	result = Downsample(dst, src, 10)
	assert.Equal(t, src, result)
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_Decimates(t *testing.T) {
	src := make([]int, 100)
	for i := range src {
		src[i] = i
	}

	dst := make([]int, 0, 20)
	result := Downsample(dst, src, 10)
	require.Len(t, result, 10)
	assert.Equal(t, 0, result[0])
	assert.Equal(t, 99, result[9])
	for i := 1; i < len(result); i++ {
		assert.Greater(t, result[i], result[i-1])
	}
	assert.Equal(t, cap(dst), cap(result))
}

func TestLowest(t *testing.T) {
	points := []Point{{1, 3}, {2, 1.2}, {3, math32.Inf(1)}, {4, 1.5}}
	assert.Equal(t, 1, lowest(points))
	assert.Equal(t, -1, lowest(nil))
}

func TestPlotArea_Clamps(t *testing.T) {
	a := plotArea{x: 0, y: 0, w: 100, h: 100, xMin: 10, xMax: 20, yMin: 1, yMax: 5}

	p := a.pos(10, 1)
	assert.InDelta(t, 0, p.X, 1e-4)
	assert.InDelta(t, 100, p.Y, 1e-4)

	p = a.pos(20, math32.Inf(1))
	assert.InDelta(t, 100, p.X, 1e-4)
	assert.InDelta(t, 0, p.Y, 1e-4)

	p = a.pos(15, 3)
	assert.InDelta(t, 50, p.X, 1e-4)
	assert.InDelta(t, 50, p.Y, 1e-4)
}

func TestAutoScale(t *testing.T) {
	s := &SWRWidget{maxSWR: 5}
	s.points = []Point{{14_000_000, 3}, {14_100_000, 1.1}, {14_200_000, math32.Inf(1)}}
	s.display = s.points
	s.updateAutoScale()

	assert.Equal(t, uint32(14_000_000), s.xMin)
	assert.Equal(t, uint32(14_200_000), s.xMax)
	assert.Equal(t, float32(1), s.yMin)
	assert.InDelta(t, 3.3, s.yMax, 1e-4)

	s.points = []Point{{1, 50}}
	s.display = s.points
	s.updateAutoScale()
	assert.Equal(t, float32(5), s.yMax)
	assert.Equal(t, uint32(2), s.xMax)
}

// Package scope provides a Fyne widget plotting SWR against frequency.
package scope

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"
)

// Point is one plotted sample.
type Point struct {
	Fq  uint32
	SWR float32
}

const (
	// DefaultMaxSWR is the top of the SWR axis.
	DefaultMaxSWR = 5
	minSWRSpan    = 2
)

// SWRWidget is a custom Fyne widget that plots calibrated SWR over a sweep.
type SWRWidget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu      sync.RWMutex
	points  []Point
	display []Point
	best    int // index into points of the lowest SWR, -1 if none
	title   string

	// Axes
	xMin, xMax uint32
	yMin, yMax float32

	maxSWR           float32
	maxDisplayPoints int
}

// New creates a new SWRWidget. maxSWR <= 1 selects DefaultMaxSWR.
func New(maxSWR float32) *SWRWidget {
	if maxSWR <= 1 {
		maxSWR = DefaultMaxSWR
	}
	s := &SWRWidget{
		display:          make([]Point, 0, 512),
		best:             -1,
		maxSWR:           maxSWR,
		maxDisplayPoints: 512,
	}
	s.updateAutoScale()
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData replaces the plotted sweep. Call it on the Fyne main thread.
func (s *SWRWidget) UpdateData(points []Point, title string) {
	s.mu.Lock()
	s.points = append(s.points[:0], points...)
	s.display = Downsample(s.display, s.points, s.maxDisplayPoints)
	s.best = lowest(s.points)
	s.title = title
	s.updateAutoScale()
	s.mu.Unlock()

	s.Refresh()
}

// Best returns the lowest SWR point. ok is false when nothing is plotted.
func (s *SWRWidget) Best() (p Point, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.best < 0 {
		return Point{}, false
	}
	return s.points[s.best], true
}

func lowest(points []Point) int {
	best := -1
	for i, p := range points {
		if best < 0 || p.SWR < points[best].SWR {
			best = i
		}
	}
	return best
}

// updateAutoScale fits the axes to the current data.
func (s *SWRWidget) updateAutoScale() {
	s.yMin = 1
	s.yMax = minSWRSpan
	if len(s.points) == 0 {
		s.xMin, s.xMax = 0, 1
		return
	}

	s.xMin = s.points[0].Fq
	s.xMax = s.points[len(s.points)-1].Fq
	if s.xMax <= s.xMin {
		s.xMax = s.xMin + 1
	}

	for _, p := range s.display {
		if !math32.IsInf(p.SWR, 0) && !math32.IsNaN(p.SWR) && p.SWR > s.yMax {
			s.yMax = p.SWR
		}
	}
	s.yMax = min(s.yMax*1.1, s.maxSWR)
}

// CreateRenderer creates the widget renderer.
func (s *SWRWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &swrRenderer{
		plot:    s,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}

package scope

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"
)

var (
	gridColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	traceColor  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	markerColor = color.RGBA{R: 100, G: 200, B: 255, A: 255}
	titleColor  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// swrRenderer renders the SWR widget.
type swrRenderer struct {
	plot *SWRWidget

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

// plotArea maps data coordinates onto the widget.
type plotArea struct {
	x, y, w, h float32
	xMin, xMax uint32
	yMin, yMax float32
}

func (a plotArea) pos(fq uint32, swr float32) fyne.Position {
	if math32.IsNaN(swr) || swr > a.yMax {
		swr = a.yMax
	}
	if swr < a.yMin {
		swr = a.yMin
	}
	x := a.x + float32(fq-a.xMin)/float32(a.xMax-a.xMin)*a.w
	y := a.y + a.h - (swr-a.yMin)/(a.yMax-a.yMin)*a.h
	return fyne.NewPos(x, y)
}

// MinSize returns the minimum size of the widget.
func (r *swrRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *swrRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	if r.lastSize != size {
		r.lastSize = size
		r.plot.BaseWidget.Refresh()
	}
}

// Refresh redraws the plot.
func (r *swrRenderer) Refresh() {
	r.plot.mu.RLock()
	display := r.plot.display
	var best *Point
	if r.plot.best >= 0 {
		p := r.plot.points[r.plot.best]
		best = &p
	}
	title := r.plot.title
	area := plotArea{
		xMin: r.plot.xMin, xMax: r.plot.xMax,
		yMin: r.plot.yMin, yMax: r.plot.yMax,
	}
	r.plot.mu.RUnlock()

	size := r.plot.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = r.objects[:1]

	const (
		marginLeft   = 50
		marginRight  = 20
		marginTop    = 30
		marginBottom = 30
	)
	area.x, area.y = marginLeft, marginTop
	area.w = size.Width - marginLeft - marginRight
	area.h = size.Height - marginTop - marginBottom

	r.drawGrid(area)
	r.drawTrace(area, display)
	if best != nil {
		r.drawMarker(area, *best)
	}
	if title != "" {
		r.text(title, titleColor, 12, fyne.TextAlignLeading, fyne.NewPos(area.x, 5))
	}
}

func (r *swrRenderer) drawGrid(a plotArea) {
	const hLines = 8
	for i := range hLines + 1 {
		y := a.y + float32(i)*a.h/hLines
		r.line(gridColor, 1, fyne.NewPos(a.x, y), fyne.NewPos(a.x+a.w, y))
		v := a.yMax - float32(i)*(a.yMax-a.yMin)/hLines
		r.text(fmt.Sprintf("%.2f", v), labelColor, 10, fyne.TextAlignTrailing, fyne.NewPos(a.x-5, y-6))
	}

	const vLines = 10
	for i := range vLines + 1 {
		x := a.x + float32(i)*a.w/vLines
		r.line(gridColor, 1, fyne.NewPos(x, a.y), fyne.NewPos(x, a.y+a.h))
		fq := float64(a.xMin) + float64(i)*float64(a.xMax-a.xMin)/vLines
		r.text(formatMHz(fq), labelColor, 10, fyne.TextAlignCenter, fyne.NewPos(x-20, a.y+a.h+5))
	}
}

func (r *swrRenderer) drawTrace(a plotArea, points []Point) {
	if len(points) < 2 {
		return
	}
	prev := a.pos(points[0].Fq, points[0].SWR)
	for _, p := range points[1:] {
		next := a.pos(p.Fq, p.SWR)
		r.line(traceColor, 1.5, prev, next)
		prev = next
	}
}

func (r *swrRenderer) drawMarker(a plotArea, p Point) {
	at := a.pos(p.Fq, p.SWR)
	r.line(markerColor, 1, fyne.NewPos(at.X, a.y), fyne.NewPos(at.X, a.y+a.h))
	r.text(fmt.Sprintf("%.2f @ %s", p.SWR, formatMHz(float64(p.Fq))), markerColor, 11, fyne.TextAlignLeading, fyne.NewPos(at.X+4, at.Y-16))
}

func (r *swrRenderer) line(c color.Color, width float32, from, to fyne.Position) {
	l := canvas.NewLine(c)
	l.Position1 = from
	l.Position2 = to
	l.StrokeWidth = width
	r.objects = append(r.objects, l)
}

func (r *swrRenderer) text(s string, c color.Color, size float32, align fyne.TextAlign, at fyne.Position) {
	t := canvas.NewText(s, c)
	t.TextSize = size
	t.Alignment = align
	t.Move(at)
	r.objects = append(r.objects, t)
}

// Objects returns all canvas objects for rendering.
func (r *swrRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *swrRenderer) Destroy() {}

func formatMHz(fq float64) string {
	return fmt.Sprintf("%.3f", fq/1e6)
}

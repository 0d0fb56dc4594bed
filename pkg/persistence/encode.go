// Package persistence stores calibration settings and sweep results as
// compact JSON documents under versioned file names.
//
// Settings:
//
//	{"z0":50.000000,"calibration":[{"fq":14000000,"cal_short":[re,im],"cal_open":[re,im],"cal_load":[re,im]},...]}
//
// Results:
//
//	[{"fq":14000000,"uncal_z":[re,im]},...]
//
// Both are written and read as streams; neither side holds a whole document.
package persistence

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/chewxy/math32"

	"github.com/itohio/gozeroii/pkg/calibration"
	"github.com/itohio/gozeroii/pkg/sweep"
)

// ErrNonFinite is returned when a value cannot be written as a JSON number.
var ErrNonFinite = errors.New("value is not finite")

const precision = 6

// encoder writes tokens to w, remembering the first error.
type encoder struct {
	w   io.Writer
	buf []byte
	err error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: w, buf: make([]byte, 0, 64)}
}

func (e *encoder) flush() {
	if e.err == nil && len(e.buf) > 0 {
		_, e.err = e.w.Write(e.buf)
	}
	e.buf = e.buf[:0]
}

func (e *encoder) raw(s string) {
	e.buf = append(e.buf, s...)
}

func (e *encoder) uint(v uint32) {
	e.buf = strconv.AppendUint(e.buf, uint64(v), 10)
}

func (e *encoder) float(v float32) {
	if math32.IsInf(v, 0) || math32.IsNaN(v) {
		if e.err == nil {
			e.err = fmt.Errorf("%w: %v", ErrNonFinite, v)
		}
		return
	}
	e.buf = strconv.AppendFloat(e.buf, float64(v), 'f', precision, 32)
}

func (e *encoder) complex(c complex64) {
	e.raw("[")
	e.float(real(c))
	e.raw(",")
	e.float(imag(c))
	e.raw("]")
}

// EncodeSettings writes the reference impedance and calibration points of t.
func EncodeSettings(w io.Writer, t *calibration.Table) error {
	e := newEncoder(w)
	e.raw(`{"z0":`)
	e.float(t.Z0())
	e.raw(`,"calibration":[`)
	for i := range t.Len() {
		p := t.At(i)
		if i > 0 {
			e.raw(",")
		}
		e.raw(`{"fq":`)
		e.uint(p.Fq)
		e.raw(`,"cal_short":`)
		e.complex(p.Short)
		e.raw(`,"cal_open":`)
		e.complex(p.Open)
		e.raw(`,"cal_load":`)
		e.complex(p.Load)
		e.raw("}")
		e.flush()
	}
	e.raw("]}")
	e.flush()
	return e.err
}

// EncodeResults writes raw sweep points.
func EncodeResults(w io.Writer, points []sweep.Point) error {
	e := newEncoder(w)
	e.raw("[")
	for i, p := range points {
		if i > 0 {
			e.raw(",")
		}
		e.raw(`{"fq":`)
		e.uint(p.Fq)
		e.raw(`,"uncal_z":`)
		e.complex(p.UncalZ)
		e.raw("}")
		e.flush()
	}
	e.raw("]")
	e.flush()
	return e.err
}

package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/itohio/gozeroii/pkg/calibration"
	"github.com/itohio/gozeroii/pkg/sweep"
)

// decode feeds r through a lexer into emit, one byte at a time.
func decode(r io.Reader, emit func(event) error) error {
	br := bufio.NewReaderSize(r, 256)
	lx := newLexer(emit)
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if err := lx.feed(b); err != nil {
			return err
		}
	}
	return lx.close()
}

func unexpected(ev event, where string) error {
	if ev.kind == eventKey {
		return fmt.Errorf("%w: unexpected key %q in %s", ErrMalformed, ev.text, where)
	}
	return fmt.Errorf("%w: unexpected %s in %s", ErrMalformed, ev.kind, where)
}

func parseFq(ev event) (uint32, error) {
	if ev.kind != eventNumber {
		return 0, unexpected(ev, "fq")
	}
	v, err := strconv.ParseUint(ev.text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: fq %q: %v", ErrMalformed, ev.text, err)
	}
	return uint32(v), nil
}

func parseFloat(ev event, where string) (float32, error) {
	if ev.kind != eventNumber {
		return 0, unexpected(ev, where)
	}
	v, err := strconv.ParseFloat(ev.text, 32)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s %q is not a finite number", ErrMalformed, where, ev.text)
	}
	return float32(v), nil
}

// pair collects a [real, imag] array.
type pairState int

const (
	pairOpen pairState = iota
	pairReal
	pairImag
	pairClose
	pairDone
)

type pair struct {
	state pairState
	re    float32
	value complex64
}

func (p *pair) reset() { p.state = pairOpen }

// handle consumes one event and reports whether the pair is complete.
func (p *pair) handle(ev event, where string) (bool, error) {
	switch p.state {
	case pairOpen:
		if ev.kind != eventArrayStart {
			return false, unexpected(ev, where)
		}
		p.state = pairReal
	case pairReal:
		v, err := parseFloat(ev, where)
		if err != nil {
			return false, err
		}
		p.re = v
		p.state = pairImag
	case pairImag:
		v, err := parseFloat(ev, where)
		if err != nil {
			return false, err
		}
		p.value = complex(p.re, v)
		p.state = pairClose
	case pairClose:
		if ev.kind != eventArrayEnd {
			return false, fmt.Errorf("%w: %s must hold exactly two numbers", ErrMalformed, where)
		}
		p.state = pairDone
		return true, nil
	default:
		return false, unexpected(ev, where)
	}
	return false, nil
}

type settingsState int

const (
	settingsStart settingsState = iota
	settingsTop
	settingsZ0
	settingsCalibration
	settingsArray
	settingsPoint
	settingsFq
	settingsShort
	settingsOpen
	settingsLoad
	settingsDone
)

// point fields seen so far
const (
	fieldFq = 1 << iota
	fieldShort
	fieldOpen
	fieldLoad
	fieldZ

	settingsFields = fieldFq | fieldShort | fieldOpen | fieldLoad
	resultsFields  = fieldFq | fieldZ
)

// settingsDecoder stages a settings document. Nothing is visible to the
// caller until the whole document has been accepted.
type settingsDecoder struct {
	state   settingsState
	z0      float32
	seenZ0  bool
	seenCal bool
	pair    pair
	point   calibration.Point
	fields  int
	points  []calibration.Point
	total   int
}

func (d *settingsDecoder) handle(ev event) error {
	switch d.state {
	case settingsStart:
		if ev.kind != eventObjectStart {
			return unexpected(ev, "settings")
		}
		d.state = settingsTop
	case settingsTop:
		switch {
		case ev.kind == eventObjectEnd:
			d.state = settingsDone
		case ev.kind == eventKey && ev.text == "z0":
			d.state = settingsZ0
		case ev.kind == eventKey && ev.text == "calibration":
			d.state = settingsCalibration
		default:
			return unexpected(ev, "settings")
		}
	case settingsZ0:
		v, err := parseFloat(ev, "z0")
		if err != nil {
			return err
		}
		d.z0, d.seenZ0 = v, true
		d.state = settingsTop
	case settingsCalibration:
		if ev.kind != eventArrayStart {
			return unexpected(ev, "calibration")
		}
		d.points = d.points[:0]
		d.total = 0
		d.seenCal = true
		d.state = settingsArray
	case settingsArray:
		switch ev.kind {
		case eventObjectStart:
			d.point = calibration.Point{}
			d.fields = 0
			d.state = settingsPoint
		case eventArrayEnd:
			d.state = settingsTop
		default:
			return unexpected(ev, "calibration")
		}
	case settingsPoint:
		return d.handleKey(ev)
	case settingsFq:
		fq, err := parseFq(ev)
		if err != nil {
			return err
		}
		d.point.Fq = fq
		d.fields |= fieldFq
		d.state = settingsPoint
	case settingsShort, settingsOpen, settingsLoad:
		return d.handlePair(ev)
	default:
		return unexpected(ev, "settings")
	}
	return nil
}

func (d *settingsDecoder) handleKey(ev event) error {
	if ev.kind == eventObjectEnd {
		if d.fields != settingsFields {
			return fmt.Errorf("%w: calibration point %d misses fields", ErrIncomplete, d.total)
		}
		if len(d.points) < cap(d.points) {
			d.points = append(d.points, d.point)
		}
		d.total++
		d.state = settingsArray
		return nil
	}
	if ev.kind != eventKey {
		return unexpected(ev, "calibration point")
	}

	switch ev.text {
	case "fq":
		d.state = settingsFq
		return nil
	case "cal_short":
		d.state = settingsShort
	case "cal_open":
		d.state = settingsOpen
	case "cal_load":
		d.state = settingsLoad
	default:
		return unexpected(ev, "calibration point")
	}
	d.pair.reset()
	return nil
}

func (d *settingsDecoder) handlePair(ev event) error {
	done, err := d.pair.handle(ev, d.state.field())
	if err != nil || !done {
		return err
	}
	switch d.state {
	case settingsShort:
		d.point.Short = d.pair.value
		d.fields |= fieldShort
	case settingsOpen:
		d.point.Open = d.pair.value
		d.fields |= fieldOpen
	case settingsLoad:
		d.point.Load = d.pair.value
		d.fields |= fieldLoad
	}
	d.state = settingsPoint
	return nil
}

func (s settingsState) field() string {
	switch s {
	case settingsShort:
		return "cal_short"
	case settingsOpen:
		return "cal_open"
	case settingsLoad:
		return "cal_load"
	}
	return "settings"
}

// DecodeSettings reads a settings document into t and returns the number of
// calibration points stored. Points beyond the table capacity are validated
// and dropped. On any error t is left unchanged.
func DecodeSettings(r io.Reader, t *calibration.Table) (int, error) {
	d := &settingsDecoder{points: make([]calibration.Point, 0, t.Cap())}
	if err := decode(r, d.handle); err != nil {
		return 0, err
	}
	if !d.seenZ0 {
		return 0, fmt.Errorf("%w: z0 missing", ErrIncomplete)
	}
	if !d.seenCal {
		return 0, fmt.Errorf("%w: calibration missing", ErrIncomplete)
	}
	if err := t.Replace(d.z0, d.points); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return len(d.points), nil
}

type resultsState int

const (
	resultsStart resultsState = iota
	resultsArray
	resultsPoint
	resultsFq
	resultsZ
	resultsDone
)

// resultsDecoder stages a results document.
type resultsDecoder struct {
	state  resultsState
	pair   pair
	point  sweep.Point
	fields int
	points []sweep.Point
	total  int
}

func (d *resultsDecoder) handle(ev event) error {
	switch d.state {
	case resultsStart:
		if ev.kind != eventArrayStart {
			return unexpected(ev, "results")
		}
		d.state = resultsArray
	case resultsArray:
		switch ev.kind {
		case eventObjectStart:
			d.point = sweep.Point{}
			d.fields = 0
			d.state = resultsPoint
		case eventArrayEnd:
			d.state = resultsDone
		default:
			return unexpected(ev, "results")
		}
	case resultsPoint:
		switch {
		case ev.kind == eventObjectEnd:
			if d.fields != resultsFields {
				return fmt.Errorf("%w: result point %d misses fields", ErrIncomplete, d.total)
			}
			if len(d.points) < cap(d.points) {
				d.points = append(d.points, d.point)
			}
			d.total++
			d.state = resultsArray
		case ev.kind == eventKey && ev.text == "fq":
			d.state = resultsFq
		case ev.kind == eventKey && ev.text == "uncal_z":
			d.pair.reset()
			d.state = resultsZ
		default:
			return unexpected(ev, "result point")
		}
	case resultsFq:
		fq, err := parseFq(ev)
		if err != nil {
			return err
		}
		d.point.Fq = fq
		d.fields |= fieldFq
		d.state = resultsPoint
	case resultsZ:
		done, err := d.pair.handle(ev, "uncal_z")
		if err != nil || !done {
			return err
		}
		d.point.UncalZ = d.pair.value
		d.fields |= fieldZ
		d.state = resultsPoint
	default:
		return unexpected(ev, "results")
	}
	return nil
}

// DecodeResults reads a results document into res and returns the number of
// points stored. Points beyond the buffer capacity are validated and
// dropped. On any error res is left unchanged.
func DecodeResults(r io.Reader, res *sweep.Results) (int, error) {
	d := &resultsDecoder{points: make([]sweep.Point, 0, res.Cap())}
	if err := decode(r, d.handle); err != nil {
		return 0, err
	}
	if err := res.Replace(d.points); err != nil {
		return 0, err
	}
	return len(d.points), nil
}

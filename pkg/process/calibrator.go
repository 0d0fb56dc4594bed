// Package process drives the calibration and analysis sweeps one
// measurement at a time.
//
// Neither machine blocks on anything but the measurement itself: the caller
// owns the loop and calls Step until the machine reports completion.
// Abandoning a machine mid-sweep needs no cleanup.
package process

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/itohio/gozeroii/pkg/calibration"
	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/metrics"
	"github.com/itohio/gozeroii/pkg/reflection"
	"github.com/itohio/gozeroii/pkg/sweep"
)

// ErrNotPending is returned by Confirm when no standard is awaited.
var ErrNotPending = errors.New("calibration is not waiting for a standard")

// State is a calibration phase.
type State int

const (
	StateStart State = iota
	StateShortPending
	StateShortSweep
	StateOpenPending
	StateOpenSweep
	StateLoadPending
	StateLoadSweep
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateShortPending:
		return "short-pending"
	case StateShortSweep:
		return "short-sweep"
	case StateOpenPending:
		return "open-pending"
	case StateOpenSweep:
		return "open-sweep"
	case StateLoadPending:
		return "load-pending"
	case StateLoadSweep:
		return "load-sweep"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Pending reports whether the state waits for the operator to confirm.
func (s State) Pending() bool {
	return s == StateShortPending || s == StateOpenPending || s == StateLoadPending
}

// Sweeping reports whether the state measures on every step.
func (s State) Sweeping() bool {
	return s == StateShortSweep || s == StateOpenSweep || s == StateLoadSweep
}

// Calibrator measures the short, open and load standards across a sweep and
// fills a calibration table.
//
// Points are staged privately; the table is replaced only when the last
// phase completes.
type Calibrator struct {
	m       frontend.Measurer
	table   *calibration.Table
	log     *slog.Logger
	metrics *metrics.Metrics

	state State
	start uint32
	end   uint32
	steps int

	gen     *sweep.Generator
	fq      uint32 // frequency awaiting measurement
	pending bool   // fq is set
	lastFq  uint32
	idx     int
	work    []calibration.Point
	began   time.Time
}

// NewCalibrator creates a calibrator writing into table. metrics may be nil.
func NewCalibrator(m frontend.Measurer, table *calibration.Table, logger *slog.Logger, mt *metrics.Metrics) *Calibrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calibrator{
		m:       m,
		table:   table,
		log:     logger.With("component", "calibrator"),
		metrics: mt,
		state:   StateDone,
		work:    make([]calibration.Point, 0, table.Cap()),
	}
}

// Start begins a new calibration run over the given sweep, discarding any
// run in progress.
func (c *Calibrator) Start(start, end uint32, steps int) {
	c.start, c.end, c.steps = start, end, steps
	c.work = c.work[:0]
	c.gen = nil
	c.pending = false
	c.state = StateStart
	c.began = time.Now()
	c.log.Info("calibration started", "start", start, "end", end, "steps", steps)
}

// State returns the current phase.
func (c *Calibrator) State() State { return c.state }

// Done reports whether the run has completed.
func (c *Calibrator) Done() bool { return c.state == StateDone }

// Standard returns the standard the current or awaited phase measures.
func (c *Calibrator) Standard() frontend.Standard {
	switch c.state {
	case StateShortPending, StateShortSweep:
		return frontend.StandardShort
	case StateOpenPending, StateOpenSweep:
		return frontend.StandardOpen
	case StateLoadPending, StateLoadSweep:
		return frontend.StandardLoad
	}
	return frontend.StandardDUT
}

// Prompt returns the operator instruction for the current phase.
func (c *Calibrator) Prompt() string {
	switch c.state {
	case StateStart:
		return "Starting calibration"
	case StateShortPending:
		return "Attach SHORT standard and confirm"
	case StateOpenPending:
		return "Attach OPEN standard and confirm"
	case StateLoadPending:
		return "Attach LOAD standard and confirm"
	case StateShortSweep:
		return "Measuring SHORT"
	case StateOpenSweep:
		return "Measuring OPEN"
	case StateLoadSweep:
		return "Measuring LOAD"
	}
	return "Calibration complete"
}

// Progress returns the points measured in the current phase and the phase
// length.
func (c *Calibrator) Progress() (index, total int) {
	if c.gen == nil {
		return 0, 0
	}
	return c.gen.Index(), c.gen.Len()
}

// Confirm tells a pending phase that the standard is attached.
func (c *Calibrator) Confirm() error {
	if !c.state.Pending() {
		return fmt.Errorf("%w: state %s", ErrNotPending, c.state)
	}
	c.gen = sweep.NewGenerator(c.start, c.end, c.steps)
	c.pending = false
	c.lastFq = 0
	c.idx = 0
	c.state++
	c.log.Info("phase started", "state", c.state, "points", c.gen.Len())
	return nil
}

// Step advances the run by one measurement or one phase transition and
// reports whether the run is complete. Pending states do nothing until
// Confirm. A failed measurement is returned without advancing; calling Step
// again retries the same frequency.
func (c *Calibrator) Step() (bool, error) {
	switch {
	case c.state == StateDone:
		return true, nil
	case c.state == StateStart:
		c.state = StateShortPending
		return false, nil
	case c.state.Pending():
		return false, nil
	}

	if !c.pending {
		fq, ok := c.next()
		if !ok {
			return c.finishPhase()
		}
		c.fq, c.pending = fq, true
	}

	z, err := c.m.Measure(c.fq)
	c.metrics.Measurement(err)
	if err != nil {
		return false, fmt.Errorf("calibration %s at %d Hz: %w", c.Standard(), c.fq, err)
	}
	c.pending = false

	g := reflection.Gamma(z, c.table.Z0())
	switch c.state {
	case StateShortSweep:
		c.work = append(c.work, calibration.Point{Fq: c.fq, Short: g})
	case StateOpenSweep:
		c.work[c.idx].Open = g
	case StateLoadSweep:
		c.work[c.idx].Load = g
	}
	c.idx++
	c.log.Debug("calibration point", "standard", c.Standard(), "fq", c.fq, "gamma", g)
	return false, nil
}

// next returns the next frequency of the phase. Repeated frequencies from a
// narrow sweep are skipped and every phase stops at the number of points the
// short phase captured.
func (c *Calibrator) next() (uint32, bool) {
	for {
		if c.state == StateShortSweep && len(c.work) == cap(c.work) {
			if !c.gen.Done() {
				c.log.Warn("calibration truncated to capacity", "capacity", cap(c.work))
			}
			return 0, false
		}
		if c.state != StateShortSweep && c.idx >= len(c.work) {
			return 0, false
		}

		fq, ok := c.gen.Next()
		if !ok {
			return 0, false
		}
		if c.idx > 0 && fq == c.lastFq {
			continue
		}
		c.lastFq = fq
		return fq, true
	}
}

func (c *Calibrator) finishPhase() (bool, error) {
	if c.state != StateLoadSweep {
		c.state++
		c.log.Info("phase complete", "next", c.state)
		return false, nil
	}

	if err := c.table.Replace(c.table.Z0(), c.work); err != nil {
		c.state = StateDone
		return true, fmt.Errorf("commit calibration: %w", err)
	}
	c.state = StateDone
	c.metrics.SweepDone("calibration", len(c.work), time.Since(c.began))
	c.log.Info("calibration complete", "points", len(c.work))
	return true, nil
}

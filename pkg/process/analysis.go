package process

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/metrics"
	"github.com/itohio/gozeroii/pkg/sweep"
)

// Analysis performs a plain sweep, recording raw impedance points.
type Analysis struct {
	m       frontend.Measurer
	results *sweep.Results
	log     *slog.Logger
	metrics *metrics.Metrics

	gen     *sweep.Generator
	fq      uint32
	pending bool
	done    bool
	began   time.Time
}

// NewAnalysis creates an analysis sweep writing into results. metrics may be nil.
func NewAnalysis(m frontend.Measurer, results *sweep.Results, logger *slog.Logger, mt *metrics.Metrics) *Analysis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analysis{
		m:       m,
		results: results,
		log:     logger.With("component", "analysis"),
		metrics: mt,
		done:    true,
	}
}

// Start resets the results buffer and begins a new sweep.
func (a *Analysis) Start(start, end uint32, steps int) {
	a.results.Reset()
	a.gen = sweep.NewGenerator(start, end, steps)
	a.pending = false
	a.done = false
	a.began = time.Now()
	a.log.Info("sweep started", "start", start, "end", end, "steps", a.gen.Len())
}

// Done reports whether the sweep has completed.
func (a *Analysis) Done() bool { return a.done }

// Progress returns the points measured so far and the sweep length.
func (a *Analysis) Progress() (index, total int) {
	if a.gen == nil {
		return 0, 0
	}
	return a.gen.Index(), a.gen.Len()
}

// Step performs one measurement and reports whether the sweep is complete.
// A failed measurement is returned without advancing.
func (a *Analysis) Step() (bool, error) {
	if a.done {
		return true, nil
	}

	if !a.pending {
		if a.results.Full() {
			if !a.gen.Done() {
				a.log.Warn("sweep truncated to capacity", "capacity", a.results.Cap())
			}
			return a.finish(), nil
		}
		fq, ok := a.gen.Next()
		if !ok {
			return a.finish(), nil
		}
		a.fq, a.pending = fq, true
	}

	z, err := a.m.Measure(a.fq)
	a.metrics.Measurement(err)
	if err != nil {
		return false, fmt.Errorf("sweep at %d Hz: %w", a.fq, err)
	}
	a.pending = false

	if err := a.results.Append(sweep.Point{Fq: a.fq, UncalZ: z}); err != nil {
		return a.finish(), err
	}
	a.log.Debug("sweep point", "fq", a.fq, "z", z)
	return false, nil
}

// Run steps the sweep to completion.
func (a *Analysis) Run() error {
	for {
		done, err := a.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (a *Analysis) finish() bool {
	a.done = true
	a.metrics.SweepDone("analysis", a.results.Len(), time.Since(a.began))
	a.log.Info("sweep complete", "points", a.results.Len())
	return true
}

package process

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gozeroii/pkg/calibration"
	"github.com/itohio/gozeroii/pkg/cmath"
	"github.com/itohio/gozeroii/pkg/config"
	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/metrics"
	"github.com/itohio/gozeroii/pkg/reflection"
	"github.com/itohio/gozeroii/pkg/sweep"
)

func newMock(t *testing.T) *frontend.Mock {
	t.Helper()
	cfg := config.Default().Mock
	cfg.Delay = 0
	cfg.NoiseLevel = 0
	m := frontend.NewMock(&cfg, calibration.DefaultZ0)
	require.NoError(t, m.Connect())
	return m
}

// runCalibration drives the calibrator the way an operator would, attaching
// the requested standard whenever the machine waits for one.
func runCalibration(t *testing.T, c *Calibrator, m *frontend.Mock) {
	t.Helper()
	for i := 0; i < 10_000; i++ {
		if c.State().Pending() {
			m.Attach(c.Standard())
			require.NoError(t, c.Confirm())
		}
		done, err := c.Step()
		require.NoError(t, err)
		if done {
			m.Attach(frontend.StandardDUT)
			return
		}
	}
	t.Fatal("calibration did not complete")
}

// flaky fails every other measurement.
type flaky struct {
	m     frontend.Measurer
	calls int
}

func (f *flaky) Measure(fq uint32) (complex64, error) {
	f.calls++
	if f.calls%2 == 1 {
		return 0, errors.New("bus error")
	}
	return f.m.Measure(fq)
}

func TestCalibrator_States(t *testing.T) {
	m := newMock(t)
	table := calibration.NewTable(0, 0)
	c := NewCalibrator(m, table, nil, nil)

	c.Start(14_000_000, 14_350_000, 5)
	assert.Equal(t, StateStart, c.State())

	done, err := c.Step()
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StateShortPending, c.State())
	assert.Equal(t, frontend.StandardShort, c.Standard())
	assert.Contains(t, c.Prompt(), "SHORT")

	// Pending waits for confirmation.
	_, err = c.Step()
	require.NoError(t, err)
	assert.Equal(t, StateShortPending, c.State())

	require.NoError(t, c.Confirm())
	assert.Equal(t, StateShortSweep, c.State())
	assert.ErrorIs(t, c.Confirm(), ErrNotPending)

	for range 5 {
		_, err := c.Step()
		require.NoError(t, err)
	}
	idx, total := c.Progress()
	assert.Equal(t, 5, idx)
	assert.Equal(t, 5, total)

	_, err = c.Step()
	require.NoError(t, err)
	assert.Equal(t, StateOpenPending, c.State())
	assert.Equal(t, 0, table.Len(), "table is only written when calibration completes")
}

func TestCalibrator_RecoversAntenna(t *testing.T) {
	m := newMock(t)
	mt := metrics.New()
	table := calibration.NewTable(0, 0)
	c := NewCalibrator(m, table, nil, mt)

	c.Start(14_000_000, 14_350_000, 5)
	runCalibration(t, c, m)
	assert.True(t, c.Done())
	require.Equal(t, 5, table.Len())
	assert.Equal(t, uint32(14_000_000), table.At(0).Fq)
	assert.Equal(t, uint32(14_350_000), table.At(4).Fq)

	for _, p := range table.Points() {
		raw, err := m.Measure(p.Fq)
		require.NoError(t, err)
		want := reflection.Gamma(m.Antenna(p.Fq), table.Z0())
		got := table.CalibratedGamma(p.Fq, raw)
		assert.True(t, cmath.Near(want, got, 1e-3), "fq=%d want=%v got=%v", p.Fq, want, got)
	}
}

func TestCalibrator_DegenerateSweepClearsTable(t *testing.T) {
	m := newMock(t)
	table := calibration.NewTable(0, 0)
	require.NoError(t, table.Append(calibration.Point{Fq: 1}))

	c := NewCalibrator(m, table, nil, nil)
	c.Start(14_000_000, 14_000_000, 5)
	runCalibration(t, c, m)
	assert.Equal(t, 0, table.Len())
}

func TestCalibrator_TruncatesToCapacity(t *testing.T) {
	m := newMock(t)
	table := calibration.NewTable(3, 0)
	c := NewCalibrator(m, table, nil, nil)

	c.Start(1_000_000, 30_000_000, 10)
	runCalibration(t, c, m)
	require.Equal(t, 3, table.Len())
	for _, p := range table.Points() {
		assert.NotZero(t, p.Open)
		assert.NotZero(t, p.Load)
	}
}

func TestCalibrator_NarrowSweepSkipsRepeats(t *testing.T) {
	m := newMock(t)
	table := calibration.NewTable(0, 0)
	c := NewCalibrator(m, table, nil, nil)

	// Rounding keeps the sweep at 100 Hz until the pinned last point.
	c.Start(100, 103, 10)
	runCalibration(t, c, m)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, uint32(100), table.At(0).Fq)
	assert.Equal(t, uint32(103), table.At(1).Fq)
}

func TestCalibrator_MeasurementErrorRetries(t *testing.T) {
	m := newMock(t)
	f := &flaky{m: m}
	table := calibration.NewTable(0, 0)
	c := NewCalibrator(f, table, nil, nil)

	c.Start(7_000_000, 7_300_000, 3)
	errs := 0
	for !c.Done() {
		if c.State().Pending() {
			m.Attach(c.Standard())
			require.NoError(t, c.Confirm())
		}
		if _, err := c.Step(); err != nil {
			errs++
		}
	}
	assert.Equal(t, 9, errs)
	assert.Equal(t, 3, table.Len())
}

func TestCalibrator_AbandonKeepsTable(t *testing.T) {
	m := newMock(t)
	table := calibration.NewTable(0, 0)
	c := NewCalibrator(m, table, nil, nil)

	c.Start(7_000_000, 7_300_000, 3)
	runCalibration(t, c, m)
	before := table.Points()

	c.Start(14_000_000, 14_350_000, 3)
	_, _ = c.Step()
	m.Attach(frontend.StandardShort)
	require.NoError(t, c.Confirm())
	_, _ = c.Step()

	assert.Equal(t, before, table.Points())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "load-sweep", StateLoadSweep.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func TestAnalysis_Sweep(t *testing.T) {
	m := newMock(t)
	results := sweep.NewResults(0)
	a := NewAnalysis(m, results, nil, metrics.New())

	assert.True(t, a.Done())
	a.Start(14_000_000, 14_350_000, 5)
	assert.False(t, a.Done())
	require.NoError(t, a.Run())

	assert.True(t, a.Done())
	require.Equal(t, 5, results.Len())
	assert.Equal(t, sweep.Frequencies(14_000_000, 14_350_000, 5), fqs(results))

	p := results.At(2)
	assert.InDelta(t, real(m.Antenna(p.Fq)), real(p.UncalZ), 10, "raw reading is near the antenna")
}

func TestAnalysis_NarrowSweepKeepsRepeats(t *testing.T) {
	m := newMock(t)
	results := sweep.NewResults(0)
	a := NewAnalysis(m, results, nil, nil)
	a.Start(100, 105, 20)
	require.NoError(t, a.Run())

	got := fqs(results)
	require.Len(t, got, 20)
	assert.Equal(t, uint32(100), got[0])
	assert.Equal(t, uint32(105), got[19])
	assert.IsNonDecreasing(t, got)
}

func TestAnalysis_Degenerate(t *testing.T) {
	m := newMock(t)
	results := sweep.NewResults(0)
	require.NoError(t, results.Append(sweep.Point{Fq: 1}))

	a := NewAnalysis(m, results, nil, nil)
	a.Start(10, 5, 10)
	done, err := a.Step()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 0, results.Len())
}

func TestAnalysis_StopsAtCapacity(t *testing.T) {
	m := newMock(t)
	results := sweep.NewResults(4)
	a := NewAnalysis(m, results, nil, nil)

	a.Start(1_000_000, 30_000_000, 50)
	require.NoError(t, a.Run())
	assert.Equal(t, 4, results.Len())
}

func TestAnalysis_MeasurementErrorRetries(t *testing.T) {
	m := newMock(t)
	results := sweep.NewResults(0)
	a := NewAnalysis(&flaky{m: m}, results, nil, nil)

	a.Start(7_000_000, 7_300_000, 3)
	_, err := a.Step()
	assert.Error(t, err)
	assert.Equal(t, 0, results.Len())

	errs := 1
	for !a.Done() {
		if _, err := a.Step(); err != nil {
			errs++
		}
	}
	assert.Equal(t, 3, errs)
	assert.Equal(t, sweep.Frequencies(7_000_000, 7_300_000, 3), fqs(results))
}

func fqs(r *sweep.Results) []uint32 {
	out := make([]uint32, 0, r.Len())
	for _, p := range r.Points() {
		out = append(out, p.Fq)
	}
	return out
}

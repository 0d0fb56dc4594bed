// Package analyzer ties the measurement front-end, calibration, sweeps and
// storage into one application context owned by the caller's control loop.
package analyzer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/itohio/gozeroii/pkg/calibration"
	"github.com/itohio/gozeroii/pkg/config"
	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/metrics"
	"github.com/itohio/gozeroii/pkg/persistence"
	"github.com/itohio/gozeroii/pkg/process"
	"github.com/itohio/gozeroii/pkg/sweep"
)

// Context is the analyzer state: one calibration table, one results buffer
// and the machines that fill them. It is not safe for concurrent use.
type Context struct {
	cfg     *config.Config
	device  frontend.Device
	store   *persistence.Store
	metrics *metrics.Metrics
	log     *slog.Logger

	table       *calibration.Table
	results     *sweep.Results
	calibrator  *process.Calibrator
	analysis    *process.Analysis
	settingsSrc string
}

// New creates a context measuring through device. store and metrics may be nil.
func New(cfg *config.Config, device frontend.Device, store *persistence.Store, logger *slog.Logger, mt *metrics.Metrics) *Context {
	if logger == nil {
		logger = slog.Default()
	}

	var m frontend.Measurer = device
	if cfg.Analyzer.Averaging > 1 {
		m = frontend.NewAveraging(device, cfg.Analyzer.Averaging)
	}

	table := calibration.NewTable(cfg.Analyzer.Capacity, cfg.Analyzer.Z0)
	results := sweep.NewResults(cfg.Analyzer.Capacity)
	return &Context{
		cfg:        cfg,
		device:     device,
		store:      store,
		metrics:    mt,
		log:        logger.With("component", "analyzer"),
		table:      table,
		results:    results,
		calibrator: process.NewCalibrator(m, table, logger, mt),
		analysis:   process.NewAnalysis(m, results, logger, mt),
	}
}

// Boot loads the most recent settings. Any failure leaves the analyzer
// uncalibrated and is only logged.
func (c *Context) Boot() {
	if c.store == nil {
		return
	}
	name, n, err := c.store.LoadLatestSettings(c.table)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		c.log.Info("no saved settings, running uncalibrated")
	case err != nil:
		c.table.Clear()
		c.log.Warn("failed to load settings, running uncalibrated", "err", err)
	default:
		c.settingsSrc = name
		c.log.Info("calibration restored", "name", name, "points", n)
	}
}

// Config returns the configuration the context was created with.
func (c *Context) Config() *config.Config { return c.cfg }

// Device returns the measurement front-end.
func (c *Context) Device() frontend.Device { return c.device }

// Table returns the calibration table.
func (c *Context) Table() *calibration.Table { return c.table }

// Results returns the results buffer.
func (c *Context) Results() *sweep.Results { return c.results }

// Calibrator returns the calibration state machine.
func (c *Context) Calibrator() *process.Calibrator { return c.calibrator }

// Analysis returns the sweep state machine.
func (c *Context) Analysis() *process.Analysis { return c.analysis }

// SettingsSource returns the name of the settings file the table was last
// loaded from or saved to.
func (c *Context) SettingsSource() string { return c.settingsSrc }

// SweepRange returns the configured sweep. A configured band overrides the
// start and end frequencies.
func (c *Context) SweepRange() (start, end uint32, steps int, err error) {
	s := c.cfg.Sweep
	start, end, steps = s.StartFq, s.EndFq, s.Steps
	if s.Band != "" {
		b, err := sweep.BandByName(s.Band)
		if err != nil {
			return 0, 0, 0, err
		}
		start, end = b.Start, b.End
	}
	return start, end, steps, nil
}

// StartCalibration begins a calibration run over the configured sweep.
func (c *Context) StartCalibration() error {
	start, end, steps, err := c.SweepRange()
	if err != nil {
		return err
	}
	c.calibrator.Start(start, end, steps)
	return nil
}

// StartSweep begins an analysis sweep over the configured sweep.
func (c *Context) StartSweep() error {
	start, end, steps, err := c.SweepRange()
	if err != nil {
		return err
	}
	c.analysis.Start(start, end, steps)
	return nil
}

// RunSweep performs a complete analysis sweep and records the lowest SWR.
func (c *Context) RunSweep() error {
	if err := c.StartSweep(); err != nil {
		return err
	}
	if err := c.analysis.Run(); err != nil {
		return err
	}
	if row, ok := c.MinSWR(); ok {
		c.metrics.MinSWR(row.SWR)
		c.log.Info("sweep analysed", "min_swr", row.SWR, "fq", sweep.FormatFrequency(row.Fq))
	}
	return nil
}

// SaveSettings stores the calibration table under the next versioned name.
func (c *Context) SaveSettings() (string, error) {
	if c.store == nil {
		return "", errors.New("no storage configured")
	}
	name, err := c.store.SaveSettingsAuto(c.table)
	if err != nil {
		return "", fmt.Errorf("save settings: %w", err)
	}
	c.settingsSrc = name
	return name, nil
}

// LoadSettings replaces the calibration table from the named file.
func (c *Context) LoadSettings(name string) error {
	if c.store == nil {
		return errors.New("no storage configured")
	}
	if _, err := c.store.LoadSettings(name, c.table); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	c.settingsSrc = name
	return nil
}

// SaveResults stores the results buffer under the next versioned name.
func (c *Context) SaveResults() (string, error) {
	if c.store == nil {
		return "", errors.New("no storage configured")
	}
	name, err := c.store.SaveResultsAuto(c.results.Points())
	if err != nil {
		return "", fmt.Errorf("save results: %w", err)
	}
	return name, nil
}

// LoadResults replaces the results buffer from the named file, or the most
// recent one when name is empty.
func (c *Context) LoadResults(name string) (string, error) {
	if c.store == nil {
		return "", errors.New("no storage configured")
	}
	var err error
	if name == "" {
		name, _, err = c.store.LoadLatestResults(c.results)
	} else {
		_, err = c.store.LoadResults(name, c.results)
	}
	if err != nil {
		return "", fmt.Errorf("load results: %w", err)
	}
	return name, nil
}

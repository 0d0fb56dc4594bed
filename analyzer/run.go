package main

import (
	"errors"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/itohio/gozeroii/pkg/analyzer"
	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/scope"
	"github.com/itohio/gozeroii/pkg/sweep"
)

// updateInterval throttles progress updates to ~60 FPS.
const updateInterval = 16 * time.Millisecond

var errAborted = errors.New("aborted")

// stepper is one of the analyzer state machines.
type stepper interface {
	Step() (bool, error)
	Progress() (index, total int)
}

// startWorker marks the application busy and runs fn on a worker goroutine.
// fn owns the analyzer context until it returns.
func startWorker(state *appState, fn func(ctx *analyzer.Context, abort <-chan struct{}) error, onDone func()) {
	state.busy = true
	state.abort = make(chan struct{})
	updateButtons(state)

	ctx, abort := state.ctx, state.abort
	state.worker.Add(1)
	go func() {
		defer state.worker.Done()
		err := fn(ctx, abort)
		fyne.Do(func() {
			if state.ctx != ctx {
				return
			}
			state.busy = false
			state.abort = nil
			state.confirm = nil
			state.progress.SetValue(0)
			updateButtons(state)
			switch {
			case errors.Is(err, errAborted):
				state.status.SetText("Aborted")
			case err != nil:
				state.status.SetText("Failed")
				dialog.ShowError(err, state.window)
			case onDone != nil:
				onDone()
			}
		})
	}()
}

// step advances m once, reporting progress on the main thread.
func step(state *appState, m stepper, abort <-chan struct{}) (bool, error) {
	select {
	case <-abort:
		return false, errAborted
	default:
	}

	done, err := m.Step()
	if err != nil {
		return false, err
	}

	if now := time.Now(); now.Sub(state.lastUpdateTime) >= updateInterval || done {
		state.lastUpdateTime = now
		idx, total := m.Progress()
		fyne.Do(func() {
			if total > 0 {
				state.progress.SetValue(float64(idx) / float64(total))
			}
		})
	}
	return done, nil
}

// handleCalibrate runs a calibration, pausing for the operator at every
// standard.
func handleCalibrate(state *appState) {
	if err := state.ctx.StartCalibration(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	startWorker(state, func(ctx *analyzer.Context, abort <-chan struct{}) error {
		cal := ctx.Calibrator()
		for !cal.Done() {
			if cal.State().Pending() {
				if err := waitForStandard(state, cal.Standard(), cal.Prompt(), abort); err != nil {
					return err
				}
				if err := cal.Confirm(); err != nil {
					return err
				}
				prompt := cal.Prompt()
				fyne.Do(func() { state.status.SetText(prompt) })
			}
			if _, err := step(state, cal, abort); err != nil {
				return fmt.Errorf("calibration: %w", err)
			}
		}
		return nil
	}, func() {
		if state.mock != nil {
			state.mock.Attach(frontend.StandardDUT)
		}
		state.status.SetText(fmt.Sprintf("Calibrated %d points, save to keep", state.ctx.Table().Len()))
		replot(state)
	})
}

// waitForStandard asks the operator to attach std and blocks until they
// confirm or the run is aborted.
func waitForStandard(state *appState, std frontend.Standard, prompt string, abort <-chan struct{}) error {
	confirm := make(chan struct{})
	fyne.Do(func() {
		state.awaiting = std
		state.confirm = confirm
		state.status.SetText(prompt)
		updateButtons(state)
	})
	select {
	case <-confirm:
		return nil
	case <-abort:
		return errAborted
	}
}

// handleConfirm signals that the awaited standard is attached.
func handleConfirm(state *appState) {
	if state.confirm == nil {
		return
	}
	if state.mock != nil {
		state.mock.Attach(state.awaiting)
	}
	close(state.confirm)
	state.confirm = nil
	updateButtons(state)
}

// handleSweep runs an analysis sweep and plots it.
func handleSweep(state *appState) {
	if err := state.ctx.StartSweep(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.status.SetText("Sweeping")

	startWorker(state, func(ctx *analyzer.Context, abort <-chan struct{}) error {
		a := ctx.Analysis()
		for !a.Done() {
			if _, err := step(state, a, abort); err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
		}
		return nil
	}, func() {
		replot(state)
	})
}

// replot draws the current results against the current calibration.
func replot(state *appState) {
	rows := state.ctx.Report()
	points := make([]scope.Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, scope.Point{Fq: r.Fq, SWR: r.SWR})
	}

	title := ""
	if best, ok := state.ctx.MinSWR(); ok {
		title = fmt.Sprintf("Min SWR: %.2f %s", best.SWR, sweep.FormatFrequency(best.Fq))
		state.status.SetText(fmt.Sprintf("%d points", len(rows)))
	}
	state.plot.UpdateData(points, title)
}

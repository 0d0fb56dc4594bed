package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// showSaveDialog offers saving the calibration or the last sweep under the
// next versioned name.
func showSaveDialog(state *appState) {
	saveSettings := widget.NewButton("Calibration", nil)
	saveResults := widget.NewButton("Sweep results", nil)
	content := widget.NewForm(
		widget.NewFormItem("Save", saveSettings),
		widget.NewFormItem("", saveResults),
	)
	d := dialog.NewCustom("Save", "Cancel", content, state.window)

	saveSettings.OnTapped = func() {
		d.Hide()
		name, err := state.ctx.SaveSettings()
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		state.status.SetText(fmt.Sprintf("Calibration saved as %s", name))
	}
	saveResults.OnTapped = func() {
		d.Hide()
		name, err := state.ctx.SaveResults()
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		state.status.SetText(fmt.Sprintf("Results saved as %s", name))
	}
	d.Show()
}

// showLoadDialog lists stored files and loads the chosen one.
func showLoadDialog(state *appState) {
	settings, err := state.store.ListSettings()
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	results, err := state.store.ListResults()
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	settingsSelect := widget.NewSelect(settings, nil)
	resultsSelect := widget.NewSelect(results, nil)
	items := []*widget.FormItem{
		widget.NewFormItem("Calibration", settingsSelect),
		widget.NewFormItem("Results", resultsSelect),
	}

	d := dialog.NewForm("Load", "Load", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if name := settingsSelect.Selected; name != "" {
			if err := state.ctx.LoadSettings(name); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
		}
		if name := resultsSelect.Selected; name != "" {
			if _, err := state.ctx.LoadResults(name); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
		}
		replot(state)
	}, state.window)
	d.Resize(fyne.NewSize(400, 200))
	d.Show()
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/sweep"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createSweepTab(state),
		createAnalyzerTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := frontend.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}
	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(state.cfg.Serial.Timeout.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
			{Text: "Timeout", Widget: timeoutEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				state.cfg.Serial.Port = portSelect.Selected
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			if timeout, err := time.ParseDuration(timeoutEntry.Text); err == nil && timeout > 0 {
				state.cfg.Serial.Timeout = timeout
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createSweepTab creates the Sweep configuration tab.
func createSweepTab(state *appState) *container.TabItem {
	bandOptions := []string{""}
	for _, b := range sweep.Bands {
		bandOptions = append(bandOptions, b.Name)
	}
	bandSelect := widget.NewSelect(bandOptions, nil)
	bandSelect.SetSelected(state.cfg.Sweep.Band)

	startEntry := widget.NewEntry()
	startEntry.SetText(strconv.FormatUint(uint64(state.cfg.Sweep.StartFq), 10))

	endEntry := widget.NewEntry()
	endEntry.SetText(strconv.FormatUint(uint64(state.cfg.Sweep.EndFq), 10))

	stepsEntry := widget.NewEntry()
	stepsEntry.SetText(strconv.Itoa(state.cfg.Sweep.Steps))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Band (overrides range)", Widget: bandSelect},
			{Text: "Start (Hz)", Widget: startEntry},
			{Text: "End (Hz)", Widget: endEntry},
			{Text: "Steps", Widget: stepsEntry},
		},
		OnSubmit: func() {
			state.cfg.Sweep.Band = bandSelect.Selected
			if v, err := strconv.ParseUint(startEntry.Text, 10, 32); err == nil {
				state.cfg.Sweep.StartFq = uint32(v)
			}
			if v, err := strconv.ParseUint(endEntry.Text, 10, 32); err == nil {
				state.cfg.Sweep.EndFq = uint32(v)
			}
			if v, err := strconv.Atoi(stepsEntry.Text); err == nil && v >= 0 {
				state.cfg.Sweep.Steps = v
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Sweep", form)
}

// createAnalyzerTab creates the Analyzer configuration tab. Changes apply on
// the next connect.
func createAnalyzerTab(state *appState) *container.TabItem {
	z0Entry := widget.NewEntry()
	z0Entry.SetText(fmt.Sprintf("%.1f", state.cfg.Analyzer.Z0))

	capacityEntry := widget.NewEntry()
	capacityEntry.SetText(strconv.Itoa(state.cfg.Analyzer.Capacity))

	averagingEntry := widget.NewEntry()
	averagingEntry.SetText(strconv.Itoa(state.cfg.Analyzer.Averaging))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Z0 (Ω)", Widget: z0Entry},
			{Text: "Capacity (points)", Widget: capacityEntry},
			{Text: "Averaging (0=disabled)", Widget: averagingEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(z0Entry.Text, 32); err == nil && v > 0 {
				state.cfg.Analyzer.Z0 = float32(v)
			}
			if v, err := strconv.Atoi(capacityEntry.Text); err == nil && v > 0 {
				state.cfg.Analyzer.Capacity = v
			}
			if v, err := strconv.Atoi(averagingEntry.Text); err == nil && v >= 0 {
				state.cfg.Analyzer.Averaging = v
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Analyzer", form)
}

// createMockTab creates the simulated front-end configuration tab.
func createMockTab(state *appState) *container.TabItem {
	resistanceEntry := widget.NewEntry()
	resistanceEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.Resistance))

	resonanceEntry := widget.NewEntry()
	resonanceEntry.SetText(strconv.FormatUint(uint64(state.cfg.Mock.Resonance), 10))

	qEntry := widget.NewEntry()
	qEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.Q))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.4f", state.cfg.Mock.NoiseLevel))

	delayEntry := widget.NewEntry()
	delayEntry.SetText(state.cfg.Mock.Delay.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Resistance (Ω)", Widget: resistanceEntry},
			{Text: "Resonance (Hz)", Widget: resonanceEntry},
			{Text: "Q", Widget: qEntry},
			{Text: "Noise Level", Widget: noiseEntry},
			{Text: "Delay", Widget: delayEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(resistanceEntry.Text, 32); err == nil && v > 0 {
				state.cfg.Mock.Resistance = float32(v)
			}
			if v, err := strconv.ParseUint(resonanceEntry.Text, 10, 32); err == nil && v > 0 {
				state.cfg.Mock.Resonance = uint32(v)
			}
			if v, err := strconv.ParseFloat(qEntry.Text, 32); err == nil && v > 0 {
				state.cfg.Mock.Q = float32(v)
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 32); err == nil && v >= 0 {
				state.cfg.Mock.NoiseLevel = float32(v)
			}
			if v, err := time.ParseDuration(delayEntry.Text); err == nil {
				state.cfg.Mock.Delay = v
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}

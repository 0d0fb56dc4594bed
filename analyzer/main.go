package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gozeroii/pkg/analyzer"
	"github.com/itohio/gozeroii/pkg/config"
	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/persistence"
	"github.com/itohio/gozeroii/pkg/scope"
)

func main() {
	var (
		portFlag      = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag      = flag.Bool("mock", false, "Use simulated front-end instead of serial port")
		averagingFlag = flag.Int("averaging", -1, "Readings averaged per frequency (0 = disabled, overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *averagingFlag >= 0 {
		cfg.Analyzer.Averaging = *averagingFlag
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	store, err := persistence.Open(cfg.Storage.Root, logger, nil)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	application := app.NewWithID("com.itohio.gozeroii")
	window := application.NewWindow("Antenna Analyzer")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		store:      store,
		log:        logger,
		window:     window,
		useMock:    *mockFlag,
	}

	toolbar := createToolbar(state)
	state.plot = scope.New(scope.DefaultMaxSWR)
	state.status = widget.NewLabel("Disconnected")
	state.progress = widget.NewProgressBar()

	content := container.NewBorder(
		toolbar,
		container.NewBorder(nil, nil, nil, state.progress, state.status),
		nil,
		nil,
		state.plot,
	)

	window.SetContent(content)
	window.SetOnClosed(func() { disconnect(state) })
	window.ShowAndRun()
}

// appState holds the application state. Everything except the analyzer
// context is touched on the Fyne main thread only; the context belongs to
// the worker goroutine while busy is set.
type appState struct {
	cfg        *config.Config
	configPath string
	store      *persistence.Store
	log        *slog.Logger
	useMock    bool

	device frontend.Device
	mock   *frontend.Mock
	ctx    *analyzer.Context

	window   fyne.Window
	plot     *scope.SWRWidget
	status   *widget.Label
	progress *widget.ProgressBar

	connectBtn   *widget.Button
	calibrateBtn *widget.Button
	confirmBtn   *widget.Button
	sweepBtn     *widget.Button
	saveBtn      *widget.Button
	loadBtn      *widget.Button

	busy     bool
	awaiting frontend.Standard
	confirm  chan struct{}
	abort    chan struct{}
	worker   sync.WaitGroup

	// Throttling for progress updates
	lastUpdateTime time.Time
}

// createToolbar creates the application toolbar.
func createToolbar(state *appState) fyne.CanvasObject {
	state.connectBtn = widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})
	state.calibrateBtn = widget.NewButtonWithIcon("Calibrate", theme.MediaRecordIcon(), func() {
		handleCalibrate(state)
	})
	state.confirmBtn = widget.NewButtonWithIcon("Confirm", theme.ConfirmIcon(), func() {
		handleConfirm(state)
	})
	state.sweepBtn = widget.NewButtonWithIcon("Sweep", theme.MediaPlayIcon(), func() {
		handleSweep(state)
	})
	state.saveBtn = widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), func() {
		showSaveDialog(state)
	})
	state.loadBtn = widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		showLoadDialog(state)
	})
	updateButtons(state)

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(state.connectBtn, settingsBtn),
		container.NewHBox(state.saveBtn, state.loadBtn),
		container.NewHBox(state.calibrateBtn, state.confirmBtn, state.sweepBtn),
	)
}

// updateButtons enables the actions valid in the current state.
func updateButtons(state *appState) {
	connected := state.ctx != nil
	setEnabled(state.calibrateBtn, connected && !state.busy)
	setEnabled(state.sweepBtn, connected && !state.busy)
	setEnabled(state.saveBtn, connected && !state.busy)
	setEnabled(state.loadBtn, connected && !state.busy)
	setEnabled(state.confirmBtn, state.confirm != nil)
	if connected {
		state.connectBtn.SetText("Disconnect")
	} else {
		state.connectBtn.SetText("Connect")
	}
}

func setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.ctx != nil {
		disconnect(state)
		state.status.SetText("Disconnected")
		updateButtons(state)
		return
	}

	var device frontend.Device
	if state.useMock {
		state.mock = frontend.NewMock(&state.cfg.Mock, state.cfg.Analyzer.Z0)
		device = state.mock
	} else {
		device = frontend.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, state.cfg.Serial.Timeout, state.log)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to simulated front-end: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		state.mock = nil
		return
	}

	state.device = device
	state.ctx = analyzer.New(state.cfg, device, state.store, state.log, nil)
	state.ctx.Boot()

	if src := state.ctx.SettingsSource(); src != "" {
		state.status.SetText(fmt.Sprintf("Connected, calibration %s (%d points)", src, state.ctx.Table().Len()))
	} else {
		state.status.SetText("Connected, uncalibrated")
	}
	updateButtons(state)
}

// disconnect stops any running sweep and closes the front-end.
func disconnect(state *appState) {
	if state.abort != nil {
		close(state.abort)
		state.worker.Wait()
		state.abort = nil
	}
	if state.device != nil {
		if err := state.device.Close(); err != nil {
			state.log.Warn("close failed", "err", err)
		}
	}
	state.device = nil
	state.mock = nil
	state.ctx = nil
	state.confirm = nil
	state.busy = false
}

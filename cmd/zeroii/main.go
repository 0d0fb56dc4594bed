// zeroii drives an antenna analyzer front-end from the command line:
// calibrate against short/open/load standards, sweep, report SWR and keep
// versioned calibration and result files.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/itohio/gozeroii/pkg/analyzer"
	"github.com/itohio/gozeroii/pkg/config"
	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/metrics"
	"github.com/itohio/gozeroii/pkg/persistence"
)

var (
	configFile string
	portName   string
	useMock    bool
	band       string
	startFq    uint32
	endFq      uint32
	steps      int
	storeRoot  string
	logLevel   string
	averaging  int
)

var rootCmd = &cobra.Command{
	Use:   "zeroii",
	Short: "Antenna analyzer host tool",
	Long: `zeroii talks to a reflection measurement front-end over a serial line
(or a simulated one) to calibrate, sweep and report SWR.

Calibration settings and sweep results are stored as versioned JSON files
under <storage>/settings and <storage>/results.

Examples:
  zeroii calibrate --band 20m
  zeroii sweep --band 20m --save
  zeroii report
  zeroii serve --mock --metrics :9100`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "config.yaml", "configuration file")
	pf.StringVarP(&portName, "port", "p", "", "serial port override (e.g. COM3 or /dev/ttyACM0)")
	pf.BoolVar(&useMock, "mock", false, "use the simulated front-end")
	pf.StringVarP(&band, "band", "b", "", "sweep a named band (see 'zeroii bands')")
	pf.Uint32Var(&startFq, "start", 0, "sweep start frequency (Hz)")
	pf.Uint32Var(&endFq, "end", 0, "sweep end frequency (Hz)")
	pf.IntVarP(&steps, "steps", "n", 0, "sweep points")
	pf.StringVar(&storeRoot, "storage", "", "storage directory")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.IntVar(&averaging, "averaging", -1, "readings averaged per frequency (0 = disabled)")

	rootCmd.AddCommand(calibrateCmd, sweepCmd, reportCmd, bandsCmd, lsCmd, portsCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if portName != "" {
		cfg.Serial.Port = portName
	}
	if band != "" {
		cfg.Sweep.Band = band
	}
	if flags.Changed("start") {
		cfg.Sweep.StartFq = startFq
		cfg.Sweep.Band = band
	}
	if flags.Changed("end") {
		cfg.Sweep.EndFq = endFq
		cfg.Sweep.Band = band
	}
	if steps > 0 {
		cfg.Sweep.Steps = steps
	}
	if storeRoot != "" {
		cfg.Storage.Root = storeRoot
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if averaging >= 0 {
		cfg.Analyzer.Averaging = averaging
	}
	return cfg, nil
}

// session is the state shared by the commands.
type session struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	store   *persistence.Store
	device  frontend.Device
	mock    *frontend.Mock
	ctx     *analyzer.Context
}

// newSession loads configuration, opens storage and, when connect is set,
// the front-end. The latest calibration is restored.
func newSession(cmd *cobra.Command, connect bool, mt *metrics.Metrics) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:     cfg,
		log:     cfg.Log.NewLogger(os.Stderr),
		metrics: mt,
	}

	s.store, err = persistence.Open(cfg.Storage.Root, s.log, mt)
	if err != nil {
		return nil, err
	}

	if useMock {
		s.mock = frontend.NewMock(&cfg.Mock, cfg.Analyzer.Z0)
		s.device = s.mock
	} else {
		s.device = frontend.New(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Serial.Timeout, s.log)
	}
	if connect {
		if err := s.device.Connect(); err != nil {
			return nil, err
		}
	}

	s.ctx = analyzer.New(cfg, s.device, s.store, s.log, mt)
	s.ctx.Boot()
	return s, nil
}

func (s *session) Close() {
	if s.device.IsConnected() {
		if err := s.device.Close(); err != nil {
			s.log.Warn("close failed", "err", err)
		}
	}
}

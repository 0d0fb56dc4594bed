package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/process"
)

var noSave bool

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Measure short, open and load standards and save the calibration",
	Long: `calibrate sweeps the configured range three times, once per standard.
Before each pass it asks for the standard to be attached and waits for Enter.
With --mock the simulated standards are attached automatically.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd, true, nil)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctx.StartCalibration(); err != nil {
			return err
		}
		if err := runCalibration(s.ctx.Calibrator(), s.mock, os.Stdin, cmd.OutOrStdout()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Calibrated %d points\n", s.ctx.Table().Len())

		if noSave {
			return nil
		}
		name, err := s.ctx.SaveSettings()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", name)
		return nil
	},
}

func init() {
	calibrateCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the calibration")
}

// runCalibration steps cal to completion. At every pending standard it
// prompts on out and waits for a line on in, unless mock is set, in which
// case the standard is attached directly.
func runCalibration(cal *process.Calibrator, mock *frontend.Mock, in io.Reader, out io.Writer) error {
	lines := bufio.NewScanner(in)
	for !cal.Done() {
		if cal.State().Pending() {
			if mock != nil {
				mock.Attach(cal.Standard())
				fmt.Fprintf(out, "%s (simulated)\n", cal.Prompt())
			} else {
				fmt.Fprintf(out, "%s: press Enter ", cal.Prompt())
				if !lines.Scan() {
					return fmt.Errorf("calibration aborted at %s", cal.State())
				}
			}
			if err := cal.Confirm(); err != nil {
				return err
			}
		}
		if _, err := cal.Step(); err != nil {
			return err
		}
	}
	if mock != nil {
		mock.Attach(frontend.StandardDUT)
	}
	return nil
}

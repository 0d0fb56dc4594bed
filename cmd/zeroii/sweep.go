package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itohio/gozeroii/pkg/analyzer"
	"github.com/itohio/gozeroii/pkg/sweep"
)

var saveResults bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep the configured range and print the calibrated report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd, true, nil)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctx.RunSweep(); err != nil {
			return err
		}
		if err := printReport(cmd, s.ctx); err != nil {
			return err
		}

		if saveResults {
			name, err := s.ctx.SaveResults()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", name)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [results file]",
	Short: "Print a stored sweep against the latest calibration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd, false, nil)
		if err != nil {
			return err
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		name, err = s.ctx.LoadResults(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s, calibration %q\n", name, s.ctx.SettingsSource())
		return printReport(cmd, s.ctx)
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&saveResults, "save", false, "save the raw results")
}

func printReport(cmd *cobra.Command, ctx *analyzer.Context) error {
	out := cmd.OutOrStdout()
	if err := analyzer.WriteReport(out, ctx.Report()); err != nil {
		return err
	}
	if best, ok := ctx.MinSWR(); ok {
		fmt.Fprintf(out, "Min SWR: %.2f %s\n", best.SWR, sweep.FormatFrequency(best.Fq))
	}
	return nil
}

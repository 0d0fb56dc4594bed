package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/itohio/gozeroii/pkg/frontend"
	"github.com/itohio/gozeroii/pkg/sweep"
)

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "List the named sweep bands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "BAND\tSTART\tEND")
		for _, b := range sweep.Bands {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Name, sweep.FormatFrequency(b.Start), sweep.FormatFrequency(b.End))
		}
		return tw.Flush()
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored calibration and result files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd, false, nil)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		settings, err := s.store.ListSettings()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "settings/")
		for _, name := range settings {
			fmt.Fprintf(out, "\t%s\n", name)
		}

		results, err := s.store.ListResults()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "results/")
		for _, name := range results {
			fmt.Fprintf(out, "\t%s\n", name)
		}
		return nil
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := frontend.Ports()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p.Name)
		}
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rendersubmit/internal/jobsettings"
)

func newStickyCommand(ctx *commandContext) *cobra.Command {
	stickyCmd := &cobra.Command{
		Use:   "sticky",
		Short: "Inspect or reset saved sticky settings",
	}
	stickyCmd.AddCommand(newStickyShowCommand(ctx))
	stickyCmd.AddCommand(newStickyClearCommand(ctx))
	return stickyCmd
}

func newStickyShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved sticky settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			store := ctx.stickyStore(logger)
			snapshot, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, snapshot)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sticky settings: %s\n", store.Path())
			if !ctx.config.Submission.StickyEnabled {
				fmt.Fprintln(out, "Sticky settings are disabled in configuration")
			}
			if snapshot.IsEmpty() {
				fmt.Fprintln(out, "No sticky settings saved")
				return nil
			}
			renderStickySnapshot(cmd, snapshot)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderStickySnapshot(cmd *cobra.Command, snapshot jobsettings.StickySettings) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(snapshot.ParameterValues))
	for _, pv := range snapshot.ParameterValues {
		rows = append(rows, []string{pv.Name, displayValue(pv.Value)})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Parameter", "Value"}, rows, nil))
	}

	var paths [][]string
	paths = append(paths, pathRows("Input files", snapshot.InputFilenames)...)
	paths = append(paths, pathRows("Input directories", snapshot.InputDirectories)...)
	paths = append(paths, pathRows("Output directories", snapshot.OutputDirectories)...)
	paths = append(paths, pathRows("Referenced paths", snapshot.ReferencedPaths)...)
	fmt.Fprintln(out, renderTable([]string{"Assets", "Path"}, paths, nil))
}

func newStickyClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved sticky settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			store := ctx.stickyStore(logger)
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared sticky settings at %s\n", store.Path())
			return nil
		},
	}
}

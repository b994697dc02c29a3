package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"rendersubmit/internal/logging"
	"rendersubmit/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines        int
		submissionID string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			found, err := logs.Tail(path, logs.TailOptions{Limit: lines, Contains: submissionID})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintf(out, "No log lines in %s\n", path)
				return nil
			}
			for _, line := range found {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&submissionID, "submission", "", "Only show lines for this submission ID")
	return cmd
}

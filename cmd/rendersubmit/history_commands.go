package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"rendersubmit/internal/history"
	"rendersubmit/internal/jobbundle"
)

const historyTimeLayout = "2006-01-02 15:04"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List past submissions",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent submissions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				records, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if records == nil {
						records = []history.Record{}
					}
					return writeJSON(cmd, records)
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No submissions recorded")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						shortID(rec.ID),
						rec.CreatedAt.Local().Format(historyTimeLayout),
						rec.JobName,
						strconv.Itoa(rec.ParameterCount),
						strconv.Itoa(rec.InputCount),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Created", "Job", "Params", "Inputs"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of submissions to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one submission and its job bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				rec, err := store.Get(cmd.Context(), args[0])
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("no submission matches %q", args[0])
				}
				if err != nil {
					return err
				}
				bundle, bundleErr := jobbundle.Read(rec.BundleDir)

				if jsonOutput {
					payload := struct {
						history.Record
						Bundle *jobbundle.Bundle `json:"bundle,omitempty"`
					}{Record: rec}
					if bundleErr == nil {
						payload.Bundle = &bundle
					}
					return writeJSON(cmd, payload)
				}

				out := cmd.OutOrStdout()
				rows := [][]string{
					{"ID", rec.ID},
					{"Job", rec.JobName},
					{"Scene", rec.SceneFile},
					{"Bundle", rec.BundleDir},
					{"Created", rec.CreatedAt.Local().Format(time.RFC3339)},
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
				if bundleErr != nil {
					fmt.Fprintf(out, "Bundle unavailable: %v\n", bundleErr)
					return nil
				}
				params := make([][]string, 0, len(bundle.ParameterValues.ParameterValues))
				for _, pv := range bundle.ParameterValues.ParameterValues {
					params = append(params, []string{pv.Name, displayValue(pv.Value)})
				}
				fmt.Fprintln(out, renderTable([]string{"Parameter", "Value"}, params, nil))
				fmt.Fprintln(out, renderTable([]string{"Assets", "Path"},
					pathRows("Input files", bundle.AssetReferences.AssetReferences.Inputs.Filenames), nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

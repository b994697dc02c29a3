package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rendersubmit/internal/scene"
	"rendersubmit/internal/submission"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect resolved job settings",
	}
	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	var (
		scenePath  string
		bundleDir  string
		noSticky   bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Resolve settings for a scene without submitting",
		Long: "Resolve settings the way submit would: scene values, then sticky settings,\n" +
			"then the optional job bundle. Nothing is written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := scene.OpenFileSession(scenePath)
			if err != nil {
				return err
			}
			opts := submission.Options{BundleDir: bundleDir, SkipSticky: noSticky}
			return ctx.withSubmitter(cmd, func(sub *submission.Submitter) error {
				res, err := sub.Resolve(cmd.Context(), session.Describe(), opts)
				if err != nil {
					return err
				}
				view := newSettingsView(res)
				if jsonOutput {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Scene: %s\n", session.Describe().ScenePath)
				renderSettingsView(out, view)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scenePath, "scene", "", "Scene description file")
	cmd.Flags().StringVar(&bundleDir, "bundle", "", "Job bundle directory to load settings from")
	cmd.Flags().BoolVar(&noSticky, "no-sticky", false, "Ignore saved sticky settings")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("scene")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rendersubmit/internal/scene"
	"rendersubmit/internal/submission"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		scenePath  string
		opts       submission.Options
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Resolve settings for the open scene and write a job bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := scene.OpenFileSession(scenePath)
			if err != nil {
				return err
			}
			return ctx.withSubmitter(cmd, func(sub *submission.Submitter) error {
				result, err := sub.Submit(cmd.Context(), session, opts)
				if errors.Is(err, submission.ErrUnsavedScene) {
					return fmt.Errorf("%w; save it in KeyShot or pass --save", err)
				}
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Submission %s\n", result.ID)
				rows := [][]string{
					{"Job", result.JobName},
					{"Bundle", result.BundleDir},
					{"Scene", result.InitData.SceneFile},
					{"Parameters", strconv.Itoa(len(result.ParameterValues.ParameterValues))},
					{"Input files", strconv.Itoa(len(result.AssetReferences.AssetReferences.Inputs.Filenames))},
					{"Sticky saved", yesNo(result.StickySaved)},
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scenePath, "scene", "", "Scene description file")
	cmd.Flags().StringVar(&opts.BundleDir, "bundle", "", "Job bundle directory to load settings from")
	cmd.Flags().StringVar(&opts.JobName, "name", "", "Job name (defaults to the scene file name)")
	cmd.Flags().BoolVar(&opts.SaveScene, "save", false, "Save the scene first if it has unsaved changes")
	cmd.Flags().BoolVar(&opts.SkipSticky, "no-sticky", false, "Neither load nor save sticky settings")
	cmd.Flags().StringVar(&opts.PackageArchive, "package", "", "Submit a packaged scene archive instead of the scene file")
	cmd.Flags().BoolVar(&opts.PackageScene, "package-scene", false, "Package the scene and its assets, then submit the packaged copy")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("scene")
	return cmd
}

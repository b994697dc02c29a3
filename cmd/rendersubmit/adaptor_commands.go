package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rendersubmit/internal/adaptor"
	"rendersubmit/internal/jobsettings"
	"rendersubmit/internal/scene"
	"rendersubmit/internal/submission"
)

func newAdaptorCommand(ctx *commandContext) *cobra.Command {
	adaptorCmd := &cobra.Command{
		Use:   "adaptor",
		Short: "Render adaptor data contract utilities",
	}
	adaptorCmd.AddCommand(newAdaptorCheckSchemasCommand())
	adaptorCmd.AddCommand(newAdaptorInitDataCommand(ctx))
	adaptorCmd.AddCommand(newAdaptorValidateInitDataCommand())
	return adaptorCmd
}

func newAdaptorCheckSchemasCommand() *cobra.Command {
	var (
		initPath string
		runPath  string
		version  string
	)

	cmd := &cobra.Command{
		Use:         "check-schemas",
		Short:       "Compare recorded schemas against the embedded adaptor contract",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			expectedInit, err := os.ReadFile(initPath)
			if err != nil {
				return fmt.Errorf("read init-data schema: %w", err)
			}
			expectedRun, err := os.ReadFile(runPath)
			if err != nil {
				return fmt.Errorf("read run-data schema: %w", err)
			}
			if strings.TrimSpace(version) == "" {
				err = adaptor.CheckSchemas(expectedInit, expectedRun)
			} else {
				err = adaptor.CheckCompatibility(expectedInit, expectedRun, version)
			}
			if err != nil {
				return err
			}
			major, minor := adaptor.Version()
			fmt.Fprintf(cmd.OutOrStdout(), "Adaptor schemas match (version %d.%d)\n", major, minor)
			return nil
		},
	}
	cmd.Flags().StringVar(&initPath, "init", "", "Recorded init-data schema file")
	cmd.Flags().StringVar(&runPath, "run", "", "Recorded run-data schema file")
	cmd.Flags().StringVar(&version, "version", "", "Recorded contract version (major.minor)")
	_ = cmd.MarkFlagRequired("init")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}

func newAdaptorInitDataCommand(ctx *commandContext) *cobra.Command {
	var (
		scenePath string
		bundleDir string
		noSticky  bool
	)

	cmd := &cobra.Command{
		Use:   "init-data",
		Short: "Print the adaptor init data and per-frame run data for a scene",
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
				initData, err := adaptor.InitDataFromSettings(res.Settings)
				if err != nil {
					return err
				}
				frames, _ := res.Settings.Parameter(jobsettings.ParamFrames)
				runData, err := adaptor.RunDataForFrames(frames)
				if err != nil {
					return err
				}
				return writeJSON(cmd, struct {
					InitData adaptor.InitData  `json:"init_data"`
					RunData  []adaptor.RunData `json:"run_data"`
				}{initData, runData})
			})
		},
	}
	cmd.Flags().StringVar(&scenePath, "scene", "", "Scene description file")
	cmd.Flags().StringVar(&bundleDir, "bundle", "", "Job bundle directory to load settings from")
	cmd.Flags().BoolVar(&noSticky, "no-sticky", false, "Ignore saved sticky settings")
	_ = cmd.MarkFlagRequired("scene")
	return cmd
}

func newAdaptorValidateInitDataCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate-init-data <file>",
		Short:       "Validate an init data document against the adaptor schema",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read init data: %w", err)
			}
			if err := adaptor.ValidateInitDataJSON(data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid init data\n", args[0])
			return nil
		},
	}
}

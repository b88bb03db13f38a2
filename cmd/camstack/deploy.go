package main

import (
	"fmt"

	"github.com/raspiroman/camstack/pkg/config"
	"github.com/raspiroman/camstack/pkg/errors"
	"github.com/raspiroman/camstack/pkg/logging"
	"github.com/raspiroman/camstack/pkg/paths"
	"github.com/raspiroman/camstack/pkg/pipeline"
	"github.com/raspiroman/camstack/pkg/service"
	"github.com/raspiroman/camstack/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var deployOutput string

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: MsgDeployShort,
	Long:  MsgDeployLong,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("deploy")

		steps, settings, err := loadPipeline()
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
			return err
		}

		exec := pipeline.New(pipeline.Options{
			Controller: service.NewSystemd(service.Options{UnitDir: settings.UnitDir}),
			DryRun:     dryRun,
			Logger:     logging.GetLogger("pipeline"),
		})

		report := exec.Run(cmd.Context(), steps)

		switch deployOutput {
		case "yaml":
			data, err := yaml.Marshal(report)
			if err != nil {
				return err
			}
			cmd.Print(string(data))
		default:
			if err := renderReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
		}

		if dryRun {
			cmd.Println(MsgDryRunNotice)
		}

		if failures := report.Failures(); len(failures) > 0 {
			logger.Warn().Int("failed_steps", len(failures)).Msg("Run had failing steps")
		}

		if report.Status == types.RunAborted {
			logger.Error().Msg("Deployment aborted")
			err := errors.New(errors.ErrRunAborted, "deployment aborted")
			if cause := report.AbortCause(); cause != nil {
				err = err.WithDetail("step", cause.StepName)
			}
			return err
		}
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVarP(&deployOutput, "output", "o", "text", "Report format: text or yaml")
}

// loadPipeline resolves the pipeline file and loads steps plus settings.
// No file found means the embedded default pipeline.
func loadPipeline() ([]types.Step, config.Settings, error) {
	path := paths.ConfigFilePath(configFlag)

	settings, err := config.LoadSettings(path)
	if err != nil {
		return nil, config.Settings{}, err
	}

	if path == "" {
		logger := logging.GetLogger("deploy")
		logger.Info().Msg(MsgNoConfigFound)
		steps, err := config.DefaultPipeline()
		return steps, settings, err
	}

	steps, err := config.LoadPipeline(path)
	return steps, settings, err
}

package main

import (
	"fmt"

	"github.com/raspiroman/camstack/pkg/service"
	"github.com/raspiroman/camstack/pkg/types"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: MsgStatusShort,
	Long: `Status queries the supervisor for every service the pipeline touches
and prints one snapshot per service. Status is purely advisory: it never
changes the host and always exits zero.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, settings, err := loadPipeline()
		if err != nil {
			// Advisory only: report the problem but keep the exit clean.
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
			return nil
		}

		ctl := service.NewSystemd(service.Options{UnitDir: settings.UnitDir})

		seen := make(map[string]bool)
		for _, step := range steps {
			if step.Kind != types.KindServiceAction || step.Service == "" {
				continue
			}
			name := step.Service
			if seen[name] {
				continue
			}
			seen[name] = true

			snapshot := ctl.QueryStatus(cmd.Context(), name)
			cmd.Printf("%-24s %s\n", name, renderServiceStatus(snapshot))
		}
		if len(seen) == 0 {
			cmd.Println("Pipeline touches no services.")
		}
		return nil
	},
}

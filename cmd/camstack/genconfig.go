package main

import (
	"os"

	"github.com/raspiroman/camstack/pkg/config"
	"github.com/spf13/cobra"
)

var genConfigCmd = &cobra.Command{
	Use:   "gen-config",
	Short: MsgGenConfigShort,
	Long: `Prints the built-in default pipeline, which deploys the webcam stack:
watcher unit, static site, upload symlink, nginx and vsftpd. Use it as
a starting point for a customized camstack.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		write, _ := cmd.Flags().GetBool("write")

		content := config.DefaultPipelineContent()
		if !write {
			cmd.Print(string(content))
			return nil
		}

		if err := os.WriteFile("camstack.toml", content, 0644); err != nil {
			return err
		}
		cmd.Println("Wrote camstack.toml")
		return nil
	},
}

func init() {
	genConfigCmd.Flags().BoolP("write", "w", false, "Write camstack.toml to the current directory instead of stdout")
}

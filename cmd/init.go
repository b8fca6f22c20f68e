package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/graphpane/graphpane/config"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default graphpane.yaml",
		Long: `Write a config file with every setting at its default, ready to edit.
The file goes to --config when set, otherwise to ./graphpane.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if configPath != "" {
				path = configPath
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/graphpane/graphpane/tui"
)

func tuiCmd() *cobra.Command {
	var data dataFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Watch and edit the layout in the terminal",
		Long: `Open a full-screen terminal view of the running simulation. Keys add
and remove vertices and edges while the layout reacts live.

  graphpane tui
  graphpane tui --data graph.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			model, err := data.load()
			if err != nil {
				return err
			}
			panel, err := buildPanel(cfg, model, nil, "")
			if err != nil {
				return err
			}
			defer panel.Close()

			p := tea.NewProgram(tui.New(model, panel), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	data.register(cmd)
	return cmd
}

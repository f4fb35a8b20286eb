package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/sticky/internal/app"
	"github.com/dori/sticky/internal/ui"
	"github.com/spf13/cobra"
)

func tuiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags)
		},
	}
}

func runTUI(flags *globalFlags) error {
	return flags.withApp(func(a *app.App) error {
		p := tea.NewProgram(
			ui.NewRootModel(a),
			tea.WithAltScreen(),
		)

		_, err := p.Run()
		return err
	})
}

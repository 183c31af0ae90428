package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/iammorganparry/pof-dashboard/internal/tui"
)

// NewWatchCommand opens the live terminal view.
func NewWatchCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch sessions live in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stream, err := opts.client().Events(ctx)
			if err != nil {
				return err
			}
			defer stream.Close()

			opts.logger(cmd).Debug("event stream open", "server", opts.server)

			p := tea.NewProgram(
				tui.New(stream, opts.server),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		},
	}
}

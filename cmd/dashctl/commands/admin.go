package commands

import (
	"github.com/spf13/cobra"
)

// NewResetCommand clears one session or all of them.
func NewResetCommand(opts *globalOptions) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear one session, or every session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, opts)
			defer cancel()

			if err := opts.client().Reset(ctx, session); err != nil {
				return err
			}
			if session == "" {
				printOK(cmd.OutOrStdout(), "all sessions cleared")
			} else {
				printOK(cmd.OutOrStdout(), "session "+session+" cleared")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Only clear this session")
	return cmd
}

// NewShutdownCommand stops the dashboard.
func NewShutdownCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Stop the dashboard server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, opts)
			defer cancel()

			if err := opts.client().Shutdown(ctx); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "dashboard shutting down")
			return nil
		},
	}
}

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewAnswersCommand lists answered questions.
func NewAnswersCommand(opts *globalOptions) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "answers",
		Short: "List answered questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, opts)
			defer cancel()

			qs, err := opts.client().Answers(ctx, session)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(qs) == 0 {
				fmt.Fprintln(out, "No answered questions")
				return nil
			}
			for _, q := range qs {
				printQuestion(out, q)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Only this session")
	return cmd
}

// NewSessionsCommand lists session summaries.
func NewSessionsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List live sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, opts)
			defer cancel()

			list, err := opts.client().Sessions(ctx)
			if err != nil {
				return err
			}
			printSessions(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

// NewStateCommand shows one session in full, or every session.
func NewStateCommand(opts *globalOptions) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show agents, questions and status of sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, opts)
			defer cancel()

			c := opts.client()
			out := cmd.OutOrStdout()
			if session != "" {
				st, err := c.SessionState(ctx, session)
				if err != nil {
					return err
				}
				printState(out, st)
				return nil
			}

			snap, err := c.Snapshot(ctx)
			if err != nil {
				return err
			}
			list, err := c.Sessions(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No sessions")
				return nil
			}
			for _, s := range list {
				if st, ok := snap.Sessions[s.ID]; ok {
					printState(out, st)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Only this session")
	return cmd
}

// NewHealthCommand prints the liveness probe.
func NewHealthCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the dashboard is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, opts)
			defer cancel()

			h, err := opts.client().Health(ctx)
			if err != nil {
				return err
			}
			uptime := time.Duration(h.Uptime) * time.Second
			printOK(cmd.OutOrStdout(), fmt.Sprintf("up %s, %d sessions, %d observers",
				uptime, h.Sessions, h.Clients))
			return nil
		},
	}
}

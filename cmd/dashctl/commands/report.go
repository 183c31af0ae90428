package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iammorganparry/pof-dashboard/internal/models"
)

func requestContext(cmd *cobra.Command, opts *globalOptions) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), opts.timeout)
}

// NewStatusCommand reports an agent status.
func NewStatusCommand(opts *globalOptions) *cobra.Command {
	var update models.StatusUpdate
	var state string

	cmd := &cobra.Command{
		Use:   "status --agent NAME MESSAGE...",
		Short: "Report an agent's status",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update.Message = strings.Join(args, " ")
			update.Status = models.AgentState(state)

			ctx, cancel := requestContext(cmd, opts)
			defer cancel()

			log := opts.logger(cmd)
			log.Debug("posting status", "server", opts.server, "agent", update.Agent, "session", update.Session)
			if err := opts.client().PostStatus(ctx, update); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "status recorded")
			return nil
		},
	}

	cmd.Flags().StringVarP(&update.Agent, "agent", "a", "", "Agent name (required)")
	cmd.Flags().StringVarP(&update.Session, "session", "s", "", "Session id (defaults to \"default\")")
	cmd.Flags().StringVarP(&update.Phase, "phase", "p", "", "Phase label, e.g. 2.1")
	cmd.Flags().StringVar(&state, "state", "", "Agent state: started, working, complete, error, blocked")
	cmd.Flags().StringVarP(&update.Detail, "detail", "d", "", "Extra detail; \"project: NAME\" labels the session")
	cmd.MarkFlagRequired("agent")

	return cmd
}

// NewAskCommand posts a question, optionally waiting for the answer.
func NewAskCommand(opts *globalOptions) *cobra.Command {
	var (
		req      models.QuestionRequest
		wait     bool
		interval time.Duration
		maxWait  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask the operator a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Question = strings.Join(args, " ")
			c := opts.client()
			log := opts.logger(cmd)

			ctx, cancel := requestContext(cmd, opts)
			id, err := c.Ask(ctx, req)
			cancel()
			if err != nil {
				return err
			}
			log.Debug("question posted", "id", id)

			out := cmd.OutOrStdout()
			if !wait {
				fmt.Fprintln(out, id)
				return nil
			}

			waitCtx := cmd.Context()
			if maxWait > 0 {
				var cancelWait context.CancelFunc
				waitCtx, cancelWait = context.WithTimeout(waitCtx, maxWait)
				defer cancelWait()
			}
			q, err := c.WaitForAnswer(waitCtx, id, req.Session, interval)
			if err != nil {
				return fmt.Errorf("wait for answer to %s: %w", id, err)
			}
			fmt.Fprintln(out, q.Answer)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Agent, "agent", "a", "", "Asking agent (defaults to \"orchestrator\")")
	cmd.Flags().StringVarP(&req.Session, "session", "s", "", "Session id")
	cmd.Flags().StringArrayVarP(&req.Options, "option", "o", nil, "Suggested answer (repeatable)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Block until answered and print the answer")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Poll interval while waiting")
	cmd.Flags().DurationVar(&maxWait, "max-wait", 0, "Give up waiting after this long (0 waits forever)")

	return cmd
}

// NewAnswerCommand answers a pending question.
func NewAnswerCommand(opts *globalOptions) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "answer ID ANSWER...",
		Short: "Answer a pending question",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, opts)
			defer cancel()

			req := models.AnswerRequest{ID: args[0], Answer: strings.Join(args[1:], " "), Session: session}
			if err := opts.client().Answer(ctx, req); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "answered "+req.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Require the question to belong to this session")
	return cmd
}

// Package commands implements the dashctl command tree.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iammorganparry/pof-dashboard/internal/client"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	server  string
	timeout time.Duration
	verbose bool
}

func (o *globalOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.server, "server", defaultServer(), "Dashboard base URL")
	fs.DurationVar(&o.timeout, "timeout", 10*time.Second, "Request timeout")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log requests to stderr")
}

func (o *globalOptions) client() *client.Client {
	return client.New(o.server)
}

// logger writes debug output to stderr with --verbose and discards it otherwise.
func (o *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func defaultServer() string {
	if port := os.Getenv("POF_DASHBOARD_PORT"); port != "" {
		return "http://localhost:" + port
	}
	return client.DefaultURL
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "dashctl",
		Short: "Report to and observe a POF status dashboard",
		Long: `dashctl talks to a running POF dashboard. Agents use it to report status
and ask questions. Operators use it to answer questions and follow sessions.`,
		SilenceUsage: true,
	}

	opts.addFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewStatusCommand(opts))
	rootCmd.AddCommand(NewAskCommand(opts))
	rootCmd.AddCommand(NewAnswerCommand(opts))
	rootCmd.AddCommand(NewAnswersCommand(opts))
	rootCmd.AddCommand(NewSessionsCommand(opts))
	rootCmd.AddCommand(NewStateCommand(opts))
	rootCmd.AddCommand(NewResetCommand(opts))
	rootCmd.AddCommand(NewShutdownCommand(opts))
	rootCmd.AddCommand(NewHealthCommand(opts))
	rootCmd.AddCommand(NewWatchCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

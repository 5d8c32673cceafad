package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Set by the root command before any subcommand runs
var (
	cfg    *Config
	client *Client
)

// NewRootCmd builds the dartsctl command tree
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "dartsctl",
		Short: "Play remote darts from the terminal",
		Long: `dartsctl talks to a dartsync server over its JSON API.

Create or join a room, start a match, report each visit and answer the
checkout and double-attempt questions the server asks. Membership is kept
in a token file so later commands know which room you are in.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flags and environment win over the token file
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			var trace io.Writer
			if cfg.Verbose {
				trace = cmd.ErrOrStderr()
			}
			client = NewClient(cfg.ServerURL, cfg.Token, trace)
			return nil
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: DARTS_SERVER)")
	flags.StringVar(&cfg.RoomID, "room", cfg.RoomID, "Room code (env: DARTS_ROOM)")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: DARTS_TOKEN)")
	flags.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: DARTS_TOKEN_FILE)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Trace API requests to stderr")

	rootCmd.AddCommand(
		newRoomCmd(),
		newMatchCmd(),
		newThrowCmd(),
		newCheckoutCmd(),
		newAttemptsCmd(),
		newEventsCmd(),
		newHealthCmd(),
	)

	return rootCmd
}

// Execute runs dartsctl until it finishes or is interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

package main

import (
	"log/slog"
	"os"

	"github.com/pscheid92/wincounter/internal/apiclient"
	"github.com/pscheid92/wincounter/internal/platform/logging"
	"github.com/pscheid92/wincounter/internal/platform/version"
	"github.com/spf13/cobra"
)

const serverEnvVar = "WINCOUNTER_SERVER"

type rootOptions struct {
	server  string
	verbose bool
}

func (o *rootOptions) client() *apiclient.Client {
	return apiclient.New(o.server, nil)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "wincounter",
		Short: "Control and watch win counter overlays",
		Long: `Control and watch the win counter overlays served by a wincounter server.

Quick Start:
  wincounter new-session                   # Create a session ID and overlay URL
  wincounter set KIRA-XXXX --p1-name Alice # Name player one
  wincounter win KIRA-XXXX p1              # Add a win for player one
  wincounter watch KIRA-XXXX               # Watch the overlay in the terminal`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))
		},
	}

	defaultServer := os.Getenv(serverEnvVar)
	if defaultServer == "" {
		defaultServer = apiclient.DefaultBaseURL
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", defaultServer, "Server base URL (env "+serverEnvVar+")")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.AddCommand(
		newNewSessionCmd(opts),
		newGetCmd(opts),
		newSetCmd(opts),
		newWinCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}

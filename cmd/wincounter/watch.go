package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/wincounter/internal/domain"
	"github.com/pscheid92/wincounter/internal/overlay"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		player   string
		interval time.Duration
		noClear  bool
	)

	cmd := &cobra.Command{
		Use:   "watch <session-id | overlay-url>",
		Short: "Render a session's overlay in the terminal until interrupted",
		Example: `  wincounter watch KIRA-XXXX
  wincounter watch KIRA-XXXX --player p2
  wincounter watch "http://localhost:8080/index.html?session=KIRA-XXXX&player=p1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := overlay.ParseTargetString(args[0])
			if player != "" {
				if player != domain.PlayerOne && player != domain.PlayerTwo {
					return fmt.Errorf("player must be %s or %s, got %q", domain.PlayerOne, domain.PlayerTwo, player)
				}
				target.Player = player
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sink := overlay.NewTerminalSink(cmd.OutOrStdout(), !noClear)
			fetcher := overlay.NewHTTPFetcher(opts.client())
			poller := overlay.NewPoller(fetcher, sink, target, clockwork.NewRealClock(), interval)

			return poller.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Show only one player: p1 or p2")
	cmd.Flags().DurationVar(&interval, "interval", overlay.DefaultPollInterval, "Poll interval")
	cmd.Flags().BoolVar(&noClear, "no-clear", false, "Append frames instead of redrawing in place")
	return cmd
}

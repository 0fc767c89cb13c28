package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pscheid92/wincounter/internal/domain"
	"github.com/pscheid92/wincounter/internal/jsonmerge"
	"github.com/pscheid92/wincounter/internal/overlay"
	"github.com/spf13/cobra"
)

func newNewSessionCmd(opts *rootOptions) *cobra.Command {
	var withURL bool

	cmd := &cobra.Command{
		Use:   "new-session",
		Short: "Print a fresh session ID",
		Long: `Print a fresh session ID. Sessions need no registration: the first
update to an ID creates it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.NewSessionID()
			if !withURL {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			}
			base := opts.client().BaseURL()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n  combined: %s/overlay/%s\n  player 1: %s/overlay/%s/p1\n  player 2: %s/overlay/%s/p2\n",
				id, base, id, base, id, base, id)
			return err
		},
	}

	cmd.Flags().BoolVar(&withURL, "urls", false, "Also print the overlay URLs for the session")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get <session-id>",
		Short: "Print a session's record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := opts.client().GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeRecord(cmd.OutOrStdout(), state, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json or yaml")
	return cmd
}

type setOptions struct {
	mode      string
	maxWins   int
	p1Name    string
	p2Name    string
	p1Wins    int
	p2Wins    int
	font      string
	fontSize  float64
	fontColor string
	border    bool
	rawJSON   string
}

// update builds the partial update from the flags that were set.
func (o *setOptions) update(changed func(name string) bool) (jsonmerge.Value, error) {
	if changed("json") {
		if changed("mode") || changed("max-wins") || changed("p1-name") || changed("p2-name") ||
			changed("p1-wins") || changed("p2-wins") || changed("font") || changed("font-size") ||
			changed("font-color") || changed("border") {
			return jsonmerge.Value{}, errors.New("--json cannot be combined with field flags")
		}
		update, err := jsonmerge.Parse([]byte(o.rawJSON))
		if err != nil {
			return jsonmerge.Value{}, fmt.Errorf("invalid --json payload: %w", err)
		}
		return update, nil
	}

	update := jsonmerge.EmptyObject()
	set := func(flag string, val jsonmerge.Value, path ...string) {
		if changed(flag) {
			update = update.SetPath(val, path...)
		}
	}
	set("mode", jsonmerge.String(o.mode), "mode")
	set("max-wins", jsonmerge.Int(o.maxWins), "maxWins")
	set("p1-name", jsonmerge.String(o.p1Name), "players", domain.PlayerOne, "name")
	set("p2-name", jsonmerge.String(o.p2Name), "players", domain.PlayerTwo, "name")
	set("p1-wins", jsonmerge.Int(o.p1Wins), "players", domain.PlayerOne, "wins")
	set("p2-wins", jsonmerge.Int(o.p2Wins), "players", domain.PlayerTwo, "wins")
	set("font", jsonmerge.String(o.font), "settings", "font")
	set("font-size", jsonmerge.Number(o.fontSize), "settings", "fontSize")
	set("font-color", jsonmerge.String(o.fontColor), "settings", "fontColor")
	set("border", jsonmerge.Bool(o.border), "settings", "borderEnabled")

	if len(update.Keys()) == 0 {
		return jsonmerge.Value{}, errors.New("nothing to update: pass at least one field flag or --json")
	}
	return update, nil
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	so := &setOptions{}

	cmd := &cobra.Command{
		Use:   "set <session-id>",
		Short: "Send a partial update to a session",
		Long: `Send a partial update to a session. Only the given fields change; everything
else in the record is kept.`,
		Example: `  wincounter set KIRA-XXXX --mode dual --max-wins 3
  wincounter set KIRA-XXXX --p1-name Alice --p2-name Bob
  wincounter set KIRA-XXXX --json '{"playerSettings":{"p1":{"fontColor":"#ff0000"}}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update, err := so.update(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			if err := domain.ValidateUpdate(update); err != nil {
				return err
			}

			client := opts.client()
			if err := client.UpdateSession(cmd.Context(), args[0], update); err != nil {
				return err
			}
			merged, err := client.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeRecord(cmd.OutOrStdout(), merged, formatJSON)
		},
	}

	f := cmd.Flags()
	f.StringVar(&so.mode, "mode", domain.ModeSingle, "Display mode: single or dual")
	f.IntVar(&so.maxWins, "max-wins", 2, "Wins needed, shown after the slash")
	f.StringVar(&so.p1Name, "p1-name", "", "Player one name")
	f.StringVar(&so.p2Name, "p2-name", "", "Player two name")
	f.IntVar(&so.p1Wins, "p1-wins", 0, "Player one wins")
	f.IntVar(&so.p2Wins, "p2-wins", 0, "Player two wins")
	f.StringVar(&so.font, "font", "", "Font name")
	f.Float64Var(&so.fontSize, "font-size", 120, "Font size in pixels")
	f.StringVar(&so.fontColor, "font-color", "", "Counter colour, e.g. #FFFFFF")
	f.BoolVar(&so.border, "border", true, "Draw the counter outline")
	f.StringVar(&so.rawJSON, "json", "", "Raw JSON partial update")
	return cmd
}

func newWinCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "win <session-id> <p1|p2> [delta]",
		Short: "Add (or with a negative delta, remove) wins for a player",
		Long: `Add wins for a player. The delta defaults to 1; the result never goes
below zero. Negative deltas need a "--" before them.`,
		Example: `  wincounter win KIRA-XXXX p1
  wincounter win KIRA-XXXX p2 3
  wincounter win KIRA-XXXX p1 -- -1`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, player := args[0], args[1]
			if player != domain.PlayerOne && player != domain.PlayerTwo {
				return fmt.Errorf("player must be %s or %s, got %q", domain.PlayerOne, domain.PlayerTwo, player)
			}

			delta := 1
			if len(args) == 3 {
				n, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("delta must be an integer: %w", err)
				}
				delta = n
			}

			client := opts.client()
			state, err := client.GetSession(cmd.Context(), sessionID)
			if err != nil {
				return err
			}

			frame := overlay.Resolve(state, player)
			panel, _ := frame.Panel(player)
			wins := max(panel.Wins+delta, 0)

			update := jsonmerge.EmptyObject().SetPath(jsonmerge.Int(wins), "players", player, "wins")
			if err := client.UpdateSession(cmd.Context(), sessionID, update); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d/%d\n", player, panel.Name, wins, frame.MaxWins)
			return err
		},
	}
}

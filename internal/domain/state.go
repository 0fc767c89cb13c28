package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/pscheid92/wincounter/internal/jsonmerge"
)

const (
	ModeSingle = "single"
	ModeDual   = "dual"

	PlayerOne = "p1"
	PlayerTwo = "p2"

	// SessionTTL applies to both storage tiers, counted from the last write.
	SessionTTL = 24 * time.Hour
)

// PlayerIDs lists the fixed player slots in render order.
var PlayerIDs = []string{PlayerOne, PlayerTwo}

// sessionDefaultJSON is served by the per-session read path and used as the
// merge base for a session's first write.
const sessionDefaultJSON = `{
	"mode": "single",
	"maxWins": 2,
	"players": {
		"p1": {"wins": 0, "name": "P1", "showName": true},
		"p2": {"wins": 0, "name": "P2", "showName": true}
	},
	"settings": {
		"font": "MrBeast",
		"fontSize": 120,
		"fontColor": "#FFFFFF",
		"borderEnabled": true,
		"borderColor": "#000000",
		"borderSize": 4
	},
	"playerSettings": {"p1": {}, "p2": {}}
}`

// demoDefaultJSON backs the session-less demo endpoints. Its font defaults
// differ from the session default on purpose; both payloads are kept as-is.
const demoDefaultJSON = `{
	"mode": "single",
	"maxWins": 2,
	"players": {
		"p1": {"name": "P1", "showName": true, "wins": 0},
		"p2": {"name": "P2", "showName": true, "wins": 0}
	},
	"settings": {
		"font": "Komika Axis",
		"fontSize": 80,
		"fontColor": "#ffffff",
		"borderEnabled": true,
		"borderColor": "#000000",
		"borderSize": 2,
		"positiveColor": "rgb(0, 255, 0)",
		"negativeColor": "rgb(255, 0, 0)",
		"neutralColor": "rgb(255, 255, 255)"
	},
	"playerSettings": {
		"p1": {"font": null, "fontSize": null, "fontColor": null, "borderEnabled": null, "borderColor": null, "borderSize": null, "positiveColor": null, "negativeColor": null, "neutralColor": null},
		"p2": {"font": null, "fontSize": null, "fontColor": null, "borderEnabled": null, "borderColor": null, "borderSize": null, "positiveColor": null, "negativeColor": null, "neutralColor": null}
	}
}`

var (
	sessionDefault = jsonmerge.MustParse(sessionDefaultJSON)
	demoDefault    = jsonmerge.MustParse(demoDefaultJSON)
)

// DefaultSessionState returns the record a never-written session resolves to.
func DefaultSessionState() jsonmerge.Value { return sessionDefault }

// DefaultDemoState returns the record the demo endpoints start from.
func DefaultDemoState() jsonmerge.Value { return demoDefault }

// ValidateUpdate rejects partial updates that would break the record's
// shape or numeric invariants. mode and maxWins are checked when present and
// non-null; players and each player entry must be objects and wins may not be
// null. A non-object update is accepted and replaces the record wholesale.
func ValidateUpdate(update jsonmerge.Value) error {
	if !update.IsObject() {
		return nil
	}

	if mode, ok := update.Lookup("mode"); ok && !mode.IsNull() {
		s, isString := mode.Str()
		if !isString || (s != ModeSingle && s != ModeDual) {
			return fmt.Errorf("%w: mode must be %q or %q", ErrInvalidUpdate, ModeSingle, ModeDual)
		}
	}

	if maxWins, ok := update.Lookup("maxWins"); ok && !maxWins.IsNull() {
		n, isInt := integer(maxWins)
		if !isInt || n < 1 {
			return fmt.Errorf("%w: maxWins must be a positive integer", ErrInvalidUpdate)
		}
	}

	players, ok := update.Lookup("players")
	if !ok {
		return nil
	}
	if !players.IsObject() {
		return fmt.Errorf("%w: players must be an object", ErrInvalidUpdate)
	}

	for _, id := range PlayerIDs {
		player, ok := players.Lookup(id)
		if !ok {
			continue
		}
		if !player.IsObject() {
			return fmt.Errorf("%w: players.%s must be an object", ErrInvalidUpdate, id)
		}
		wins, ok := player.Lookup("wins")
		if !ok {
			continue
		}
		n, isInt := integer(wins)
		if !isInt || n < 0 {
			return fmt.Errorf("%w: players.%s.wins must be a non-negative integer", ErrInvalidUpdate, id)
		}
	}

	return nil
}

func integer(v jsonmerge.Value) (int, bool) {
	f, ok := v.Num()
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

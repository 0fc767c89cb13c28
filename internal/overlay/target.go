// Package overlay renders a session's scoreboard outside the browser. It
// polls the server, resolves the record into display panels and animates
// the counters the same way the embedded overlay page does.
package overlay

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/pscheid92/wincounter/internal/domain"
)

// Target is what an overlay URL points at. An empty Player means the
// combined view.
type Target struct {
	SessionID string
	Player    string
}

func (t Target) Combined() bool {
	return t.Player == ""
}

func (t Target) String() string {
	if t.Combined() {
		return t.SessionID + " (combined)"
	}
	return t.SessionID + " (" + t.Player + ")"
}

// ParseTarget reads the session from the "session" query parameter or the
// first path segment starting with the session prefix, and the player from
// the "player" query parameter or a "/p1" or "/p2" path fragment. Without a
// session it falls back to the demo session.
func ParseTarget(u *url.URL) Target {
	query := u.Query()

	sessionID := query.Get("session")
	if sessionID == "" {
		for _, segment := range strings.Split(u.Path, "/") {
			if strings.HasPrefix(segment, domain.SessionIDPrefix) {
				sessionID = segment
				break
			}
		}
	}
	if sessionID == "" {
		slog.Warn("No session ID in overlay URL, showing the demo session", "url", u.String())
		sessionID = domain.DemoSessionID
	}

	player := query.Get("player")
	if player == "" {
		switch {
		case strings.Contains(u.Path, "/"+domain.PlayerOne):
			player = domain.PlayerOne
		case strings.Contains(u.Path, "/"+domain.PlayerTwo):
			player = domain.PlayerTwo
		}
	}

	return Target{SessionID: sessionID, Player: player}
}

// ParseTargetString accepts either an overlay URL or a bare session ID.
func ParseTargetString(s string) Target {
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		return ParseTarget(u)
	}
	return Target{SessionID: s}
}

package overlay

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const clearSequence = "\x1b[H\x1b[2J"

// TerminalSink draws views as lipgloss panels. Identical consecutive frames
// are written once.
type TerminalSink struct {
	out         io.Writer
	renderer    *lipgloss.Renderer
	clearScreen bool
	headerStyle lipgloss.Style
	nameStyle   lipgloss.Style

	mu   sync.Mutex
	last string
}

// NewTerminalSink writes to w. With redraw set, each frame first clears the
// screen so the scoreboard redraws in place.
func NewTerminalSink(w io.Writer, redraw bool) *TerminalSink {
	renderer := lipgloss.NewRenderer(w)
	return &TerminalSink{
		out:         w,
		renderer:    renderer,
		clearScreen: redraw,
		headerStyle: renderer.NewStyle().
			Foreground(lipgloss.Color("240")),
		nameStyle: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")),
	}
}

func (s *TerminalSink) Render(v View) {
	frame := s.Format(v)

	s.mu.Lock()
	defer s.mu.Unlock()
	if frame == s.last {
		return
	}
	s.last = frame

	if s.clearScreen {
		_, _ = io.WriteString(s.out, clearSequence)
	}
	_, _ = fmt.Fprintln(s.out, frame)
}

// Format returns the text Render would draw.
func (s *TerminalSink) Format(v View) string {
	var blocks []string
	for _, panel := range v.Frame.VisiblePanels() {
		blocks = append(blocks, s.panel(panel, v.Counters[panel.ID]))
	}

	header := s.headerStyle.Render("wincounter · " + v.Target.String())
	if len(blocks) == 0 {
		return header
	}

	gap := strings.Repeat(" ", 2)
	row := blocks[0]
	for _, b := range blocks[1:] {
		row = lipgloss.JoinHorizontal(lipgloss.Center, row, gap, b)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, row)
}

func (s *TerminalSink) panel(p Panel, counter CounterState) string {
	counterStyle := s.renderer.NewStyle().
		Bold(true).
		Padding(0, 2).
		Foreground(terminalColor(p.FontColor))
	if counter.Pulse {
		counterStyle = counterStyle.Reverse(true)
	}
	if p.BorderEnabled {
		counterStyle = counterStyle.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(terminalColor(p.BorderColor))
	}

	if counter.MaxWins == 0 {
		counter.MaxWins = defaultMaxWins
	}
	lines := []string{counterStyle.Render(counter.Text())}
	if p.ShowName {
		lines = append([]string{s.nameStyle.Render(p.Name)}, lines...)
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// terminalColor accepts #rgb and #rrggbb colours; anything else, such as
// rgb() or named CSS colours, renders uncoloured.
func terminalColor(css string) lipgloss.TerminalColor {
	if strings.HasPrefix(css, "#") && (len(css) == 4 || len(css) == 7) {
		return lipgloss.Color(css)
	}
	return lipgloss.NoColor{}
}

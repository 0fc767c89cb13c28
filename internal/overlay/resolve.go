package overlay

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pscheid92/wincounter/internal/domain"
	"github.com/pscheid92/wincounter/internal/jsonmerge"
)

const (
	defaultMaxWins     = 2
	defaultFontSize    = 120.0
	defaultFontColor   = "#FFFFFF"
	defaultBorderColor = "#000000"
	defaultBorderSize  = 4.0
)

// Frame is one resolved render of a record: a panel per player slot in
// render order, hidden ones included.
type Frame struct {
	Mode    string
	MaxWins int
	// FontFamily is the page-wide family, empty when the record names no font.
	FontFamily string
	Panels     []Panel
}

// Panel is the resolved display of one player slot.
type Panel struct {
	ID       string
	Visible  bool
	Name     string
	ShowName bool
	Wins     int

	FontSize      float64
	FontColor     string
	FontFamily    string
	BorderEnabled bool
	BorderColor   string
	BorderSize    float64
	TextShadow    string
}

// Panel returns the panel with the given id.
func (f Frame) Panel(id string) (Panel, bool) {
	for _, p := range f.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return Panel{}, false
}

// VisiblePanels returns the panels that are shown, in render order.
func (f Frame) VisiblePanels() []Panel {
	var out []Panel
	for _, p := range f.Panels {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out
}

// Resolve applies the overlay's fallback rules to a record. Missing or falsy
// fields fall through player settings, then global settings, then fixed
// defaults. filter is "", "p1" or "p2".
func Resolve(state jsonmerge.Value, filter string) Frame {
	mode := domain.ModeSingle
	if v := state.Get("mode"); v.Truthy() {
		if s, ok := v.Str(); ok {
			mode = s
		}
	}

	settings := state.Get("settings")
	frame := Frame{
		Mode:    mode,
		MaxWins: maxWins(state.Get("maxWins")),
	}
	if font := settings.Get("font"); font.Truthy() {
		frame.FontFamily = FontFamily(text(font))
	}

	visible := map[string]bool{
		domain.PlayerOne: filter == "" || filter == domain.PlayerOne,
		domain.PlayerTwo: (mode == domain.ModeDual && filter == "") || filter == domain.PlayerTwo,
	}

	for _, id := range domain.PlayerIDs {
		panel := Panel{ID: id, Visible: visible[id]}
		if panel.Visible {
			resolvePanel(&panel, state, settings)
		}
		frame.Panels = append(frame.Panels, panel)
	}
	return frame
}

func resolvePanel(p *Panel, state, settings jsonmerge.Value) {
	player := state.Get("players", p.ID)
	if !player.Truthy() {
		player = jsonmerge.Object(
			jsonmerge.Field("wins", jsonmerge.Int(0)),
			jsonmerge.Field("name", jsonmerge.String(strings.ToUpper(p.ID))),
			jsonmerge.Field("showName", jsonmerge.Bool(true)),
		)
	}
	own := state.Get("playerSettings", p.ID)

	p.Name = strings.ToUpper(p.ID)
	if name := player.Get("name"); name.Truthy() {
		p.Name = text(name)
	}
	showName, isBool := player.Get("showName").BoolVal()
	p.ShowName = !isBool || showName
	p.Wins = wholeWins(player.Get("wins"))

	p.FontSize = number(firstTruthy(own.Get("fontSize"), settings.Get("fontSize")), defaultFontSize)
	p.FontColor = defaultFontColor
	if color := firstTruthy(own.Get("fontColor"), settings.Get("fontColor")); color.Truthy() {
		p.FontColor = text(color)
	}

	// null and absent both inherit the global border switch.
	if override := own.Get("borderEnabled"); !override.IsNull() {
		p.BorderEnabled = override.Truthy()
	} else {
		enabled, isBool := settings.Get("borderEnabled").BoolVal()
		p.BorderEnabled = !isBool || enabled
	}
	p.BorderColor = defaultBorderColor
	if color := firstTruthy(own.Get("borderColor"), settings.Get("borderColor")); color.Truthy() {
		p.BorderColor = text(color)
	}
	p.BorderSize = number(firstTruthy(own.Get("borderSize"), settings.Get("borderSize")), defaultBorderSize)

	p.TextShadow = "none"
	if p.BorderEnabled {
		p.TextShadow = TextShadow(p.BorderSize, p.BorderColor)
	}

	if font := firstTruthy(own.Get("font"), settings.Get("font")); font.Truthy() {
		p.FontFamily = FontFamily(text(font))
	}
}

// FontFamily returns the CSS font stack for a named font.
func FontFamily(font string) string {
	return "'" + font + "', 'Komika Axis', 'Impact', 'Arial Black', sans-serif"
}

// TextShadow returns the four-diagonal outline the overlay uses as a border.
func TextShadow(size float64, color string) string {
	s := formatNumber(size)
	return fmt.Sprintf("-%[1]spx -%[1]spx 0 %[2]s, %[1]spx -%[1]spx 0 %[2]s, -%[1]spx %[1]spx 0 %[2]s, %[1]spx %[1]spx 0 %[2]s", s, color)
}

func firstTruthy(values ...jsonmerge.Value) jsonmerge.Value {
	for _, v := range values {
		if v.Truthy() {
			return v
		}
	}
	return jsonmerge.Null()
}

// number reads a numeric value the way string interpolation would treat it,
// accepting numeric strings, and returns fallback otherwise.
func number(v jsonmerge.Value, fallback float64) float64 {
	if f, ok := v.Num(); ok {
		return f
	}
	if s, ok := v.Str(); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return fallback
}

func maxWins(v jsonmerge.Value) int {
	if !v.Truthy() {
		return defaultMaxWins
	}
	n := math.Floor(number(v, defaultMaxWins))
	if n < 1 || n > math.MaxInt32 {
		return defaultMaxWins
	}
	return int(n)
}

// wholeWins floors the value and clamps it at zero.
func wholeWins(v jsonmerge.Value) int {
	f := number(v, 0)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	f = math.Floor(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// text renders a scalar the way it would appear when written into the page.
func text(v jsonmerge.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}
	if f, ok := v.Num(); ok {
		return formatNumber(f)
	}
	if b, ok := v.BoolVal(); ok {
		return strconv.FormatBool(b)
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(raw)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

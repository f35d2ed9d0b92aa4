package render

import (
	"fmt"
	"strings"

	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/world"
)

const (
	commsMax = 6
	barWidth = 20
)

// HUDState is what the overlay shows besides the scene itself.
type HUDState struct {
	Title        string
	Mode         game.CameraMode
	Tier         game.Tier
	Paused       bool
	Warping      bool
	WarpProgress float64
	Stats        game.Stats
	Messages     []game.Message
	Panel        *world.BodyDef // body whose panel is open, if any
}

// ComposeHUD lays the overlay out into buf. Row 0 is the title bar, the
// comms log sits above the help line at the bottom.
func ComposeHUD(buf *CellBuffer, s HUDState) {
	buf.Clear()
	if buf.Cols == 0 || buf.Rows == 0 {
		return
	}

	x := buf.WriteString(1, 0, s.Title, ColorWhite, ColorBlack)
	x = buf.WriteString(x+2, 0, "[ "+strings.ToUpper(s.Mode.String())+" ]", ColorLightCyan, ColorBlack)
	tierClr := uint8(ColorLightGreen)
	if s.Tier == game.TierLow {
		tierClr = ColorYellow
	}
	x = buf.WriteString(x+1, 0, s.Tier.String(), tierClr, ColorBlack)
	if s.Paused {
		buf.WriteString(x+1, 0, "paused", ColorDarkGray, ColorBlack)
	}

	counts := fmt.Sprintf("%d vs %d  kills %d",
		s.Stats.Counts[game.FactionFriendly], s.Stats.Counts[game.FactionHostile], s.Stats.Kills)
	buf.WriteString(buf.Cols-len(counts)-1, 0, counts, ColorLightGray, ColorBlack)

	if s.Warping {
		drawBar(buf, 1, 2, "Warp ", s.WarpProgress, ColorLightCyan)
	}

	if s.Panel != nil {
		drawPanel(buf, s.Panel)
	}

	msgs := s.Messages
	if len(msgs) > commsMax {
		msgs = msgs[len(msgs)-commsMax:]
	}
	top := buf.Rows - 1 - len(msgs)
	for i, m := range msgs {
		buf.WriteString(1, top+i, m.Text, MsgColor(m.Priority), ColorBlack)
	}

	buf.WriteString(1, buf.Rows-1,
		"1/2/3: Mode  WASD QE: Fly  Drag: Look  Click: Warp  Enter: Close  Esc: Quit",
		ColorDarkGray, ColorBlack)
}

// drawBar draws a labelled progress bar filled to frac.
func drawBar(buf *CellBuffer, x, y int, label string, frac float64, fg uint8) {
	x = buf.WriteString(x, y, label, ColorLightGray, ColorBlack)
	fill := int(frac*barWidth + 0.5)
	for i := 0; i < barWidth; i++ {
		g, c := GlyphShadeLight, uint8(ColorDarkGray)
		if i < fill {
			g, c = GlyphBlock, fg
		}
		buf.Set(x+i, y, g, c, ColorBlack)
	}
}

// drawPanel shows a body's details in a framed box near the center.
func drawPanel(buf *CellBuffer, b *world.BodyDef) {
	w := min(44, buf.Cols-2)
	lines := wrap(b.Description, w-4)
	h := 4 + len(lines)
	x0 := (buf.Cols - w) / 2
	y0 := max((buf.Rows-h)/2, 1)

	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			buf.Set(x, y, ' ', ColorWhite, ColorBlue)
		}
	}
	for x := x0; x < x0+w; x++ {
		buf.Set(x, y0, GlyphHLine, ColorLightCyan, ColorBlue)
		buf.Set(x, y0+h-1, GlyphHLine, ColorLightCyan, ColorBlue)
	}
	_, fg := BodyGlyph(*b)
	buf.WriteString(x0+2, y0+1, b.Name, fg, ColorBlue)
	buf.WriteString(x0+w-2-len(string(b.Kind)), y0+1, string(b.Kind), ColorLightGray, ColorBlue)
	for i, l := range lines {
		buf.WriteString(x0+2, y0+2+i, l, ColorWhite, ColorBlue)
	}
}

func wrap(s string, width int) []string {
	var out []string
	line := ""
	for _, w := range strings.Fields(s) {
		if line != "" && len(line)+1+len(w) > width {
			out = append(out, line)
			line = w
			continue
		}
		if line != "" {
			line += " "
		}
		line += w
	}
	if line != "" {
		out = append(out, line)
	}
	return out
}

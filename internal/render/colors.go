package render

import (
	"image/color"

	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/world"
)

// CGA 16-color palette indices.
const (
	ColorBlack        = 0
	ColorBlue         = 1
	ColorGreen        = 2
	ColorCyan         = 3
	ColorRed          = 4
	ColorMagenta      = 5
	ColorBrown        = 6
	ColorLightGray    = 7
	ColorDarkGray     = 8
	ColorLightBlue    = 9
	ColorLightGreen   = 10
	ColorLightCyan    = 11
	ColorLightRed     = 12
	ColorLightMagenta = 13
	ColorYellow       = 14
	ColorWhite        = 15
)

// Palette is the HUD palette. Scene geometry uses true colors.
var Palette = [16]color.RGBA{
	{0, 0, 0, 255},       // 0: Black
	{0, 0, 170, 255},     // 1: Blue
	{0, 170, 0, 255},     // 2: Green
	{0, 170, 170, 255},   // 3: Cyan
	{170, 0, 0, 255},     // 4: Red
	{170, 0, 170, 255},   // 5: Magenta
	{170, 85, 0, 255},    // 6: Brown
	{170, 170, 170, 255}, // 7: Light Gray
	{85, 85, 85, 255},    // 8: Dark Gray
	{85, 85, 255, 255},   // 9: Light Blue
	{85, 255, 85, 255},   // 10: Light Green
	{85, 255, 255, 255},  // 11: Light Cyan
	{255, 85, 85, 255},   // 12: Light Red
	{255, 85, 255, 255},  // 13: Light Magenta
	{255, 255, 85, 255},  // 14: Yellow
	{255, 255, 255, 255}, // 15: White
}

var (
	spaceColor    = color.RGBA{4, 6, 16, 255}
	ringColor     = color.RGBA{90, 110, 150, 255}
	friendlyColor = color.RGBA{80, 200, 255, 255}
	hostileColor  = color.RGBA{255, 90, 70, 255}
	blastColor    = color.RGBA{255, 180, 60, 255}
	debrisColor   = color.RGBA{170, 150, 130, 255}
	trailColor    = color.RGBA{200, 220, 255, 255}
)

// BodyColor returns the catalog color of a body, opaque.
func BodyColor(b world.BodyDef) color.RGBA {
	r, g, bl := b.RGB()
	return color.RGBA{r, g, bl, 255}
}

// StarColor returns the catalog color of the central star.
func StarColor(s world.StarDef) color.RGBA {
	rgb, err := world.ParseColor(s.Color)
	if err != nil {
		return color.RGBA{255, 204, 51, 255}
	}
	return color.RGBA{uint8(rgb >> 16), uint8(rgb >> 8), uint8(rgb), 255}
}

// FactionColor is the hull and weapon color of a faction.
func FactionColor(f game.Faction) color.RGBA {
	if f == game.FactionHostile {
		return hostileColor
	}
	return friendlyColor
}

// MsgColor maps a comms priority to a palette index.
func MsgColor(p game.MsgPriority) uint8 {
	switch p {
	case game.MsgWarning:
		return ColorYellow
	case game.MsgCombat:
		return ColorLightRed
	case game.MsgSelect:
		return ColorLightGreen
	default:
		return ColorCyan
	}
}

// Nearest returns the palette index closest to c.
func Nearest(c color.RGBA) uint8 {
	best, bestD := uint8(0), int(^uint(0)>>1)
	for i, p := range Palette {
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		if d := dr*dr + dg*dg + db*db; d < bestD {
			best, bestD = uint8(i), d
		}
	}
	return best
}

// withAlpha scales c to alpha a in [0,1] as premultiplied color.
func withAlpha(c color.RGBA, a float64) color.RGBA {
	if a <= 0 {
		return color.RGBA{}
	}
	if a > 1 {
		a = 1
	}
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(255 * a),
	}
}

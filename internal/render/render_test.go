package render

import (
	"image"
	"strings"
	"testing"

	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/vmath"
	"github.com/orbithub/orbitscene/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(buf *CellBuffer, y int) string {
	var sb strings.Builder
	for x := 0; x < buf.Cols; x++ {
		sb.WriteByte(buf.Get(x, y).Glyph)
	}
	return sb.String()
}

func frontCamera() game.Camera {
	return game.Camera{Pos: vmath.Vec3{Z: 100}, FOV: 60, Aspect: 2, Near: 0.1, Far: 500}
}

func TestNearestIsIdentityOnPalette(t *testing.T) {
	for i, c := range Palette {
		assert.Equal(t, uint8(i), Nearest(c))
	}
}

func TestCellBuffer(t *testing.T) {
	buf := NewCellBuffer(10, 3)
	next := buf.WriteString(2, 1, "héllo", ColorWhite, ColorBlack)
	assert.Equal(t, 7, next)
	assert.Equal(t, "  h?llo   ", row(buf, 1))

	buf.Set(-1, 0, 'x', ColorWhite, ColorBlack)
	buf.Set(10, 0, 'x', ColorWhite, ColorBlack)
	assert.Equal(t, Cell{}, buf.Get(99, 99))
	assert.Equal(t, strings.Repeat(" ", 10), row(buf, 0))

	buf.Resize(4, 2)
	assert.Len(t, buf.Cells, 8)
	assert.Equal(t, "    ", row(buf, 1))
}

func TestPlotSceneDepthOrder(t *testing.T) {
	buf := NewCellBuffer(80, 40)
	far := game.CelestialBody{BodyDef: world.BodyDef{ID: "far", Name: "Far", Shape: world.ShapeTorus, Color: "#ff0000"}, Pos: vmath.Vec3{Z: -50}}
	near := game.CelestialBody{BodyDef: world.BodyDef{ID: "near", Name: "Near", Shape: world.ShapePolyhedron, Color: "#00ff00"}, Pos: vmath.Vec3{Z: 50}}

	PlotScene(buf, CellScene{
		Camera: frontCamera(),
		Width:  160,
		Height: 80,
		Star:   world.StarDef{Name: "Core", Color: "#ffcc33"},
		Bodies: []game.CelestialBody{near, far},
		Labels: []game.Label{{ID: "near", Name: "Hub", X: 80, Y: 40, Visible: true}},
	})

	assert.Equal(t, GlyphDiamond, buf.Get(40, 20).Glyph, "nearest body wins the cell")
	assert.Equal(t, "Hub", row(buf, 21)[39:42])
}

func TestPlotSceneStarAndCraft(t *testing.T) {
	buf := NewCellBuffer(80, 40)
	view := &game.CombatView{
		Crafts: []game.CraftInfo{{Faction: game.FactionHostile, Pos: vmath.Vec3{X: 20}, Forward: vmath.Vec3{X: 1}}},
	}
	PlotScene(buf, CellScene{
		Camera: frontCamera(),
		Width:  160,
		Height: 80,
		Star:   world.StarDef{Color: "#ffcc33"},
		Combat: view,
	})

	assert.Equal(t, GlyphSun, buf.Get(40, 20).Glyph)
	cells := row(buf, 20)
	i := strings.IndexByte(cells, GlyphRight)
	require.Greater(t, i, 40, "craft right of the star, heading right")
	assert.Equal(t, uint8(ColorLightRed), buf.Get(i, 20).FG)
}

func TestPlotSceneHiddenLabelsAndEmptyViewport(t *testing.T) {
	buf := NewCellBuffer(20, 10)
	PlotScene(buf, CellScene{Camera: frontCamera(), Width: 0, Height: 0})
	assert.Equal(t, strings.Repeat(" ", 20), row(buf, 5))

	PlotScene(buf, CellScene{
		Camera: frontCamera(), Width: 40, Height: 20,
		Labels: []game.Label{{Name: "Gone", X: 20, Y: 10}},
	})
	assert.NotContains(t, row(buf, 6), "Gone")
}

func TestPlotLine(t *testing.T) {
	buf := NewCellBuffer(12, 6)
	plotLine(buf, 2, 3, 8, 3, '-', ColorWhite)
	assert.Equal(t, "  -------   ", row(buf, 3))

	buf.Clear()
	plotLine(buf, 0, 0, 3, 3, '\\', ColorWhite)
	for i := 0; i <= 3; i++ {
		assert.Equal(t, byte('\\'), buf.Get(i, i).Glyph)
	}

	buf.Clear()
	plotLine(buf, -1000, 0, 1000, 0, '-', ColorWhite)
	assert.Equal(t, strings.Repeat(" ", 12), row(buf, 0), "absurd spans are skipped")
}

func TestCraftGlyph(t *testing.T) {
	assert.Equal(t, GlyphRight, CraftGlyph(3, 1))
	assert.Equal(t, GlyphLeft, CraftGlyph(-3, 1))
	assert.Equal(t, GlyphUp, CraftGlyph(0, -2))
	assert.Equal(t, GlyphDown, CraftGlyph(1, 2))
}

func TestLineGlyph(t *testing.T) {
	assert.Equal(t, byte('-'), lineGlyph(10, 1))
	assert.Equal(t, byte('|'), lineGlyph(1, 10))
	assert.Equal(t, byte('\\'), lineGlyph(5, 5))
	assert.Equal(t, byte('/'), lineGlyph(5, -5))
}

func TestComposeHUD(t *testing.T) {
	buf := NewCellBuffer(100, 30)
	body := world.BodyDef{ID: "video", Name: "Video Hub", Kind: world.KindVideo, Color: "#8844ff",
		Description: "Watch product reviews and live streams from trusted sellers."}
	ComposeHUD(buf, HUDState{
		Title:        "Orbit Scene",
		Mode:         game.ModeFreeFly,
		Tier:         game.TierLow,
		Paused:       true,
		Warping:      true,
		WarpProgress: 0.5,
		Stats:        game.Stats{Kills: 3, Counts: map[game.Faction]int{game.FactionFriendly: 4, game.FactionHostile: 2}},
		Messages:     []game.Message{{Text: "Friendly craft destroyed.", Priority: game.MsgCombat}},
		Panel:        &body,
	})

	top := row(buf, 0)
	assert.Contains(t, top, "Orbit Scene")
	assert.Contains(t, top, "[ FREEFLY ]")
	assert.Contains(t, top, "paused")
	assert.Contains(t, top, "4 vs 2  kills 3")

	bar := row(buf, 2)
	assert.Equal(t, strings.Repeat(string([]byte{GlyphBlock}), 10)+strings.Repeat(string([]byte{GlyphShadeLight}), 10), bar[6:26])

	assert.Contains(t, row(buf, buf.Rows-2), "Friendly craft destroyed.")
	assert.Equal(t, uint8(ColorLightRed), buf.Get(1, buf.Rows-2).FG)

	var panel string
	for y := 0; y < buf.Rows; y++ {
		panel += row(buf, y) + "\n"
	}
	assert.Contains(t, panel, "Video Hub")
	assert.Contains(t, panel, "live streams")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 8))
	assert.Empty(t, wrap("   ", 8))
}

func alphaAt(img *image.NRGBA, x, y int) uint8 {
	return img.NRGBAAt(x, y).A
}

func TestBodySprites(t *testing.T) {
	for _, shape := range []world.Shape{world.ShapeSphere, world.ShapeTorus, world.ShapePolyhedron} {
		img := BodySprite(world.BodyDef{Shape: shape, Color: "#4488ff"}, 48)
		assert.Equal(t, 48, img.Bounds().Dx(), shape)
		assert.Equal(t, uint8(255), alphaAt(img, 24, 24), "%s center is filled", shape)
		assert.Zero(t, alphaAt(img, 0, 0), "%s corner is clear", shape)
	}
}

func TestStarSprite(t *testing.T) {
	star := world.StarDef{Color: "#ffcc33"}
	plain := StarSprite(star, 64, false, 1)
	detailed := StarSprite(star, 64, true, 1)
	again := StarSprite(star, 64, true, 1)

	assert.Equal(t, detailed.Pix, again.Pix, "noise is seeded")
	assert.NotEqual(t, plain.Pix, detailed.Pix)
	assert.Zero(t, alphaAt(plain, 0, 0))
	assert.Equal(t, uint8(255), alphaAt(plain, 32, 32))
}

func TestGlowSprite(t *testing.T) {
	img := GlowSprite(32)
	assert.Greater(t, alphaAt(img, 16, 16), alphaAt(img, 16, 4))
	assert.Zero(t, alphaAt(img, 0, 0))
}

func TestSizesFollowTier(t *testing.T) {
	assert.Greater(t, SpriteSize(game.TierHigh), SpriteSize(game.TierLow))
	assert.Greater(t, RingSegments(game.TierHigh), RingSegments(game.TierLow))
}

func TestAtlasImage(t *testing.T) {
	img := AtlasImage()
	require.Equal(t, AtlasCols*GlyphWidth, img.Bounds().Dx())

	lit := func(code byte) int {
		r := glyphRect(code)
		n := 0
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if img.NRGBAAt(x, y).A > 0 {
					n++
				}
			}
		}
		return n
	}
	assert.Positive(t, lit('A'))
	assert.Equal(t, GlyphWidth*GlyphHeight, lit(GlyphBlock))
	assert.Zero(t, lit(0))
	assert.Zero(t, lit(' '))
}

func TestOverlayKeepsBlankCellsTransparent(t *testing.T) {
	base := NewCellBuffer(6, 1)
	base.WriteString(0, 0, "abcdef", ColorWhite, ColorBlack)
	top := NewCellBuffer(6, 1)
	top.WriteString(1, 0, "X", ColorYellow, ColorBlack)
	top.Set(4, 0, ' ', ColorWhite, ColorBlue)

	base.Overlay(top)
	assert.Equal(t, "aXcd f", row(base, 0))
	assert.Equal(t, uint8(ColorBlue), base.Get(4, 0).BG)
}

func TestGlyphRune(t *testing.T) {
	assert.Equal(t, 'A', GlyphRune('A'))
	assert.Equal(t, '☼', GlyphRune(GlyphSun))
	assert.Equal(t, ' ', GlyphRune(0))
}

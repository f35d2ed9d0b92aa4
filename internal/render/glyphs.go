package render

import (
	"math"
	"sort"

	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/vmath"
	"github.com/orbithub/orbitscene/internal/world"
)

// RingSegments is the number of straight segments used to draw one orbit ring.
func RingSegments(tier game.Tier) int {
	if tier == game.TierLow {
		return 48
	}
	return 128
}

// BodyGlyph picks the cell glyph and palette color of a body.
func BodyGlyph(b world.BodyDef) (glyph byte, fg uint8) {
	fg = Nearest(BodyColor(b))
	if fg == ColorBlack {
		fg = ColorDarkGray
	}
	switch b.Shape {
	case world.ShapeTorus:
		return 'o', fg
	case world.ShapePolyhedron:
		return GlyphDiamond, fg
	default:
		return 'O', fg
	}
}

// CraftGlyph returns an arrow pointing along the craft's screen heading.
func CraftGlyph(dx, dy float64) byte {
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return GlyphLeft
		}
		return GlyphRight
	}
	if dy < 0 {
		return GlyphUp
	}
	return GlyphDown
}

func craftFG(f game.Faction) uint8 {
	if f == game.FactionHostile {
		return ColorLightRed
	}
	return ColorLightCyan
}

// CellScene is everything PlotScene draws.
type CellScene struct {
	Camera game.Camera
	Width  float64 // viewport the camera and labels were computed for
	Height float64
	Tier   game.Tier
	Star   world.StarDef
	Bodies []game.CelestialBody
	Combat *game.CombatView
	Labels []game.Label
}

// PlotScene rasterizes the projected scene into buf, far to near, with body
// names under their glyphs.
func PlotScene(buf *CellBuffer, s CellScene) {
	if buf.Cols == 0 || buf.Rows == 0 || s.Width <= 0 || s.Height <= 0 {
		return
	}
	p := newProjector(s.Camera, s.Width, s.Height)
	sx := float64(buf.Cols) / s.Width
	sy := float64(buf.Rows) / s.Height
	cell := func(x, y float64) (int, int) {
		return int(math.Floor(x * sx)), int(math.Floor(y * sy))
	}
	setIfBlank := func(cx, cy int, g byte, fg uint8) {
		if buf.Get(cx, cy).Glyph == ' ' {
			buf.Set(cx, cy, g, fg, ColorBlack)
		}
	}

	segs := RingSegments(s.Tier)
	for _, b := range s.Bodies {
		for i := 0; i < segs; i++ {
			a := 2 * math.Pi * float64(i) / float64(segs)
			if x, y, _, ok := p.point(orbitPoint(b.Distance, a)); ok {
				cx, cy := cell(x, y)
				setIfBlank(cx, cy, '.', ColorDarkGray)
			}
		}
	}

	if x, y, _, ok := p.point(vmath.Vec3{}); ok {
		cx, cy := cell(x, y)
		buf.Set(cx, cy, GlyphSun, Nearest(StarColor(s.Star)), ColorBlack)
	}

	if v := s.Combat; v != nil {
		for _, t := range v.Trails {
			if x, y, _, ok := p.point(t.Pos); ok {
				cx, cy := cell(x, y)
				setIfBlank(cx, cy, '.', ColorLightGray)
			}
		}
		for _, d := range v.Debris {
			if x, y, _, ok := p.point(d.Pos); ok {
				cx, cy := cell(x, y)
				setIfBlank(cx, cy, GlyphBullet, ColorDarkGray)
			}
		}
		for _, sh := range v.Shots {
			fg := craftFG(sh.Faction)
			if sh.Kind == game.ProjectileBeam {
				x0, y0, _, ok0 := p.point(sh.From)
				x1, y1, _, ok1 := p.point(sh.To)
				if ok0 && ok1 {
					c0x, c0y := cell(x0, y0)
					c1x, c1y := cell(x1, y1)
					plotLine(buf, c0x, c0y, c1x, c1y, lineGlyph(x1-x0, y1-y0), fg)
				}
				continue
			}
			if x, y, _, ok := p.point(sh.Pos); ok {
				cx, cy := cell(x, y)
				g := byte('.')
				if sh.Kind == game.ProjectileHoming {
					g = '*'
				}
				buf.Set(cx, cy, g, fg, ColorBlack)
			}
		}
	}

	type drawn struct {
		depth float64
		x, y  int
		glyph byte
		fg    uint8
	}
	var items []drawn
	for _, b := range s.Bodies {
		if x, y, d, ok := p.point(b.Pos); ok {
			g, fg := BodyGlyph(b.BodyDef)
			cx, cy := cell(x, y)
			items = append(items, drawn{d, cx, cy, g, fg})
		}
	}
	if v := s.Combat; v != nil {
		for _, c := range v.Crafts {
			x, y, d, ok := p.point(c.Pos)
			if !ok {
				continue
			}
			hx, hy, _, hok := p.point(c.Pos.Add(c.Forward))
			g := GlyphRight
			if hok {
				g = CraftGlyph(hx-x, hy-y)
			}
			cx, cy := cell(x, y)
			items = append(items, drawn{d, cx, cy, g, craftFG(c.Faction)})
		}
		for _, bl := range v.Blasts {
			if x, y, d, ok := p.point(bl.Pos); ok {
				g, fg := byte('*'), uint8(ColorYellow)
				if bl.Progress > 0.5 {
					g, fg = GlyphShadeMedium, ColorRed
				}
				cx, cy := cell(x, y)
				items = append(items, drawn{d, cx, cy, g, fg})
			}
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].depth > items[j].depth })
	for _, it := range items {
		buf.Set(it.x, it.y, it.glyph, it.fg, ColorBlack)
	}

	for _, l := range s.Labels {
		if !l.Visible {
			continue
		}
		cx, cy := cell(l.X, l.Y)
		buf.WriteString(cx-len(l.Name)/2, cy+1, l.Name, ColorWhite, ColorBlack)
	}
}

func lineGlyph(dx, dy float64) byte {
	switch {
	case math.Abs(dy) < math.Abs(dx)/2:
		return '-'
	case math.Abs(dx) < math.Abs(dy)/2:
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

// plotLine draws a Bresenham line of glyph g between two cells.
func plotLine(buf *CellBuffer, x0, y0, x1, y1 int, g byte, fg uint8) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	stepX, stepY := 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}
	steps := max(dx, -dy)
	if steps > 4*(buf.Cols+buf.Rows) {
		return
	}
	e := dx + dy
	for n := 0; n <= steps; n++ {
		buf.Set(x0, y0, g, fg, ColorBlack)
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += stepX
		}
		if e2 <= dx {
			e += dx
			y0 += stepY
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

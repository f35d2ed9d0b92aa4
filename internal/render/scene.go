package render

import (
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/vmath"
	"github.com/orbithub/orbitscene/internal/world"
)

type itemKind uint8

const (
	itemStar itemKind = iota
	itemBody
	itemCraft
	itemBlast
)

type drawItem struct {
	kind  itemKind
	index int
	depth float64
	x, y  float64
}

// SceneInput is one frame of scene state to draw.
type SceneInput struct {
	Frame  game.Frame
	Star   world.StarDef
	Bodies []game.CelestialBody
	Combat *game.CombatView
	Width  float64
	Height float64
}

// SceneRenderer draws the perspective scene with painter's ordering.
type SceneRenderer struct {
	assets *Assets
	grid   *GridRenderer
	tier   game.Tier
	items  []drawItem
}

// NewSceneRenderer draws with the given sprites; grid renders the labels.
func NewSceneRenderer(assets *Assets, grid *GridRenderer, tier game.Tier) *SceneRenderer {
	return &SceneRenderer{assets: assets, grid: grid, tier: tier}
}

// Draw renders one frame. Nothing is allocated on the GPU here.
func (r *SceneRenderer) Draw(screen *ebiten.Image, in SceneInput) {
	screen.Fill(spaceColor)
	if in.Width <= 0 || in.Height <= 0 {
		return
	}
	p := newProjector(in.Frame.Camera, in.Width, in.Height)

	segs := RingSegments(r.tier)
	for _, b := range in.Bodies {
		r.drawRing(screen, p, vmath.Vec3{}, b.Distance, segs, withAlpha(ringColor, 0.35))
	}

	r.items = r.items[:0]
	if x, y, d, ok := p.point(vmath.Vec3{}); ok {
		r.items = append(r.items, drawItem{kind: itemStar, depth: d, x: x, y: y})
	}
	for i, b := range in.Bodies {
		if x, y, d, ok := p.point(b.Pos); ok {
			r.items = append(r.items, drawItem{kind: itemBody, index: i, depth: d, x: x, y: y})
		}
	}
	if v := in.Combat; v != nil {
		for i, c := range v.Crafts {
			if x, y, d, ok := p.point(c.Pos); ok {
				r.items = append(r.items, drawItem{kind: itemCraft, index: i, depth: d, x: x, y: y})
			}
		}
		for i, bl := range v.Blasts {
			if x, y, d, ok := p.point(bl.Pos); ok {
				r.items = append(r.items, drawItem{kind: itemBlast, index: i, depth: d, x: x, y: y})
			}
		}
	}
	sort.Slice(r.items, func(i, j int) bool { return r.items[i].depth > r.items[j].depth })

	for _, it := range r.items {
		switch it.kind {
		case itemStar:
			r.drawStar(screen, p, in.Star, it)
		case itemBody:
			r.drawBody(screen, p, in.Bodies[it.index], it, segs)
		case itemCraft:
			r.drawCraft(screen, p, in.Combat.Crafts[it.index], it)
		case itemBlast:
			r.drawBlast(screen, p, in.Combat.Blasts[it.index], it)
		}
	}

	if in.Combat != nil {
		r.drawEffects(screen, p, in.Combat)
	}
	r.drawLabels(screen, in.Frame.Labels)
}

func (r *SceneRenderer) drawSprite(screen, img *ebiten.Image, x, y, diameter float64, blend ebiten.Blend, clr color.Color) {
	if img == nil || diameter < 1 {
		return
	}
	size := float64(img.Bounds().Dx())
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(-size/2, -size/2)
	op.GeoM.Scale(diameter/size, diameter/size)
	op.GeoM.Translate(x, y)
	op.Blend = blend
	op.Filter = ebiten.FilterLinear
	if clr != nil {
		op.ColorScale.ScaleWithColor(clr)
	}
	screen.DrawImage(img, &op)
}

func (r *SceneRenderer) drawStar(screen *ebiten.Image, p projector, s world.StarDef, it drawItem) {
	d := 2 * p.radius(s.Radius, it.depth)
	if r.tier == game.TierHigh {
		r.drawSprite(screen, r.assets.glow, it.x, it.y, d*3, ebiten.BlendLighter, withAlpha(StarColor(s), 0.8))
	}
	r.drawSprite(screen, r.assets.star, it.x, it.y, d, ebiten.BlendSourceOver, nil)
}

func (r *SceneRenderer) drawBody(screen *ebiten.Image, p projector, b game.CelestialBody, it drawItem, segs int) {
	if b.Ring {
		r.drawRing(screen, p, b.Pos, b.Radius*1.8, segs/2, withAlpha(BodyColor(b.BodyDef), 0.7))
	}
	d := 2 * p.radius(b.Radius, it.depth)
	if d < 2 {
		vector.DrawFilledCircle(screen, float32(it.x), float32(it.y), 1, BodyColor(b.BodyDef), false)
		return
	}
	r.drawSprite(screen, r.assets.Body(b.ID), it.x, it.y, d, ebiten.BlendSourceOver, nil)
}

// drawRing strokes a circle of the given radius in the orbital plane.
func (r *SceneRenderer) drawRing(screen *ebiten.Image, p projector, center vmath.Vec3, radius float64, segs int, clr color.Color) {
	var px, py float64
	prev := false
	for i := 0; i <= segs; i++ {
		a := 2 * math.Pi * float64(i) / float64(segs)
		x, y, _, ok := p.point(center.Add(orbitPoint(radius, a)))
		if ok && prev {
			vector.StrokeLine(screen, float32(px), float32(py), float32(x), float32(y), 1, clr, r.tier == game.TierHigh)
		}
		px, py, prev = x, y, ok
	}
}

func (r *SceneRenderer) drawCraft(screen *ebiten.Image, p projector, c game.CraftInfo, it drawItem) {
	clr := FactionColor(c.Faction)
	size := math.Max(p.radius(1.5, it.depth), 2)
	nx, ny, _, ok := p.point(c.Pos.Add(c.Forward))
	if !ok {
		vector.DrawFilledCircle(screen, float32(it.x), float32(it.y), float32(size/2), clr, false)
		return
	}
	dx, dy := nx-it.x, ny-it.y
	l := math.Hypot(dx, dy)
	if l < 1e-6 {
		dx, dy, l = 1, 0, 1
	}
	dx, dy = dx/l, dy/l
	tipX, tipY := it.x+dx*size*1.5, it.y+dy*size*1.5
	lx, ly := it.x-dx*size-dy*size*0.8, it.y-dy*size+dx*size*0.8
	rx, ry := it.x-dx*size+dy*size*0.8, it.y-dy*size-dx*size*0.8
	aa := r.tier == game.TierHigh
	vector.StrokeLine(screen, float32(tipX), float32(tipY), float32(lx), float32(ly), 1.5, clr, aa)
	vector.StrokeLine(screen, float32(lx), float32(ly), float32(rx), float32(ry), 1.5, clr, aa)
	vector.StrokeLine(screen, float32(rx), float32(ry), float32(tipX), float32(tipY), 1.5, clr, aa)
}

func (r *SceneRenderer) drawBlast(screen *ebiten.Image, p projector, b game.BlastInfo, it drawItem) {
	rad := p.radius(2+6*b.Progress, it.depth)
	alpha := 1 - b.Progress
	if b.Light {
		r.drawSprite(screen, r.assets.glow, it.x, it.y, rad*6, ebiten.BlendLighter, withAlpha(blastColor, alpha))
	}
	vector.DrawFilledCircle(screen, float32(it.x), float32(it.y), float32(math.Max(rad, 1)), withAlpha(blastColor, alpha), r.tier == game.TierHigh)
}

func (r *SceneRenderer) drawEffects(screen *ebiten.Image, p projector, v *game.CombatView) {
	aa := r.tier == game.TierHigh
	for _, t := range v.Trails {
		if x, y, _, ok := p.point(t.Pos); ok {
			vector.DrawFilledCircle(screen, float32(x), float32(y), 1, withAlpha(trailColor, 0.5*t.Fade), false)
		}
	}
	for _, d := range v.Debris {
		if x, y, depth, ok := p.point(d.Pos); ok {
			s := float32(math.Max(p.radius(0.4, depth), 1))
			vector.DrawFilledRect(screen, float32(x)-s/2, float32(y)-s/2, s, s, withAlpha(debrisColor, d.Fade), false)
		}
	}
	for _, s := range v.Shots {
		clr := FactionColor(s.Faction)
		switch s.Kind {
		case game.ProjectileBeam:
			x0, y0, _, ok0 := p.point(s.From)
			x1, y1, _, ok1 := p.point(s.To)
			if ok0 && ok1 {
				vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 2, withAlpha(clr, s.Fade), aa)
			}
		default:
			x, y, depth, ok := p.point(s.Pos)
			if !ok {
				continue
			}
			rad := math.Max(p.radius(0.6, depth), 1.5)
			if s.Kind == game.ProjectileHoming && s.Light {
				r.drawSprite(screen, r.assets.glow, x, y, rad*8, ebiten.BlendLighter, withAlpha(clr, 0.6))
			}
			vector.DrawFilledCircle(screen, float32(x), float32(y), float32(rad), clr, aa)
		}
	}
}

func (r *SceneRenderer) drawLabels(screen *ebiten.Image, labels []game.Label) {
	if r.grid == nil {
		return
	}
	for _, l := range labels {
		if !l.Visible {
			continue
		}
		w := float64(len(l.Name) * r.grid.CellW)
		r.grid.DrawText(screen, l.Name, color.White, l.X-w/2, l.Y+float64(r.grid.CellH)/2)
	}
}

package render

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/world"
)

// SpriteSize is the edge length in pixels of body and star sprites.
func SpriteSize(tier game.Tier) int {
	if tier == game.TierLow {
		return 48
	}
	return 128
}

// Assets are the GPU images of one scene. They are created once, sized for
// the tier, and released together by Close.
type Assets struct {
	tier   game.Tier
	size   int
	bodies map[string]*ebiten.Image
	star   *ebiten.Image
	glow   *ebiten.Image
	pixel  *ebiten.Image
	closed bool
}

// NewAssets rasterizes every sprite the scene draws.
func NewAssets(star world.StarDef, bodies []game.CelestialBody, tier game.Tier, seed int64) *Assets {
	size := SpriteSize(tier)
	a := &Assets{
		tier:   tier,
		size:   size,
		bodies: make(map[string]*ebiten.Image, len(bodies)),
		star:   ebiten.NewImageFromImage(StarSprite(star, size, tier == game.TierHigh, seed)),
		glow:   ebiten.NewImageFromImage(GlowSprite(size / 2)),
		pixel:  ebiten.NewImage(1, 1),
	}
	a.pixel.Fill(color.White)
	for _, b := range bodies {
		a.bodies[b.ID] = ebiten.NewImageFromImage(BodySprite(b.BodyDef, size))
	}
	return a
}

// Size returns the sprite edge length.
func (a *Assets) Size() int { return a.size }

// Body returns the sprite of a body, or nil.
func (a *Assets) Body(id string) *ebiten.Image { return a.bodies[id] }

// Close deallocates every image exactly once. Later calls do nothing.
func (a *Assets) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	for id, img := range a.bodies {
		img.Deallocate()
		delete(a.bodies, id)
	}
	for _, img := range []*ebiten.Image{a.star, a.glow, a.pixel} {
		img.Deallocate()
	}
	a.star, a.glow, a.pixel = nil, nil, nil
	return nil
}

// lightDir is the fixed key light used to shade sprites, pointing from the
// upper left toward the viewer.
var lightDir = [3]float64{-0.45, -0.55, 0.7}

// BodySprite draws a shaded body of the given shape on a transparent square.
func BodySprite(b world.BodyDef, size int) *image.NRGBA {
	base := BodyColor(b)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	switch b.Shape {
	case world.ShapeTorus:
		drawTorus(img, base)
	case world.ShapePolyhedron:
		drawPolyhedron(img, base)
	default:
		drawSphere(img, base, 1)
	}
	return img
}

func shade(c color.RGBA, k float64) color.NRGBA {
	k = math.Max(0.15, math.Min(k, 1.2))
	ch := func(v uint8) uint8 { return uint8(math.Min(255, float64(v)*k)) }
	return color.NRGBA{ch(c.R), ch(c.G), ch(c.B), 255}
}

func lambert(nx, ny, nz float64) float64 {
	l := math.Sqrt(lightDir[0]*lightDir[0] + lightDir[1]*lightDir[1] + lightDir[2]*lightDir[2])
	return 0.2 + 0.9*math.Max(0, (nx*lightDir[0]+ny*lightDir[1]+nz*lightDir[2])/l)
}

// drawSphere fills a lit disc scaled to frac of the sprite.
func drawSphere(img *image.NRGBA, c color.RGBA, frac float64) {
	size := img.Bounds().Dx()
	r := float64(size) / 2 * frac
	mid := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			nx := (float64(x) + 0.5 - mid) / r
			ny := (float64(y) + 0.5 - mid) / r
			d := nx*nx + ny*ny
			if d > 1 {
				continue
			}
			img.SetNRGBA(x, y, shade(c, lambert(nx, ny, math.Sqrt(1-d))))
		}
	}
}

// drawTorus draws a tilted ring around a small core.
func drawTorus(img *image.NRGBA, c color.RGBA) {
	size := img.Bounds().Dx()
	mid := float64(size) / 2
	outer, inner := mid*0.95, mid*0.55
	const tilt = 0.45
	drawSphere(img, c, 0.35)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - mid
			dy := (float64(y) + 0.5 - mid) / tilt
			d := math.Hypot(dx, dy)
			if d < inner || d > outer {
				continue
			}
			// tube normal across the ring width
			t := (d-inner)/(outer-inner)*2 - 1
			k := lambert(dx/d*t, dy/d*t*tilt, math.Sqrt(math.Max(0, 1-t*t)))
			if dy < 0 && math.Abs(dx) < mid*0.35 {
				k *= 0.6 // far side behind the core
			}
			img.SetNRGBA(x, y, shade(c, k))
		}
	}
}

// drawPolyhedron draws a hexagon split into six flat-lit facets.
func drawPolyhedron(img *image.NRGBA, c color.RGBA) {
	size := img.Bounds().Dx()
	mid := float64(size) / 2
	r := mid * 0.95
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - mid
			dy := float64(y) + 0.5 - mid
			a := math.Atan2(dy, dx)
			sector := math.Floor((a + math.Pi) / (math.Pi / 3))
			center := sector*math.Pi/3 - math.Pi + math.Pi/6
			// distance to the hexagon edge along this facet's normal
			if dx*math.Cos(center)+dy*math.Sin(center) > r*math.Cos(math.Pi/6) {
				continue
			}
			nx, ny := math.Cos(center)*0.6, math.Sin(center)*0.6
			img.SetNRGBA(x, y, shade(c, lambert(nx, ny, 0.8)))
		}
	}
}

// StarSprite draws the central star: a turbulent noise surface when detailed,
// a plain radial gradient otherwise.
func StarSprite(s world.StarDef, size int, detailed bool, seed int64) *image.NRGBA {
	c := StarColor(s)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	mid := float64(size) / 2
	var noise *valueNoise
	if detailed {
		noise = newValueNoise(8, seed)
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			nx := (float64(x) + 0.5 - mid) / mid
			ny := (float64(y) + 0.5 - mid) / mid
			d := math.Hypot(nx, ny)
			if d > 1 {
				continue
			}
			k := 1.15 - 0.5*d
			if noise != nil {
				u := (nx + 1) / 2
				v := (ny + 1) / 2
				k *= 0.7 + 0.45*(0.6*noise.at(u, v)+0.4*noise.at(u*2.3, v*2.3))
			}
			img.SetNRGBA(x, y, shade(c, k))
		}
	}
	return img
}

// GlowSprite is a white disc whose alpha falls off quadratically from the center.
func GlowSprite(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	mid := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-mid, float64(y)+0.5-mid) / mid
			if d >= 1 {
				continue
			}
			a := (1 - d) * (1 - d)
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, uint8(255 * a)})
		}
	}
	return img
}

// valueNoise is a tiling lattice of random values sampled bilinearly.
type valueNoise struct {
	n    int
	grid []float64
}

func newValueNoise(n int, seed int64) *valueNoise {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x5eed))
	g := make([]float64, n*n)
	for i := range g {
		g[i] = rng.Float64()
	}
	return &valueNoise{n: n, grid: g}
}

func (v *valueNoise) cell(x, y int) float64 {
	x = ((x % v.n) + v.n) % v.n
	y = ((y % v.n) + v.n) % v.n
	return v.grid[y*v.n+x]
}

// at samples the noise at (u, v) in lattice periods, returning [0,1).
func (v *valueNoise) at(u, w float64) float64 {
	fx, fy := u*float64(v.n), w*float64(v.n)
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0
	tx = tx * tx * (3 - 2*tx)
	ty = ty * ty * (3 - 2*ty)
	ix, iy := int(x0), int(y0)
	a := v.cell(ix, iy) + (v.cell(ix+1, iy)-v.cell(ix, iy))*tx
	b := v.cell(ix, iy+1) + (v.cell(ix+1, iy+1)-v.cell(ix, iy+1))*tx
	return a + (b-a)*ty
}

package render

import (
	"math"

	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/vmath"
)

// projector maps world points into a w by h viewport for one frame.
type projector struct {
	vp      vmath.Mat4
	pos     vmath.Vec3
	fwd     vmath.Vec3
	w, h    float64
	tanHalf float64
}

func newProjector(cam game.Camera, w, h float64) projector {
	return projector{
		vp:      cam.ViewProjection(),
		pos:     cam.Pos,
		fwd:     cam.Forward(),
		w:       w,
		h:       h,
		tanHalf: math.Tan(cam.FOV * math.Pi / 360),
	}
}

// point returns the screen position and view depth of p.
func (p projector) point(at vmath.Vec3) (x, y, depth float64, ok bool) {
	x, y, ok = game.ScreenPoint(p.vp, at, p.w, p.h)
	if !ok {
		return 0, 0, 0, false
	}
	return x, y, at.Sub(p.pos).Dot(p.fwd), true
}

// radius returns the on-screen radius of a sphere of world radius r at depth.
func (p projector) radius(r, depth float64) float64 {
	if depth <= 0 || p.tanHalf <= 0 {
		return 0
	}
	return r * p.h / (2 * p.tanHalf * depth)
}

// orbitPoint is the point at angle a on a ring of the given radius in the
// orbital plane.
func orbitPoint(radius, a float64) vmath.Vec3 {
	return vmath.Vec3{X: radius * math.Cos(a), Z: radius * math.Sin(a)}
}

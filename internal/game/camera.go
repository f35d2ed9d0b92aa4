package game

import (
	"math"

	"github.com/orbithub/orbitscene/internal/vmath"
)

// Camera is a perspective camera looking from Pos at Target. Up is always
// world up, so the camera never rolls. FOV is the vertical field of view in degrees.
type Camera struct {
	Pos    vmath.Vec3
	Target vmath.Vec3
	FOV    float64
	Aspect float64
	Near   float64
	Far    float64
}

// Forward is the unit view direction.
func (c Camera) Forward() vmath.Vec3 {
	f := c.Target.Sub(c.Pos).Normalize()
	if f.LenSq() == 0 {
		return vmath.Vec3{Z: -1}
	}
	return f
}

// View returns the world-to-view matrix.
func (c Camera) View() vmath.Mat4 {
	return vmath.LookAt(c.Pos, c.Target, vmath.Up)
}

// Projection returns the perspective matrix.
func (c Camera) Projection() vmath.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return vmath.Perspective(c.FOV*math.Pi/180, aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c Camera) ViewProjection() vmath.Mat4 {
	return c.Projection().Mul(c.View())
}

// basis returns the camera right, up and forward unit vectors.
func (c Camera) basis() (right, up, fwd vmath.Vec3) {
	fwd = c.Forward()
	right = fwd.Cross(vmath.Up)
	if right.LenSq() < 1e-12 {
		right = fwd.Cross(vmath.Vec3{Z: 1})
	}
	right = right.Normalize()
	up = right.Cross(fwd)
	return right, up, fwd
}

// Ray returns the world-space ray through screen point (sx, sy) of a
// w by h viewport, with y growing downward.
func (c Camera) Ray(sx, sy, w, h float64) (origin, dir vmath.Vec3) {
	right, up, fwd := c.basis()
	nx := 2*sx/w - 1
	ny := 1 - 2*sy/h
	tanHalf := math.Tan(c.FOV * math.Pi / 360)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	dir = fwd.
		Add(right.Scale(nx * tanHalf * aspect)).
		Add(up.Scale(ny * tanHalf)).
		Normalize()
	return c.Pos, dir
}

// ScreenPoint projects p to pixel coordinates of a w by h viewport. ok is
// false when p lies outside the depth range of the view volume.
func ScreenPoint(vp vmath.Mat4, p vmath.Vec3, w, h float64) (x, y float64, ok bool) {
	ndc, cw := vp.Project(p)
	if cw <= 0 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, false
	}
	return (ndc.X + 1) / 2 * w, (1 - ndc.Y) / 2 * h, true
}

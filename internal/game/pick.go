package game

import (
	"math"

	"github.com/orbithub/orbitscene/internal/vmath"
)

// Pick returns the nearest body hit by the ray through screen point (sx, sy).
// Bodies are tested as spheres of Radius*scale.
func Pick(cam Camera, sx, sy, w, h float64, bodies []CelestialBody, scale float64) (string, bool) {
	if w <= 0 || h <= 0 {
		return "", false
	}
	if scale <= 0 {
		scale = 1
	}
	origin, dir := cam.Ray(sx, sy, w, h)

	best := ""
	bestT := math.Inf(1)
	for _, b := range bodies {
		t, ok := raySphere(origin, dir, b.Pos, b.Radius*scale)
		if ok && t < bestT {
			best, bestT = b.ID, t
		}
	}
	return best, best != ""
}

// raySphere returns the distance along a unit-direction ray to the first
// intersection in front of the origin.
func raySphere(origin, dir, center vmath.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.LenSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

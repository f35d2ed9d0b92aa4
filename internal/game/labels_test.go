package game

import (
	"testing"

	"github.com/orbithub/orbitscene/internal/config"
	"github.com/orbithub/orbitscene/internal/vmath"
	"github.com/orbithub/orbitscene/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCamera() Camera {
	return Camera{Pos: vmath.Vec3{Z: 100}, FOV: 60, Aspect: 2, Near: 0.1, Far: 500}
}

func bodiesAt(points ...vmath.Vec3) []CelestialBody {
	out := make([]CelestialBody, len(points))
	for i, p := range points {
		id := string(rune('a' + i))
		out[i] = CelestialBody{BodyDef: world.BodyDef{ID: id, Name: id, Radius: 2}, Pos: p}
	}
	return out
}

func TestLabelProjector_Project(t *testing.T) {
	bodies := bodiesAt(
		vmath.Vec3{},        // center of view
		vmath.Vec3{Z: 200},  // behind the camera
		vmath.Vec3{Z: -900}, // beyond the far plane
		vmath.Vec3{X: 20},   // right of center
	)
	p := NewLabelProjector(bodies, TierHigh, config.Default().Labels)

	labels := p.Project(testCamera(), bodies, 800, 400)
	require.Len(t, labels, 4)

	assert.True(t, labels[0].Visible)
	assert.InDelta(t, 400, labels[0].X, 1e-6)
	assert.InDelta(t, 200, labels[0].Y, 1e-6)

	assert.False(t, labels[1].Visible, "behind camera")
	assert.False(t, labels[2].Visible, "beyond far plane")

	assert.True(t, labels[3].Visible)
	assert.Greater(t, labels[3].X, 400.0)
	assert.InDelta(t, 200, labels[3].Y, 1e-6)
	assert.Equal(t, "d", labels[3].ID)
}

func TestLabelProjector_Cadence(t *testing.T) {
	bodies := bodiesAt(vmath.Vec3{})
	cfg := config.Default().Labels

	high := NewLabelProjector(bodies, TierHigh, cfg)
	low := NewLabelProjector(bodies, TierLow, cfg)
	assert.Equal(t, cfg.HighInterval, high.Interval())
	assert.Equal(t, cfg.LowInterval, low.Interval())
	assert.Greater(t, low.Interval(), high.Interval())

	count := func(p *LabelProjector, frames int) int {
		n := 0
		for range frames {
			if _, fresh := p.Update(testCamera(), bodies, 800, 400, false); fresh {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 30/cfg.HighInterval, count(high, 30))
	assert.Equal(t, 30/cfg.LowInterval, count(low, 30))
}

func TestLabelProjector_HiddenDuringWarp(t *testing.T) {
	bodies := bodiesAt(vmath.Vec3{}, vmath.Vec3{X: 10})
	p := NewLabelProjector(bodies, TierHigh, config.Default().Labels)

	labels, fresh := p.Update(testCamera(), bodies, 800, 400, false)
	require.True(t, fresh)
	require.True(t, labels[0].Visible)
	first := &labels[0]

	labels, fresh = p.Update(testCamera(), bodies, 800, 400, true)
	assert.False(t, fresh)
	for _, l := range labels {
		assert.False(t, l.Visible)
	}
	assert.Same(t, first, &labels[0], "labels are reused, not reallocated")

	// first frame after the warp projects again
	labels, fresh = p.Update(testCamera(), bodies, 800, 400, false)
	assert.True(t, fresh)
	assert.True(t, labels[0].Visible)
}

func TestCamera_RayAndPick(t *testing.T) {
	cam := testCamera()
	origin, dir := cam.Ray(400, 200, 800, 400)
	assert.Equal(t, cam.Pos, origin)
	assert.InDelta(t, 1, dir.Dot(cam.Forward()), 1e-12)

	bodies := bodiesAt(vmath.Vec3{}, vmath.Vec3{Z: 50}, vmath.Vec3{X: 30})

	id, ok := Pick(cam, 400, 200, 800, 400, bodies, 1)
	require.True(t, ok)
	assert.Equal(t, "b", id, "nearest body along the ray wins")

	x, y, visible := ScreenPoint(cam.ViewProjection(), bodies[2].Pos, 800, 400)
	require.True(t, visible)
	id, ok = Pick(cam, x, y, 800, 400, bodies, 1)
	require.True(t, ok)
	assert.Equal(t, "c", id)

	_, ok = Pick(cam, 5, 5, 800, 400, bodies, 1)
	assert.False(t, ok)
	_, ok = Pick(cam, 400, 200, 0, 0, bodies, 1)
	assert.False(t, ok)
}

func TestRaySphere(t *testing.T) {
	d, ok := raySphere(vmath.Vec3{}, vmath.Vec3{Z: -1}, vmath.Vec3{Z: -10}, 2)
	require.True(t, ok)
	assert.InDelta(t, 8, d, 1e-12)

	// origin inside the sphere hits the far side
	d, ok = raySphere(vmath.Vec3{}, vmath.Vec3{Z: -1}, vmath.Vec3{}, 2)
	require.True(t, ok)
	assert.InDelta(t, 2, d, 1e-12)

	_, ok = raySphere(vmath.Vec3{}, vmath.Vec3{Z: 1}, vmath.Vec3{Z: -10}, 2)
	assert.False(t, ok, "sphere behind the ray")
}

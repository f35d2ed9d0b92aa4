package game

import (
	"math"
	"testing"

	"github.com/orbithub/orbitscene/internal/config"
	"github.com/orbithub/orbitscene/internal/vmath"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticBodies map[string]vmath.Vec3

func (s staticBodies) PositionOf(id string) (vmath.Vec3, bool) {
	p, ok := s[id]
	return p, ok
}

const frame = 1.0 / 60

func TestCameraRig_WarpScenario(t *testing.T) {
	cfg := config.Default().Camera
	bodies := staticBodies{"X": {X: 50, Y: 0, Z: -20}}
	rig := NewCameraRig(cfg, bodies, zerolog.Nop())
	require.Equal(t, ModeOrbit, rig.Mode())

	start := rig.Camera()
	require.True(t, rig.Select("X"))

	tr, ok := rig.Transition()
	require.True(t, ok)
	assert.Equal(t, start.Pos, tr.FromPos)
	assert.Equal(t, start.Target, tr.FromTarget)
	assert.InDelta(t, 0, tr.Progress(rig.Now()), 1e-12)
	assert.InDelta(t, cfg.Standoff, tr.Dest.Dist(bodies["X"]), 1e-9)

	// approaching from the camera side
	assert.Less(t, tr.Dest.Dist(start.Pos), bodies["X"].Dist(start.Pos))

	var selected []string
	peakFOV := 0.0
	steps := int(math.Ceil(cfg.WarpDuration/frame)) + 10
	for range steps {
		if id, ok := rig.Update(frame, InputState{}); ok {
			selected = append(selected, id)
			assert.InDelta(t, cfg.Standoff, rig.Camera().Pos.Dist(bodies["X"]), 1e-9)
			assert.Equal(t, bodies["X"], rig.Camera().Target)
		}
		peakFOV = max(peakFOV, rig.Camera().FOV)
	}

	assert.Equal(t, []string{"X"}, selected)
	assert.Equal(t, ModeOrbit, rig.Mode())
	assert.False(t, rig.Warping())
	assert.InDelta(t, cfg.FOV, rig.Camera().FOV, 1e-12)
	assert.InDelta(t, cfg.FOV+cfg.FOVBump, peakFOV, 0.1)
}

func TestCameraRig_FirstStepStartsAtStartPose(t *testing.T) {
	rig := NewCameraRig(config.Default().Camera, staticBodies{"X": {X: 30}}, zerolog.Nop())
	start := rig.Camera()
	require.True(t, rig.Select("X"))

	rig.Update(1e-9, InputState{})
	assert.InDelta(t, 0, rig.Camera().Pos.Dist(start.Pos), 1e-6)
	assert.InDelta(t, 0, rig.Camera().Target.Dist(start.Target), 1e-6)
}

func TestCameraRig_ReentrantSelectIsNoop(t *testing.T) {
	bodies := staticBodies{"X": {X: 30}, "Y": {Z: 60}}
	rig := NewCameraRig(config.Default().Camera, bodies, zerolog.Nop())

	require.True(t, rig.Select("X"))
	rig.Update(0.5, InputState{})
	before, _ := rig.Transition()

	assert.False(t, rig.Select("Y"))
	assert.False(t, rig.Select("X"))
	after, ok := rig.Transition()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestCameraRig_UnresolvableTarget(t *testing.T) {
	bodies := staticBodies{"X": {X: 30}}
	rig := NewCameraRig(config.Default().Camera, bodies, zerolog.Nop())

	assert.False(t, rig.Select("missing"))
	assert.False(t, rig.Warping())

	require.True(t, rig.Select("X"))
	delete(bodies, "X")
	id, ok := rig.Update(frame, InputState{})
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.False(t, rig.Warping())
	assert.Equal(t, ModeOrbit, rig.Mode())
	assert.Equal(t, config.Default().Camera.FOV, rig.Camera().FOV)
}

func TestCameraRig_WarpFollowsMovingBody(t *testing.T) {
	cfg := config.Default()
	cat := singleBodyCatalog("B", 100, 0.01)
	field := NewOrbitField(cat, cfg.Orbit, 1, zerolog.Nop())
	rig := NewCameraRig(cfg.Camera, field, zerolog.Nop())

	require.True(t, rig.Select("B"))
	for range 400 {
		field.Advance(1)
		if _, ok := rig.Update(frame, InputState{}); ok {
			pos, _ := field.PositionOf("B")
			assert.InDelta(t, cfg.Camera.Standoff, rig.Camera().Pos.Dist(pos), 1e-9)
			return
		}
	}
	t.Fatal("warp never finished")
}

func TestCameraRig_RestoresPreviousMode(t *testing.T) {
	rig := NewCameraRig(config.Default().Camera, staticBodies{"X": {X: 30}}, zerolog.Nop())
	rig.SetMode(ModeFreeFly)
	require.True(t, rig.Select("X"))
	assert.Equal(t, ModeFreeFly, rig.Mode())

	for range 300 {
		rig.Update(frame, InputState{})
	}
	assert.False(t, rig.Warping())
	assert.Equal(t, ModeFreeFly, rig.Mode())

	// a mode command during a warp becomes the mode restored afterwards
	require.True(t, rig.Select("X"))
	rig.SetMode(ModeDirectory)
	assert.True(t, rig.Warping())
	for range 300 {
		rig.Update(frame, InputState{})
	}
	assert.Equal(t, ModeDirectory, rig.Mode())
}

func azimuthOf(p vmath.Vec3) float64 { return vmath.WrapAngle(math.Atan2(p.Z, p.X)) }

func TestCameraRig_OrbitMode(t *testing.T) {
	cfg := config.Default().Camera
	rig := NewCameraRig(cfg, staticBodies{}, zerolog.Nop())
	assert.InDelta(t, 0, azimuthOf(rig.Camera().Pos), 1e-9)
	assert.Equal(t, vmath.Vec3{}, rig.Camera().Target)

	rig.Update(1, InputState{})
	assert.InDelta(t, cfg.OrbitRate, azimuthOf(rig.Camera().Pos), 1e-9)

	// look input replaces auto rotation for that frame
	rig.Update(1, InputState{LookDX: 10})
	assert.InDelta(t, cfg.OrbitRate+10*cfg.LookSpeed, azimuthOf(rig.Camera().Pos), 1e-9)

	// and auto rotation resumes at once
	rig.Update(1, InputState{})
	assert.InDelta(t, 2*cfg.OrbitRate+10*cfg.LookSpeed, azimuthOf(rig.Camera().Pos), 1e-9)

	dist := math.Hypot(cfg.OrbitRadius, cfg.OrbitHeight)
	assert.InDelta(t, dist, rig.Camera().Pos.Len(), 1e-9)
}

func TestCameraRig_DirectoryIgnoresLook(t *testing.T) {
	cfg := config.Default().Camera
	rig := NewCameraRig(cfg, staticBodies{}, zerolog.Nop())
	rig.SetMode(ModeDirectory)
	before := rig.Camera().Pos

	rig.Update(1, InputState{LookDX: 100, LookDY: -50, LookX: 1})
	assert.InDelta(t, cfg.DirectoryRate, azimuthOf(rig.Camera().Pos), 1e-9)
	assert.InDelta(t, before.Y, rig.Camera().Pos.Y, 1e-9)
}

func TestCameraRig_FreeFly(t *testing.T) {
	cfg := config.Default().Camera
	rig := NewCameraRig(cfg, staticBodies{}, zerolog.Nop())
	start := rig.Camera()
	rig.SetMode(ModeFreeFly)

	// switching keeps the pose and the view direction
	assert.Equal(t, start.Pos, rig.Camera().Pos)
	assert.InDelta(t, 1, rig.Camera().Forward().Dot(start.Forward()), 1e-9)

	fwd := rig.Camera().Forward()
	rig.Update(0.5, InputState{Forward: true})
	moved := rig.Camera().Pos.Sub(start.Pos)
	assert.InDelta(t, cfg.MoveSpeed*0.5, moved.Len(), 1e-9)
	assert.InDelta(t, 1, moved.Normalize().Dot(fwd), 1e-9)

	// diagonal movement is not faster
	p := rig.Camera().Pos
	rig.Update(0.5, InputState{Forward: true, Right: true, Up: true})
	assert.InDelta(t, cfg.MoveSpeed*0.5, rig.Camera().Pos.Dist(p), 1e-9)

	p = rig.Camera().Pos
	rig.Update(0.5, InputState{MoveX: 1})
	assert.InDelta(t, cfg.MoveSpeed*0.5, rig.Camera().Pos.Dist(p), 1e-9)
}

func TestCameraRig_FreeFlyLookMomentum(t *testing.T) {
	cfg := config.Default().Camera
	rig := NewCameraRig(cfg, staticBodies{}, zerolog.Nop())
	rig.SetMode(ModeFreeFly)

	rig.Update(frame, InputState{LookDX: 40, LookDY: 10})
	f1 := rig.Camera().Forward()

	// momentum keeps turning without input
	rig.Update(frame, InputState{})
	f2 := rig.Camera().Forward()
	assert.Less(t, f1.Dot(f2), 1.0)

	// and decays toward zero
	for range 600 {
		rig.Update(frame, InputState{})
	}
	a := rig.Camera().Forward()
	rig.Update(frame, InputState{})
	assert.InDelta(t, 1, a.Dot(rig.Camera().Forward()), 1e-9)

	// roll stays zero: the right vector is horizontal
	right, up, _ := rig.Camera().basis()
	assert.InDelta(t, 0, right.Y, 1e-12)
	assert.GreaterOrEqual(t, up.Y, 0.0)
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("pilot")
	assert.True(t, ok)
	assert.Equal(t, ModeFreeFly, m)
	m, ok = ParseMode("directory")
	assert.True(t, ok)
	assert.Equal(t, "directory", m.String())
	_, ok = ParseMode("warp")
	assert.False(t, ok)
}

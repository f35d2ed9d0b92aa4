package game

import (
	"math"

	"github.com/orbithub/orbitscene/internal/config"
	"github.com/orbithub/orbitscene/internal/vmath"
	"github.com/rs/zerolog"
)

// CameraMode is the active navigation behavior.
type CameraMode uint8

const (
	ModeOrbit CameraMode = iota
	ModeFreeFly
	ModeDirectory
)

func (m CameraMode) String() string {
	switch m {
	case ModeOrbit:
		return "orbit"
	case ModeFreeFly:
		return "freefly"
	case ModeDirectory:
		return "directory"
	}
	return "unknown"
}

// ParseMode maps a mode name to a CameraMode.
func ParseMode(s string) (CameraMode, bool) {
	switch s {
	case "orbit", "cinematic":
		return ModeOrbit, true
	case "freefly", "pilot":
		return ModeFreeFly, true
	case "directory":
		return ModeDirectory, true
	}
	return ModeOrbit, false
}

const (
	maxElevation    = 1.45 // radians, keeps orbit clear of the poles
	maxPitch        = math.Pi/2 - 0.01
	analogLookScale = 8 // look-delta units per frame at full stick
	lookLead        = 3 // the look target reaches the body at t = 1/lookLead
)

// BodyLocator resolves live body positions by id.
type BodyLocator interface {
	PositionOf(id string) (vmath.Vec3, bool)
}

// InputState is the latched navigation input consumed once per tick.
type InputState struct {
	Forward, Back, Left, Right, Up, Down bool

	MoveX, MoveY float64 // analog movement, each in [-1, 1]
	LookDX       float64 // look delta since the last tick
	LookDY       float64
	LookX, LookY float64 // analog look, each in [-1, 1]
}

func (in InputState) look() (dx, dy float64) {
	return in.LookDX + in.LookX*analogLookScale, in.LookDY + in.LookY*analogLookScale
}

// WarpTransition is the scripted flight to a selected body. The destination
// keeps a fixed offset from the body, so it follows the body while it moves.
type WarpTransition struct {
	Active     bool
	Start      float64 // rig clock, seconds
	Duration   float64
	FromPos    vmath.Vec3
	FromTarget vmath.Vec3
	Offset     vmath.Vec3 // destination relative to the body
	Dest       vmath.Vec3 // destination at trigger time
	Body       string
	Prev       CameraMode
}

// Progress returns the clamped transition parameter at clock time now.
func (w WarpTransition) Progress(now float64) float64 {
	if w.Duration <= 0 {
		return 1
	}
	return vmath.Clamp01((now - w.Start) / w.Duration)
}

// CameraRig owns the camera pose and runs the navigation modes and warp.
type CameraRig struct {
	cfg    config.CameraConfig
	bodies BodyLocator
	log    zerolog.Logger

	mode CameraMode
	cam  Camera
	warp WarpTransition
	now  float64

	// orbit and directory
	azimuth, elevation, distance float64

	// free fly
	yaw, pitch       float64
	yawVel, pitchVel float64
}

// NewCameraRig starts in Orbit mode at the configured radius and height.
func NewCameraRig(cfg config.CameraConfig, bodies BodyLocator, log zerolog.Logger) *CameraRig {
	r := &CameraRig{
		cfg:       cfg,
		bodies:    bodies,
		log:       log,
		mode:      ModeOrbit,
		distance:  math.Hypot(cfg.OrbitRadius, cfg.OrbitHeight),
		elevation: math.Atan2(cfg.OrbitHeight, cfg.OrbitRadius),
		cam: Camera{
			FOV:    cfg.FOV,
			Aspect: 16.0 / 9.0,
			Near:   cfg.Near,
			Far:    cfg.Far,
		},
	}
	r.placeOrbit()
	return r
}

// Mode returns the navigation mode. During a warp this is the mode that
// will resume afterwards.
func (r *CameraRig) Mode() CameraMode {
	if r.warp.Active {
		return r.warp.Prev
	}
	return r.mode
}

// Warping reports whether a warp is in progress.
func (r *CameraRig) Warping() bool { return r.warp.Active }

// Transition returns the current warp record.
func (r *CameraRig) Transition() (WarpTransition, bool) { return r.warp, r.warp.Active }

// Camera returns the current camera.
func (r *CameraRig) Camera() Camera { return r.cam }

// Now returns the rig clock in seconds.
func (r *CameraRig) Now() float64 { return r.now }

// SetAspect updates the viewport aspect ratio.
func (r *CameraRig) SetAspect(aspect float64) {
	if aspect > 0 {
		r.cam.Aspect = aspect
	}
}

// SetMode switches navigation mode. Mode parameters are re-derived from the
// current pose so the view does not jump. During a warp the new mode is the
// one restored when the warp ends.
func (r *CameraRig) SetMode(m CameraMode) {
	if r.warp.Active {
		r.warp.Prev = m
		return
	}
	if m == r.mode {
		return
	}
	r.log.Debug().Stringer("from", r.mode).Stringer("to", m).Msg("camera mode changed")
	r.mode = m
	r.syncFromPose()
}

func (r *CameraRig) syncFromPose() {
	switch r.mode {
	case ModeOrbit, ModeDirectory:
		d := r.cam.Pos.Len()
		if d < 1e-6 {
			r.distance = math.Hypot(r.cfg.OrbitRadius, r.cfg.OrbitHeight)
			r.elevation = math.Atan2(r.cfg.OrbitHeight, r.cfg.OrbitRadius)
		} else {
			r.distance = d
			r.elevation = vmath.Clamp(math.Asin(r.cam.Pos.Y/d), -maxElevation, maxElevation)
			r.azimuth = math.Atan2(r.cam.Pos.Z, r.cam.Pos.X)
		}
		r.placeOrbit()
	case ModeFreeFly:
		f := r.cam.Forward()
		r.yaw = math.Atan2(f.Z, f.X)
		r.pitch = vmath.Clamp(math.Asin(vmath.Clamp(f.Y, -1, 1)), -maxPitch, maxPitch)
		r.yawVel, r.pitchVel = 0, 0
		r.placeFreeFly()
	}
}

// Select starts a warp to body id. It is a no-op returning false while a
// warp is already active or when the body cannot be resolved.
func (r *CameraRig) Select(id string) bool {
	if r.warp.Active {
		return false
	}
	bodyPos, ok := r.bodies.PositionOf(id)
	if !ok {
		r.log.Debug().Str("body", id).Msg("warp target not found")
		return false
	}

	away := r.cam.Pos.Sub(bodyPos)
	if away.LenSq() < 1e-12 {
		away = vmath.Vec3{Y: 0.3, Z: 1}
	}
	offset := away.Normalize().Scale(r.cfg.Standoff)

	r.warp = WarpTransition{
		Active:     true,
		Start:      r.now,
		Duration:   r.cfg.WarpDuration,
		FromPos:    r.cam.Pos,
		FromTarget: r.cam.Target,
		Offset:     offset,
		Dest:       bodyPos.Add(offset),
		Body:       id,
		Prev:       r.mode,
	}
	r.log.Debug().Str("body", id).Stringer("mode", r.mode).Msg("warp started")
	return true
}

// Cancel drops an active warp without emitting a selection.
func (r *CameraRig) Cancel() {
	if !r.warp.Active {
		return
	}
	r.abortWarp()
}

func (r *CameraRig) abortWarp() {
	r.mode = r.warp.Prev
	r.warp = WarpTransition{}
	r.cam.FOV = r.cfg.FOV
	r.syncFromPose()
}

// Update advances the rig by dt seconds using the latched input. When a
// warp completes it returns the selected body id and true.
func (r *CameraRig) Update(dt float64, in InputState) (string, bool) {
	r.now += dt
	if r.warp.Active {
		return r.updateWarp()
	}

	switch r.mode {
	case ModeOrbit:
		dx, dy := in.look()
		if dx != 0 || dy != 0 {
			r.azimuth += dx * r.cfg.LookSpeed
			r.elevation = vmath.Clamp(r.elevation+dy*r.cfg.LookSpeed, -maxElevation, maxElevation)
		} else {
			r.azimuth += r.cfg.OrbitRate * dt
		}
		r.placeOrbit()

	case ModeDirectory:
		r.azimuth += r.cfg.DirectoryRate * dt
		r.placeOrbit()

	case ModeFreeFly:
		r.updateFreeFly(dt, in)
	}
	return "", false
}

func (r *CameraRig) placeOrbit() {
	r.azimuth = vmath.WrapAngle(r.azimuth)
	ce := math.Cos(r.elevation)
	r.cam.Pos = vmath.Vec3{
		X: r.distance * ce * math.Cos(r.azimuth),
		Y: r.distance * math.Sin(r.elevation),
		Z: r.distance * ce * math.Sin(r.azimuth),
	}
	r.cam.Target = vmath.Vec3{}
}

func (r *CameraRig) updateFreeFly(dt float64, in InputState) {
	dx, dy := in.look()
	r.yawVel += dx * r.cfg.LookSpeed
	r.pitchVel -= dy * r.cfg.LookSpeed

	r.yaw = vmath.WrapAngle(r.yaw + r.yawVel*dt)
	r.pitch = vmath.Clamp(r.pitch+r.pitchVel*dt, -maxPitch, maxPitch)

	decay := math.Pow(r.cfg.LookDecay, dt)
	r.yawVel *= decay
	r.pitchVel *= decay

	fwd := r.freeFlyForward()
	right := fwd.Cross(vmath.Up).Normalize()

	var move vmath.Vec3
	if in.Forward {
		move = move.Add(fwd)
	}
	if in.Back {
		move = move.Sub(fwd)
	}
	if in.Right {
		move = move.Add(right)
	}
	if in.Left {
		move = move.Sub(right)
	}
	if in.Up {
		move = move.Add(vmath.Up)
	}
	if in.Down {
		move = move.Sub(vmath.Up)
	}
	move = move.Add(fwd.Scale(in.MoveY)).Add(right.Scale(in.MoveX))
	move = move.ClampLen(1)

	r.cam.Pos = r.cam.Pos.Add(move.Scale(r.cfg.MoveSpeed * dt))
	r.placeFreeFly()
}

func (r *CameraRig) freeFlyForward() vmath.Vec3 {
	cp := math.Cos(r.pitch)
	return vmath.Vec3{X: cp * math.Cos(r.yaw), Y: math.Sin(r.pitch), Z: cp * math.Sin(r.yaw)}
}

func (r *CameraRig) placeFreeFly() {
	r.cam.Target = r.cam.Pos.Add(r.freeFlyForward())
}

func (r *CameraRig) updateWarp() (string, bool) {
	w := r.warp
	bodyPos, ok := r.bodies.PositionOf(w.Body)
	if !ok {
		r.log.Debug().Str("body", w.Body).Msg("warp aborted")
		r.abortWarp()
		return "", false
	}

	t := w.Progress(r.now)
	dest := bodyPos.Add(w.Offset)
	r.cam.Pos = w.FromPos.Lerp(dest, vmath.EaseInOutCubic(t))
	r.cam.Target = w.FromTarget.Lerp(bodyPos, vmath.EaseInOutCubic(t*lookLead))
	r.cam.FOV = r.cfg.FOV + r.cfg.FOVBump*vmath.SineBump(t)

	if t < 1 {
		return "", false
	}

	r.cam.Pos = dest
	r.cam.Target = bodyPos
	r.cam.FOV = r.cfg.FOV
	r.mode = w.Prev
	r.warp = WarpTransition{}
	r.syncAfterWarp()
	r.log.Debug().Str("body", w.Body).Stringer("mode", r.mode).Msg("warp finished")
	return w.Body, true
}

// syncAfterWarp re-derives mode parameters without moving the camera off the
// arrival pose. Orbit and directory keep their look-at on the origin from the
// next update on.
func (r *CameraRig) syncAfterWarp() {
	pos, target := r.cam.Pos, r.cam.Target
	r.syncFromPose()
	r.cam.Pos, r.cam.Target = pos, target
	if r.mode == ModeFreeFly {
		f := target.Sub(pos).Normalize()
		r.yaw = math.Atan2(f.Z, f.X)
		r.pitch = vmath.Clamp(math.Asin(vmath.Clamp(f.Y, -1, 1)), -maxPitch, maxPitch)
	}
}

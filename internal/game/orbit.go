package game

import (
	"math"
	"math/rand/v2"

	"github.com/orbithub/orbitscene/internal/config"
	"github.com/orbithub/orbitscene/internal/vmath"
	"github.com/orbithub/orbitscene/internal/world"
	"github.com/rs/zerolog"
)

// CelestialBody is a navigable body orbiting the scene origin. Pos is derived
// from Phase on every advance and is not set independently.
type CelestialBody struct {
	world.BodyDef
	Phase float64
	Pos   vmath.Vec3
}

// OrbitField owns the body registry and advances orbital motion.
type OrbitField struct {
	bodies []CelestialBody
	index  map[string]int
	star   world.StarDef

	timeScale float64
	bobAmp    float64
	bobFreq   float64
	paused    bool

	log zerolog.Logger
}

// NewOrbitField builds the registry from a catalog. With scatter enabled the
// starting phases are drawn from seed, otherwise every body starts at phase 0.
func NewOrbitField(cat *world.Catalog, cfg config.OrbitConfig, seed int64, log zerolog.Logger) *OrbitField {
	f := &OrbitField{
		bodies:    make([]CelestialBody, len(cat.Bodies)),
		index:     make(map[string]int, len(cat.Bodies)),
		star:      cat.Star,
		timeScale: cfg.TimeScale,
		bobAmp:    cfg.BobAmplitude,
		bobFreq:   cfg.BobFrequency,
		log:       log,
	}

	rng := rand.New(rand.NewPCG(uint64(seed), 0x0b17))
	for i, def := range cat.Bodies {
		phase := 0.0
		if cfg.Scatter {
			phase = rng.Float64() * 2 * math.Pi
		}
		f.bodies[i] = CelestialBody{BodyDef: def, Phase: phase}
		f.place(&f.bodies[i])
		f.index[def.ID] = i
	}
	f.log.Debug().Int("bodies", len(f.bodies)).Msg("orbit field ready")
	return f
}

// Advance moves every body by speed*dt*timeScale radians. dt is in frames.
// Nothing moves while paused.
func (f *OrbitField) Advance(dt float64) {
	if f.paused {
		return
	}
	for i := range f.bodies {
		b := &f.bodies[i]
		b.Phase = vmath.WrapAngle(b.Phase + b.Speed*dt*f.timeScale)
		f.place(b)
	}
}

func (f *OrbitField) place(b *CelestialBody) {
	b.Pos = vmath.Vec3{
		X: b.Distance * math.Cos(b.Phase),
		Y: f.bobAmp * math.Sin(b.Phase*f.bobFreq),
		Z: b.Distance * math.Sin(b.Phase),
	}
}

// PositionOf returns the current position of a body.
func (f *OrbitField) PositionOf(id string) (vmath.Vec3, bool) {
	b, ok := f.Body(id)
	if !ok {
		return vmath.Vec3{}, false
	}
	return b.Pos, true
}

// Phase returns a body's orbital angle in [0, 2π).
func (f *OrbitField) Phase(id string) (float64, bool) {
	b, ok := f.Body(id)
	if !ok {
		return 0, false
	}
	return b.Phase, true
}

// Body returns a copy of the named body.
func (f *OrbitField) Body(id string) (CelestialBody, bool) {
	i, ok := f.index[id]
	if !ok {
		return CelestialBody{}, false
	}
	return f.bodies[i], true
}

// Bodies returns the registry in catalog order. Callers must not modify it.
func (f *OrbitField) Bodies() []CelestialBody { return f.bodies }

// Star returns the central star definition.
func (f *OrbitField) Star() world.StarDef { return f.star }

// SetPaused freezes or resumes orbital motion.
func (f *OrbitField) SetPaused(paused bool) {
	if f.paused != paused {
		f.log.Debug().Bool("paused", paused).Msg("orbit field pause changed")
	}
	f.paused = paused
}

// Paused reports whether motion is frozen.
func (f *OrbitField) Paused() bool { return f.paused }

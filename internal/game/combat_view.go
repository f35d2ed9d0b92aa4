package game

import "github.com/orbithub/orbitscene/internal/vmath"

// ShotInfo describes a projectile for drawing. Fade runs from 1 to 0 over a
// beam's display time and stays 1 for other kinds.
type ShotInfo struct {
	Kind    ProjectileKind
	Faction Faction
	Pos     vmath.Vec3
	Forward vmath.Vec3
	From    vmath.Vec3
	To      vmath.Vec3
	Fade    float64
	Light   bool
}

// BlastInfo describes an explosion; Progress is Age/MaxAge.
type BlastInfo struct {
	Pos      vmath.Vec3
	Progress float64
	Light    bool
}

// ParticleInfo describes a debris fragment or trail puff; Fade is remaining/total life.
type ParticleInfo struct {
	Pos  vmath.Vec3
	Rot  vmath.Vec3
	Fade float64
}

// CombatView is a reusable frame snapshot of the combat world.
type CombatView struct {
	Crafts []CraftInfo
	Shots  []ShotInfo
	Blasts []BlastInfo
	Debris []ParticleInfo
	Trails []ParticleInfo
}

// View fills v with the current state, reusing its slices.
func (s *EntitySimulator) View(v *CombatView) {
	v.Crafts = v.Crafts[:0]
	v.Shots = v.Shots[:0]
	v.Blasts = v.Blasts[:0]
	v.Debris = v.Debris[:0]
	v.Trails = v.Trails[:0]

	cq := s.craftView.Query()
	for cq.Next() {
		pose, c := cq.Get()
		v.Crafts = append(v.Crafts, CraftInfo{
			Entity: cq.Entity(), Faction: c.Faction, HP: c.HP,
			Pos: pose.Pos, Forward: pose.Forward, Target: c.Target,
		})
	}

	pq := s.projView.Query()
	for pq.Next() {
		pose, p := pq.Get()
		alpha := 1.0
		if p.Kind == ProjectileBeam {
			alpha = fade(p.Life, s.cfg.BeamDuration)
		}
		v.Shots = append(v.Shots, ShotInfo{
			Kind: p.Kind, Faction: p.Faction, Pos: pose.Pos, Forward: pose.Forward,
			From: p.From, To: p.To, Fade: alpha, Light: p.Light,
		})
	}

	eq := s.explView.Query()
	for eq.Next() {
		pose, x := eq.Get()
		progress := 1.0
		if x.MaxAge > 0 {
			progress = vmath.Clamp01(x.Age / x.MaxAge)
		}
		v.Blasts = append(v.Blasts, BlastInfo{Pos: pose.Pos, Progress: progress, Light: x.Light})
	}

	dq := s.debrisView.Query()
	for dq.Next() {
		pose, d := dq.Get()
		v.Debris = append(v.Debris, ParticleInfo{Pos: pose.Pos, Rot: d.Rot, Fade: fade(d.Life, d.MaxLife)})
	}

	tq := s.trailView.Query()
	for tq.Next() {
		pose, tr := tq.Get()
		v.Trails = append(v.Trails, ParticleInfo{Pos: pose.Pos, Fade: fade(tr.Life, tr.MaxLife)})
	}
}

func fade(life, maxLife float64) float64 {
	if maxLife <= 0 {
		return 0
	}
	return vmath.Clamp01(life / maxLife)
}

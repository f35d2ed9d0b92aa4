package game

import (
	"math"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"github.com/orbithub/orbitscene/internal/config"
	"github.com/orbithub/orbitscene/internal/vmath"
	"github.com/rs/zerolog"
)

// craftBobRate is the bob angular rate in radians per frame.
const craftBobRate = 0.05

// CraftInfo is a read-only snapshot of one living craft.
type CraftInfo struct {
	Entity  ecs.Entity
	Faction Faction
	HP      int
	Pos     vmath.Vec3
	Forward vmath.Vec3
	Target  ecs.Entity
}

// Effects counts the transient entities currently alive.
type Effects struct {
	Beams      int
	Ballistic  int
	Homing     int
	Explosions int
	Debris     int
	Trails     int
}

type respawn struct {
	faction Faction
	wait    float64
}

// EntitySimulator runs the autonomous combat between friendly and hostile
// craft. All state lives in an ark world; update passes run in a fixed order
// and never hold a query open while entities are created or removed.
type EntitySimulator struct {
	cfg     config.CombatConfig
	tier    Tier
	rng     *rand.Rand
	log     zerolog.Logger
	metrics *sceneMetrics

	world       *ecs.World
	crafts      *ecs.Map2[Pose, Craft]
	projectiles *ecs.Map2[Pose, Projectile]
	explosions  *ecs.Map2[Pose, Explosion]
	debris      *ecs.Map2[Pose, Debris]
	trails      *ecs.Map2[Pose, Trail]

	poseMap   *ecs.Map[Pose]
	craftMap  *ecs.Map[Craft]
	projMap   *ecs.Map[Projectile]
	explMap   *ecs.Map[Explosion]
	debrisMap *ecs.Map[Debris]
	trailMap  *ecs.Map[Trail]

	craftFilter  *ecs.Filter1[Craft]
	craftView    *ecs.Filter2[Pose, Craft]
	projView     *ecs.Filter2[Pose, Projectile]
	explView     *ecs.Filter2[Pose, Explosion]
	debrisView   *ecs.Filter2[Pose, Debris]
	trailView    *ecs.Filter2[Pose, Trail]
	projFilter   *ecs.Filter1[Projectile]
	explFilter   *ecs.Filter1[Explosion]
	debrisFilter *ecs.Filter1[Debris]
	trailFilter  *ecs.Filter1[Trail]

	pending []respawn
	scratch []ecs.Entity
	tick    uint64
	elapsed float64
	deaths  int
	onDeath []func(CraftInfo)
}

// NewEntitySimulator creates the combat world and spawns the starting roster.
func NewEntitySimulator(cfg config.CombatConfig, tier Tier, seed int64, log zerolog.Logger) *EntitySimulator {
	w := ecs.NewWorld(256)
	s := &EntitySimulator{
		cfg:  cfg,
		tier: tier,
		rng:  rand.New(rand.NewPCG(uint64(seed), 0xc0ba7)),
		log:  log,

		world:       w,
		crafts:      ecs.NewMap2[Pose, Craft](w),
		projectiles: ecs.NewMap2[Pose, Projectile](w),
		explosions:  ecs.NewMap2[Pose, Explosion](w),
		debris:      ecs.NewMap2[Pose, Debris](w),
		trails:      ecs.NewMap2[Pose, Trail](w),

		poseMap:   ecs.NewMap[Pose](w),
		craftMap:  ecs.NewMap[Craft](w),
		projMap:   ecs.NewMap[Projectile](w),
		explMap:   ecs.NewMap[Explosion](w),
		debrisMap: ecs.NewMap[Debris](w),
		trailMap:  ecs.NewMap[Trail](w),

		craftFilter:  ecs.NewFilter1[Craft](w),
		craftView:    ecs.NewFilter2[Pose, Craft](w),
		projView:     ecs.NewFilter2[Pose, Projectile](w),
		explView:     ecs.NewFilter2[Pose, Explosion](w),
		debrisView:   ecs.NewFilter2[Pose, Debris](w),
		trailView:    ecs.NewFilter2[Pose, Trail](w),
		projFilter:   ecs.NewFilter1[Projectile](w),
		explFilter:   ecs.NewFilter1[Explosion](w),
		debrisFilter: ecs.NewFilter1[Debris](w),
		trailFilter:  ecs.NewFilter1[Trail](w),
	}

	for range cfg.CraftPerFaction {
		s.spawnCraft(FactionFriendly)
		s.spawnCraft(FactionHostile)
	}
	return s
}

// OnDeath registers a callback invoked synchronously whenever a craft dies.
func (s *EntitySimulator) OnDeath(fn func(CraftInfo)) {
	s.onDeath = append(s.onDeath, fn)
}

// Advance runs one simulation step of dt frames: respawns, craft, projectiles,
// explosions, debris and trails, in that order.
func (s *EntitySimulator) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	s.tick++
	s.elapsed += dt

	s.tickRespawns(dt)
	s.tickCraft(dt)
	s.tickProjectiles(dt)
	s.tickExplosions(dt)
	s.tickDebris(dt)
	s.tickTrails(dt)
}

func (s *EntitySimulator) tickRespawns(dt float64) {
	kept := s.pending[:0]
	for _, r := range s.pending {
		r.wait -= dt
		if r.wait <= 0 {
			e := s.spawnCraft(r.faction)
			s.log.Debug().Stringer("faction", r.faction).Uint32("entity", e.ID()).Msg("craft respawned")
			continue
		}
		kept = append(kept, r)
	}
	s.pending = kept
}

func (s *EntitySimulator) tickCraft(dt float64) {
	s.scratch = collect(s.craftFilter, s.scratch)
	roster := s.scratch

	for _, e := range roster {
		if !s.world.Alive(e) {
			continue
		}
		pose := s.poseMap.Get(e)
		c := s.craftMap.Get(e)
		s.moveCraft(pose, c, dt)

		c.Cooldown -= dt
		if c.Cooldown > 0 {
			continue
		}

		target, targetPos, ok := s.resolveTarget(e, pose.Pos, c, roster)
		if !ok {
			c.Cooldown = s.cfg.CooldownMin
			continue
		}
		s.fire(pose.Pos, c.Faction, target, targetPos)

		// firing may have created or removed entities, refetch
		if s.world.Alive(e) {
			s.craftMap.Get(e).Cooldown = s.randomCooldown()
		}
	}
}

func (s *EntitySimulator) moveCraft(pose *Pose, c *Craft, dt float64) {
	dir := 1.0
	if c.Faction == FactionHostile {
		dir = -1
	}
	c.angle = vmath.WrapAngle(c.angle + dir*s.cfg.CraftSpeed*dt)

	next := vmath.Vec3{
		X: c.radius * math.Cos(c.angle),
		Y: c.height + s.cfg.CraftBob*math.Sin(s.elapsed*craftBobRate+c.bob),
		Z: c.radius * math.Sin(c.angle),
	}
	if step := next.Sub(pose.Pos); step.LenSq() > 1e-12 {
		pose.Forward = step.Normalize()
	}
	pose.Pos = next
}

// resolveTarget keeps the current target while it is alive and in range,
// otherwise picks the nearest living opponent from roster.
func (s *EntitySimulator) resolveTarget(self ecs.Entity, pos vmath.Vec3, c *Craft, roster []ecs.Entity) (ecs.Entity, vmath.Vec3, bool) {
	if s.isOpponent(c.Target, c.Faction) {
		tp := s.poseMap.Get(c.Target).Pos
		if tp.Dist(pos) <= s.cfg.EngageRange {
			return c.Target, tp, true
		}
	}

	var best ecs.Entity
	bestDist := math.Inf(1)
	for _, o := range roster {
		if o == self || !s.isOpponent(o, c.Faction) {
			continue
		}
		if d := s.poseMap.Get(o).Pos.Dist(pos); d < bestDist {
			best, bestDist = o, d
		}
	}
	c.Target = best
	if best.IsZero() || bestDist > s.cfg.EngageRange {
		return ecs.Entity{}, vmath.Vec3{}, false
	}
	return best, s.poseMap.Get(best).Pos, true
}

// fire picks the weapon for one shot: beam up close, otherwise homing with
// HomingChance, otherwise ballistic.
func (s *EntitySimulator) fire(from vmath.Vec3, faction Faction, target ecs.Entity, to vmath.Vec3) {
	dist := from.Dist(to)
	dir := to.Sub(from).Normalize()

	switch {
	case dist < s.cfg.NearThreshold:
		s.projectiles.NewEntity(
			&Pose{Pos: from, Forward: dir},
			&Projectile{Kind: ProjectileBeam, Faction: faction, Life: s.cfg.BeamDuration, From: from, To: to},
		)
		s.metrics.shot(ProjectileBeam)
		s.Damage(target, s.cfg.BeamDamage)

	case s.rng.Float64() < s.cfg.HomingChance:
		s.projectiles.NewEntity(
			&Pose{Pos: from, Forward: dir},
			&Projectile{
				Kind:    ProjectileHoming,
				Faction: faction,
				Vel:     dir.Scale(s.cfg.HomingSpeed),
				Life:    s.cfg.HomingLife,
				Target:  target,
				Light:   s.tier == TierHigh,
			},
		)
		s.metrics.shot(ProjectileHoming)

	default:
		life := s.cfg.BeamDuration
		if s.cfg.BallisticSpeed > 0 {
			life = dist / s.cfg.BallisticSpeed
		}
		s.projectiles.NewEntity(
			&Pose{Pos: from, Forward: dir},
			&Projectile{Kind: ProjectileBallistic, Faction: faction, Vel: dir.Scale(s.cfg.BallisticSpeed), Life: life},
		)
		s.metrics.shot(ProjectileBallistic)
		s.Damage(target, s.cfg.BallisticDamage)
	}
}

func (s *EntitySimulator) tickProjectiles(dt float64) {
	s.scratch = collect(s.projFilter, s.scratch)
	for _, e := range s.scratch {
		if !s.world.Alive(e) {
			continue
		}
		p := s.projMap.Get(e)
		switch p.Kind {
		case ProjectileBeam:
			p.Life -= dt
		case ProjectileBallistic:
			pose := s.poseMap.Get(e)
			pose.Pos = pose.Pos.Add(p.Vel.Scale(dt))
			p.Life -= dt
		case ProjectileHoming:
			if s.steerHoming(e, dt) {
				continue
			}
		}
		if s.projMap.Get(e).Life <= 0 {
			s.world.RemoveEntity(e)
		}
	}
}

// steerHoming turns a homing projectile toward its live target and resolves
// impacts. It reports whether the projectile was removed.
func (s *EntitySimulator) steerHoming(e ecs.Entity, dt float64) bool {
	p := s.projMap.Get(e)
	pose := s.poseMap.Get(e)

	tracking := s.isCraft(p.Target)
	var targetPos vmath.Vec3
	if tracking {
		targetPos = s.poseMap.Get(p.Target).Pos
		want := targetPos.Sub(pose.Pos).Normalize().Scale(s.cfg.HomingSpeed)
		vel := p.Vel.Lerp(want, vmath.Clamp01(s.cfg.HomingTurn*dt)).Normalize().Scale(s.cfg.HomingSpeed)
		if vel.LenSq() == 0 {
			vel = want
		}
		p.Vel = vel
	}
	pose.Pos = pose.Pos.Add(p.Vel.Scale(dt))
	if p.Vel.LenSq() > 0 {
		pose.Forward = p.Vel.Normalize()
	}
	p.Life -= dt

	if tracking && pose.Pos.Dist(targetPos) <= s.cfg.HomingHitRadius {
		at, target := pose.Pos, p.Target
		s.world.RemoveEntity(e)
		if !s.Damage(target, s.cfg.HomingDamage) {
			s.spawnExplosion(at)
		}
		return true
	}

	if s.tier == TierHigh && s.cfg.TrailInterval > 0 {
		p.trailTimer -= dt
		if p.trailTimer <= 0 {
			p.trailTimer += s.cfg.TrailInterval
			at := pose.Pos
			s.trails.NewEntity(&Pose{Pos: at}, &Trail{Life: s.cfg.TrailLife, MaxLife: s.cfg.TrailLife, born: s.tick})
		}
	}
	return false
}

func (s *EntitySimulator) tickExplosions(dt float64) {
	s.scratch = collect(s.explFilter, s.scratch)
	for _, e := range s.scratch {
		x := s.explMap.Get(e)
		if x.born == s.tick {
			continue
		}
		x.Age += dt
		if x.Age >= x.MaxAge {
			s.world.RemoveEntity(e)
		}
	}
}

func (s *EntitySimulator) tickDebris(dt float64) {
	s.scratch = collect(s.debrisFilter, s.scratch)
	for _, e := range s.scratch {
		d := s.debrisMap.Get(e)
		if d.born == s.tick {
			continue
		}
		pose := s.poseMap.Get(e)
		pose.Pos = pose.Pos.Add(d.Vel.Scale(dt))
		d.Rot = d.Rot.Add(d.Spin.Scale(dt))
		d.Life -= dt
		if d.Life <= 0 {
			s.world.RemoveEntity(e)
		}
	}
}

func (s *EntitySimulator) tickTrails(dt float64) {
	s.scratch = collect(s.trailFilter, s.scratch)
	for _, e := range s.scratch {
		tr := s.trailMap.Get(e)
		if tr.born == s.tick {
			continue
		}
		tr.Life -= dt
		if tr.Life <= 0 {
			s.world.RemoveEntity(e)
		}
	}
}

// Damage subtracts n hit points from a living craft and destroys it at zero.
// Stale or non-craft entities are ignored. It reports whether the craft died.
func (s *EntitySimulator) Damage(e ecs.Entity, n int) bool {
	if n <= 0 || !s.isCraft(e) {
		return false
	}
	c := s.craftMap.Get(e)
	c.HP -= n
	if c.HP > 0 {
		return false
	}
	s.kill(e)
	return true
}

// kill removes the craft at once, leaves an explosion behind and queues a
// same-faction replacement.
func (s *EntitySimulator) kill(e ecs.Entity) {
	pose := *s.poseMap.Get(e)
	c := *s.craftMap.Get(e)
	info := CraftInfo{Entity: e, Faction: c.Faction, HP: c.HP, Pos: pose.Pos, Forward: pose.Forward, Target: c.Target}

	s.spawnExplosion(pose.Pos)
	s.world.RemoveEntity(e)
	s.pending = append(s.pending, respawn{faction: c.Faction, wait: s.cfg.RespawnDelay})
	s.deaths++

	s.metrics.craftDestroyed(c.Faction)
	s.log.Debug().Stringer("faction", c.Faction).Uint32("entity", e.ID()).Msg("craft destroyed")
	for _, fn := range s.onDeath {
		fn(info)
	}
}

func (s *EntitySimulator) spawnCraft(f Faction) ecs.Entity {
	angle := s.rng.Float64() * 2 * math.Pi
	c := Craft{
		Faction:  f,
		HP:       s.cfg.StartHP,
		Cooldown: s.randomCooldown(),
		angle:    angle,
		radius:   s.cfg.RingRadius + (s.rng.Float64()*2-1)*s.cfg.RingJitter,
		height:   (s.rng.Float64()*2 - 1) * s.cfg.RingHeight,
		bob:      s.rng.Float64() * 2 * math.Pi,
	}
	pose := Pose{
		Pos: vmath.Vec3{
			X: c.radius * math.Cos(angle),
			Y: c.height + s.cfg.CraftBob*math.Sin(s.elapsed*craftBobRate+c.bob),
			Z: c.radius * math.Sin(angle),
		},
		Forward: vmath.Vec3{X: -math.Sin(angle), Z: math.Cos(angle)},
	}
	return s.crafts.NewEntity(&pose, &c)
}

func (s *EntitySimulator) spawnExplosion(at vmath.Vec3) {
	s.explosions.NewEntity(
		&Pose{Pos: at},
		&Explosion{MaxAge: s.cfg.ExplosionMaxAge, Light: s.tier == TierHigh, born: s.tick},
	)

	n := s.cfg.DebrisLow
	if s.tier == TierHigh {
		n = s.cfg.DebrisHigh
	}
	for range n {
		dir := s.randomUnit()
		life := s.cfg.DebrisLifeMin + s.rng.Float64()*(s.cfg.DebrisLifeMax-s.cfg.DebrisLifeMin)
		s.debris.NewEntity(
			&Pose{Pos: at, Forward: dir},
			&Debris{
				Vel:     dir.Scale(s.cfg.DebrisSpeed * (0.5 + 0.5*s.rng.Float64())),
				Spin:    s.randomUnit().Scale(0.2),
				Life:    life,
				MaxLife: life,
				born:    s.tick,
			},
		)
	}
}

func (s *EntitySimulator) randomCooldown() float64 {
	return s.cfg.CooldownMin + s.rng.Float64()*(s.cfg.CooldownMax-s.cfg.CooldownMin)
}

func (s *EntitySimulator) randomUnit() vmath.Vec3 {
	z := s.rng.Float64()*2 - 1
	a := s.rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return vmath.Vec3{X: r * math.Cos(a), Y: z, Z: r * math.Sin(a)}
}

func (s *EntitySimulator) isCraft(e ecs.Entity) bool {
	return !e.IsZero() && s.world.Alive(e) && s.craftMap.Has(e)
}

func (s *EntitySimulator) isOpponent(e ecs.Entity, f Faction) bool {
	return s.isCraft(e) && s.craftMap.Get(e).Faction != f
}

// Alive reports whether e is a living craft.
func (s *EntitySimulator) Alive(e ecs.Entity) bool { return s.isCraft(e) }

// Counts returns the number of living craft per faction.
func (s *EntitySimulator) Counts() map[Faction]int {
	counts := map[Faction]int{FactionFriendly: 0, FactionHostile: 0}
	q := s.craftFilter.Query()
	for q.Next() {
		counts[q.Get().Faction]++
	}
	return counts
}

// Crafts returns a snapshot of every living craft.
func (s *EntitySimulator) Crafts() []CraftInfo {
	var out []CraftInfo
	q := s.craftView.Query()
	for q.Next() {
		pose, c := q.Get()
		out = append(out, CraftInfo{
			Entity: q.Entity(), Faction: c.Faction, HP: c.HP,
			Pos: pose.Pos, Forward: pose.Forward, Target: c.Target,
		})
	}
	return out
}

// Explosions returns the number of explosions currently alive.
func (s *EntitySimulator) Explosions() int { return count(s.explFilter) }

// Effects counts the transient entities by kind.
func (s *EntitySimulator) Effects() Effects {
	var fx Effects
	q := s.projFilter.Query()
	for q.Next() {
		switch q.Get().Kind {
		case ProjectileBeam:
			fx.Beams++
		case ProjectileBallistic:
			fx.Ballistic++
		case ProjectileHoming:
			fx.Homing++
		}
	}
	fx.Explosions = count(s.explFilter)
	fx.Debris = count(s.debrisFilter)
	fx.Trails = count(s.trailFilter)
	return fx
}

// Deaths returns the total number of craft destroyed so far.
func (s *EntitySimulator) Deaths() int { return s.deaths }

// PendingRespawns returns how many replacements are waiting to spawn.
func (s *EntitySimulator) PendingRespawns() int { return len(s.pending) }

// collect gathers the entities matched by f into dst, so that update passes
// can create and remove entities without an open query.
func collect[T any](f *ecs.Filter1[T], dst []ecs.Entity) []ecs.Entity {
	dst = dst[:0]
	q := f.Query()
	for q.Next() {
		dst = append(dst, q.Entity())
	}
	return dst
}

func count[T any](f *ecs.Filter1[T]) int {
	n := 0
	q := f.Query()
	for q.Next() {
		n++
	}
	return n
}

package game

import (
	"github.com/mlange-42/ark/ecs"
	"github.com/orbithub/orbitscene/internal/vmath"
)

// Faction is the side an autonomous craft fights for.
type Faction uint8

const (
	FactionFriendly Faction = iota
	FactionHostile
)

func (f Faction) String() string {
	if f == FactionHostile {
		return "hostile"
	}
	return "friendly"
}

// Opponent returns the opposing faction.
func (f Faction) Opponent() Faction {
	if f == FactionHostile {
		return FactionFriendly
	}
	return FactionHostile
}

// ProjectileKind selects how a shot travels and deals damage.
type ProjectileKind uint8

const (
	ProjectileBeam      ProjectileKind = iota // instant, visual only after firing
	ProjectileBallistic                       // straight line, damage applied at fire time
	ProjectileHoming                          // guided, damage on impact
)

func (k ProjectileKind) String() string {
	switch k {
	case ProjectileBeam:
		return "beam"
	case ProjectileBallistic:
		return "ballistic"
	case ProjectileHoming:
		return "homing"
	}
	return "unknown"
}

// Pose is the world position and facing shared by every combat entity.
type Pose struct {
	Pos     vmath.Vec3
	Forward vmath.Vec3
}

// Craft is an autonomous combatant. Target is an entity handle that must be
// re-validated on every use.
type Craft struct {
	Faction  Faction
	HP       int
	Target   ecs.Entity
	Cooldown float64 // frames until the next shot

	angle  float64 // position on the patrol ring
	radius float64
	height float64
	bob    float64 // bob phase offset
}

// Projectile is a shot in flight. Beams keep their endpoints for drawing.
type Projectile struct {
	Kind    ProjectileKind
	Faction Faction
	Vel     vmath.Vec3
	Life    float64
	Target  ecs.Entity // homing only
	From    vmath.Vec3 // beam only
	To      vmath.Vec3 // beam only
	Light   bool

	trailTimer float64
}

// Explosion grows and fades until Age reaches MaxAge.
type Explosion struct {
	Age    float64
	MaxAge float64
	Light  bool
	born   uint64
}

// Debris is a decorative tumbling fragment.
type Debris struct {
	Vel     vmath.Vec3
	Spin    vmath.Vec3
	Rot     vmath.Vec3
	Life    float64
	MaxLife float64
	born    uint64
}

// Trail is a fading smoke puff left behind homing projectiles.
type Trail struct {
	Life    float64
	MaxLife float64
	born    uint64
}

package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/elevation"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/physics"
)

// ShieldDamage is a pending hit on a shield's owning building.
type ShieldDamage struct {
	Shield *entity.Shield
	Amount float64
}

// Apply routes the damage to the shield's owner. Orphan shields absorb it.
func (d ShieldDamage) Apply() {
	if d.Shield == nil || d.Shield.Owner == nil {
		return
	}
	d.Shield.Owner.ApplyDamage(d.Amount)
}

// ApplyShieldDamage applies events in order.
func ApplyShieldDamage(events []ShieldDamage) {
	for _, ev := range events {
		ev.Apply()
	}
}

// Resolution is the outcome of filtering one shot's candidates.
type Resolution struct {
	// Hit is true when a candidate stops the beam.
	Hit      bool
	BodyID   physics.BodyID
	Kind     physics.Kind
	Distance float64
	Point    geom.Vec2
	// ShieldDamage holds one event per shield the beam crossed from outside,
	// whether or not that shield stopped the beam. Nothing is applied yet.
	ShieldDamage []ShieldDamage
}

// ResolveHits filters candidates for a beam fired from start at beam
// elevation and picks the closest one that stops it.
//
// Obstacles, deposits and shields exist only on the ground and are skipped
// for airborne beams. A shield counts only when start lies outside it; such a
// shield competes for closest hit and also yields a ShieldDamage event. Every
// other kind is ignored. A candidate replaces the current best only when
// strictly closer, starting from maxDistance, so the first of equally distant
// candidates wins.
//
// Postcondition: res.Hit implies res.Distance < maxDistance.
func ResolveHits(candidates []Candidate, start geom.Vec2, beam elevation.Elevation, maxDistance, damage float64) Resolution {
	res := Resolution{Distance: maxDistance}
	for _, c := range candidates {
		switch c.Kind {
		case physics.KindObstacle, physics.KindResourceDeposit:
			if beam != elevation.Ground {
				continue
			}
		case physics.KindShield:
			if beam != elevation.Ground || c.Shield == nil || c.Shield.Contains(start) {
				continue
			}
			res.ShieldDamage = append(res.ShieldDamage, ShieldDamage{Shield: c.Shield, Amount: damage})
		default:
			continue
		}
		if c.Distance < res.Distance {
			res.Hit = true
			res.BodyID = c.BodyID
			res.Kind = c.Kind
			res.Distance = c.Distance
			res.Point = c.Point
		}
	}
	return res
}

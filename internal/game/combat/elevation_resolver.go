package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/elevation"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// DefaultProbeRadius is the distance around a target point searched for
// airborne units.
const DefaultProbeRadius = 50.0

// UnitSource lists the units that may influence a shot's elevation.
type UnitSource interface {
	ActiveUnits() []entity.Unit
}

// ResolveElevation chooses the band a shot aimed at target travels through.
// Among active airborne units within radius of target that policy may engage,
// the one nearest target wins, ties going to the smallest unit ID. With no
// such unit the shot stays on the ground.
//
// Postcondition: Returns elevation.Ground or an airborne band policy engages.
func ResolveElevation(target geom.Vec2, units UnitSource, policy elevation.Policy, radius float64) elevation.Elevation {
	if units == nil || !policy.CanEngageAir() {
		return elevation.Ground
	}
	radiusSq := radius * radius
	best := elevation.Ground
	bestDistSq := 0.0
	bestID := ""
	found := false
	for _, u := range units.ActiveUnits() {
		if !u.Active || !u.Elevation.IsAirborne() || !policy.CanEngage(u.Elevation) {
			continue
		}
		d := target.DistSq(u.Position)
		if d > radiusSq {
			continue
		}
		if !found || d < bestDistSq || (d == bestDistSq && u.ID < bestID) {
			best, bestDistSq, bestID, found = u.Elevation, d, u.ID, true
		}
	}
	return best
}

package combat_test

import (
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/elevation"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

// scriptedQuery returns a fixed candidate list regardless of the ray.
type scriptedQuery struct {
	candidates []combat.Candidate
	offline    bool
}

func (s scriptedQuery) Available() bool { return !s.offline }

func (s scriptedQuery) Raycast(_ combat.Ray, maxDistance float64) []combat.Candidate {
	var out []combat.Candidate
	for _, c := range s.candidates {
		if c.Distance <= maxDistance {
			out = append(out, c)
		}
	}
	return out
}

// unitList is a fixed UnitSource.
type unitList []entity.Unit

func (u unitList) ActiveUnits() []entity.Unit { return u }

func beamWeapon(policy elevation.Policy) *weapon.Weapon {
	return &weapon.Weapon{
		ID:           "lance",
		Name:         "Lance",
		Damage:       25,
		Range:        150,
		AttackRate:   1,
		Targeting:    policy,
		BeamWidth:    3,
		BeamDuration: 300 * time.Millisecond,
		Ordinance:    "beam_white",
		Effects:      weapon.NewEffectSet("ionize"),
	}
}

package scenario

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/elevation"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/physics"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

// WeaponSource looks weapons up by ID.
type WeaponSource interface {
	Get(id string) (*weapon.Weapon, error)
}

// Battlefield is a Scenario instantiated into live simulation state.
type Battlefield struct {
	World *physics.World
	Units *entity.Index

	buildings map[string]*entity.Building
	bodies    map[string]physics.BodyID
	radii     map[string]float64
}

// Build registers every unit, obstacle, deposit and shield of s into a fresh
// world and unit index.
//
// Precondition: s must have passed Validate.
// Postcondition: Returns a Battlefield whose unit bodies are known to BodyOf.
func (s *Scenario) Build() (*Battlefield, error) {
	bf := &Battlefield{
		World:     physics.NewWorld(),
		Units:     entity.NewIndex(),
		buildings: make(map[string]*entity.Building, len(s.Buildings)),
		bodies:    make(map[string]physics.BodyID, len(s.Units)),
		radii:     make(map[string]float64, len(s.Units)),
	}

	for _, spec := range s.Units {
		if err := bf.Units.Add(spec.Unit); err != nil {
			return nil, fmt.Errorf("building scenario %q: %w", s.ID, err)
		}
		bf.bodies[spec.Unit.ID] = bf.World.AddUnit(spec.Unit, spec.Radius)
		bf.radii[spec.Unit.ID] = spec.Radius
	}
	for _, shape := range s.Obstacles {
		bf.World.AddObstacle(shape)
	}
	for _, shape := range s.Deposits {
		bf.World.AddDeposit(shape)
	}
	for _, spec := range s.Buildings {
		b := entity.NewBuilding(spec.ID, spec.Team, spec.HP)
		bf.buildings[spec.ID] = b
		if spec.Shield != nil {
			bf.World.AddShield(&entity.Shield{
				Center: spec.Shield.Center,
				Radius: spec.Shield.Radius,
				Owner:  b,
			})
		}
	}
	return bf, nil
}

// BodyOf returns the physics body of the unit with the given ID.
func (bf *Battlefield) BodyOf(unitID string) (physics.BodyID, bool) {
	id, ok := bf.bodies[unitID]
	return id, ok
}

// MoveUnit relocates a unit in the index and moves its collision circle to
// match, so later shots both fire from and collide at the new position.
//
// Postcondition: Returns an error, changing nothing, for a unit the
// battlefield was not built with.
func (bf *Battlefield) MoveUnit(id string, pos geom.Vec2, elev elevation.Elevation) error {
	body, ok := bf.bodies[id]
	if !ok {
		return fmt.Errorf("moving unit %q: unit not found", id)
	}
	if err := bf.World.SetShape(body, physics.Circle{Center: pos, Radius: bf.radii[id]}); err != nil {
		return fmt.Errorf("moving unit %q: %w", id, err)
	}
	return bf.Units.Move(id, pos, elev)
}

// Building returns the building with the given ID.
func (bf *Battlefield) Building(id string) (*entity.Building, bool) {
	b, ok := bf.buildings[id]
	return b, ok
}

// Buildings returns every building sorted by ID.
func (bf *Battlefield) Buildings() []*entity.Building {
	out := make([]*entity.Building, 0, len(bf.buildings))
	for _, b := range bf.buildings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Requests turns shots into fire requests from the shooters' current
// positions. Shots from missing or inactive units are dropped.
//
// Postcondition: Returns an error wrapping weapon.ErrUnknownWeapon when a
// shot names a weapon the source does not know.
func (bf *Battlefield) Requests(shots []Shot, weapons WeaponSource) ([]combat.FireRequest, error) {
	reqs := make([]combat.FireRequest, 0, len(shots))
	for _, shot := range shots {
		u, ok := bf.Units.Get(shot.Shooter)
		if !ok || !u.Active {
			continue
		}
		w, err := weapons.Get(shot.Weapon)
		if err != nil {
			return nil, fmt.Errorf("shot by %q: %w", shot.Shooter, err)
		}
		reqs = append(reqs, combat.FireRequest{
			Weapon:  w,
			OwnerID: u.ID,
			Team:    u.Team,
			Body:    bf.bodies[u.ID],
			Origin:  u.Position,
			Target:  shot.Target,
		})
	}
	return reqs, nil
}

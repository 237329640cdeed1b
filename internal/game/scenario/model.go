// Package scenario describes a scripted engagement: the units, terrain and
// buildings on a battlefield plus the volleys fired on each tick.
package scenario

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/physics"
)

// DefaultUnitRadius is the collision radius of a unit that declares none.
const DefaultUnitRadius = 4.0

// UnitSpec places one unit.
type UnitSpec struct {
	Unit   entity.Unit
	Radius float64
}

// ShieldSpec is the shield fixture of a building.
type ShieldSpec struct {
	Center geom.Vec2
	Radius float64
}

// BuildingSpec places one building and its optional shield.
type BuildingSpec struct {
	ID     string
	Team   entity.Team
	HP     float64
	Shield *ShieldSpec
}

// Shot orders Shooter to fire Weapon at Target.
type Shot struct {
	Shooter string
	Weapon  string
	Target  geom.Vec2
}

// Volley is every shot fired on one tick.
type Volley struct {
	Tick  int
	Shots []Shot
}

// Scenario is a fully parsed engagement.
type Scenario struct {
	ID        string
	Name      string
	Units     []UnitSpec
	Obstacles []physics.Shape
	Deposits  []physics.Shape
	Buildings []BuildingSpec
	// Volleys are sorted by Tick with at most one volley per tick.
	Volleys []Volley
}

// ErrInvalidScenario wraps every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Validate checks referential integrity and geometry.
//
// Postcondition: Returns nil if valid, or an error describing all violations.
func (s *Scenario) Validate() error {
	var errs []string
	if s.ID == "" {
		errs = append(errs, "scenario id must not be empty")
	}

	units := make(map[string]bool, len(s.Units))
	for _, u := range s.Units {
		switch {
		case u.Unit.ID == "":
			errs = append(errs, "unit id must not be empty")
		case units[u.Unit.ID]:
			errs = append(errs, fmt.Sprintf("duplicate unit %q", u.Unit.ID))
		}
		units[u.Unit.ID] = true
		if u.Radius <= 0 {
			errs = append(errs, fmt.Sprintf("unit %q radius must be > 0", u.Unit.ID))
		}
		if !u.Unit.Elevation.Valid() {
			errs = append(errs, fmt.Sprintf("unit %q has invalid elevation", u.Unit.ID))
		}
	}

	buildings := make(map[string]bool, len(s.Buildings))
	for _, b := range s.Buildings {
		if b.ID == "" {
			errs = append(errs, "building id must not be empty")
		} else if buildings[b.ID] {
			errs = append(errs, fmt.Sprintf("duplicate building %q", b.ID))
		}
		buildings[b.ID] = true
		if b.HP <= 0 {
			errs = append(errs, fmt.Sprintf("building %q hp must be > 0", b.ID))
		}
		if b.Shield != nil && b.Shield.Radius <= 0 {
			errs = append(errs, fmt.Sprintf("building %q shield radius must be > 0", b.ID))
		}
	}

	seenTick := make(map[int]bool, len(s.Volleys))
	for _, v := range s.Volleys {
		if v.Tick < 0 {
			errs = append(errs, fmt.Sprintf("volley tick must be >= 0, got %d", v.Tick))
		}
		if seenTick[v.Tick] {
			errs = append(errs, fmt.Sprintf("duplicate volley for tick %d", v.Tick))
		}
		seenTick[v.Tick] = true
		for _, shot := range v.Shots {
			if !units[shot.Shooter] {
				errs = append(errs, fmt.Sprintf("tick %d: shooter %q is not a unit", v.Tick, shot.Shooter))
			}
			if shot.Weapon == "" {
				errs = append(errs, fmt.Sprintf("tick %d: shot by %q names no weapon", v.Tick, shot.Shooter))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidScenario, s.ID, strings.Join(errs, "; "))
	}
	return nil
}

// ShotsAt returns the shots scheduled for tick, or nil.
func (s *Scenario) ShotsAt(tick int) []Shot {
	i := sort.Search(len(s.Volleys), func(i int) bool { return s.Volleys[i].Tick >= tick })
	if i < len(s.Volleys) && s.Volleys[i].Tick == tick {
		return s.Volleys[i].Shots
	}
	return nil
}

// LastTick returns the tick of the final volley, or -1 if there are none.
func (s *Scenario) LastTick() int {
	if len(s.Volleys) == 0 {
		return -1
	}
	return s.Volleys[len(s.Volleys)-1].Tick
}

// Package entity holds the units and buildings that populate a skirmish, and
// the index the combat resolvers query for nearby units.
package entity

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/elevation"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Team identifies a side. TeamNeutral owns terrain features and is hostile
// to nobody and friendly to nobody.
type Team int

// TeamNeutral is the zero Team.
const TeamNeutral Team = 0

// Allied reports whether a and b are the same non-neutral side.
func Allied(a, b Team) bool {
	return a != TeamNeutral && a == b
}

// Unit is a mobile combatant.
type Unit struct {
	ID        string
	Team      Team
	Position  geom.Vec2
	Elevation elevation.Elevation
	Active    bool
}

// Building is a static structure that may carry a shield.
type Building struct {
	ID    string
	Team  Team
	MaxHP float64

	mu        sync.Mutex
	currentHP float64
}

// NewBuilding returns a building at full health.
//
// Precondition: maxHP > 0.
func NewBuilding(id string, team Team, maxHP float64) *Building {
	return &Building{ID: id, Team: team, MaxHP: maxHP, currentHP: maxHP}
}

// HP returns the building's current health.
func (b *Building) HP() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentHP
}

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: HP() >= 0.
func (b *Building) ApplyDamage(amount float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentHP -= amount
	if b.currentHP < 0 {
		b.currentHP = 0
	}
}

// Destroyed reports whether the building has no health left.
func (b *Building) Destroyed() bool { return b.HP() <= 0 }

// Shield is a circular protected volume projected by a building.
type Shield struct {
	Center geom.Vec2
	Radius float64
	Owner  *Building
}

// Contains reports whether p lies inside the protected volume, boundary included.
func (s *Shield) Contains(p geom.Vec2) bool {
	return s.Center.DistSq(p) <= s.Radius*s.Radius
}

// Team returns the owning building's team, or TeamNeutral for an orphan shield.
func (s *Shield) Team() Team {
	if s.Owner == nil {
		return TeamNeutral
	}
	return s.Owner.Team
}

// Index tracks every unit in the skirmish.
// All methods are safe for concurrent use.
type Index struct {
	mu    sync.RWMutex
	units map[string]*Unit
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{units: make(map[string]*Unit)}
}

// Add registers u.
//
// Precondition: u.ID must be non-empty.
// Postcondition: Returns an error if a unit with the same ID already exists.
func (idx *Index) Add(u Unit) error {
	if u.ID == "" {
		return fmt.Errorf("unit ID must not be empty")
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.units[u.ID]; exists {
		return fmt.Errorf("unit %q already registered", u.ID)
	}
	cp := u
	idx.units[u.ID] = &cp
	return nil
}

// Remove deletes the unit with the given ID. Unknown IDs are ignored.
func (idx *Index) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.units, id)
}

// Get returns a snapshot of the unit with the given ID.
func (idx *Index) Get(id string) (Unit, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	u, ok := idx.units[id]
	if !ok {
		return Unit{}, false
	}
	return *u, true
}

// Move sets the position and elevation of a unit in the index only. Callers
// that also own a collision body for the unit must move it as well; see
// scenario.Battlefield.MoveUnit.
func (idx *Index) Move(id string, pos geom.Vec2, elev elevation.Elevation) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	u, ok := idx.units[id]
	if !ok {
		return fmt.Errorf("unit %q not found", id)
	}
	u.Position = pos
	u.Elevation = elev
	return nil
}

// SetActive toggles whether a unit participates in the simulation.
func (idx *Index) SetActive(id string, active bool) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	u, ok := idx.units[id]
	if !ok {
		return fmt.Errorf("unit %q not found", id)
	}
	u.Active = active
	return nil
}

// ActiveUnits returns snapshots of every active unit ordered by ID.
//
// Postcondition: Every returned unit has Active == true.
func (idx *Index) ActiveUnits() []Unit {
	idx.mu.RLock()
	out := make([]Unit, 0, len(idx.units))
	for _, u := range idx.units {
		if u.Active {
			out = append(out, *u)
		}
	}
	idx.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered units, active or not.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.units)
}

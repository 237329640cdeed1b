// Package physics is the skirmish's collision world: a registry of static and
// unit bodies answering ray queries.
package physics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Kind classifies a body. It is assigned once, when the body is registered.
type Kind int

const (
	KindUnknown Kind = iota
	KindObstacle
	KindResourceDeposit
	KindShield
	KindUnit
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindObstacle:
		return "obstacle"
	case KindResourceDeposit:
		return "resource_deposit"
	case KindShield:
		return "shield"
	case KindUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// BodyID identifies a registered body. The zero BodyID is never assigned.
type BodyID uint64

// Body is a registered fixture. A registered Body is never mutated; SetShape
// swaps in a copy.
type Body struct {
	ID    BodyID
	Kind  Kind
	Team  entity.Team
	Shape Shape
	// Shield is set only for KindShield bodies.
	Shield *entity.Shield
	// UnitID is set only for KindUnit bodies.
	UnitID string
}

// Hit is one ray intersection.
type Hit struct {
	Body     *Body
	Distance float64
	Point    geom.Vec2
}

// Filter decides whether a body may be reported by a ray query.
type Filter func(b *Body) bool

// World holds every body in registration order.
// All methods are safe for concurrent use.
type World struct {
	mu     sync.RWMutex
	nextID BodyID
	bodies []*Body
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{}
}

func (w *World) add(b Body) BodyID {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	b.ID = w.nextID
	w.bodies = append(w.bodies, &b)
	return b.ID
}

// AddObstacle registers a neutral ground obstacle.
func (w *World) AddObstacle(shape Shape) BodyID {
	return w.add(Body{Kind: KindObstacle, Team: entity.TeamNeutral, Shape: shape})
}

// AddDeposit registers a neutral resource deposit.
func (w *World) AddDeposit(shape Shape) BodyID {
	return w.add(Body{Kind: KindResourceDeposit, Team: entity.TeamNeutral, Shape: shape})
}

// AddShield registers the circular fixture of s.
//
// Precondition: s must be non-nil.
func (w *World) AddShield(s *entity.Shield) BodyID {
	return w.add(Body{
		Kind:   KindShield,
		Team:   s.Team(),
		Shape:  Circle{Center: s.Center, Radius: s.Radius},
		Shield: s,
	})
}

// AddUnit registers a unit's collision circle.
func (w *World) AddUnit(u entity.Unit, radius float64) BodyID {
	return w.add(Body{
		Kind:   KindUnit,
		Team:   u.Team,
		Shape:  Circle{Center: u.Position, Radius: radius},
		UnitID: u.ID,
	})
}

// AddBody registers a body of an explicit kind. The ID field is ignored.
func (w *World) AddBody(b Body) (BodyID, error) {
	if b.Shape == nil {
		return 0, fmt.Errorf("body shape must not be nil")
	}
	if b.Kind == KindShield && b.Shield == nil {
		return 0, fmt.Errorf("shield body requires a shield")
	}
	return w.add(b), nil
}

// SetShape replaces the shape of a registered body, keeping its ID and
// registration order. Hits returned before the call keep the old shape.
func (w *World) SetShape(id BodyID, shape Shape) error {
	if shape == nil {
		return fmt.Errorf("body shape must not be nil")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, b := range w.bodies {
		if b.ID == id {
			moved := *b
			moved.Shape = shape
			w.bodies[i] = &moved
			return nil
		}
	}
	return fmt.Errorf("body %d not found", id)
}

// Remove deletes the body with the given ID. Unknown IDs are ignored.
func (w *World) Remove(id BodyID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, b := range w.bodies {
		if b.ID == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

// Body returns the body with the given ID.
func (w *World) Body(id BodyID) (*Body, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, b := range w.bodies {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// Len returns the number of registered bodies.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.bodies)
}

// RayCast reports every body accepted by filter that the ray from start along
// the unit vector dir crosses within maxDistance.
//
// Precondition: dir must be a unit vector; maxDistance >= 0.
// Postcondition: Hits are ordered by ascending distance, ties by registration
// order; every hit has 0 <= Distance <= maxDistance.
func (w *World) RayCast(start, dir geom.Vec2, maxDistance float64, filter Filter) []Hit {
	w.mu.RLock()
	var hits []Hit
	for _, b := range w.bodies {
		if filter != nil && !filter(b) {
			continue
		}
		t, ok := b.Shape.rayEntry(start, dir)
		if !ok || t < 0 || t > maxDistance+geom.Epsilon {
			continue
		}
		if t > maxDistance {
			t = maxDistance
		}
		hits = append(hits, Hit{Body: b, Distance: t, Point: start.Add(dir.Scale(t))})
	}
	w.mu.RUnlock()
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

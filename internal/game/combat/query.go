package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/physics"
)

// Ray describes an outgoing shot for a spatial query.
type Ray struct {
	Start geom.Vec2
	// Direction must be a unit vector.
	Direction geom.Vec2
	// Exclude is the firing body; it is never reported.
	Exclude physics.BodyID
	// Team is the firer's side; bodies allied to it are never reported.
	Team entity.Team
}

// Candidate is one raw intersection prior to policy filtering.
type Candidate struct {
	BodyID   physics.BodyID
	Kind     physics.Kind
	Distance float64
	Point    geom.Vec2
	// Shield is set only for KindShield candidates.
	Shield *entity.Shield
}

// SpatialQuery is the read-only ray capability the fire pipeline needs.
// Implementations must be safe for concurrent use.
type SpatialQuery interface {
	// Raycast returns every non-excluded, non-allied body the ray crosses
	// within maxDistance. It does not filter by elevation.
	Raycast(ray Ray, maxDistance float64) []Candidate
	// Available reports whether the query is backed by a world. Shots are
	// refused when it is false.
	Available() bool
}

// WorldQuery adapts a physics.World to SpatialQuery.
type WorldQuery struct {
	world *physics.World
}

// NewWorldQuery wraps w.
func NewWorldQuery(w *physics.World) *WorldQuery {
	return &WorldQuery{world: w}
}

// Available implements SpatialQuery.
func (q *WorldQuery) Available() bool {
	return q != nil && q.world != nil
}

// Raycast implements SpatialQuery.
//
// Postcondition: Candidates are ordered by ascending distance, ties in body
// registration order. A nil world yields no candidates.
func (q *WorldQuery) Raycast(ray Ray, maxDistance float64) []Candidate {
	if q == nil || q.world == nil {
		return nil
	}
	hits := q.world.RayCast(ray.Start, ray.Direction, maxDistance, func(b *physics.Body) bool {
		if b.ID == ray.Exclude {
			return false
		}
		return !entity.Allied(b.Team, ray.Team)
	})
	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, Candidate{
			BodyID:   h.Body.ID,
			Kind:     h.Body.Kind,
			Distance: h.Distance,
			Point:    h.Point,
			Shield:   h.Body.Shield,
		})
	}
	return out
}

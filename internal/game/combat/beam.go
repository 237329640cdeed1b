// Package combat resolves beam weapon fire against the physics world: it
// picks the shot's elevation, raycasts, filters candidate hits and builds the
// resulting ordinance.
package combat

import (
	"errors"
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/physics"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

var (
	// ErrNoSpatialQuery means there is no physics world to fire into.
	ErrNoSpatialQuery = errors.New("combat: no spatial query available")
	// ErrDegenerateShot means the firer and target coincide, leaving no direction.
	ErrDegenerateShot = errors.New("combat: firer and target coincide")
	// ErrNoWeapon means the request carried no weapon.
	ErrNoWeapon = errors.New("combat: fire request has no weapon")
)

// FireRequest is one weapon fire event.
type FireRequest struct {
	Weapon  *weapon.Weapon
	OwnerID string
	Team    entity.Team
	// Body is the firer's own physics body, excluded from the raycast.
	Body   physics.BodyID
	Origin geom.Vec2
	Target geom.Vec2
}

// Shot is a resolved fire event whose shield damage has not been applied.
type Shot struct {
	Ordinance  Ordinance
	Resolution Resolution
}

// ResolveShot runs the elevation, raycast, filter and build stages for req.
// Shield damage is returned in the Resolution, never applied.
//
// Precondition: req.Weapon must be non-nil.
// Postcondition: On success the ordinance end lies on the segment from
// req.Origin toward req.Target at distance <= min(range, |target-origin|).
// Returns ErrNoSpatialQuery or ErrDegenerateShot when no shot is possible.
func ResolveShot(req FireRequest, q SpatialQuery, units UnitSource, probeRadius float64) (Shot, error) {
	if req.Weapon == nil {
		return Shot{}, ErrNoWeapon
	}
	if q == nil || !q.Available() {
		return Shot{}, ErrNoSpatialQuery
	}
	delta := req.Target.Sub(req.Origin)
	dir, ok := delta.Normalize()
	if !ok {
		return Shot{}, ErrDegenerateShot
	}
	travel := math.Max(0, math.Min(req.Weapon.Range, delta.Len()))

	elev := ResolveElevation(req.Target, units, req.Weapon.Targeting, probeRadius)
	candidates := q.Raycast(Ray{
		Start:     req.Origin,
		Direction: dir,
		Exclude:   req.Body,
		Team:      req.Team,
	}, travel)
	res := ResolveHits(candidates, req.Origin, elev, travel, req.Weapon.Damage)

	// The end is derived from the resolved distance so it stays on the firing
	// line whatever point the query reported.
	end := req.Origin.Add(dir.Scale(res.Distance))
	return Shot{
		Ordinance:  BuildOrdinance(req.Origin, end, req.Weapon, req.OwnerID, req.Team, elev),
		Resolution: res,
	}, nil
}

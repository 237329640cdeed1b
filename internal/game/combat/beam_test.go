package combat_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/elevation"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/physics"
)

type battlefield struct {
	world *physics.World
	units *entity.Index
	query *combat.WorldQuery
	firer physics.BodyID
}

func newBattlefield(t *testing.T) *battlefield {
	t.Helper()
	w := physics.NewWorld()
	idx := entity.NewIndex()
	me := entity.Unit{ID: "firer", Team: 1, Position: geom.V(0, 0), Elevation: elevation.Ground, Active: true}
	require.NoError(t, idx.Add(me))
	return &battlefield{world: w, units: idx, query: combat.NewWorldQuery(w), firer: w.AddUnit(me, 2)}
}

func (b *battlefield) request(policy elevation.Policy, target geom.Vec2) combat.FireRequest {
	return combat.FireRequest{
		Weapon:  beamWeapon(policy),
		OwnerID: "firer",
		Team:    1,
		Body:    b.firer,
		Origin:  geom.V(0, 0),
		Target:  target,
	}
}

func TestResolveShot_OpenFieldReachesTarget(t *testing.T) {
	b := newBattlefield(t)
	shot, err := combat.ResolveShot(b.request(elevation.AllBands, geom.V(100, 0)), b.query, b.units, combat.DefaultProbeRadius)
	require.NoError(t, err)
	o := shot.Ordinance
	assert.Equal(t, geom.V(100, 0), o.End)
	assert.Equal(t, elevation.Ground, o.Elevation)
	assert.False(t, shot.Resolution.Hit)
	assert.Equal(t, "firer", o.OwnerID)
	assert.Equal(t, entity.Team(1), o.OwnerTeam)
	assert.Equal(t, 150.0, o.Range)
	assert.Equal(t, 25.0, o.Damage)
	assert.Equal(t, "beam_white", o.Type)
	assert.True(t, o.Effects.Has("ionize"))
	assert.NotEmpty(t, o.ID)
}

func TestResolveShot_GroundObstacleStopsBeam(t *testing.T) {
	b := newBattlefield(t)
	b.world.AddObstacle(physics.Circle{Center: geom.V(40, 0)})
	shot, err := combat.ResolveShot(b.request(elevation.AllBands, geom.V(100, 0)), b.query, b.units, combat.DefaultProbeRadius)
	require.NoError(t, err)
	assert.True(t, shot.Resolution.Hit)
	assert.InDelta(t, 40, shot.Ordinance.End.X, 1e-9)
	assert.InDelta(t, 0, shot.Ordinance.End.Y, 1e-9)
	assert.InDelta(t, 40, shot.Ordinance.Length(), 1e-9)
}

func TestResolveShot_AirborneTargetIgnoresGroundObstacle(t *testing.T) {
	b := newBattlefield(t)
	b.world.AddObstacle(physics.Circle{Center: geom.V(40, 0)})
	require.NoError(t, b.units.Add(entity.Unit{ID: "gunship", Team: 2, Position: geom.V(110, 20), Elevation: elevation.LowAir, Active: true}))
	shot, err := combat.ResolveShot(b.request(elevation.AllBands, geom.V(100, 0)), b.query, b.units, combat.DefaultProbeRadius)
	require.NoError(t, err)
	assert.Equal(t, elevation.LowAir, shot.Ordinance.Elevation)
	assert.False(t, shot.Resolution.Hit)
	assert.Equal(t, geom.V(100, 0), shot.Ordinance.End)
}

func TestResolveShot_GroundOnlyWeaponStaysOnGround(t *testing.T) {
	b := newBattlefield(t)
	b.world.AddObstacle(physics.Circle{Center: geom.V(40, 0)})
	require.NoError(t, b.units.Add(entity.Unit{ID: "gunship", Team: 2, Position: geom.V(100, 0), Elevation: elevation.LowAir, Active: true}))
	shot, err := combat.ResolveShot(b.request(elevation.GroundOnly, geom.V(100, 0)), b.query, b.units, combat.DefaultProbeRadius)
	require.NoError(t, err)
	assert.Equal(t, elevation.Ground, shot.Ordinance.Elevation)
	assert.InDelta(t, 40, shot.Ordinance.Length(), 1e-9)
}

func TestResolveShot_ClampedToRange(t *testing.T) {
	b := newBattlefield(t)
	shot, err := combat.ResolveShot(b.request(elevation.AllBands, geom.V(0, 400)), b.query, b.units, combat.DefaultProbeRadius)
	require.NoError(t, err)
	assert.InDelta(t, 0, shot.Ordinance.End.X, 1e-9)
	assert.InDelta(t, 150, shot.Ordinance.End.Y, 1e-9)
}

func TestResolveShot_FriendlyShieldIsTransparentEnemyShieldBlocks(t *testing.T) {
	b := newBattlefield(t)
	ours := entity.NewBuilding("ours", 1, 100)
	theirs := entity.NewBuilding("theirs", 2, 100)
	b.world.AddShield(&entity.Shield{Center: geom.V(30, 0), Radius: 5, Owner: ours})
	b.world.AddShield(&entity.Shield{Center: geom.V(70, 0), Radius: 10, Owner: theirs})
	shot, err := combat.ResolveShot(b.request(elevation.AllBands, geom.V(100, 0)), b.query, b.units, combat.DefaultProbeRadius)
	require.NoError(t, err)
	require.True(t, shot.Resolution.Hit)
	assert.Equal(t, physics.KindShield, shot.Resolution.Kind)
	assert.InDelta(t, 60, shot.Ordinance.Length(), 1e-9)
	require.Len(t, shot.Resolution.ShieldDamage, 1)
	assert.Same(t, theirs, shot.Resolution.ShieldDamage[0].Shield.Owner)
	assert.Equal(t, 100.0, theirs.HP(), "ResolveShot never applies damage")
}

func TestResolveShot_EnemyShieldAroundFirerIsIgnored(t *testing.T) {
	b := newBattlefield(t)
	theirs := entity.NewBuilding("theirs", 2, 100)
	b.world.AddShield(&entity.Shield{Center: geom.V(10, 0), Radius: 40, Owner: theirs})
	shot, err := combat.ResolveShot(b.request(elevation.AllBands, geom.V(100, 0)), b.query, b.units, combat.DefaultProbeRadius)
	require.NoError(t, err)
	assert.False(t, shot.Resolution.Hit)
	assert.Empty(t, shot.Resolution.ShieldDamage)
	assert.Equal(t, geom.V(100, 0), shot.Ordinance.End)
}

func TestResolveShot_Errors(t *testing.T) {
	b := newBattlefield(t)
	_, err := combat.ResolveShot(b.request(elevation.AllBands, geom.V(0, 0)), b.query, b.units, 50)
	assert.True(t, errors.Is(err, combat.ErrDegenerateShot))

	_, err = combat.ResolveShot(b.request(elevation.AllBands, geom.V(10, 0)), nil, b.units, 50)
	assert.True(t, errors.Is(err, combat.ErrNoSpatialQuery))

	_, err = combat.ResolveShot(b.request(elevation.AllBands, geom.V(10, 0)), combat.NewWorldQuery(nil), b.units, 50)
	assert.True(t, errors.Is(err, combat.ErrNoSpatialQuery))

	var nilWorld *combat.WorldQuery
	_, err = combat.ResolveShot(b.request(elevation.AllBands, geom.V(10, 0)), nilWorld, b.units, 50)
	assert.True(t, errors.Is(err, combat.ErrNoSpatialQuery))

	offline := scriptedQuery{offline: true, candidates: []combat.Candidate{
		{BodyID: 9, Kind: physics.KindObstacle, Distance: 5, Point: geom.V(5, 0)},
	}}
	_, err = combat.ResolveShot(b.request(elevation.AllBands, geom.V(10, 0)), offline, b.units, 50)
	assert.True(t, errors.Is(err, combat.ErrNoSpatialQuery), "an offline query is refused before any raycast")

	req := b.request(elevation.AllBands, geom.V(10, 0))
	req.Weapon = nil
	_, err = combat.ResolveShot(req, b.query, b.units, 50)
	assert.True(t, errors.Is(err, combat.ErrNoWeapon))
}

func TestResolveShot_ScriptedQuery(t *testing.T) {
	q := scriptedQuery{candidates: []combat.Candidate{
		{BodyID: 1, Kind: physics.KindUnit, Distance: 10, Point: geom.V(10, 0)},
		{BodyID: 2, Kind: physics.KindResourceDeposit, Distance: 35, Point: geom.V(35, 0)},
	}}
	req := combat.FireRequest{Weapon: beamWeapon(elevation.AllBands), OwnerID: "x", Team: 1, Origin: geom.V(0, 0), Target: geom.V(80, 0)}
	shot, err := combat.ResolveShot(req, q, unitList{}, 50)
	require.NoError(t, err)
	assert.Equal(t, physics.BodyID(2), shot.Resolution.BodyID)
	assert.InDelta(t, 35, shot.Ordinance.End.X, 1e-9)
}

func TestProperty_ResolveShot_EndOnFiringLineWithinReach(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := physics.NewWorld()
		n := rapid.IntRange(0, 10).Draw(rt, "obstacles")
		for i := 0; i < n; i++ {
			c := geom.V(rapid.Float64Range(-200, 200).Draw(rt, "x"), rapid.Float64Range(-200, 200).Draw(rt, "y"))
			w.AddObstacle(physics.Circle{Center: c, Radius: rapid.Float64Range(0, 20).Draw(rt, "r")})
		}
		origin := geom.V(rapid.Float64Range(-50, 50).Draw(rt, "ox"), rapid.Float64Range(-50, 50).Draw(rt, "oy"))
		target := geom.V(rapid.Float64Range(-250, 250).Draw(rt, "tx"), rapid.Float64Range(-250, 250).Draw(rt, "ty"))
		wpn := beamWeapon(elevation.AllBands)
		wpn.Range = rapid.Float64Range(1, 300).Draw(rt, "range")
		req := combat.FireRequest{Weapon: wpn, OwnerID: "p", Team: 1, Origin: origin, Target: target}

		shot, err := combat.ResolveShot(req, combat.NewWorldQuery(w), entity.NewIndex(), 50)
		if errors.Is(err, combat.ErrDegenerateShot) {
			return
		}
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		reach := math.Min(wpn.Range, origin.Dist(target))
		o := shot.Ordinance
		if o.Length() > reach+1e-9 {
			rt.Fatalf("beam length %v exceeds reach %v", o.Length(), reach)
		}
		toTarget := target.Sub(origin)
		toEnd := o.End.Sub(origin)
		cross := toTarget.X*toEnd.Y - toTarget.Y*toEnd.X
		if math.Abs(cross) > 1e-6*(1+toTarget.Len()*toEnd.Len()) {
			rt.Fatalf("end %v is off the firing line toward %v", o.End, target)
		}
		if toEnd.Dot(toTarget) < -1e-9 {
			rt.Fatalf("end %v points away from target %v", o.End, target)
		}
	})
}

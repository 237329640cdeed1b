package combat

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/elevation"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

// Ordinance is the resolved beam handed to damage application and rendering.
type Ordinance struct {
	ID        string
	WeaponID  string
	Start     geom.Vec2
	End       geom.Vec2
	Range     float64
	OwnerID   string
	OwnerTeam entity.Team
	Damage    float64
	Effects   weapon.EffectSet
	Type      string
	Width     float64
	Duration  time.Duration
	Elevation elevation.Elevation
}

// Length returns the distance the beam travelled.
func (o Ordinance) Length() float64 { return o.Start.Dist(o.End) }

// BuildOrdinance constructs the beam record for a resolved shot.
//
// Precondition: w must be non-nil.
// Postcondition: The ordinance owns its effect set; w is not modified.
func BuildOrdinance(start, end geom.Vec2, w *weapon.Weapon, ownerID string, ownerTeam entity.Team, elev elevation.Elevation) Ordinance {
	return Ordinance{
		ID:        uuid.New().String(),
		WeaponID:  w.ID,
		Start:     start,
		End:       end,
		Range:     w.Range,
		OwnerID:   ownerID,
		OwnerTeam: ownerTeam,
		Damage:    w.Damage,
		Effects:   w.Effects.Clone(),
		Type:      w.Ordinance,
		Width:     w.BeamWidth,
		Duration:  w.BeamDuration,
		Elevation: elev,
	}
}

package combat

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EngineConfig tunes an Engine.
type EngineConfig struct {
	// ProbeRadius is the airborne-unit search radius around each target point.
	// Zero selects DefaultProbeRadius.
	ProbeRadius float64
	// Parallelism bounds concurrent resolutions in a volley. Values < 1 mean 1.
	Parallelism int
}

// Engine resolves fire requests against a shared world and applies the
// resulting shield damage.
// All methods are safe for concurrent use provided the SpatialQuery and
// UnitSource are.
type Engine struct {
	query  SpatialQuery
	units  UnitSource
	cfg    EngineConfig
	logger *zap.Logger
}

// NewEngine creates an Engine. A nil query makes every fire request a no-op.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine(query SpatialQuery, units UnitSource, cfg EngineConfig, logger *zap.Logger) *Engine {
	if cfg.ProbeRadius <= 0 {
		cfg.ProbeRadius = DefaultProbeRadius
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	return &Engine{query: query, units: units, cfg: cfg, logger: logger}
}

// Fire resolves a single request and applies its shield damage immediately.
//
// Postcondition: Returns false when no ordinance could be produced; this is
// not an error for the tick.
func (e *Engine) Fire(req FireRequest) (Ordinance, bool) {
	shot, ok := e.resolve(req)
	if !ok {
		return Ordinance{}, false
	}
	ApplyShieldDamage(shot.Resolution.ShieldDamage)
	return shot.Ordinance, true
}

// ResolveVolley resolves every request concurrently against the read-only
// world, then, once all resolutions are done, applies the collected shield
// damage in request order. Requests that cannot fire are omitted.
//
// Postcondition: Returned ordinances are in request order. On context
// cancellation no damage is applied and the context error is returned.
func (e *Engine) ResolveVolley(ctx context.Context, reqs []FireRequest) ([]Ordinance, error) {
	shots := make([]*Shot, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Parallelism)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if shot, ok := e.resolve(req); ok {
				shots[i] = &shot
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Ordinance, 0, len(reqs))
	shieldHits := 0
	for _, shot := range shots {
		if shot == nil {
			continue
		}
		ApplyShieldDamage(shot.Resolution.ShieldDamage)
		shieldHits += len(shot.Resolution.ShieldDamage)
		out = append(out, shot.Ordinance)
	}
	e.logger.Debug("volley resolved",
		zap.Int("requests", len(reqs)),
		zap.Int("ordinances", len(out)),
		zap.Int("shield_hits", shieldHits),
	)
	return out, nil
}

func (e *Engine) resolve(req FireRequest) (Shot, bool) {
	shot, err := ResolveShot(req, e.query, e.units, e.cfg.ProbeRadius)
	if err != nil {
		level := e.logger.Debug
		if !errors.Is(err, ErrNoSpatialQuery) && !errors.Is(err, ErrDegenerateShot) {
			level = e.logger.Warn
		}
		level("shot skipped",
			zap.String("owner", req.OwnerID),
			zap.Error(err),
		)
		return Shot{}, false
	}
	o := shot.Ordinance
	e.logger.Debug("beam resolved",
		zap.String("ordinance", o.ID),
		zap.String("owner", o.OwnerID),
		zap.String("weapon", o.WeaponID),
		zap.Stringer("elevation", o.Elevation),
		zap.Bool("blocked", shot.Resolution.Hit),
		zap.Stringer("blocked_by", shot.Resolution.Kind),
		zap.Float64("length", o.Length()),
		zap.Int("shields", len(shot.Resolution.ShieldDamage)),
	)
	return shot, true
}

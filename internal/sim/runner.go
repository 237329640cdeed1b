package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/scenario"
	"github.com/cory-johannsen/skirmish/internal/server"
)

const tickName = "volleys"

// Report summarizes one resolved tick.
type Report struct {
	Tick int
	// Shots is the number of fire requests issued this tick.
	Shots      int
	Ordinances []combat.Ordinance
}

// Totals accumulates reports over a run.
type Totals struct {
	Ticks      int
	Shots      int
	Ordinances int
	Destroyed  []string
}

// Runner fires each tick's scheduled volley through a combat engine.
type Runner struct {
	scn     *scenario.Scenario
	field   *scenario.Battlefield
	weapons scenario.WeaponSource
	engine  *combat.Engine
	ticks   int
	logger  *zap.Logger

	mu        sync.Mutex
	totals    Totals
	destroyed map[string]bool

	// OnReport, if set, receives every report after it is logged.
	OnReport func(Report)
}

// NewRunner creates a Runner. ticks bounds the run; 0 runs until stopped.
//
// Precondition: scn, field, weapons, engine and logger must be non-nil; ticks >= 0.
func NewRunner(scn *scenario.Scenario, field *scenario.Battlefield, weapons scenario.WeaponSource, engine *combat.Engine, ticks int, logger *zap.Logger) *Runner {
	return &Runner{
		scn:       scn,
		field:     field,
		weapons:   weapons,
		engine:    engine,
		ticks:     ticks,
		logger:    logger,
		destroyed: make(map[string]bool),
	}
}

// Step resolves the volley scheduled for tick and applies its damage.
//
// Postcondition: Returns an error if a shot names an unknown weapon or ctx
// is cancelled mid-volley; no damage is applied in either case.
func (r *Runner) Step(ctx context.Context, tick int) (Report, error) {
	shots := r.scn.ShotsAt(tick)
	reqs, err := r.field.Requests(shots, r.weapons)
	if err != nil {
		return Report{}, fmt.Errorf("tick %d: %w", tick, err)
	}
	ords, err := r.engine.ResolveVolley(ctx, reqs)
	if err != nil {
		return Report{}, fmt.Errorf("tick %d: %w", tick, err)
	}
	rep := Report{Tick: tick, Shots: len(reqs), Ordinances: ords}

	r.mu.Lock()
	r.totals.Ticks++
	r.totals.Shots += rep.Shots
	r.totals.Ordinances += len(ords)
	var fresh []string
	for _, b := range r.field.Buildings() {
		if b.Destroyed() && !r.destroyed[b.ID] {
			r.destroyed[b.ID] = true
			r.totals.Destroyed = append(r.totals.Destroyed, b.ID)
			fresh = append(fresh, b.ID)
		}
	}
	r.mu.Unlock()

	if len(reqs) > 0 {
		r.logger.Info("tick resolved",
			zap.Int("tick", tick),
			zap.Int("shots", rep.Shots),
			zap.Int("ordinances", len(ords)),
		)
	}
	for _, id := range fresh {
		r.logger.Info("building destroyed",
			zap.Int("tick", tick),
			zap.String("building", id),
		)
	}
	if r.OnReport != nil {
		r.OnReport(rep)
	}
	return rep, nil
}

// Totals returns a snapshot of the accumulated run statistics.
func (r *Runner) Totals() Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.totals
	t.Destroyed = append([]string(nil), r.totals.Destroyed...)
	return t
}

// Run registers the runner on tm, starts it, and blocks until the configured
// tick count is reached, a step fails, or ctx is done.
//
// Postcondition: Returns nil after the final tick, the step error on
// failure, or ctx.Err() when interrupted.
func (r *Runner) Run(ctx context.Context, tm *TickManager) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	var finished atomic.Bool
	finish := func(err error) {
		if finished.CompareAndSwap(false, true) {
			done <- err
		}
	}

	tm.RegisterTick(tickName, func(tick int) {
		if finished.Load() {
			return
		}
		if r.ticks > 0 && tick >= r.ticks {
			finish(nil)
			return
		}
		if _, err := r.Step(ctx, tick); err != nil {
			finish(err)
		}
	})
	defer tm.Unregister(tickName)
	tm.Start(ctx)

	r.logger.Info("simulation started",
		zap.String("scenario", r.scn.ID),
		zap.Int("ticks", r.ticks),
		zap.Int("last_volley", r.scn.LastTick()),
	)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Service adapts the runner to server.Lifecycle. Stop interrupts the run;
// an interrupted run is not a failure.
func (r *Runner) Service(tm *TickManager) server.Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &server.FuncService{
		StartFn: func() error {
			err := r.Run(ctx, tm)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
		StopFn: cancel,
	}
}

// Package main provides the beam combat simulator. It wires together
// configuration, weapon content, research scripts, a scenario and the combat
// engine, then runs the scenario on a fixed tick.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/scenario"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/server"
	"github.com/cory-johannsen/skirmish/internal/sim"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "", "scenario YAML file (overrides content.scenario_file)")
	ticks := flag.Int("ticks", -1, "number of ticks to run (overrides simulation.ticks)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *scenarioPath != "" {
		cfg.Content.ScenarioFile = *scenarioPath
	}
	if *ticks >= 0 {
		cfg.Simulation.Ticks = *ticks
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	weapons, err := weapon.LoadWeapons(cfg.Content.WeaponsDir)
	if err != nil {
		logger.Fatal("loading weapons", zap.Error(err))
	}
	logger.Info("weapons loaded",
		zap.String("dir", cfg.Content.WeaponsDir),
		zap.Int("count", len(weapons.All())),
	)

	if cfg.Scripting.ResearchDir != "" {
		if err := applyResearch(weapons, cfg.Scripting, logger); err != nil {
			logger.Fatal("applying research", zap.Error(err))
		}
	}

	scn, err := scenario.LoadFromFile(cfg.Content.ScenarioFile)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}
	field, err := scn.Build()
	if err != nil {
		logger.Fatal("building battlefield", zap.Error(err))
	}
	logger.Info("scenario loaded",
		zap.String("scenario", scn.ID),
		zap.Int("units", field.Units.Len()),
		zap.Int("bodies", field.World.Len()),
		zap.Int("volleys", len(scn.Volleys)),
	)

	engine := combat.NewEngine(
		combat.NewWorldQuery(field.World),
		field.Units,
		combat.EngineConfig{
			ProbeRadius: cfg.Combat.ElevationProbeRadius,
			Parallelism: cfg.Combat.ParallelVolleys,
		},
		logger.Named("combat"),
	)
	runner := sim.NewRunner(scn, field, weapons, engine, cfg.Simulation.Ticks, logger.Named("sim"))

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("simulation", runner.Service(sim.NewTickManager(cfg.Simulation.TickInterval)))

	logger.Info("simulator initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Duration("tick_interval", cfg.Simulation.TickInterval),
	)

	runErr := lifecycle.Run(context.Background())

	totals := runner.Totals()
	for _, b := range field.Buildings() {
		logger.Info("building status",
			zap.String("building", b.ID),
			zap.Float64("hp", b.HP()),
			zap.Float64("max_hp", b.MaxHP),
		)
	}
	logger.Info("simulation summary",
		zap.Int("ticks", totals.Ticks),
		zap.Int("shots", totals.Shots),
		zap.Int("ordinances", totals.Ordinances),
		zap.Strings("destroyed", totals.Destroyed),
	)
	if runErr != nil {
		logger.Fatal("simulation error", zap.Error(runErr))
	}
}

// applyResearch runs the research scripts once against every loaded weapon.
func applyResearch(weapons *weapon.Registry, cfg config.ScriptingConfig, logger *zap.Logger) error {
	mgr := scripting.NewManager(logger.Named("research"))
	mgr.GetWeapon = func(id string) *scripting.WeaponInfo {
		w, err := weapons.Get(id)
		if err != nil {
			return nil
		}
		return &scripting.WeaponInfo{ID: w.ID, Damage: w.Damage, Range: w.Range, AttackRate: w.AttackRate}
	}
	if err := mgr.Load(cfg.ResearchDir, cfg.InstructionLimit); err != nil {
		return err
	}
	defer mgr.Close()

	upgraded, err := weapons.ApplyResearch(func(id string) (weapon.Modifier, bool) {
		m, ok := mgr.ResearchModifier(id)
		if !ok {
			return weapon.Modifier{}, false
		}
		return weapon.Modifier{Damage: m.Damage, Range: m.Range, AttackRate: m.AttackRate}, true
	})
	if err != nil {
		return err
	}
	logger.Info("research applied", zap.Strings("weapons", upgraded))
	return nil
}

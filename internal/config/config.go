// Package config provides Viper-based configuration loading for the skirmish simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout", or a file path. Empty means stderr.
	Output string `mapstructure:"output"`
}

// SimulationConfig holds tick loop settings.
type SimulationConfig struct {
	// TickInterval is the wall-clock duration of one simulation tick.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// Ticks is the number of ticks to run; 0 runs until interrupted.
	Ticks int `mapstructure:"ticks"`
}

// CombatConfig holds beam resolution settings.
type CombatConfig struct {
	// ElevationProbeRadius is the airborne-unit search radius around a target point.
	ElevationProbeRadius float64 `mapstructure:"elevation_probe_radius"`
	// ParallelVolleys bounds how many shots of one volley resolve concurrently.
	ParallelVolleys int `mapstructure:"parallel_volleys"`
}

// ContentConfig locates YAML content.
type ContentConfig struct {
	WeaponsDir   string `mapstructure:"weapons_dir"`
	ScenarioFile string `mapstructure:"scenario_file"`
}

// ScriptingConfig holds research script settings.
type ScriptingConfig struct {
	// ResearchDir holds *.lua research scripts; empty disables research.
	ResearchDir string `mapstructure:"research_dir"`
	// InstructionLimit caps opcodes per script call; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Content    ContentConfig    `mapstructure:"content"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.Ticks < 0 {
		errs = append(errs, fmt.Sprintf("simulation.ticks must be >= 0, got %d", s.Ticks))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.ElevationProbeRadius <= 0 {
		errs = append(errs, fmt.Sprintf("combat.elevation_probe_radius must be > 0, got %v", c.ElevationProbeRadius))
	}
	if c.ParallelVolleys < 1 {
		errs = append(errs, fmt.Sprintf("combat.parallel_volleys must be >= 1, got %d", c.ParallelVolleys))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.WeaponsDir == "" {
		errs = append(errs, "content.weapons_dir must not be empty")
	}
	if c.ScenarioFile == "" {
		errs = append(errs, "content.scenario_file must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the built-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("simulation.tick_interval", "100ms")
	v.SetDefault("simulation.ticks", 0)

	v.SetDefault("combat.elevation_probe_radius", 50.0)
	v.SetDefault("combat.parallel_volleys", 4)

	v.SetDefault("content.weapons_dir", "content/weapons")
	v.SetDefault("content.scenario_file", "content/scenarios/ridge.yaml")

	v.SetDefault("scripting.research_dir", "")
	v.SetDefault("scripting.instruction_limit", 0)
}

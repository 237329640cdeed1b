// Package weapon provides beam weapon definitions, their YAML loader, and the
// copy and research-modifier protocol used when upgrades apply.
package weapon

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/elevation"
)

// Effect is a special effect tag carried by a weapon and its ordinance.
type Effect string

// EffectSet is an unordered set of effect tags.
type EffectSet map[Effect]struct{}

// NewEffectSet returns a set holding the given tags.
func NewEffectSet(effects ...Effect) EffectSet {
	s := make(EffectSet, len(effects))
	for _, e := range effects {
		s[e] = struct{}{}
	}
	return s
}

// Has reports whether e is in the set.
func (s EffectSet) Has(e Effect) bool {
	_, ok := s[e]
	return ok
}

// Clone returns an independent copy of s. Cloning a nil set yields an empty set.
func (s EffectSet) Clone() EffectSet {
	out := make(EffectSet, len(s))
	for e := range s {
		out[e] = struct{}{}
	}
	return out
}

// Sorted returns the tags in lexical order.
func (s EffectSet) Sorted() []Effect {
	out := make([]Effect, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UnmarshalYAML decodes a list of tags.
func (s *EffectSet) UnmarshalYAML(value *yaml.Node) error {
	var raw []Effect
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decoding effects: %w", err)
	}
	*s = NewEffectSet(raw...)
	return nil
}

// Weapon is the immutable configuration of a beam weapon.
type Weapon struct {
	ID         string           `yaml:"id"`
	Name       string           `yaml:"name"`
	Damage     float64          `yaml:"damage"`
	Range      float64          `yaml:"range"`
	AttackRate float64          `yaml:"attack_rate"` // shots per second
	Targeting  elevation.Policy `yaml:"targets"`

	// Visual parameters consumed by rendering.
	BeamWidth    float64       `yaml:"beam_width"`
	BeamDuration time.Duration `yaml:"beam_duration"`
	Ordinance    string        `yaml:"ordinance"`

	Effects EffectSet `yaml:"effects"`
}

// Copy returns a structurally identical weapon with its own effect set.
//
// Postcondition: Mutating the copy's Effects never affects w.
func (w *Weapon) Copy() *Weapon {
	cp := *w
	cp.Effects = w.Effects.Clone()
	return &cp
}

// CopyWithModifiers returns a new weapon whose damage, range and attack rate
// are scaled by m. All other fields pass through unchanged.
//
// Postcondition: Neither w nor m is modified.
func (w *Weapon) CopyWithModifiers(m Modifier) *Weapon {
	cp := w.Copy()
	cp.Damage = w.Damage * m.Damage
	cp.Range = w.Range * m.Range
	cp.AttackRate = w.AttackRate * m.AttackRate
	return cp
}

// Cooldown returns the interval between shots implied by AttackRate.
//
// Postcondition: Returns 0 when AttackRate <= 0.
func (w *Weapon) Cooldown() time.Duration {
	if w.AttackRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / w.AttackRate)
}

// Validate checks that the Weapon satisfies its invariants.
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (w *Weapon) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if w.Damage < 0 {
		errs = append(errs, errors.New("Damage must be >= 0"))
	}
	if w.Range <= 0 {
		errs = append(errs, errors.New("Range must be > 0"))
	}
	if w.AttackRate <= 0 {
		errs = append(errs, errors.New("AttackRate must be > 0"))
	}
	if w.Targeting.IsEmpty() {
		errs = append(errs, errors.New("targets must name at least one elevation"))
	}
	if w.BeamWidth < 0 {
		errs = append(errs, errors.New("BeamWidth must be >= 0"))
	}
	if w.BeamDuration < 0 {
		errs = append(errs, errors.New("BeamDuration must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

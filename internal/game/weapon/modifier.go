package weapon

import "fmt"

// Modifier carries the multipliers a research upgrade applies to a weapon.
type Modifier struct {
	Damage     float64 `yaml:"damage"`
	Range      float64 `yaml:"range"`
	AttackRate float64 `yaml:"attack_rate"`
}

// Identity is the Modifier that leaves a weapon unchanged.
var Identity = Modifier{Damage: 1, Range: 1, AttackRate: 1}

// Combine returns the modifier equivalent to applying m then o.
func (m Modifier) Combine(o Modifier) Modifier {
	return Modifier{
		Damage:     m.Damage * o.Damage,
		Range:      m.Range * o.Range,
		AttackRate: m.AttackRate * o.AttackRate,
	}
}

// Validate rejects non-positive multipliers.
func (m Modifier) Validate() error {
	if m.Damage <= 0 || m.Range <= 0 || m.AttackRate <= 0 {
		return fmt.Errorf("modifier multipliers must be > 0, got damage=%v range=%v attack_rate=%v",
			m.Damage, m.Range, m.AttackRate)
	}
	return nil
}

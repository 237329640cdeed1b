// Package elevation models the vertical bands a projectile may travel through
// and the per-weapon policies deciding which bands a weapon may engage.
package elevation

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Elevation is a discrete vertical band.
type Elevation int

const (
	// Ground is the band of terrain, obstacles, deposits, buildings and shields.
	Ground Elevation = iota
	// LowAir is the band of low-flying units such as gunships.
	LowAir
	// HighAir is the band of high-altitude units such as bombers.
	HighAir
)

var names = map[Elevation]string{
	Ground:  "ground",
	LowAir:  "low_air",
	HighAir: "high_air",
}

// All lists every band in ascending altitude.
var All = []Elevation{Ground, LowAir, HighAir}

// String returns the configuration name of the band.
func (e Elevation) String() string {
	if n, ok := names[e]; ok {
		return n
	}
	return fmt.Sprintf("elevation(%d)", int(e))
}

// IsAirborne reports whether e is above the ground band.
func (e Elevation) IsAirborne() bool { return e != Ground }

// Valid reports whether e is a known band.
func (e Elevation) Valid() bool {
	_, ok := names[e]
	return ok
}

// Parse maps a configuration name to its band.
//
// Postcondition: Returns an error for unknown names.
func Parse(s string) (Elevation, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for e, n := range names {
		if n == key {
			return e, nil
		}
	}
	return Ground, fmt.Errorf("unknown elevation %q", s)
}

// UnmarshalYAML decodes a band name.
func (e *Elevation) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Policy is the set of bands a weapon may engage.
// The zero Policy engages nothing.
type Policy struct {
	mask uint8
}

// Common policies.
var (
	GroundOnly = NewPolicy(Ground)
	AirOnly    = NewPolicy(LowAir, HighAir)
	AllBands   = NewPolicy(Ground, LowAir, HighAir)
)

// NewPolicy returns a policy engaging exactly the given bands.
func NewPolicy(bands ...Elevation) Policy {
	var p Policy
	for _, b := range bands {
		if b.Valid() {
			p.mask |= 1 << uint(b)
		}
	}
	return p
}

// CanEngage reports whether a shot fired under p may reach a body at e.
func (p Policy) CanEngage(e Elevation) bool {
	if !e.Valid() {
		return false
	}
	return p.mask&(1<<uint(e)) != 0
}

// CanEngageAir reports whether p includes any airborne band.
func (p Policy) CanEngageAir() bool {
	return p.CanEngage(LowAir) || p.CanEngage(HighAir)
}

// IsEmpty reports whether p engages no band.
func (p Policy) IsEmpty() bool { return p.mask == 0 }

// Bands returns the engaged bands in ascending altitude.
func (p Policy) Bands() []Elevation {
	var out []Elevation
	for _, e := range All {
		if p.CanEngage(e) {
			out = append(out, e)
		}
	}
	return out
}

// String returns the comma-joined band names.
func (p Policy) String() string {
	parts := make([]string, 0, len(All))
	for _, e := range p.Bands() {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ",")
}

// UnmarshalYAML accepts either a list of band names or one of the aliases
// "all", "air" and "ground".
func (p *Policy) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		switch strings.ToLower(strings.TrimSpace(value.Value)) {
		case "all":
			*p = AllBands
			return nil
		case "air":
			*p = AirOnly
			return nil
		}
		e, err := Parse(value.Value)
		if err != nil {
			return err
		}
		*p = NewPolicy(e)
		return nil
	}
	var raw []Elevation
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decoding targeting policy: %w", err)
	}
	*p = NewPolicy(raw...)
	return nil
}

package weapon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownWeapon is returned when a weapon ID is not registered.
var ErrUnknownWeapon = errors.New("unknown weapon")

// Registry holds all known weapons keyed by ID.
type Registry struct {
	weapons map[string]*Weapon
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{weapons: make(map[string]*Weapon)}
}

// Register adds w to the registry, overwriting any existing entry with the same ID.
// Precondition: w must not be nil and w.ID must not be empty.
func (r *Registry) Register(w *Weapon) {
	r.weapons[w.ID] = w
}

// Get returns the weapon for id.
//
// Postcondition: Returns an error wrapping ErrUnknownWeapon when id is absent.
func (r *Registry) Get(id string) (*Weapon, error) {
	w, ok := r.weapons[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWeapon, id)
	}
	return w, nil
}

// All returns every weapon ordered by ID.
func (r *Registry) All() []*Weapon {
	out := make([]*Weapon, 0, len(r.weapons))
	for _, w := range r.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Upgrade replaces the weapon registered under id with a copy scaled by m.
// The previously registered weapon value is left untouched.
//
// Postcondition: Returns the new weapon, or an error if id is unknown or m is invalid.
func (r *Registry) Upgrade(id string, m Modifier) (*Weapon, error) {
	w, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("upgrading %q: %w", id, err)
	}
	upgraded := w.CopyWithModifiers(m)
	r.weapons[id] = upgraded
	return upgraded, nil
}

// ResearchFunc reports the research modifier for a weapon ID, or false for none.
type ResearchFunc func(id string) (Modifier, bool)

// ApplyResearch upgrades every registered weapon that research reports a
// modifier for, in ID order.
//
// Postcondition: Returns the upgraded IDs. On error the weapons upgraded so
// far keep their upgrades.
func (r *Registry) ApplyResearch(research ResearchFunc) ([]string, error) {
	var upgraded []string
	for _, w := range r.All() {
		m, ok := research(w.ID)
		if !ok {
			continue
		}
		if _, err := r.Upgrade(w.ID, m); err != nil {
			return upgraded, err
		}
		upgraded = append(upgraded, w.ID)
	}
	return upgraded, nil
}

// LoadWeapons reads all *.yaml files from dir, parses each as a Weapon,
// validates it, and returns a populated Registry.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid weapons or the first encountered error.
func LoadWeapons(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: cannot read directory %q: %w", dir, err)
	}

	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot read file %q: %w", path, err)
		}
		var w Weapon
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("LoadWeapons: invalid weapon in %q: %w", path, err)
		}
		if w.Effects == nil {
			w.Effects = NewEffectSet()
		}
		if _, dup := reg.weapons[w.ID]; dup {
			return nil, fmt.Errorf("LoadWeapons: duplicate weapon ID %q in %q", w.ID, path)
		}
		reg.Register(&w)
	}
	return reg, nil
}

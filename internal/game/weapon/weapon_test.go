package weapon_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/elevation"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

func laser() *weapon.Weapon {
	return &weapon.Weapon{
		ID:           "laser",
		Name:         "Laser",
		Damage:       10,
		Range:        150,
		AttackRate:   2,
		Targeting:    elevation.AllBands,
		BeamWidth:    1.5,
		BeamDuration: 200 * time.Millisecond,
		Ordinance:    "beam_red",
		Effects:      weapon.NewEffectSet("burn", "pierce_light"),
	}
}

func TestWeapon_Validate_RejectsEmpty(t *testing.T) {
	w := &weapon.Weapon{}
	if err := w.Validate(); err == nil {
		t.Fatal("expected error for empty Weapon, got nil")
	}
}

func TestWeapon_Validate_AcceptsLaser(t *testing.T) {
	if err := laser().Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestWeapon_Validate_RequiresTargets(t *testing.T) {
	w := laser()
	w.Targeting = elevation.Policy{}
	assert.Error(t, w.Validate())
}

func TestWeapon_Cooldown(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, laser().Cooldown())
	w := laser()
	w.AttackRate = 0
	assert.Equal(t, time.Duration(0), w.Cooldown())
}

func TestWeapon_Copy_IsDefensive(t *testing.T) {
	src := laser()
	cp := src.Copy()
	assert.Equal(t, src, cp)
	cp.Effects["stun"] = struct{}{}
	assert.False(t, src.Effects.Has("stun"))
}

func TestWeapon_Copy_NilEffects(t *testing.T) {
	src := laser()
	src.Effects = nil
	cp := src.Copy()
	require.NotNil(t, cp.Effects)
	assert.Empty(t, cp.Effects)
}

func TestWeapon_CopyWithModifiers_ScalesOnlyCombatStats(t *testing.T) {
	src := laser()
	m := weapon.Modifier{Damage: 1.5, Range: 1.2, AttackRate: 0.5}
	up := src.CopyWithModifiers(m)

	assert.Equal(t, 15.0, up.Damage)
	assert.Equal(t, 180.0, up.Range)
	assert.Equal(t, 1.0, up.AttackRate)
	assert.Equal(t, src.BeamWidth, up.BeamWidth)
	assert.Equal(t, src.BeamDuration, up.BeamDuration)
	assert.Equal(t, src.Ordinance, up.Ordinance)
	assert.Equal(t, src.Targeting, up.Targeting)
	assert.Equal(t, src.Effects, up.Effects)

	// The source and the modifier are untouched.
	assert.Equal(t, laser(), src)
	assert.Equal(t, weapon.Modifier{Damage: 1.5, Range: 1.2, AttackRate: 0.5}, m)
}

func TestProperty_CopyWithModifiers_ExactScaling(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := laser()
		src.Damage = rapid.Float64Range(0, 1000).Draw(rt, "damage")
		src.Range = rapid.Float64Range(1, 1000).Draw(rt, "range")
		src.AttackRate = rapid.Float64Range(0.1, 20).Draw(rt, "rate")
		m := weapon.Modifier{
			Damage:     rapid.Float64Range(0.1, 5).Draw(rt, "dm"),
			Range:      rapid.Float64Range(0.1, 5).Draw(rt, "rm"),
			AttackRate: rapid.Float64Range(0.1, 5).Draw(rt, "am"),
		}
		before := *src
		up := src.CopyWithModifiers(m)
		if up.Damage != before.Damage*m.Damage || up.Range != before.Range*m.Range || up.AttackRate != before.AttackRate*m.AttackRate {
			rt.Fatalf("scaling mismatch: %+v with %+v", up, m)
		}
		if up.BeamWidth != before.BeamWidth || up.BeamDuration != before.BeamDuration || up.Ordinance != before.Ordinance {
			rt.Fatal("visual parameters changed")
		}
		if src.Damage != before.Damage || src.Range != before.Range || src.AttackRate != before.AttackRate {
			rt.Fatal("source weapon mutated")
		}
	})
}

func TestModifier_CombineAndValidate(t *testing.T) {
	m := weapon.Modifier{Damage: 2, Range: 1.5, AttackRate: 1}.Combine(weapon.Modifier{Damage: 1.5, Range: 2, AttackRate: 3})
	assert.Equal(t, weapon.Modifier{Damage: 3, Range: 3, AttackRate: 3}, m)
	assert.Equal(t, m, m.Combine(weapon.Identity))
	assert.NoError(t, weapon.Identity.Validate())
	assert.Error(t, weapon.Modifier{Damage: 0, Range: 1, AttackRate: 1}.Validate())
}

func TestEffectSet_Sorted(t *testing.T) {
	s := weapon.NewEffectSet("stun", "burn", "emp")
	assert.Equal(t, []weapon.Effect{"burn", "emp", "stun"}, s.Sorted())
}

func TestRegistry_GetAndUpgrade(t *testing.T) {
	reg := weapon.NewRegistry()
	src := laser()
	reg.Register(src)

	_, err := reg.Get("missing")
	assert.True(t, errors.Is(err, weapon.ErrUnknownWeapon))

	up, err := reg.Upgrade("laser", weapon.Modifier{Damage: 2, Range: 1, AttackRate: 1})
	require.NoError(t, err)
	assert.Equal(t, 20.0, up.Damage)
	assert.Equal(t, 10.0, src.Damage, "registered original must not be mutated")
	got, err := reg.Get("laser")
	require.NoError(t, err)
	assert.Same(t, up, got)

	_, err = reg.Upgrade("laser", weapon.Modifier{})
	assert.Error(t, err)
}

func TestLoadWeapons_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	content := `id: pulse_laser
name: Pulse Laser
damage: 12
range: 160
attack_rate: 1.5
targets: [ground, low_air]
beam_width: 2
beam_duration: 250ms
ordinance: beam_blue
effects: [burn]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pulse_laser.yaml"), []byte(content), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0644))

	reg, err := weapon.LoadWeapons(dir)
	require.NoError(t, err)
	require.Len(t, reg.All(), 1)
	w, err := reg.Get("pulse_laser")
	require.NoError(t, err)
	assert.Equal(t, "Pulse Laser", w.Name)
	assert.Equal(t, 160.0, w.Range)
	assert.Equal(t, 250*time.Millisecond, w.BeamDuration)
	assert.True(t, w.Targeting.CanEngage(elevation.LowAir))
	assert.False(t, w.Targeting.CanEngage(elevation.HighAir))
	assert.True(t, w.Effects.Has("burn"))
}

func TestLoadWeapons_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\nname: Bad\n"), 0644))
	_, err := weapon.LoadWeapons(dir)
	assert.Error(t, err)
}

func TestLoadWeapons_RejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	doc := "id: dup\nname: Dup\ndamage: 1\nrange: 10\nattack_rate: 1\ntargets: all\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(doc), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(doc), 0644))
	_, err := weapon.LoadWeapons(dir)
	assert.Error(t, err)
}

func TestLoadWeapons_MissingDir(t *testing.T) {
	_, err := weapon.LoadWeapons(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRegistry_ApplyResearch(t *testing.T) {
	reg := weapon.NewRegistry()
	reg.Register(laser())
	cannon := laser()
	cannon.ID = "cannon"
	reg.Register(cannon)

	ids, err := reg.ApplyResearch(func(id string) (weapon.Modifier, bool) {
		if id == "laser" {
			return weapon.Modifier{Damage: 2, Range: 1, AttackRate: 1}, true
		}
		return weapon.Modifier{}, false
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"laser"}, ids)

	got, err := reg.Get("laser")
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Damage)
	got, err = reg.Get("cannon")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Damage)
}

func TestRegistry_ApplyResearch_RejectsInvalidModifier(t *testing.T) {
	reg := weapon.NewRegistry()
	reg.Register(laser())
	_, err := reg.ApplyResearch(func(string) (weapon.Modifier, bool) {
		return weapon.Modifier{Damage: 0, Range: 1, AttackRate: 1}, true
	})
	assert.Error(t, err)
}

func TestLoadWeapons_ShippedContent(t *testing.T) {
	reg, err := weapon.LoadWeapons(filepath.Join("..", "..", "..", "content", "weapons"))
	require.NoError(t, err)
	flak, err := reg.Get("flak_lance")
	require.NoError(t, err)
	assert.False(t, flak.Targeting.CanEngage(elevation.Ground))
	assert.True(t, flak.Targeting.CanEngage(elevation.HighAir))
	assert.Empty(t, flak.Effects.Sorted())
}

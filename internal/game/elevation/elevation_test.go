package elevation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/elevation"
)

func TestElevation_IsAirborne(t *testing.T) {
	assert.False(t, elevation.Ground.IsAirborne())
	assert.True(t, elevation.LowAir.IsAirborne())
	assert.True(t, elevation.HighAir.IsAirborne())
}

func TestParse_RoundTripsNames(t *testing.T) {
	for _, e := range elevation.All {
		got, err := elevation.Parse(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	_, err := elevation.Parse("orbit")
	assert.Error(t, err)
}

func TestPolicy_CommonPolicies(t *testing.T) {
	assert.True(t, elevation.GroundOnly.CanEngage(elevation.Ground))
	assert.False(t, elevation.GroundOnly.CanEngageAir())
	assert.False(t, elevation.AirOnly.CanEngage(elevation.Ground))
	assert.True(t, elevation.AirOnly.CanEngage(elevation.HighAir))
	assert.Equal(t, elevation.All, elevation.AllBands.Bands())
	assert.True(t, elevation.Policy{}.IsEmpty())
}

func TestPolicy_RejectsUnknownBand(t *testing.T) {
	assert.False(t, elevation.AllBands.CanEngage(elevation.Elevation(42)))
}

func TestPolicy_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		doc  string
		want elevation.Policy
	}{
		{"targets: all", elevation.AllBands},
		{"targets: air", elevation.AirOnly},
		{"targets: ground", elevation.GroundOnly},
		{"targets: [ground, high_air]", elevation.NewPolicy(elevation.Ground, elevation.HighAir)},
	}
	for _, tc := range tests {
		var out struct {
			Targets elevation.Policy `yaml:"targets"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(tc.doc), &out), tc.doc)
		assert.Equal(t, tc.want, out.Targets, tc.doc)
	}
}

func TestPolicy_UnmarshalYAML_UnknownBand(t *testing.T) {
	var out struct {
		Targets elevation.Policy `yaml:"targets"`
	}
	assert.Error(t, yaml.Unmarshal([]byte("targets: [space]"), &out))
}

func TestProperty_Policy_EngagesExactlyItsBands(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bands := rapid.SliceOfDistinct(rapid.SampledFrom(elevation.All), func(e elevation.Elevation) elevation.Elevation { return e }).Draw(rt, "bands")
		p := elevation.NewPolicy(bands...)
		in := map[elevation.Elevation]bool{}
		for _, b := range bands {
			in[b] = true
		}
		for _, e := range elevation.All {
			if p.CanEngage(e) != in[e] {
				rt.Fatalf("CanEngage(%s)=%v, want %v", e, p.CanEngage(e), in[e])
			}
		}
	})
}

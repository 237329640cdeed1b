package scenario

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/elevation"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/physics"
)

// yamlScenarioFile is the top-level YAML structure for scenario files.
type yamlScenarioFile struct {
	Scenario yamlScenario `yaml:"scenario"`
}

type yamlScenario struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Units     []yamlUnit     `yaml:"units"`
	Obstacles []yamlShape    `yaml:"obstacles"`
	Deposits  []yamlShape    `yaml:"deposits"`
	Buildings []yamlBuilding `yaml:"buildings"`
	Volleys   []yamlVolley   `yaml:"volleys"`
}

type yamlUnit struct {
	ID        string              `yaml:"id"`
	Team      int                 `yaml:"team"`
	Position  geom.Vec2           `yaml:"position"`
	Elevation elevation.Elevation `yaml:"elevation"`
	Radius    float64             `yaml:"radius"`
	Inactive  bool                `yaml:"inactive"`
}

// yamlShape holds exactly one of circle or rect.
type yamlShape struct {
	Circle *yamlCircle `yaml:"circle"`
	Rect   *yamlRect   `yaml:"rect"`
}

type yamlCircle struct {
	Center geom.Vec2 `yaml:"center"`
	Radius float64   `yaml:"radius"`
}

type yamlRect struct {
	Min geom.Vec2 `yaml:"min"`
	Max geom.Vec2 `yaml:"max"`
}

type yamlBuilding struct {
	ID     string      `yaml:"id"`
	Team   int         `yaml:"team"`
	HP     float64     `yaml:"hp"`
	Shield *yamlCircle `yaml:"shield"`
}

type yamlVolley struct {
	Tick  int        `yaml:"tick"`
	Shots []yamlShot `yaml:"shots"`
}

type yamlShot struct {
	Shooter string    `yaml:"shooter"`
	Weapon  string    `yaml:"weapon"`
	Target  geom.Vec2 `yaml:"target"`
}

// LoadFromFile reads and validates a scenario YAML file.
//
// Precondition: path must point to a valid YAML scenario file.
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadFromFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a scenario from YAML bytes.
//
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadFromBytes(data []byte) (*Scenario, error) {
	var file yamlScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	s, err := convertYAMLScenario(file.Scenario)
	if err != nil {
		return nil, fmt.Errorf("converting scenario %q: %w", file.Scenario.ID, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating scenario: %w", err)
	}
	return s, nil
}

func convertYAMLScenario(ys yamlScenario) (*Scenario, error) {
	s := &Scenario{ID: ys.ID, Name: ys.Name}

	for _, yu := range ys.Units {
		radius := yu.Radius
		if radius == 0 {
			radius = DefaultUnitRadius
		}
		s.Units = append(s.Units, UnitSpec{
			Unit: entity.Unit{
				ID:        yu.ID,
				Team:      entity.Team(yu.Team),
				Position:  yu.Position,
				Elevation: yu.Elevation,
				Active:    !yu.Inactive,
			},
			Radius: radius,
		})
	}

	for i, ysh := range ys.Obstacles {
		shape, err := convertShape(ysh)
		if err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		s.Obstacles = append(s.Obstacles, shape)
	}
	for i, ysh := range ys.Deposits {
		shape, err := convertShape(ysh)
		if err != nil {
			return nil, fmt.Errorf("deposit %d: %w", i, err)
		}
		s.Deposits = append(s.Deposits, shape)
	}

	for _, yb := range ys.Buildings {
		b := BuildingSpec{ID: yb.ID, Team: entity.Team(yb.Team), HP: yb.HP}
		if yb.Shield != nil {
			b.Shield = &ShieldSpec{Center: yb.Shield.Center, Radius: yb.Shield.Radius}
		}
		s.Buildings = append(s.Buildings, b)
	}

	for _, yv := range ys.Volleys {
		v := Volley{Tick: yv.Tick}
		for _, ysh := range yv.Shots {
			v.Shots = append(v.Shots, Shot{Shooter: ysh.Shooter, Weapon: ysh.Weapon, Target: ysh.Target})
		}
		s.Volleys = append(s.Volleys, v)
	}
	sort.SliceStable(s.Volleys, func(i, j int) bool { return s.Volleys[i].Tick < s.Volleys[j].Tick })

	return s, nil
}

func convertShape(ys yamlShape) (physics.Shape, error) {
	switch {
	case ys.Circle != nil && ys.Rect != nil:
		return nil, fmt.Errorf("shape must be either circle or rect, not both")
	case ys.Circle != nil:
		if ys.Circle.Radius <= 0 {
			return nil, fmt.Errorf("circle radius must be > 0, got %v", ys.Circle.Radius)
		}
		return physics.Circle{Center: ys.Circle.Center, Radius: ys.Circle.Radius}, nil
	case ys.Rect != nil:
		r := ys.Rect
		if r.Min.X > r.Max.X || r.Min.Y > r.Max.Y {
			return nil, fmt.Errorf("rect min %v exceeds max %v", r.Min, r.Max)
		}
		return physics.Rect{Min: r.Min, Max: r.Max}, nil
	default:
		return nil, fmt.Errorf("shape must declare circle or rect")
	}
}

package physics

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Shape is a fixture outline. The set of shapes is closed to this package.
type Shape interface {
	// rayEntry returns the distance along the unit ray dir from start at which
	// the ray first crosses the shape boundary. A ray starting inside the shape
	// reports the distance at which it leaves.
	rayEntry(start, dir geom.Vec2) (float64, bool)
	// Bounds returns the axis-aligned bounding box of the shape.
	Bounds() (min, max geom.Vec2)
}

// Circle is a disc fixture. A zero radius makes a point body.
type Circle struct {
	Center geom.Vec2
	Radius float64
}

// Bounds implements Shape.
func (c Circle) Bounds() (geom.Vec2, geom.Vec2) {
	r := geom.V(c.Radius, c.Radius)
	return c.Center.Sub(r), c.Center.Add(r)
}

func (c Circle) rayEntry(start, dir geom.Vec2) (float64, bool) {
	m := start.Sub(c.Center)
	b := m.Dot(dir)
	cc := m.LenSq() - c.Radius*c.Radius
	if cc > 0 && b > 0 {
		// Outside and pointing away.
		return 0, false
	}
	disc := b*b - cc
	if disc < 0 {
		// Tangent and point hits land here through rounding.
		if disc < -geom.Epsilon*(1+b*b) {
			return 0, false
		}
		disc = 0
	}
	root := math.Sqrt(disc)
	if cc > 0 {
		return -b - root, true
	}
	return -b + root, true
}

// Rect is an axis-aligned box fixture.
type Rect struct {
	Min geom.Vec2
	Max geom.Vec2
}

// Bounds implements Shape.
func (r Rect) Bounds() (geom.Vec2, geom.Vec2) { return r.Min, r.Max }

func (r Rect) rayEntry(start, dir geom.Vec2) (float64, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)
	axes := [2]struct{ s, d, lo, hi float64 }{
		{start.X, dir.X, r.Min.X, r.Max.X},
		{start.Y, dir.Y, r.Min.Y, r.Max.Y},
	}
	for _, a := range axes {
		if math.Abs(a.d) <= geom.Epsilon {
			if a.s < a.lo || a.s > a.hi {
				return 0, false
			}
			continue
		}
		t1 := (a.lo - a.s) / a.d
		t2 := (a.hi - a.s) / a.d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	if tMax < 0 {
		return 0, false
	}
	if tMin >= 0 {
		return tMin, true
	}
	return tMax, true
}

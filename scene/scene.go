// Package scene holds static ground geometry and answers the suspension's
// downward ray casts against it.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Surface is anything a ray can hit.
type Surface interface {
	// Intersect returns the ray parameter of the first hit with t >= 0.
	Intersect(origin, direction mgl64.Vec3) (t float64, ok bool)
}

// Plane is an infinite plane through Point with unit Normal.
type Plane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// GroundPlane is a horizontal plane at height y.
func GroundPlane(y float64) Plane {
	return Plane{Point: mgl64.Vec3{0, y, 0}, Normal: mgl64.Vec3{0, 1, 0}}
}

func (p Plane) Intersect(origin, direction mgl64.Vec3) (float64, bool) {
	denom := direction.Dot(p.Normal)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t := p.Point.Sub(origin).Dot(p.Normal) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Box is an axis-aligned solid box.
type Box struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Intersect uses the slab method. A ray starting inside the box hits at t=0.
func (b Box) Intersect(origin, direction mgl64.Vec3) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := range 3 {
		if math.Abs(direction[i]) < 1e-12 {
			if origin[i] < b.Min[i] || origin[i] > b.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / direction[i]
		t1 := (b.Min[i] - origin[i]) * inv
		t2 := (b.Max[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return math.Max(tmin, 0), true
}

// Scene is a fixed set of surfaces.
type Scene struct {
	surfaces []Surface
}

// New creates a scene from surfaces.
func New(surfaces ...Surface) *Scene {
	return &Scene{surfaces: surfaces}
}

// Add appends a surface.
func (s *Scene) Add(surface Surface) {
	s.surfaces = append(s.surfaces, surface)
}

// Len returns the number of surfaces.
func (s *Scene) Len() int { return len(s.surfaces) }

// Cast returns the nearest hit distance along direction within maxDistance.
// A zero direction never hits.
func (s *Scene) Cast(origin, direction mgl64.Vec3, maxDistance float64) (float64, bool) {
	length := direction.Len()
	if length < 1e-12 {
		return 0, false
	}
	dir := direction.Mul(1 / length)

	best, found := math.Inf(1), false
	for _, surf := range s.surfaces {
		t, ok := surf.Intersect(origin, dir)
		if ok && t <= maxDistance && t < best {
			best, found = t, true
		}
	}
	if !found {
		return 0, false
	}
	return best, true
}

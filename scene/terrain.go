package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"
)

const (
	maxMarchDistance = 1000.0
	bisectIterations = 40
	stepsPerWave     = 16
)

// Terrain is rolling ground whose height varies with simplex noise around Base.
type Terrain struct {
	Base       float64
	Amplitude  float64
	Wavelength float64

	noise opensimplex.Noise
	step  float64
}

// NewTerrain creates a deterministic terrain for seed.
// Heights stay within Base ± Amplitude.
func NewTerrain(seed int64, base, amplitude, wavelength float64) *Terrain {
	if wavelength <= 0 {
		wavelength = 1
	}
	return &Terrain{
		Base:       base,
		Amplitude:  math.Abs(amplitude),
		Wavelength: wavelength,
		noise:      opensimplex.NewNormalized(seed),
		step:       wavelength / stepsPerWave,
	}
}

// HeightAt returns the ground height under (x, z).
func (t *Terrain) HeightAt(x, z float64) float64 {
	n := t.noise.Eval2(x/t.Wavelength, z/t.Wavelength)
	return t.Base + t.Amplitude*(2*n-1)
}

// Intersect marches the ray through the height band and refines the first
// crossing by bisection. A ray starting below the surface misses.
func (t *Terrain) Intersect(origin, direction mgl64.Vec3) (float64, bool) {
	lo, hi := t.Base-t.Amplitude, t.Base+t.Amplitude

	t0, t1 := 0.0, maxMarchDistance
	dy := direction.Y()
	if math.Abs(dy) < 1e-12 {
		if origin.Y() < lo || origin.Y() > hi {
			return 0, false
		}
	} else {
		a := (hi - origin.Y()) / dy
		b := (lo - origin.Y()) / dy
		if a > b {
			a, b = b, a
		}
		t0, t1 = math.Max(t0, a), math.Min(t1, b)
		if t0 > t1 {
			return 0, false
		}
	}

	above := func(s float64) float64 {
		p := origin.Add(direction.Mul(s))
		return p.Y() - t.HeightAt(p.X(), p.Z())
	}

	prev := t0
	if above(prev) <= 0 {
		if prev == 0 {
			return 0, false
		}
		return prev, true
	}
	for {
		s := math.Min(prev+t.step, t1)
		if above(s) <= 0 {
			return t.bisect(above, prev, s), true
		}
		if s >= t1 {
			return 0, false
		}
		prev = s
	}
}

// bisect narrows [lo, hi] where above(lo) > 0 and above(hi) <= 0.
func (t *Terrain) bisect(above func(float64) float64, lo, hi float64) float64 {
	for range bisectIterations {
		mid := 0.5 * (lo + hi)
		if above(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

package vehicle

import (
	"math"
	"testing"
)

func TestAntiRollSymmetry(t *testing.T) {
	for _, c := range []float64{-0.2, -0.05, 0, 0.01, 0.15, 0.2} {
		for _, k := range []float64{0, 6000, 8000} {
			a, b := ComputeAntiRollForces(c, c, k)
			if a != 0 || b != 0 {
				t.Errorf("ComputeAntiRollForces(%v, %v, %v) = (%v, %v), want (0, 0)", c, c, k, a, b)
			}
		}
	}
}

func TestAntiRollAntiSymmetry(t *testing.T) {
	pairs := [][2]float64{{0.1, 0.05}, {-0.2, 0.2}, {0.0, 0.13}, {0.07, -0.01}}
	for _, p := range pairs {
		a1, b1 := ComputeAntiRollForces(p[0], p[1], 8000)
		a2, b2 := ComputeAntiRollForces(p[1], p[0], 8000)
		if math.Abs(a1+a2) > 1e-9 || math.Abs(b1+b2) > 1e-9 {
			t.Errorf("(%v, %v): (%v, %v) vs swapped (%v, %v)", p[0], p[1], a1, b1, a2, b2)
		}
	}
}

func TestAntiRollForces(t *testing.T) {
	// Left compressed more than right: left is pushed down, right pulled up.
	a, b := ComputeAntiRollForces(0.1, 0.05, 8000)
	if math.Abs(a+400) > 1e-9 {
		t.Errorf("forceA = %v, want -400", a)
	}
	if math.Abs(b-400) > 1e-9 {
		t.Errorf("forceB = %v, want 400", b)
	}
}

func TestHasRecentContact(t *testing.T) {
	tests := []struct {
		compression float64
		want        bool
	}{
		{0.1, true},
		{0, true},
		{-0.00005, true},
		{-0.0001, false},
		{-0.2, false},
	}
	for _, tt := range tests {
		if got := HasRecentContact(tt.compression); got != tt.want {
			t.Errorf("HasRecentContact(%v) = %v, want %v", tt.compression, got, tt.want)
		}
	}
}

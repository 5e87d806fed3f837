package drivetrain

import (
	"math"
	"testing"
)

func TestEngineSimulate(t *testing.T) {
	e := NewEngine(200, 20)
	tests := []struct {
		name     string
		throttle float64
		speed    float64
		want     float64
	}{
		{"idle", 0, 5, 0},
		{"full from rest", 1, 0, 200},
		{"half speed", 1, 10, 100},
		{"top speed", 1, 20, 0},
		{"beyond top speed", 1, 30, 0},
		{"rolling backwards", 1, -5, 200},
		{"reverse from rest", -1, 0, -200},
		{"reverse while reversing", -1, -10, -100},
		{"braking from forward", -1, 5, -200},
		{"clamped throttle", 3, 0, 200},
		{"partial throttle", 0.25, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Simulate(tt.throttle, tt.speed, 0.02)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Simulate(%v, %v) = %v, want %v", tt.throttle, tt.speed, got, tt.want)
			}
			if e.LastTorque() != got {
				t.Errorf("LastTorque = %v, want %v", e.LastTorque(), got)
			}
		})
	}
}

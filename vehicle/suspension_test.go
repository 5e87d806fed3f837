package vehicle

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func defaultSuspension() SuspensionParams {
	return SuspensionParams{
		RestLength:      0.4,
		Travel:          0.2,
		SpringStiffness: 20000,
		DamperStiffness: 3500,
		WheelRadius:     0.35,
	}
}

func uprightFrame() MountFrame {
	return NewMount(mgl64.Vec3{}).Frame(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent())
}

func fixedGround(distance float64) GroundSensor {
	return GroundSensorFunc(func(_, _ mgl64.Vec3, maxDistance float64) (float64, bool) {
		if distance > maxDistance {
			return 0, false
		}
		return distance, true
	})
}

var noGround = GroundSensorFunc(func(_, _ mgl64.Vec3, _ float64) (float64, bool) {
	return 0, false
})

// vecNear compares componentwise with an absolute tolerance.
func vecNear(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestSuspensionScenario(t *testing.T) {
	p := defaultSuspension()
	res, state, err := ComputeSuspensionForce(fixedGround(0.7), uprightFrame(), p, SuspensionState{}, 0.02)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"length", res.Length, 0.35},
		{"compression", res.Compression, 0.05},
		{"spring", res.SpringForce, 1000},
		{"damper", res.DamperForce, 8750},
		{"total", res.Total, 9750},
		{"force.y", res.Force.Y(), 9750},
		{"state", state.LastCompression, 0.05},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-6 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !res.Contact {
		t.Error("expected contact")
	}
}

func TestSuspensionClampInvariant(t *testing.T) {
	p := defaultSuspension()
	for hit := 0.0; hit <= p.MaxDistance(); hit += 0.01 {
		_, compression := p.Compression(hit)
		if compression < -p.Travel-1e-12 || compression > p.Travel+1e-12 {
			t.Fatalf("hit %v: compression %v outside [-%v, %v]", hit, compression, p.Travel, p.Travel)
		}
	}

	// Extremes clamp to the travel limits.
	if _, c := p.Compression(0); math.Abs(c-p.Travel) > 1e-9 {
		t.Errorf("fully compressed = %v, want %v", c, p.Travel)
	}
	if _, c := p.Compression(10); math.Abs(c+p.Travel) > 1e-9 {
		t.Errorf("fully extended = %v, want %v", c, -p.Travel)
	}
}

func TestSuspensionSpringOnlyOnRepeatedHit(t *testing.T) {
	p := defaultSuspension()
	sensor := fixedGround(0.65)
	frame := uprightFrame()

	_, state, err := ComputeSuspensionForce(sensor, frame, p, SuspensionState{}, 0.02)
	if err != nil {
		t.Fatal(err)
	}
	res, _, err := ComputeSuspensionForce(sensor, frame, p, state, 0.02)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(res.DamperForce) > 1e-9 {
		t.Errorf("damper = %v, want 0", res.DamperForce)
	}
	if math.Abs(res.Total-res.SpringForce) > 1e-9 {
		t.Errorf("total %v != spring %v", res.Total, res.SpringForce)
	}
}

func TestSuspensionAirborneKeepsState(t *testing.T) {
	p := defaultSuspension()
	prev := SuspensionState{LastCompression: 0.12}

	res, state, err := ComputeSuspensionForce(noGround, uprightFrame(), p, prev, 0.02)
	if err != nil {
		t.Fatal(err)
	}
	if res.Contact {
		t.Error("expected no contact")
	}
	if res.Force != (mgl64.Vec3{}) {
		t.Errorf("force = %v, want zero", res.Force)
	}
	if state != prev {
		t.Errorf("state = %+v, want unchanged %+v", state, prev)
	}
}

func TestSuspensionNegativeTotalNotClamped(t *testing.T) {
	p := defaultSuspension()
	// Rebounding fast from full compression: damper pulls harder than spring pushes.
	prev := SuspensionState{LastCompression: 0.2}
	res, _, err := ComputeSuspensionForce(fixedGround(0.75), uprightFrame(), p, prev, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total >= 0 {
		t.Errorf("total = %v, want negative", res.Total)
	}
}

func TestSuspensionInvalidTimeStep(t *testing.T) {
	p := defaultSuspension()
	for _, dt := range []float64{0, -0.02, math.NaN(), math.Inf(1)} {
		prev := SuspensionState{LastCompression: 0.1}
		_, state, err := ComputeSuspensionForce(fixedGround(0.7), uprightFrame(), p, prev, dt)
		if !errors.Is(err, ErrInvalidTimeStep) {
			t.Errorf("dt=%v: err = %v, want ErrInvalidTimeStep", dt, err)
		}
		if state != prev {
			t.Errorf("dt=%v: state changed to %+v", dt, state)
		}
	}
}

func TestSuspensionCastsAlongMountDown(t *testing.T) {
	p := defaultSuspension()
	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	frame := NewMount(mgl64.Vec3{}).Frame(mgl64.Vec3{}, rot)

	var gotDir mgl64.Vec3
	var gotMax float64
	sensor := GroundSensorFunc(func(_, dir mgl64.Vec3, maxDistance float64) (float64, bool) {
		gotDir = dir
		gotMax = maxDistance
		return 0.7, true
	})
	res, _, err := ComputeSuspensionForce(sensor, frame, p, SuspensionState{}, 0.02)
	if err != nil {
		t.Fatal(err)
	}

	if !vecNear(gotDir, frame.Up.Mul(-1), 1e-9) {
		t.Errorf("cast direction = %v, want %v", gotDir, frame.Up.Mul(-1))
	}
	if math.Abs(gotMax-0.95) > 1e-9 {
		t.Errorf("max distance = %v, want 0.95", gotMax)
	}
	if !vecNear(res.Force.Normalize(), frame.Up, 1e-9) {
		t.Errorf("force direction = %v, want %v", res.Force.Normalize(), frame.Up)
	}
}

func TestSuspensionParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SuspensionParams)
		ok     bool
	}{
		{"defaults", func(*SuspensionParams) {}, true},
		{"zero rest length", func(p *SuspensionParams) { p.RestLength = 0 }, false},
		{"negative travel", func(p *SuspensionParams) { p.Travel = -0.1 }, false},
		{"zero radius", func(p *SuspensionParams) { p.WheelRadius = 0 }, false},
		{"negative damper", func(p *SuspensionParams) { p.DamperStiffness = -1 }, false},
		{"nan spring", func(p *SuspensionParams) { p.SpringStiffness = math.NaN() }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultSuspension()
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("err = %v, want ErrInvalidParams", err)
			}
		})
	}
}

package vehicle

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func defaultTire() TireParams {
	return TireParams{FrictionCoefficient: 1.0, LateralStiffness: 80, RollingResistance: 0.5}
}

func defaultDrive() DriveParams {
	return DriveParams{GearRatio: 8, Efficiency: 0.9, WheelRadius: 0.3}
}

func TestFrictionClampScenario(t *testing.T) {
	fx, fy, clamped := ClampFrictionCircle(5000, 3000, 1.0*4000)
	if !clamped {
		t.Fatal("expected clamp")
	}
	if math.Abs(fx-3429.97) > 1 || math.Abs(fy-2057.98) > 1 {
		t.Errorf("clamped = (%v, %v), want about (3430, 2058)", fx, fy)
	}
	if mag := math.Hypot(fx, fy); math.Abs(mag-4000) > 1e-6 {
		t.Errorf("magnitude = %v, want 4000", mag)
	}
	// Direction preserved.
	if math.Abs(fx/fy-5.0/3.0) > 1e-9 {
		t.Errorf("ratio = %v, want %v", fx/fy, 5.0/3.0)
	}
}

func TestFrictionClampPassThrough(t *testing.T) {
	tests := []struct {
		name   string
		fx, fy float64
		limit  float64
	}{
		{"inside circle", 300, 400, 1000},
		{"on circle", 600, 800, 1000},
		{"degenerate magnitude", 1e-7, 0, 0},
		{"zero force", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, fy, clamped := ClampFrictionCircle(tt.fx, tt.fy, tt.limit)
			if clamped || fx != tt.fx || fy != tt.fy {
				t.Errorf("got (%v, %v, %v), want unchanged", fx, fy, clamped)
			}
		})
	}
}

func TestFrictionCircleInvariant(t *testing.T) {
	frame := uprightFrame()
	p := TireParams{FrictionCoefficient: 0.9, LateralStiffness: 500, RollingResistance: 40}
	for _, load := range []float64{0, 100, 2500, 4000} {
		for vx := -30.0; vx <= 30; vx += 7.5 {
			for vz := -30.0; vz <= 30; vz += 7.5 {
				for _, torque := range []float64{-200, 0, 350} {
					in := TireInputs{Driven: true, EngineTorque: torque, NormalLoad: load, Drive: defaultDrive()}
					res := ComputeTireForce(frame, mgl64.Vec3{vx, 0, vz}, in, p)
					limit := p.FrictionCoefficient * load
					if mag := math.Hypot(res.Fx, res.Fy); mag > limit+1e-6 {
						t.Fatalf("v=(%v,%v) load=%v torque=%v: |F|=%v > %v", vx, vz, load, torque, mag, limit)
					}
				}
			}
		}
	}
}

func TestTireZeroVelocity(t *testing.T) {
	in := TireInputs{NormalLoad: 3000, Drive: defaultDrive()}
	res := ComputeTireForce(uprightFrame(), mgl64.Vec3{}, in, defaultTire())
	if res.Fx != 0 || res.Fy != 0 || res.Force != (mgl64.Vec3{}) {
		t.Errorf("got Fx=%v Fy=%v F=%v, want zero", res.Fx, res.Fy, res.Force)
	}

	// Driven wheel with no torque is the same.
	in.Driven = true
	res = ComputeTireForce(uprightFrame(), mgl64.Vec3{}, in, defaultTire())
	if res.Fx != 0 || res.Fy != 0 {
		t.Errorf("driven zero torque: Fx=%v Fy=%v, want zero", res.Fx, res.Fy)
	}
}

func TestTireDecomposition(t *testing.T) {
	frame := uprightFrame() // forward +Z, right +X
	in := TireInputs{NormalLoad: 1e6, Drive: defaultDrive()}
	res := ComputeTireForce(frame, mgl64.Vec3{2, 5, 10}, in, defaultTire())

	if res.VLong != 10 || res.VLat != 2 {
		t.Fatalf("VLong=%v VLat=%v, want 10, 2", res.VLong, res.VLat)
	}
	if math.Abs(res.Fx+5) > 1e-9 {
		t.Errorf("Fx = %v, want -5 (rolling resistance)", res.Fx)
	}
	if math.Abs(res.Fy+160) > 1e-9 {
		t.Errorf("Fy = %v, want -160 (lateral)", res.Fy)
	}
	want := mgl64.Vec3{-160, 0, -5}
	if !vecNear(res.Force, want, 1e-9) {
		t.Errorf("Force = %v, want %v", res.Force, want)
	}
}

func TestTireDriveForce(t *testing.T) {
	d := defaultDrive()
	// 100 Nm * 8 * 0.9 * 0.5 / 0.3 = 1200 N
	if got := DriveForce(100, d); math.Abs(got-1200) > 1e-9 {
		t.Errorf("DriveForce = %v, want 1200", got)
	}

	in := TireInputs{Driven: true, EngineTorque: 100, NormalLoad: 1e6, Drive: d}
	res := ComputeTireForce(uprightFrame(), mgl64.Vec3{}, in, defaultTire())
	if math.Abs(res.Fx-1200) > 1e-9 {
		t.Errorf("driven Fx = %v, want 1200", res.Fx)
	}

	in.Driven = false
	res = ComputeTireForce(uprightFrame(), mgl64.Vec3{}, in, defaultTire())
	if res.Fx != 0 {
		t.Errorf("undriven Fx = %v, want 0", res.Fx)
	}
}

func TestTireClampThroughModel(t *testing.T) {
	// Rolling resistance and lateral stiffness of 1 make Fx, Fy equal the
	// negated velocity components.
	p := TireParams{FrictionCoefficient: 1.0, LateralStiffness: 1, RollingResistance: 1}
	in := TireInputs{NormalLoad: 4000, Drive: defaultDrive()}
	res := ComputeTireForce(uprightFrame(), mgl64.Vec3{-3000, 0, -5000}, in, p)

	if !res.Clamped {
		t.Fatal("expected clamp")
	}
	if math.Abs(math.Hypot(res.Fx, res.Fy)-4000) > 1e-6 {
		t.Errorf("magnitude = %v, want 4000", math.Hypot(res.Fx, res.Fy))
	}
	if math.Abs(res.Fx-3430) > 1 || math.Abs(res.Fy-2058) > 1 {
		t.Errorf("(Fx, Fy) = (%v, %v), want about (3430, 2058)", res.Fx, res.Fy)
	}
}

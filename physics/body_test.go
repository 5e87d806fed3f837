package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBoxInertia(t *testing.T) {
	b := NewBoxBody(12, mgl64.Vec3{1, 2, 3})
	want := mgl64.Vec3{13, 10, 5}
	if !b.Inertia().ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("inertia = %v, want %v", b.Inertia(), want)
	}
}

func TestFreeFall(t *testing.T) {
	b := NewBoxBody(10, mgl64.Vec3{1, 1, 1})
	g := mgl64.Vec3{0, -9.81, 0}
	dt := 0.01
	for range 100 {
		b.Integrate(dt, g)
	}
	if math.Abs(b.LinearVelocity.Y()+9.81) > 1e-9 {
		t.Errorf("vy = %v, want -9.81", b.LinearVelocity.Y())
	}
	// Semi-implicit Euler: y = -g*dt^2*n(n+1)/2
	wantY := -9.81 * dt * dt * 100 * 101 / 2
	if math.Abs(b.Position.Y()-wantY) > 1e-9 {
		t.Errorf("y = %v, want %v", b.Position.Y(), wantY)
	}
}

func TestApplyForceAtPointTorque(t *testing.T) {
	b := NewBoxBody(10, mgl64.Vec3{1, 1, 1})
	b.ApplyForceAtPoint(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{1, 0, 0})
	force, torque := b.Accumulated()

	if !force.ApproxEqualThreshold(mgl64.Vec3{0, 10, 0}, 1e-12) {
		t.Errorf("force = %v", force)
	}
	// r x F = (1,0,0) x (0,10,0) = (0,0,10)
	if !torque.ApproxEqualThreshold(mgl64.Vec3{0, 0, 10}, 1e-12) {
		t.Errorf("torque = %v", torque)
	}

	b.Integrate(0.01, mgl64.Vec3{})
	if f, tq := b.Accumulated(); f != (mgl64.Vec3{}) || tq != (mgl64.Vec3{}) {
		t.Error("accumulators not cleared after Integrate")
	}
	if b.AngularVelocity.Z() <= 0 {
		t.Errorf("angular velocity = %v, want positive z", b.AngularVelocity)
	}
}

func TestVelocityAtPoint(t *testing.T) {
	b := NewBoxBody(1, mgl64.Vec3{1, 1, 1})
	b.LinearVelocity = mgl64.Vec3{1, 0, 0}
	b.AngularVelocity = mgl64.Vec3{0, 2, 0}

	// w x r = (0,2,0) x (0,0,1) = (2,0,0)
	got := b.VelocityAtPoint(mgl64.Vec3{0, 0, 1})
	if !got.ApproxEqualThreshold(mgl64.Vec3{3, 0, 0}, 1e-12) {
		t.Errorf("VelocityAtPoint = %v, want (3,0,0)", got)
	}
}

func TestSpinKeepsUnitQuaternion(t *testing.T) {
	b := NewBoxBody(5, mgl64.Vec3{1, 0.5, 2})
	b.AngularVelocity = mgl64.Vec3{0, 1, 0}
	for range 1000 {
		b.Integrate(0.01, mgl64.Vec3{})
	}
	if math.Abs(b.Orientation.Len()-1) > 1e-9 {
		t.Errorf("|q| = %v, want 1", b.Orientation.Len())
	}
	// Spin about a principal axis is torque free and stays level.
	if b.Tilt() > 1e-6 {
		t.Errorf("tilt = %v, want 0", b.Tilt())
	}
}

// Package physics provides a minimal rigid-body integrator that accepts
// forces at world points and advances a box-shaped chassis.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RigidBody is a single box-inertia body integrated with semi-implicit Euler.
type RigidBody struct {
	mass    float64
	inertia mgl64.Vec3 // principal moments in the body frame

	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3 // world frame, rad/s

	force  mgl64.Vec3
	torque mgl64.Vec3
}

// NewBoxBody creates a body of the given mass with the inertia of a solid
// box of full extents size.
func NewBoxBody(mass float64, size mgl64.Vec3) *RigidBody {
	x2, y2, z2 := size.X()*size.X(), size.Y()*size.Y(), size.Z()*size.Z()
	return &RigidBody{
		mass: mass,
		inertia: mgl64.Vec3{
			mass * (y2 + z2) / 12,
			mass * (x2 + z2) / 12,
			mass * (x2 + y2) / 12,
		},
		Orientation: mgl64.QuatIdent(),
	}
}

func (b *RigidBody) Mass() float64 { return b.mass }

// Inertia returns the principal moments of inertia.
func (b *RigidBody) Inertia() mgl64.Vec3 { return b.inertia }

func (b *RigidBody) Pose() (mgl64.Vec3, mgl64.Quat) {
	return b.Position, b.Orientation
}

// VelocityAtPoint returns v + w x r for a world point.
func (b *RigidBody) VelocityAtPoint(point mgl64.Vec3) mgl64.Vec3 {
	r := point.Sub(b.Position)
	return b.LinearVelocity.Add(b.AngularVelocity.Cross(r))
}

// ApplyForceAtPoint accumulates force and the torque it produces about the
// centre of mass until the next Integrate.
func (b *RigidBody) ApplyForceAtPoint(force, point mgl64.Vec3) {
	b.force = b.force.Add(force)
	b.torque = b.torque.Add(point.Sub(b.Position).Cross(force))
}

// ApplyForce accumulates a force through the centre of mass.
func (b *RigidBody) ApplyForce(force mgl64.Vec3) {
	b.force = b.force.Add(force)
}

// Accumulated returns the force and torque gathered since the last Integrate.
func (b *RigidBody) Accumulated() (force, torque mgl64.Vec3) {
	return b.force, b.torque
}

// Integrate advances the body by dt under the accumulated loads plus
// gravity, then clears the accumulators.
func (b *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if b.mass > 0 {
		accel := b.force.Mul(1 / b.mass).Add(gravity)
		b.LinearVelocity = b.LinearVelocity.Add(accel.Mul(dt))
	}
	b.Position = b.Position.Add(b.LinearVelocity.Mul(dt))

	// Angular update in the body frame, including the gyroscopic term.
	inv := b.Orientation.Conjugate()
	wLocal := inv.Rotate(b.AngularVelocity)
	tLocal := inv.Rotate(b.torque)
	iw := mgl64.Vec3{b.inertia[0] * wLocal[0], b.inertia[1] * wLocal[1], b.inertia[2] * wLocal[2]}
	rhs := tLocal.Sub(wLocal.Cross(iw))
	var alpha mgl64.Vec3
	for i := range 3 {
		if b.inertia[i] > 0 {
			alpha[i] = rhs[i] / b.inertia[i]
		}
	}
	b.AngularVelocity = b.AngularVelocity.Add(b.Orientation.Rotate(alpha).Mul(dt))

	// q' = q + 0.5 * (0, w) * q * dt
	spin := mgl64.Quat{W: 0, V: b.AngularVelocity}.Mul(b.Orientation).Scale(0.5 * dt)
	b.Orientation = b.Orientation.Add(spin).Normalize()

	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// Height is the chassis position along world up.
func (b *RigidBody) Height() float64 { return b.Position.Y() }

// Speed is the magnitude of the linear velocity.
func (b *RigidBody) Speed() float64 { return b.LinearVelocity.Len() }

// Tilt returns the angle between the chassis up axis and world up, radians.
func (b *RigidBody) Tilt() float64 {
	up := b.Orientation.Rotate(mgl64.Vec3{0, 1, 0})
	return math.Acos(math.Max(-1, math.Min(1, up.Y())))
}

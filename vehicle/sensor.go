package vehicle

import "github.com/go-gl/mathgl/mgl64"

// GroundSensor answers ray queries against the scene.
// Cast returns the distance to the nearest surface along direction within
// maxDistance, or ok=false when nothing is hit. Direction is assumed normalized.
type GroundSensor interface {
	Cast(origin, direction mgl64.Vec3, maxDistance float64) (distance float64, ok bool)
}

// GroundSensorFunc adapts a function to GroundSensor.
type GroundSensorFunc func(origin, direction mgl64.Vec3, maxDistance float64) (float64, bool)

func (f GroundSensorFunc) Cast(origin, direction mgl64.Vec3, maxDistance float64) (float64, bool) {
	return f(origin, direction, maxDistance)
}

// RigidBody is the external integrator the vehicle pushes forces into.
type RigidBody interface {
	// Pose returns the chassis position and orientation.
	Pose() (mgl64.Vec3, mgl64.Quat)
	// VelocityAtPoint includes the angular contribution.
	VelocityAtPoint(point mgl64.Vec3) mgl64.Vec3
	// ApplyForceAtPoint accumulates into the current step's force and torque.
	ApplyForceAtPoint(force, point mgl64.Vec3)
	Mass() float64
}

// Drivetrain converts throttle into engine output torque.
type Drivetrain interface {
	Simulate(throttle, forwardSpeed, dt float64) float64
}

// DrivetrainFunc adapts a function to Drivetrain.
type DrivetrainFunc func(throttle, forwardSpeed, dt float64) float64

func (f DrivetrainFunc) Simulate(throttle, forwardSpeed, dt float64) float64 {
	return f(throttle, forwardSpeed, dt)
}

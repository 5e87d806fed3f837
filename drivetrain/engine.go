// Package drivetrain provides a simple engine torque source for the vehicle.
package drivetrain

import "math"

// Engine produces torque that falls off linearly with speed and reaches
// zero at MaxSpeed. Reverse uses the same curve mirrored.
type Engine struct {
	MaxTorque float64 // Nm at standstill and full throttle
	MaxSpeed  float64 // m/s where torque reaches zero

	lastTorque float64
}

// NewEngine creates an engine with the given peak torque and top speed.
func NewEngine(maxTorque, maxSpeed float64) *Engine {
	return &Engine{MaxTorque: maxTorque, MaxSpeed: maxSpeed}
}

// Simulate returns the output torque for throttle in [-1,1] at forwardSpeed.
func (e *Engine) Simulate(throttle, forwardSpeed, dt float64) float64 {
	throttle = math.Max(-1, math.Min(1, throttle))

	falloff := 1.0
	if e.MaxSpeed > 0 {
		// Only speed in the direction of the throttle reduces torque.
		speed := forwardSpeed
		if throttle < 0 {
			speed = -speed
		}
		falloff = math.Max(0, math.Min(1, 1-speed/e.MaxSpeed))
	}

	e.lastTorque = throttle * e.MaxTorque * falloff
	return e.lastTorque
}

// LastTorque returns the torque of the most recent Simulate call.
func (e *Engine) LastTorque() float64 { return e.lastTorque }

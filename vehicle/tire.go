package vehicle

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// minForceMagnitude is the floor below which the friction circle is not applied.
const minForceMagnitude = 1e-6

// axleTorqueSplit divides drive torque equally between the two wheels of an axle.
const axleTorqueSplit = 0.5

// TireParams holds the grip model constants.
type TireParams struct {
	FrictionCoefficient float64 // mu
	LateralStiffness    float64 // N per m/s of lateral slip
	RollingResistance   float64 // N per m/s of longitudinal speed
}

func (p TireParams) Validate() error {
	switch {
	case !(p.FrictionCoefficient >= 0):
		return fmt.Errorf("%w: friction coefficient %v", ErrInvalidParams, p.FrictionCoefficient)
	case !(p.LateralStiffness >= 0):
		return fmt.Errorf("%w: lateral stiffness %v", ErrInvalidParams, p.LateralStiffness)
	case !(p.RollingResistance >= 0):
		return fmt.Errorf("%w: rolling resistance %v", ErrInvalidParams, p.RollingResistance)
	}
	return nil
}

// DriveParams converts engine torque into wheel force.
type DriveParams struct {
	GearRatio   float64
	Efficiency  float64
	WheelRadius float64
}

func (p DriveParams) Validate() error {
	switch {
	case !(p.WheelRadius > 0):
		return fmt.Errorf("%w: drive wheel radius %v", ErrInvalidParams, p.WheelRadius)
	case !(p.Efficiency >= 0 && p.Efficiency <= 1):
		return fmt.Errorf("%w: drivetrain efficiency %v", ErrInvalidParams, p.Efficiency)
	case math.IsNaN(p.GearRatio) || math.IsInf(p.GearRatio, 0):
		return fmt.Errorf("%w: gear ratio %v", ErrInvalidParams, p.GearRatio)
	}
	return nil
}

// DriveForce is the longitudinal force one driven wheel produces from the
// engine torque, with the torque split evenly across the axle.
func DriveForce(engineTorque float64, p DriveParams) float64 {
	wheelTorque := engineTorque * p.GearRatio * p.Efficiency * axleTorqueSplit
	return wheelTorque / p.WheelRadius
}

// TireInputs is computed fresh every step for one wheel.
type TireInputs struct {
	Driven       bool
	EngineTorque float64 // ignored unless Driven
	NormalLoad   float64
	Drive        DriveParams
}

// TireResult holds the tire forces in wheel axes and in world space.
type TireResult struct {
	VLong   float64
	VLat    float64
	Fx      float64 // longitudinal, along frame.Forward
	Fy      float64 // lateral, along frame.Right
	Limit   float64
	Clamped bool
	Force   mgl64.Vec3
}

// ComputeTireForce evaluates the linear slip tire model at a contact point
// moving with contactVelocity and bounds it by the friction circle.
func ComputeTireForce(frame MountFrame, contactVelocity mgl64.Vec3, in TireInputs, p TireParams) TireResult {
	var res TireResult
	res.VLong = contactVelocity.Dot(frame.Forward)
	res.VLat = contactVelocity.Dot(frame.Right)

	if in.Driven {
		res.Fx += DriveForce(in.EngineTorque, in.Drive)
	}

	// Linear drag on longitudinal speed, not true rolling friction.
	res.Fx += -p.RollingResistance * res.VLong
	res.Fy = -p.LateralStiffness * res.VLat

	res.Limit = p.FrictionCoefficient * in.NormalLoad
	res.Fx, res.Fy, res.Clamped = ClampFrictionCircle(res.Fx, res.Fy, res.Limit)

	res.Force = frame.Forward.Mul(res.Fx).Add(frame.Right.Mul(res.Fy))
	return res
}

// ClampFrictionCircle scales (fx, fy) down proportionally so the combined
// magnitude does not exceed limit. Near-zero forces pass through.
func ClampFrictionCircle(fx, fy, limit float64) (float64, float64, bool) {
	magnitude := math.Hypot(fx, fy)
	if magnitude > limit && magnitude > minForceMagnitude {
		scale := limit / magnitude
		return fx * scale, fy * scale, true
	}
	return fx, fy, false
}

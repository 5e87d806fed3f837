package vehicle

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SuspensionParams holds the constant spring/damper settings of one wheel.
type SuspensionParams struct {
	RestLength      float64 // unloaded length, m
	Travel          float64 // max compression/extension from rest, m
	SpringStiffness float64 // N/m
	DamperStiffness float64 // N*s/m
	WheelRadius     float64 // m
}

// Validate checks the parameters for physically meaningful values.
func (p SuspensionParams) Validate() error {
	switch {
	case !(p.RestLength > 0):
		return fmt.Errorf("%w: rest length %v", ErrInvalidParams, p.RestLength)
	case !(p.WheelRadius > 0):
		return fmt.Errorf("%w: wheel radius %v", ErrInvalidParams, p.WheelRadius)
	case !(p.Travel >= 0):
		return fmt.Errorf("%w: spring travel %v", ErrInvalidParams, p.Travel)
	case !(p.SpringStiffness >= 0):
		return fmt.Errorf("%w: spring stiffness %v", ErrInvalidParams, p.SpringStiffness)
	case !(p.DamperStiffness >= 0):
		return fmt.Errorf("%w: damper stiffness %v", ErrInvalidParams, p.DamperStiffness)
	}
	return nil
}

// MaxDistance is the ray length used to look for ground.
func (p SuspensionParams) MaxDistance() float64 {
	return p.RestLength + p.Travel + p.WheelRadius
}

// Compression converts a ground hit distance into the clamped suspension
// length and its compression (positive when shorter than rest).
// The compression is always within [-Travel, Travel].
func (p SuspensionParams) Compression(hitDistance float64) (length, compression float64) {
	length = hitDistance - p.WheelRadius
	length = clamp(length, p.RestLength-p.Travel, p.RestLength+p.Travel)
	return length, p.RestLength - length
}

// SuspensionState is the only value carried between steps for a wheel.
type SuspensionState struct {
	LastCompression float64
}

// SuspensionResult describes one suspension evaluation.
type SuspensionResult struct {
	Contact      bool
	HitDistance  float64
	ContactPoint mgl64.Vec3 // ray hit point; mount position when airborne

	Length      float64
	Compression float64
	SpringForce float64
	DamperForce float64
	Total       float64    // spring + damper, along frame.Up
	Force       mgl64.Vec3 // world space force
}

// ComputeSuspensionForce senses the ground below the mount and returns the
// spring/damper force with the updated state.
//
// Without ground contact the force is zero and the state is returned
// unchanged; the last compression is kept as the damper baseline for the
// next landing.
func ComputeSuspensionForce(sensor GroundSensor, frame MountFrame, p SuspensionParams, state SuspensionState, dt float64) (SuspensionResult, SuspensionState, error) {
	if err := checkTimeStep(dt); err != nil {
		return SuspensionResult{}, state, err
	}

	res := SuspensionResult{ContactPoint: frame.Position}
	down := frame.Up.Mul(-1)

	hit, ok := sensor.Cast(frame.Position, down, p.MaxDistance())
	if !ok {
		return res, state, nil
	}

	length, compression := p.Compression(hit)

	res.Contact = true
	res.HitDistance = hit
	res.ContactPoint = frame.Position.Add(down.Mul(hit))
	res.Length = length
	res.Compression = compression
	res.SpringForce = compression * p.SpringStiffness

	velocity := (compression - state.LastCompression) / dt
	res.DamperForce = velocity * p.DamperStiffness

	res.Total = res.SpringForce + res.DamperForce
	res.Force = frame.Up.Mul(res.Total)

	state.LastCompression = compression
	return res, state, nil
}

func checkTimeStep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt=%v", ErrInvalidTimeStep, dt)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package vehicle

import (
	"fmt"
	"math"
)

// LoadModel selects where the tire model takes its normal load from.
type LoadModel uint8

const (
	// LoadSuspension uses this step's spring+damper force of the wheel,
	// floored at zero. An airborne wheel has no load and therefore no grip.
	LoadSuspension LoadModel = iota
	// LoadStatic splits the vehicle weight per axle once at construction.
	LoadStatic
)

func (m LoadModel) String() string {
	switch m {
	case LoadSuspension:
		return "suspension"
	case LoadStatic:
		return "static"
	}
	return "unknown"
}

// ParseLoadModel maps a config name to a LoadModel. Empty means suspension.
func ParseLoadModel(s string) (LoadModel, error) {
	switch s {
	case "", "suspension":
		return LoadSuspension, nil
	case "static":
		return LoadStatic, nil
	}
	return 0, fmt.Errorf("%w: unknown normal load model %q", ErrInvalidParams, s)
}

// DrivenAxle selects which wheels receive engine torque.
type DrivenAxle uint8

const (
	DriveRear DrivenAxle = iota
	DriveFront
	DriveAll
)

func (a DrivenAxle) String() string {
	switch a {
	case DriveRear:
		return "rear"
	case DriveFront:
		return "front"
	case DriveAll:
		return "all"
	}
	return "unknown"
}

// ParseDrivenAxle maps a config name to a DrivenAxle. Empty means rear.
func ParseDrivenAxle(s string) (DrivenAxle, error) {
	switch s {
	case "", "rear":
		return DriveRear, nil
	case "front":
		return DriveFront, nil
	case "all":
		return DriveAll, nil
	}
	return 0, fmt.Errorf("%w: unknown driven axle %q", ErrInvalidParams, s)
}

// Drives reports whether the corner is driven.
func (a DrivenAxle) Drives(c Corner) bool {
	switch a {
	case DriveAll:
		return true
	case DriveFront:
		return c.IsFront()
	}
	return !c.IsFront()
}

// StaticWheelLoads splits total weight between the axles by frontShare and
// evenly between the two sides of each axle.
func StaticWheelLoads(mass, gravity, frontShare float64) [NumCorners]float64 {
	total := mass * gravity
	front := total * frontShare * 0.5
	rear := total * (1 - frontShare) * 0.5
	return [NumCorners]float64{
		FrontLeft:  front,
		FrontRight: front,
		RearLeft:   rear,
		RearRight:  rear,
	}
}

// SuspensionLoad is the normal load implied by a suspension result.
func SuspensionLoad(r SuspensionResult) float64 {
	if !r.Contact {
		return 0
	}
	return math.Max(0, r.Total)
}

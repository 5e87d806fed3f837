// Package vehicle computes the per-wheel forces of a four-wheeled vehicle:
// ray-sensed suspension, anti-roll coupling and the tire force model.
//
// The rigid body, the ground geometry and the drivetrain are external
// collaborators reached only through the interfaces in this package.
package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Corner identifies a wheel position on the chassis.
type Corner uint8

const (
	FrontLeft Corner = iota
	FrontRight
	RearLeft
	RearRight

	NumCorners = 4
)

var cornerNames = [NumCorners]string{"front_left", "front_right", "rear_left", "rear_right"}

func (c Corner) String() string {
	if int(c) < NumCorners {
		return cornerNames[c]
	}
	return "unknown"
}

// IsFront reports whether the corner sits on the front axle.
func (c Corner) IsFront() bool {
	return c == FrontLeft || c == FrontRight
}

// Local chassis axes.
var (
	LocalUp      = mgl64.Vec3{0, 1, 0}
	LocalForward = mgl64.Vec3{0, 0, 1}
	LocalRight   = mgl64.Vec3{1, 0, 0}
)

// WheelMount is a suspension pivot fixed to the chassis.
// Offset and Rotation are expressed in the chassis frame.
type WheelMount struct {
	Offset   mgl64.Vec3
	Rotation mgl64.Quat
}

// MountFrame is a WheelMount resolved into world space for one step.
type MountFrame struct {
	Position mgl64.Vec3
	Up       mgl64.Vec3 // suspension travel axis
	Forward  mgl64.Vec3 // rolling axis
	Right    mgl64.Vec3 // lateral axis
}

// NewMount creates a mount at offset with the chassis orientation.
func NewMount(offset mgl64.Vec3) WheelMount {
	return WheelMount{Offset: offset, Rotation: mgl64.QuatIdent()}
}

// Frame resolves the mount against the chassis pose.
func (m WheelMount) Frame(chassisPos mgl64.Vec3, chassisRot mgl64.Quat) MountFrame {
	rot := chassisRot.Mul(m.Rotation)
	return MountFrame{
		Position: chassisPos.Add(chassisRot.Rotate(m.Offset)),
		Up:       rot.Rotate(LocalUp),
		Forward:  rot.Rotate(LocalForward),
		Right:    rot.Rotate(LocalRight),
	}
}

// StandardMounts lays out four mounts symmetric about the chassis origin.
// The wheelbase runs along local forward, the track along local right.
func StandardMounts(wheelbase, trackWidth, height float64) [NumCorners]WheelMount {
	hw := trackWidth / 2
	hb := wheelbase / 2
	return [NumCorners]WheelMount{
		FrontLeft:  NewMount(mgl64.Vec3{-hw, height, hb}),
		FrontRight: NewMount(mgl64.Vec3{hw, height, hb}),
		RearLeft:   NewMount(mgl64.Vec3{-hw, height, -hb}),
		RearRight:  NewMount(mgl64.Vec3{hw, height, -hb}),
	}
}

package vehicle

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Spec is the full constant description of a vehicle.
type Spec struct {
	Mounts     [NumCorners]WheelMount
	Suspension SuspensionParams

	FrontAntiRoll float64
	RearAntiRoll  float64

	FrontAxleShare float64 // fraction of weight on the front axle, [0,1]
	Gravity        float64
	LoadModel      LoadModel

	DrivenAxle DrivenAxle
	Drive      DriveParams // WheelRadius defaults to Suspension.WheelRadius
	Tire       TireParams
}

// Validate checks every parameter group.
func (s Spec) Validate() error {
	if err := s.Suspension.Validate(); err != nil {
		return err
	}
	if err := s.Tire.Validate(); err != nil {
		return err
	}
	if err := s.Drive.Validate(); err != nil {
		return err
	}
	if !(s.FrontAxleShare >= 0 && s.FrontAxleShare <= 1) {
		return fmt.Errorf("%w: front axle share %v", ErrInvalidParams, s.FrontAxleShare)
	}
	if !(s.Gravity >= 0) {
		return fmt.Errorf("%w: gravity %v", ErrInvalidParams, s.Gravity)
	}
	if !(s.FrontAntiRoll >= 0) || !(s.RearAntiRoll >= 0) {
		return fmt.Errorf("%w: anti-roll stiffness %v/%v", ErrInvalidParams, s.FrontAntiRoll, s.RearAntiRoll)
	}
	return nil
}

// WheelSnapshot is the read-only per-wheel view of the last step.
type WheelSnapshot struct {
	Corner Corner

	Contact     bool
	Length      float64
	Compression float64
	SpringForce float64
	DamperForce float64
	Suspension  float64 // spring + damper along the mount up axis
	AntiRoll    float64 // along the chassis up axis, 0 when gated off

	NormalLoad float64
	VLong      float64
	VLat       float64
	Fx         float64
	Fy         float64
	Clamped    bool
}

// Snapshot is the read-only view of the last completed step.
type Snapshot struct {
	Throttle     float64
	ForwardSpeed float64
	EngineTorque float64
	Wheels       [NumCorners]WheelSnapshot
}

// Vehicle owns the mounts and suspension state of four wheels and pushes
// their forces into an external rigid body every step.
type Vehicle struct {
	spec  Spec
	pairs [2]AntiRollPair

	states      [NumCorners]SuspensionState
	staticLoads [NumCorners]float64

	body   RigidBody
	sensor GroundSensor
	drive  Drivetrain

	last Snapshot
}

// New creates a vehicle bound to its collaborators. Missing collaborators
// fail here rather than producing silent zero forces later.
func New(spec Spec, body RigidBody, sensor GroundSensor, drive Drivetrain) (*Vehicle, error) {
	if body == nil {
		return nil, ErrNoBody
	}
	if sensor == nil {
		return nil, ErrNoSensor
	}
	if drive == nil {
		return nil, ErrNoDrivetrain
	}
	if spec.Drive.WheelRadius == 0 {
		spec.Drive.WheelRadius = spec.Suspension.WheelRadius
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	v := &Vehicle{
		spec:   spec,
		body:   body,
		sensor: sensor,
		drive:  drive,
		pairs: [2]AntiRollPair{
			{Left: FrontLeft, Right: FrontRight, Stiffness: spec.FrontAntiRoll},
			{Left: RearLeft, Right: RearRight, Stiffness: spec.RearAntiRoll},
		},
		staticLoads: StaticWheelLoads(body.Mass(), spec.Gravity, spec.FrontAxleShare),
	}
	for c := range v.last.Wheels {
		v.last.Wheels[c].Corner = Corner(c)
	}
	return v, nil
}

// Spec returns the vehicle's constant parameters.
func (v *Vehicle) Spec() Spec { return v.spec }

// State returns the suspension state carried for a corner.
func (v *Vehicle) State(c Corner) SuspensionState { return v.states[c] }

// StaticLoad returns the construction-time normal load of a corner.
func (v *Vehicle) StaticLoad(c Corner) float64 { return v.staticLoads[c] }

// Snapshot returns a copy of the last step's per-wheel values.
func (v *Vehicle) Snapshot() Snapshot { return v.last }

// Step computes and applies all wheel forces for one physics tick.
// Suspension runs for every wheel before anti-roll reads the fresh
// compressions; the tire model runs last.
func (v *Vehicle) Step(throttle, dt float64) error {
	if err := checkTimeStep(dt); err != nil {
		return err
	}
	if math.IsNaN(throttle) || math.IsInf(throttle, 0) {
		return fmt.Errorf("%w: throttle=%v", ErrInvalidThrottle, throttle)
	}
	throttle = clamp(throttle, -1, 1)

	pos, rot := v.body.Pose()
	chassisUp, chassisForward := ChassisAxes(rot)

	snap := Snapshot{Throttle: throttle}
	var frames [NumCorners]MountFrame
	var susp [NumCorners]SuspensionResult

	for i := range v.spec.Mounts {
		c := Corner(i)
		frames[c] = v.spec.Mounts[c].Frame(pos, rot)

		res, state, err := ComputeSuspensionForce(v.sensor, frames[c], v.spec.Suspension, v.states[c], dt)
		if err != nil {
			return fmt.Errorf("suspension %s: %w", c, err)
		}
		v.states[c] = state
		susp[c] = res
		if res.Contact {
			v.body.ApplyForceAtPoint(res.Force, frames[c].Position)
		}

		w := &snap.Wheels[c]
		w.Corner = c
		w.Contact = res.Contact
		w.Length = res.Length
		w.Compression = state.LastCompression
		w.SpringForce = res.SpringForce
		w.DamperForce = res.DamperForce
		w.Suspension = res.Total
	}

	for _, pair := range v.pairs {
		a := v.states[pair.Left].LastCompression
		b := v.states[pair.Right].LastCompression
		forceA, forceB := ComputeAntiRollForces(a, b, pair.Stiffness)
		if HasRecentContact(a) {
			v.body.ApplyForceAtPoint(chassisUp.Mul(forceA), frames[pair.Left].Position)
			snap.Wheels[pair.Left].AntiRoll = forceA
		}
		if HasRecentContact(b) {
			v.body.ApplyForceAtPoint(chassisUp.Mul(forceB), frames[pair.Right].Position)
			snap.Wheels[pair.Right].AntiRoll = forceB
		}
	}

	snap.ForwardSpeed = v.body.VelocityAtPoint(pos).Dot(chassisForward)
	snap.EngineTorque = v.drive.Simulate(throttle, snap.ForwardSpeed, dt)

	for i := range frames {
		c := Corner(i)
		point := susp[c].ContactPoint
		in := TireInputs{
			Driven:       v.spec.DrivenAxle.Drives(c),
			EngineTorque: snap.EngineTorque,
			NormalLoad:   v.normalLoad(c, susp[c]),
			Drive:        v.spec.Drive,
		}
		tire := ComputeTireForce(frames[c], v.body.VelocityAtPoint(point), in, v.spec.Tire)
		v.body.ApplyForceAtPoint(tire.Force, point)

		w := &snap.Wheels[c]
		w.NormalLoad = in.NormalLoad
		w.VLong = tire.VLong
		w.VLat = tire.VLat
		w.Fx = tire.Fx
		w.Fy = tire.Fy
		w.Clamped = tire.Clamped
	}

	v.last = snap
	return nil
}

func (v *Vehicle) normalLoad(c Corner, r SuspensionResult) float64 {
	if v.spec.LoadModel == LoadStatic {
		return v.staticLoads[c]
	}
	return SuspensionLoad(r)
}

// ChassisAxes returns the chassis up and forward axes for a pose.
func ChassisAxes(rot mgl64.Quat) (up, forward mgl64.Vec3) {
	return rot.Rotate(LocalUp), rot.Rotate(LocalForward)
}

// Package components defines ECS components for karts in the simulation world.
package components

import (
	"github.com/pthm-cable/kart/config"
	"github.com/pthm-cable/kart/physics"
	"github.com/pthm-cable/kart/vehicle"
)

// Kart identifies a kart and holds its force model.
type Kart struct {
	ID      uint32
	Name    string
	Vehicle *vehicle.Vehicle
}

// Chassis holds the rigid body the kart's forces are applied to.
type Chassis struct {
	Body *physics.RigidBody
}

// Controls holds the throttle input for the current tick.
type Controls struct {
	Throttle float64                 // [-1,1]
	Schedule config.ThrottleSchedule // Source of Throttle, evaluated at sim time
}

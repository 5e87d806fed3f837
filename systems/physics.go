// Package systems contains ECS systems for the simulation.
package systems

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kart/components"
)

// IntegrationSystem advances every chassis body by one fixed step.
type IntegrationSystem struct {
	filter  ecs.Filter1[components.Chassis]
	dt      float64
	gravity mgl64.Vec3
}

// NewIntegrationSystem creates an integration system. Gravity acts along -Y.
func NewIntegrationSystem(w *ecs.World, dt, gravity float64) *IntegrationSystem {
	return &IntegrationSystem{
		filter:  *ecs.NewFilter1[components.Chassis](w),
		dt:      dt,
		gravity: mgl64.Vec3{0, -gravity, 0},
	}
}

// Update integrates the forces accumulated this tick and clears them.
func (s *IntegrationSystem) Update(w *ecs.World) {
	query := s.filter.Query()
	for query.Next() {
		chassis := query.Get()
		if chassis.Body == nil {
			continue
		}
		chassis.Body.Integrate(s.dt, s.gravity)
	}
}

package systems

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kart/components"
)

// ErrNoVehicle is returned when a kart entity has no vehicle bound.
var ErrNoVehicle = errors.New("no vehicle bound")

// ForceSystem runs the wheel force pipeline of every kart. Forces land in the
// chassis body's accumulators and are consumed by IntegrationSystem.
type ForceSystem struct {
	filter ecs.Filter2[components.Kart, components.Controls]
	dt     float64
}

// NewForceSystem creates a force system stepping with dt.
func NewForceSystem(w *ecs.World, dt float64) *ForceSystem {
	return &ForceSystem{
		filter: *ecs.NewFilter2[components.Kart, components.Controls](w),
		dt:     dt,
	}
}

// Update steps every vehicle. All karts are stepped even if one fails;
// the first error is returned.
func (s *ForceSystem) Update(w *ecs.World) error {
	var firstErr error
	query := s.filter.Query()
	for query.Next() {
		kart, ctrl := query.Get()
		if kart.Vehicle == nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("kart %s: %w", kart.Name, ErrNoVehicle)
			}
			continue
		}
		if err := kart.Vehicle.Step(ctrl.Throttle, s.dt); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("kart %s: %w", kart.Name, err)
		}
	}
	return firstErr
}

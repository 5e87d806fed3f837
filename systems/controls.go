package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kart/components"
)

// ControlSystem sets each kart's throttle from its schedule.
type ControlSystem struct {
	filter ecs.Filter1[components.Controls]
}

// NewControlSystem creates a control system.
func NewControlSystem(w *ecs.World) *ControlSystem {
	return &ControlSystem{
		filter: *ecs.NewFilter1[components.Controls](w),
	}
}

// Update evaluates every schedule at simTime seconds.
func (s *ControlSystem) Update(w *ecs.World, simTime float64) {
	query := s.filter.Query()
	for query.Next() {
		ctrl := query.Get()
		ctrl.Throttle = ctrl.Schedule.At(simTime)
	}
}

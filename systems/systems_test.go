package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kart/components"
	"github.com/pthm-cable/kart/config"
	"github.com/pthm-cable/kart/drivetrain"
	"github.com/pthm-cable/kart/physics"
	"github.com/pthm-cable/kart/scene"
	"github.com/pthm-cable/kart/telemetry"
	"github.com/pthm-cable/kart/vehicle"
)

// newTestKart creates a kart entity with its springs slightly compressed over flat ground.
func newTestKart(t *testing.T, w *ecs.World, schedule config.ThrottleSchedule) (*physics.RigidBody, *vehicle.Vehicle) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	spec := cfg.VehicleSpec()
	body := physics.NewBoxBody(cfg.Vehicle.Chassis.Mass, mgl64.Vec3(cfg.Vehicle.Chassis.Size))
	// Slightly below rest height so the springs carry load on the first step.
	body.Position = mgl64.Vec3{0, spec.Suspension.RestLength + spec.Suspension.WheelRadius - 0.05, 0}

	engine := drivetrain.NewEngine(cfg.Vehicle.Drivetrain.MaxTorque, cfg.Vehicle.Drivetrain.MaxSpeed)
	v, err := vehicle.New(spec, body, scene.New(scene.GroundPlane(0)), engine)
	if err != nil {
		t.Fatalf("vehicle: %v", err)
	}

	mapper := ecs.NewMap3[components.Kart, components.Chassis, components.Controls](w)
	mapper.NewEntity(
		&components.Kart{ID: 1, Name: "test", Vehicle: v},
		&components.Chassis{Body: body},
		&components.Controls{Schedule: schedule},
	)
	return body, v
}

func TestControlSystem(t *testing.T) {
	w := ecs.NewWorld()
	newTestKart(t, w, config.ThrottleSchedule{{Time: 1, Value: 0.75}})

	controls := NewControlSystem(w)
	filter := ecs.NewFilter1[components.Controls](w)

	tests := []struct {
		simTime float64
		want    float64
	}{
		{0, 0},
		{0.5, 0},
		{1, 0.75},
		{5, 0.75},
	}
	for _, tt := range tests {
		controls.Update(w, tt.simTime)
		query := filter.Query()
		for query.Next() {
			if got := query.Get().Throttle; got != tt.want {
				t.Errorf("throttle at %v = %v, want %v", tt.simTime, got, tt.want)
			}
		}
	}
}

func TestForceAndIntegration(t *testing.T) {
	w := ecs.NewWorld()
	body, v := newTestKart(t, w, config.ThrottleSchedule{{Time: 0, Value: 1}})

	controls := NewControlSystem(w)
	forces := NewForceSystem(w, 0.02)
	integrate := NewIntegrationSystem(w, 0.02, 9.81)

	controls.Update(w, 0)
	if err := forces.Update(w); err != nil {
		t.Fatalf("forces: %v", err)
	}

	snap := v.Snapshot()
	if snap.Throttle != 1 {
		t.Errorf("vehicle throttle = %v, want 1", snap.Throttle)
	}
	for _, wheel := range snap.Wheels {
		if !wheel.Contact {
			t.Errorf("%s: expected ground contact at rest height", wheel.Corner)
		}
	}
	if f, _ := body.Accumulated(); f.Len() == 0 {
		t.Error("expected forces accumulated on the body")
	}

	integrate.Update(w)
	if f, tq := body.Accumulated(); f.Len() != 0 || tq.Len() != 0 {
		t.Errorf("accumulators not cleared: force=%v torque=%v", f, tq)
	}
	// Rear-drive throttle pushes the kart forward along +Z.
	if body.LinearVelocity.Z() <= 0 {
		t.Errorf("forward velocity = %v, want > 0", body.LinearVelocity.Z())
	}
}

func TestForceSystemMissingVehicle(t *testing.T) {
	w := ecs.NewWorld()
	_, v := newTestKart(t, w, config.ThrottleSchedule{{Time: 0, Value: 1}})

	mapper := ecs.NewMap3[components.Kart, components.Chassis, components.Controls](w)
	mapper.NewEntity(
		&components.Kart{ID: 2, Name: "hollow"},
		&components.Chassis{Body: physics.NewBoxBody(100, mgl64.Vec3{1, 1, 1})},
		&components.Controls{},
	)

	forces := NewForceSystem(w, 0.02)
	err := forces.Update(w)
	if !errors.Is(err, ErrNoVehicle) {
		t.Fatalf("err = %v, want ErrNoVehicle", err)
	}
	// The well-formed kart is still stepped.
	if !v.Snapshot().Wheels[vehicle.FrontLeft].Contact {
		t.Error("expected the other kart to be stepped")
	}
}

func TestIntegrationFreeFall(t *testing.T) {
	w := ecs.NewWorld()
	body := physics.NewBoxBody(100, mgl64.Vec3{1, 1, 1})
	mapper := ecs.NewMap1[components.Chassis](w)
	mapper.NewEntity(&components.Chassis{Body: body})

	integrate := NewIntegrationSystem(w, 0.1, 10)
	integrate.Update(w)

	if math.Abs(body.LinearVelocity.Y()+1) > 1e-9 {
		t.Errorf("vy = %v, want -1", body.LinearVelocity.Y())
	}
}

func TestRegistryMatchesPerfPhases(t *testing.T) {
	reg := NewSystemRegistry()
	ids := reg.IDs()
	if len(ids) != len(telemetry.Phases) {
		t.Fatalf("registry has %d systems, perf tracks %d phases", len(ids), len(telemetry.Phases))
	}
	for i, id := range ids {
		if id != telemetry.Phases[i] {
			t.Errorf("system %d = %q, perf phase = %q", i, id, telemetry.Phases[i])
		}
	}
	if reg.GetName("forces") != "Forces" {
		t.Errorf("GetName(forces) = %q", reg.GetName("forces"))
	}
	if reg.GetName("unknown") != "unknown" {
		t.Errorf("GetName falls back to the id")
	}
}

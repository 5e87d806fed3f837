package sim

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/kart/components"
	"github.com/pthm-cable/kart/config"
	"github.com/pthm-cable/kart/drivetrain"
	"github.com/pthm-cable/kart/physics"
	"github.com/pthm-cable/kart/scene"
	"github.com/pthm-cable/kart/telemetry"
	"github.com/pthm-cable/kart/vehicle"
)

// buildScene creates the ground and any obstacle boxes.
func buildScene(sc config.SceneConfig) *scene.Scene {
	var ground scene.Surface = scene.GroundPlane(sc.GroundHeight)
	if t := sc.Terrain; t.Amplitude > 0 {
		ground = scene.NewTerrain(t.Seed, sc.GroundHeight, t.Amplitude, t.Wavelength)
	}
	s := scene.New(ground)
	for _, o := range sc.Obstacles {
		s.Add(scene.Box{Min: mgl64.Vec3(o.Min), Max: mgl64.Vec3(o.Max)})
	}
	return s
}

// headingRotation yaws about world up. Positive degrees turn +Z toward +X.
func headingRotation(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 1, 0})
}

// spawnKart creates a kart entity from its config.
func (s *Sim) spawnKart(kc config.KartConfig) error {
	vc := s.cfg.Vehicle

	body := physics.NewBoxBody(vc.Chassis.Mass, mgl64.Vec3(vc.Chassis.Size))
	body.Position = mgl64.Vec3(kc.Spawn)
	body.Orientation = headingRotation(kc.Heading)

	// Slip angle turns the launch velocity away from the chassis heading.
	dir := headingRotation(kc.Heading + kc.SlipAngle).Rotate(vehicle.LocalForward)
	body.LinearVelocity = dir.Mul(kc.InitialSpeed)

	engine := drivetrain.NewEngine(vc.Drivetrain.MaxTorque, vc.Drivetrain.MaxSpeed)
	v, err := vehicle.New(s.cfg.VehicleSpec(), body, s.scene, engine)
	if err != nil {
		return fmt.Errorf("spawn kart %s: %w", kc.Name, err)
	}

	id := s.nextID
	s.nextID++

	s.kartMapper.NewEntity(
		&components.Kart{ID: id, Name: kc.Name, Vehicle: v},
		&components.Chassis{Body: body},
		&components.Controls{Throttle: kc.Throttle.At(0), Schedule: kc.Throttle},
	)

	s.lifetimeTracker.Register(kc.Name, s.tick)
	s.bookmarks[kc.Name] = telemetry.NewBookmarkDetector(bookmarkHistory)

	slog.Info("kart_spawned",
		"kart", kc.Name,
		"id", id,
		"spawn", kc.Spawn,
		"heading", kc.Heading,
		"initial_speed", kc.InitialSpeed,
		"slip_angle", kc.SlipAngle,
	)
	return nil
}

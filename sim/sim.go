// Package sim owns the kart world: it spawns karts from config, advances the
// fixed-step pipeline and routes per-tick state into telemetry.
package sim

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kart/components"
	"github.com/pthm-cable/kart/config"
	"github.com/pthm-cable/kart/physics"
	"github.com/pthm-cable/kart/scene"
	"github.com/pthm-cable/kart/systems"
	"github.com/pthm-cable/kart/telemetry"
	"github.com/pthm-cable/kart/vehicle"
)

// bookmarkHistory is the number of stats windows each detector remembers.
const bookmarkHistory = 10

// Options configures a simulation run.
type Options struct {
	LogStats       bool    // Emit window stats via slog
	StatsWindowSec float64 // Stats window (0 = use config)
	SnapshotDir    string  // Directory for bookmark snapshots (empty = off)
	OutputDir      string  // Directory for CSV output (empty = off)
	StepsPerUpdate int     // Ticks per UpdateHeadless call (<1 = 1)
}

// Sim holds the complete simulation state.
type Sim struct {
	cfg   *config.Config
	world *ecs.World
	scene *scene.Scene

	kartMapper *ecs.Map3[components.Kart, components.Chassis, components.Controls]
	kartFilter *ecs.Filter3[components.Kart, components.Chassis, components.Controls]

	registry  *systems.SystemRegistry
	controls  *systems.ControlSystem
	forces    *systems.ForceSystem
	integrate *systems.IntegrationSystem

	tick           int32
	nextID         uint32
	stepsPerUpdate int

	// Telemetry
	collector       *telemetry.Collector
	perfCollector   *telemetry.PerfCollector
	lifetimeTracker *telemetry.LifetimeTracker
	bookmarks       map[string]*telemetry.BookmarkDetector
	outputManager   *telemetry.OutputManager
	prevSnaps       map[string]vehicle.Snapshot
	wheelRows       []telemetry.WheelSample

	logStats      bool
	snapshotDir   string
	statsCallback func([]telemetry.WindowStats)
}

// KartView is a read-only view of one kart.
type KartView struct {
	ID       uint32
	Name     string
	Body     *physics.RigidBody
	Vehicle  *vehicle.Vehicle
	Throttle float64
}

// New builds the world, the scene and every configured kart.
func New(cfg *config.Config, opts Options) (*Sim, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sim: nil config")
	}
	world := ecs.NewWorld()

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	s := &Sim{
		cfg:        cfg,
		world:      world,
		scene:      buildScene(cfg.Scene),
		kartMapper: ecs.NewMap3[components.Kart, components.Chassis, components.Controls](world),
		kartFilter: ecs.NewFilter3[components.Kart, components.Chassis, components.Controls](world),

		registry:  systems.NewSystemRegistry(),
		controls:  systems.NewControlSystem(world),
		forces:    systems.NewForceSystem(world, cfg.Physics.DT),
		integrate: systems.NewIntegrationSystem(world, cfg.Physics.DT, cfg.Physics.Gravity),

		nextID:         1,
		stepsPerUpdate: steps,

		collector:       telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		perfCollector:   telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		lifetimeTracker: telemetry.NewLifetimeTracker(cfg.Physics.DT),
		bookmarks:       make(map[string]*telemetry.BookmarkDetector),
		prevSnaps:       make(map[string]vehicle.Snapshot),

		logStats:    opts.LogStats,
		snapshotDir: opts.SnapshotDir,
	}

	for _, kc := range cfg.Karts {
		if err := s.spawnKart(kc); err != nil {
			return nil, err
		}
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	s.outputManager = om
	if err := s.outputManager.WriteConfig(cfg); err != nil {
		s.outputManager.Close()
		return nil, err
	}

	slog.Info("simulation_ready",
		"karts", len(cfg.Karts),
		"surfaces", s.scene.Len(),
		"dt", cfg.Physics.DT,
		"systems", s.registry.IDs(),
		"stats_window_ticks", s.collector.WindowDurationTicks(),
	)
	return s, nil
}

// SetStatsCallback registers a function called with every flushed stats window.
func (s *Sim) SetStatsCallback(fn func([]telemetry.WindowStats)) {
	s.statsCallback = fn
}

// UpdateHeadless advances the simulation by StepsPerUpdate ticks.
func (s *Sim) UpdateHeadless() error {
	for range s.stepsPerUpdate {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the simulation by one fixed tick.
func (s *Sim) Step() error {
	s.perfCollector.StartTick()

	s.perfCollector.StartPhase(telemetry.PhaseControls)
	s.controls.Update(s.world, s.SimTime())

	s.perfCollector.StartPhase(telemetry.PhaseForces)
	if err := s.forces.Update(s.world); err != nil {
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}

	s.perfCollector.StartPhase(telemetry.PhaseIntegrate)
	s.integrate.Update(s.world)
	s.tick++

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.recordTelemetry()
	s.flushTelemetry()

	s.perfCollector.EndTick()
	return nil
}

// Tick returns the number of completed ticks.
func (s *Sim) Tick() int32 {
	return s.tick
}

// SimTime returns the simulated time in seconds.
func (s *Sim) SimTime() float64 {
	return float64(s.tick) * s.cfg.Physics.DT
}

// Scene returns the static collision scene.
func (s *Sim) Scene() *scene.Scene {
	return s.scene
}

// Karts returns a view of every kart ordered by ID.
func (s *Sim) Karts() []KartView {
	var views []KartView
	query := s.kartFilter.Query()
	for query.Next() {
		kart, chassis, controls := query.Get()
		views = append(views, KartView{
			ID:       kart.ID,
			Name:     kart.Name,
			Body:     chassis.Body,
			Vehicle:  kart.Vehicle,
			Throttle: controls.Throttle,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

// Kart returns the named kart.
func (s *Sim) Kart(name string) (KartView, bool) {
	for _, v := range s.Karts() {
		if v.Name == name {
			return v, true
		}
	}
	return KartView{}, false
}

// Lifetime returns the accumulated totals for the named kart, or nil.
func (s *Sim) Lifetime(name string) *telemetry.LifetimeStats {
	return s.lifetimeTracker.Get(name)
}

// Unload logs run summaries and closes output files.
func (s *Sim) Unload() {
	s.lifetimeTracker.LogSummary(s.tick)
	if err := s.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

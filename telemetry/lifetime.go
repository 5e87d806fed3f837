package telemetry

import (
	"log/slog"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/kart/vehicle"
)

// LifetimeStats tracks per-kart totals over the whole run.
type LifetimeStats struct {
	SpawnTick int32

	Distance    float64 // path length travelled by the chassis origin, m
	MaxSpeed    float64
	AirborneSec float64 // time with no wheel in contact

	Touchdowns int
	Liftoffs   int
	ClampTicks int // wheel-ticks at the friction limit

	lastPos mgl64.Vec3
	hasPos  bool
}

// LifetimeTracker manages per-kart lifetime statistics.
type LifetimeTracker struct {
	dt    float64
	stats map[string]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker for step length dt.
func NewLifetimeTracker(dt float64) *LifetimeTracker {
	return &LifetimeTracker{
		dt:    dt,
		stats: make(map[string]*LifetimeStats),
	}
}

// Register creates lifetime stats for a newly spawned kart.
func (lt *LifetimeTracker) Register(kart string, spawnTick int32) {
	lt.stats[kart] = &LifetimeStats{SpawnTick: spawnTick}
}

// Get returns the lifetime stats for a kart, or nil if not found.
func (lt *LifetimeTracker) Get(kart string) *LifetimeStats {
	return lt.stats[kart]
}

// Update folds one tick of kart state into its totals.
func (lt *LifetimeTracker) Update(kart string, pos mgl64.Vec3, speed float64, snap vehicle.Snapshot) {
	s := lt.stats[kart]
	if s == nil {
		return
	}
	if s.hasPos {
		s.Distance += pos.Sub(s.lastPos).Len()
	}
	s.lastPos, s.hasPos = pos, true

	if speed > s.MaxSpeed {
		s.MaxSpeed = speed
	}

	airborne := true
	for _, w := range snap.Wheels {
		if w.Contact {
			airborne = false
		}
		if w.Clamped {
			s.ClampTicks++
		}
	}
	if airborne {
		s.AirborneSec += lt.dt
	}
}

// RecordEvent counts contact transitions.
func (lt *LifetimeTracker) RecordEvent(e Event) {
	s := lt.stats[e.Kart]
	if s == nil {
		return
	}
	switch e.Type {
	case EventTouchdown:
		s.Touchdowns++
	case EventLiftoff:
		s.Liftoffs++
	}
}

// Names returns tracked kart names in sorted order.
func (lt *LifetimeTracker) Names() []string {
	names := make([]string, 0, len(lt.stats))
	for name := range lt.stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of tracked karts.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// LogSummary logs one kart_summary record per kart.
func (lt *LifetimeTracker) LogSummary(currentTick int32) {
	for _, name := range lt.Names() {
		s := lt.stats[name]
		slog.Info("kart_summary",
			"kart", name,
			"ticks", currentTick-s.SpawnTick,
			"distance", s.Distance,
			"max_speed", s.MaxSpeed,
			"airborne_sec", s.AirborneSec,
			"touchdowns", s.Touchdowns,
			"liftoffs", s.Liftoffs,
			"clamp_ticks", s.ClampTicks,
		)
	}
}

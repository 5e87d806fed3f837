package telemetry

import "math"

// Collector accumulates per-kart samples and events within time windows and
// produces one WindowStats per kart on Flush.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	order []string
	karts map[string]*kartWindow
}

// kartWindow holds one kart's samples for the current window.
type kartWindow struct {
	speeds       []float64
	heights      []float64
	torques      []float64
	front, rear  []float64
	compressions []float64
	maxTilt      float64
	maxLateral   float64

	wheelTicks int
	contacts   int
	clamps     int

	touchdowns int
	liftoffs   int
	clampOnset int
}

func (kw *kartWindow) reset() {
	*kw = kartWindow{
		speeds:       kw.speeds[:0],
		heights:      kw.heights[:0],
		torques:      kw.torques[:0],
		front:        kw.front[:0],
		rear:         kw.rear[:0],
		compressions: kw.compressions[:0],
	}
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec/dt + 0.5)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		karts:               make(map[string]*kartWindow),
	}
}

func (c *Collector) window(kart string) *kartWindow {
	kw, ok := c.karts[kart]
	if !ok {
		kw = &kartWindow{}
		c.karts[kart] = kw
		c.order = append(c.order, kart)
	}
	return kw
}

// Record adds one tick of kart state to the current window.
func (c *Collector) Record(kart string, s KartSample) {
	kw := c.window(kart)

	kw.speeds = append(kw.speeds, s.Speed)
	kw.heights = append(kw.heights, s.Height)
	kw.torques = append(kw.torques, s.Vehicle.EngineTorque)
	kw.maxTilt = math.Max(kw.maxTilt, s.Tilt)

	var front, rear float64
	for _, w := range s.Vehicle.Wheels {
		kw.wheelTicks++
		if w.Contact {
			kw.contacts++
		}
		if w.Clamped {
			kw.clamps++
		}
		kw.maxLateral = math.Max(kw.maxLateral, math.Abs(w.Fy))
		kw.compressions = append(kw.compressions, w.Compression)
		if w.Corner.IsFront() {
			front += w.Compression
		} else {
			rear += w.Compression
		}
	}
	kw.front = append(kw.front, front/2)
	kw.rear = append(kw.rear, rear/2)
}

// RecordEvent counts a wheel event in its kart's window.
func (c *Collector) RecordEvent(e Event) {
	kw := c.window(e.Kart)
	switch e.Type {
	case EventTouchdown:
		kw.touchdowns++
	case EventLiftoff:
		kw.liftoffs++
	case EventClampOnset:
		kw.clampOnset++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces one WindowStats per kart, in first-recorded order, and
// resets counters for the next window.
func (c *Collector) Flush(currentTick int32) []WindowStats {
	out := make([]WindowStats, 0, len(c.order))
	for _, name := range c.order {
		kw := c.karts[name]

		speed := ComputeSeriesStats(kw.speeds)
		height := ComputeSeriesStats(kw.heights)
		torque := ComputeSeriesStats(kw.torques)
		comp := ComputeSeriesStats(kw.compressions)

		out = append(out, WindowStats{
			Kart:            name,
			WindowStartTick: c.windowStartTick,
			WindowEndTick:   currentTick,
			SimTimeSec:      float64(currentTick) * c.dt,
			Samples:         len(kw.speeds),

			SpeedMean:  speed.Mean,
			SpeedMax:   speed.Max,
			SpeedP90:   speed.P90,
			HeightMean: height.Mean,
			HeightStd:  height.Std,
			TiltMax:    radToDeg(kw.maxTilt),

			FrontCompressionMean: ComputeSeriesStats(kw.front).Mean,
			RearCompressionMean:  ComputeSeriesStats(kw.rear).Mean,
			CompressionStd:       comp.Std,

			ContactFraction: fraction(kw.contacts, kw.wheelTicks),
			ClampFraction:   fraction(kw.clamps, kw.wheelTicks),
			LateralForceMax: kw.maxLateral,
			TorqueMean:      torque.Mean,

			Touchdowns: kw.touchdowns,
			Liftoffs:   kw.liftoffs,
			ClampOnset: kw.clampOnset,
		})

		// Reset for next window
		kw.reset()
	}
	c.windowStartTick = currentTick
	return out
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/pthm-cable/kart/config"
	"github.com/pthm-cable/kart/sim"
	"github.com/pthm-cable/kart/telemetry"
)

// Scenario setup.
const (
	dropHeight   = 0.3 // m above the unloaded ride height, clear of ray reach
	settleBand   = 0.005
	driftSpeed   = 10.0 // m/s
	driftSlip    = 25.0 // degrees
	scenarioName = "probe"
)

// Cost weights.
const (
	weightSettle    = 1.0  // per second
	weightOvershoot = 10.0 // per metre
	weightSag       = 20.0 // per metre of sag error
	weightTilt      = 0.05 // per degree
	weightLiftoff   = 2.0  // per unit of lost contact fraction
)

// Metrics summarizes one evaluation.
type Metrics struct {
	SettleSec  float64
	Overshoot  float64
	Sag        float64
	TiltMax    float64 // degrees
	MinContact float64
}

// FitnessEvaluator runs headless scenarios and computes a scalar cost.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int32
	baseConfig *config.Config
	targetSag  float64

	mu          sync.Mutex
	bestCost    float64
	lastMetrics Metrics
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int32, targetSag float64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		baseConfig: baseCfg,
		targetSag:  targetSag,
		bestCost:   math.Inf(1),
	}
}

// LastMetrics returns the metrics from the most recent evaluation.
func (fe *FitnessEvaluator) LastMetrics() Metrics {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMetrics
}

// Evaluate computes the cost for raw parameter values (lower = better).
// The drop and drift scenarios run in parallel.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	var (
		wg          sync.WaitGroup
		drop, drift Metrics
		dropErr     error
		driftErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		drop, dropErr = fe.runDrop(x)
	}()
	go func() {
		defer wg.Done()
		drift, driftErr = fe.runDrift(x)
	}()
	wg.Wait()

	if dropErr != nil || driftErr != nil {
		return math.Inf(1)
	}

	m := Metrics{
		SettleSec:  drop.SettleSec,
		Overshoot:  drop.Overshoot,
		Sag:        drop.Sag,
		TiltMax:    drift.TiltMax,
		MinContact: drift.MinContact,
	}
	cost := fe.computeCost(m)

	fe.mu.Lock()
	if cost < fe.bestCost {
		fe.bestCost = cost
	}
	fe.lastMetrics = m
	fe.mu.Unlock()

	return cost
}

// computeCost folds metrics into the scalar minimized by the optimizer.
func (fe *FitnessEvaluator) computeCost(m Metrics) float64 {
	return weightSettle*m.SettleSec +
		weightOvershoot*m.Overshoot +
		weightSag*math.Abs(m.Sag-fe.targetSag) +
		weightTilt*m.TiltMax +
		weightLiftoff*(1-m.MinContact)
}

// scenarioConfig copies the base config with a single kart.
func (fe *FitnessEvaluator) scenarioConfig(x []float64, kart config.KartConfig) (*config.Config, error) {
	cfg, err := fe.baseConfig.Clone()
	if err != nil {
		return nil, err
	}
	fe.params.ApplyToConfig(cfg, x)
	cfg.Scene.Obstacles = nil
	cfg.Karts = []config.KartConfig{kart}
	return cfg, nil
}

// restHeight is the chassis height with unloaded springs touching the ground.
func restHeight(cfg *config.Config) float64 {
	s := cfg.Vehicle.Suspension
	return cfg.Scene.GroundHeight + s.RestLength + s.WheelRadius - cfg.Vehicle.Chassis.MountHeight
}

// runDrop releases a kart above its ride height and measures how it settles.
func (fe *FitnessEvaluator) runDrop(x []float64) (Metrics, error) {
	cfg, err := fe.scenarioConfig(x, config.KartConfig{Name: scenarioName})
	if err != nil {
		return Metrics{}, err
	}
	rest := restHeight(cfg)
	cfg.Karts[0].Spawn = [3]float64{0, rest + dropHeight, 0}

	heights, _, err := fe.run(cfg)
	if err != nil {
		return Metrics{}, err
	}
	m := dropMetrics(heights, cfg.Physics.DT)
	m.Sag = rest - finalHeight(heights)
	return m, nil
}

// runDrift launches a kart sideways and measures body roll.
func (fe *FitnessEvaluator) runDrift(x []float64) (Metrics, error) {
	cfg, err := fe.scenarioConfig(x, config.KartConfig{
		Name:         scenarioName,
		InitialSpeed: driftSpeed,
		SlipAngle:    driftSlip,
	})
	if err != nil {
		return Metrics{}, err
	}
	cfg.Karts[0].Spawn = [3]float64{0, restHeight(cfg), 0}

	_, windows, err := fe.run(cfg)
	if err != nil {
		return Metrics{}, err
	}
	var m Metrics
	for _, w := range windows {
		m.TiltMax = math.Max(m.TiltMax, w.TiltMax)
	}
	m.MinContact = minContact(windows)
	return m, nil
}

// run steps a single-kart sim, recording the chassis height every tick.
func (fe *FitnessEvaluator) run(cfg *config.Config) ([]float64, []telemetry.WindowStats, error) {
	s, err := sim.New(cfg, sim.Options{})
	if err != nil {
		return nil, nil, err
	}
	defer s.Unload()

	var windows []telemetry.WindowStats
	s.SetStatsCallback(func(stats []telemetry.WindowStats) {
		windows = append(windows, stats...)
	})

	heights := make([]float64, 0, fe.ticks)
	for s.Tick() < fe.ticks {
		if err := s.Step(); err != nil {
			return nil, nil, fmt.Errorf("scenario %s: %w", cfg.Karts[0].Name, err)
		}
		kv, _ := s.Kart(scenarioName)
		heights = append(heights, kv.Body.Height())
	}
	return heights, windows, nil
}

// finalHeight averages the last tenth of the series.
func finalHeight(heights []float64) float64 {
	if len(heights) == 0 {
		return 0
	}
	tail := heights[len(heights)-max(1, len(heights)/10):]
	var sum float64
	for _, h := range tail {
		sum += h
	}
	return sum / float64(len(tail))
}

// dropMetrics finds the settle time and the undershoot below the final height.
func dropMetrics(heights []float64, dt float64) Metrics {
	var m Metrics
	if len(heights) == 0 {
		return m
	}
	final := finalHeight(heights)
	lowest := final
	for i, h := range heights {
		if math.Abs(h-final) > settleBand {
			m.SettleSec = float64(i+1) * dt
		}
		lowest = math.Min(lowest, h)
	}
	m.Overshoot = final - lowest
	return m
}

// minContact is the lowest wheel contact fraction seen in any window.
func minContact(windows []telemetry.WindowStats) float64 {
	if len(windows) == 0 {
		return 0
	}
	lowest := 1.0
	for _, w := range windows {
		lowest = math.Min(lowest, w.ContactFraction)
	}
	return lowest
}

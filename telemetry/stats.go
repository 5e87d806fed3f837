package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one kart over a time window.
type WindowStats struct {
	Kart            string  `csv:"kart"`
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Samples         int     `csv:"samples"`

	// Chassis motion
	SpeedMean  float64 `csv:"speed_mean"`
	SpeedMax   float64 `csv:"speed_max"`
	SpeedP90   float64 `csv:"speed_p90"`
	HeightMean float64 `csv:"height_mean"`
	HeightStd  float64 `csv:"height_std"`
	TiltMax    float64 `csv:"tilt_max_deg"`

	// Suspension
	FrontCompressionMean float64 `csv:"front_compression_mean"`
	RearCompressionMean  float64 `csv:"rear_compression_mean"`
	CompressionStd       float64 `csv:"compression_std"`

	// Tires
	ContactFraction float64 `csv:"contact_fraction"` // wheel-ticks with ground contact
	ClampFraction   float64 `csv:"clamp_fraction"`   // wheel-ticks at the friction limit
	LateralForceMax float64 `csv:"lateral_force_max"`
	TorqueMean      float64 `csv:"engine_torque_mean"`

	// Events during window
	Touchdowns int `csv:"touchdowns"`
	Liftoffs   int `csv:"liftoffs"`
	ClampOnset int `csv:"clamp_onsets"`
}

// SeriesStats summarizes one sampled quantity.
type SeriesStats struct {
	Mean, Std, Max, P90 float64
}

// ComputeSeriesStats returns mean, sample standard deviation, max and 90th
// percentile of values. Empty input gives zeros; a single value has zero Std.
func ComputeSeriesStats(values []float64) SeriesStats {
	n := len(values)
	if n == 0 {
		return SeriesStats{}
	}

	s := SeriesStats{
		Mean: stat.Mean(values, nil),
		Max:  floats.Max(values),
	}
	if n > 1 {
		s.Std = stat.StdDev(values, nil)
	}

	// Sort a copy for the quantile
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)

	return s
}

// fraction returns count/total, or zero when total is zero.
func fraction(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

func radToDeg(r float64) float64 { return r * 180 / math.Pi }

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kart", s.Kart),
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("samples", s.Samples),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("height_mean", s.HeightMean),
		slog.Float64("height_std", s.HeightStd),
		slog.Float64("tilt_max_deg", s.TiltMax),
		slog.Float64("front_compression_mean", s.FrontCompressionMean),
		slog.Float64("rear_compression_mean", s.RearCompressionMean),
		slog.Float64("compression_std", s.CompressionStd),
		slog.Float64("contact_fraction", s.ContactFraction),
		slog.Float64("clamp_fraction", s.ClampFraction),
		slog.Float64("lateral_force_max", s.LateralForceMax),
		slog.Float64("engine_torque_mean", s.TorqueMean),
		slog.Int("touchdowns", s.Touchdowns),
		slog.Int("liftoffs", s.Liftoffs),
		slog.Int("clamp_onsets", s.ClampOnset),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"kart", s.Kart,
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"speed_mean", s.SpeedMean,
		"speed_max", s.SpeedMax,
		"height_mean", s.HeightMean,
		"tilt_max_deg", s.TiltMax,
		"front_compression_mean", s.FrontCompressionMean,
		"rear_compression_mean", s.RearCompressionMean,
		"compression_std", s.CompressionStd,
		"contact_fraction", s.ContactFraction,
		"clamp_fraction", s.ClampFraction,
		"lateral_force_max", s.LateralForceMax,
		"touchdowns", s.Touchdowns,
		"liftoffs", s.Liftoffs,
	)
}

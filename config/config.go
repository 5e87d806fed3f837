// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/kart/vehicle"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Vehicle   VehicleConfig   `yaml:"vehicle"`
	Scene     SceneConfig     `yaml:"scene"`
	Karts     []KartConfig    `yaml:"karts"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT      float64 `yaml:"dt"`      // Fixed step, seconds
	Gravity float64 `yaml:"gravity"` // m/s^2, acts along -Y
}

// VehicleConfig holds the parameters shared by every kart.
type VehicleConfig struct {
	Chassis    ChassisConfig    `yaml:"chassis"`
	Suspension SuspensionConfig `yaml:"suspension"`
	AntiRoll   AntiRollConfig   `yaml:"anti_roll"`
	Weight     WeightConfig     `yaml:"weight"`
	Drivetrain DrivetrainConfig `yaml:"drivetrain"`
	Tire       TireConfig       `yaml:"tire"`
}

// ChassisConfig describes the rigid body and where the wheels attach.
type ChassisConfig struct {
	Mass        float64    `yaml:"mass"`         // kg
	Size        [3]float64 `yaml:"size"`         // Box extents for inertia (x, y, z)
	Wheelbase   float64    `yaml:"wheelbase"`    // Front to rear mount distance
	TrackWidth  float64    `yaml:"track_width"`  // Left to right mount distance
	MountHeight float64    `yaml:"mount_height"` // Mount height relative to chassis origin
}

// SuspensionConfig holds spring and damper settings per wheel.
type SuspensionConfig struct {
	RestLength      float64 `yaml:"rest_length"`
	SpringTravel    float64 `yaml:"spring_travel"`
	SpringStiffness float64 `yaml:"spring_stiffness"`
	DamperStiffness float64 `yaml:"damper_stiffness"`
	WheelRadius     float64 `yaml:"wheel_radius"`
}

// AntiRollConfig holds anti-roll bar stiffness per axle.
type AntiRollConfig struct {
	FrontStiffness float64 `yaml:"front_stiffness"`
	RearStiffness  float64 `yaml:"rear_stiffness"`
}

// WeightConfig controls the tire normal load.
type WeightConfig struct {
	FrontAxleShare float64 `yaml:"front_axle_share"` // [0,1]
	NormalLoad     string  `yaml:"normal_load"`      // "suspension" or "static"
}

// DrivetrainConfig holds engine and transmission settings.
type DrivetrainConfig struct {
	GearRatio  float64 `yaml:"gear_ratio"`
	Efficiency float64 `yaml:"efficiency"`
	DrivenAxle string  `yaml:"driven_axle"` // "rear", "front" or "all"
	MaxTorque  float64 `yaml:"max_torque"`  // Nm
	MaxSpeed   float64 `yaml:"max_speed"`   // m/s where torque falls to zero
}

// TireConfig holds the tire grip model.
type TireConfig struct {
	RollingResistance   float64 `yaml:"rolling_resistance"`
	FrictionCoefficient float64 `yaml:"friction_coefficient"`
	LateralStiffness    float64 `yaml:"lateral_stiffness"`
}

// SceneConfig holds the static ground geometry.
type SceneConfig struct {
	GroundHeight float64          `yaml:"ground_height"`
	Terrain      TerrainConfig    `yaml:"terrain"`
	Obstacles    []ObstacleConfig `yaml:"obstacles"`
}

// TerrainConfig replaces the flat ground with simplex-noise terrain when
// Amplitude is positive.
type TerrainConfig struct {
	Seed       int64   `yaml:"seed"`
	Amplitude  float64 `yaml:"amplitude"`  // m, heights stay within ground_height ± amplitude
	Wavelength float64 `yaml:"wavelength"` // m between bumps
}

// ObstacleConfig is an axis-aligned box.
type ObstacleConfig struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

// KartConfig places one kart in the scene.
type KartConfig struct {
	Name         string           `yaml:"name"`
	Spawn        [3]float64       `yaml:"spawn"`
	Heading      float64          `yaml:"heading"`       // Yaw in degrees about +Y
	InitialSpeed float64          `yaml:"initial_speed"` // m/s
	SlipAngle    float64          `yaml:"slip_angle"`    // Degrees between heading and initial velocity
	Throttle     ThrottleSchedule `yaml:"throttle"`
}

// ThrottleKey holds a throttle value from Time until the next key.
type ThrottleKey struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// ThrottleSchedule is a step-held list of throttle keys ordered by time.
type ThrottleSchedule []ThrottleKey

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	SampleInterval int     `yaml:"sample_interval"` // Ticks between wheel samples (0 = off)
	StatsWindow    float64 `yaml:"stats_window"`    // Seconds per stats window
	PerfWindow     int     `yaml:"perf_window"`     // Ticks in the perf rolling window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	LoadModel   vehicle.LoadModel
	DrivenAxle  vehicle.DrivenAxle
	WindowTicks int // Telemetry.StatsWindow in ticks
	TicksPerSec float64
	KartNames   []string
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Parse(nil)
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.merge(data); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Parse builds a configuration from embedded defaults overlaid with data.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := cfg.merge(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge overlays data onto c, then validates and recomputes derived values.
func (c *Config) merge(data []byte) error {
	if len(data) > 0 {
		// Unmarshal into same struct - only overwrites fields present in file.
		// Lists such as karts are replaced, not appended.
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Validate checks values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Physics.DT > 0) {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT))
	}
	if !(c.Vehicle.Chassis.Mass > 0) {
		errs = append(errs, fmt.Errorf("vehicle.chassis.mass must be positive, got %v", c.Vehicle.Chassis.Mass))
	}
	for i, v := range c.Vehicle.Chassis.Size {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("vehicle.chassis.size[%d] must be positive, got %v", i, v))
		}
	}
	if t := c.Scene.Terrain; t.Amplitude < 0 || (t.Amplitude > 0 && !(t.Wavelength > 0)) {
		errs = append(errs, fmt.Errorf("scene.terrain: amplitude %v and wavelength %v must be non-negative and positive", t.Amplitude, t.Wavelength))
	}
	if _, err := vehicle.ParseLoadModel(c.Vehicle.Weight.NormalLoad); err != nil {
		errs = append(errs, fmt.Errorf("vehicle.weight.normal_load: %w", err))
	}
	if _, err := vehicle.ParseDrivenAxle(c.Vehicle.Drivetrain.DrivenAxle); err != nil {
		errs = append(errs, fmt.Errorf("vehicle.drivetrain.driven_axle: %w", err))
	}
	if err := c.VehicleSpec().Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Karts) == 0 {
		errs = append(errs, errors.New("karts: at least one kart is required"))
	}
	seen := make(map[string]bool, len(c.Karts))
	for i, k := range c.Karts {
		if k.Name == "" {
			errs = append(errs, fmt.Errorf("karts[%d]: name is required", i))
		} else if seen[k.Name] {
			errs = append(errs, fmt.Errorf("karts[%d]: duplicate name %q", i, k.Name))
		}
		seen[k.Name] = true
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.LoadModel, _ = vehicle.ParseLoadModel(c.Vehicle.Weight.NormalLoad)
	c.Derived.DrivenAxle, _ = vehicle.ParseDrivenAxle(c.Vehicle.Drivetrain.DrivenAxle)
	c.Derived.TicksPerSec = 1 / c.Physics.DT

	c.Derived.WindowTicks = int(c.Telemetry.StatsWindow/c.Physics.DT + 0.5)
	if c.Derived.WindowTicks < 1 {
		c.Derived.WindowTicks = 1
	}

	// Throttle schedules are evaluated by time, keep them ordered.
	c.Derived.KartNames = c.Derived.KartNames[:0]
	for i := range c.Karts {
		keys := c.Karts[i].Throttle
		sort.SliceStable(keys, func(a, b int) bool { return keys[a].Time < keys[b].Time })
		c.Derived.KartNames = append(c.Derived.KartNames, c.Karts[i].Name)
	}
}

// VehicleSpec converts the vehicle section into the force model's parameters.
// Mounts are laid out from the chassis wheelbase and track width.
func (c *Config) VehicleSpec() vehicle.Spec {
	v := c.Vehicle
	loadModel, _ := vehicle.ParseLoadModel(v.Weight.NormalLoad)
	axle, _ := vehicle.ParseDrivenAxle(v.Drivetrain.DrivenAxle)
	return vehicle.Spec{
		Mounts: vehicle.StandardMounts(v.Chassis.Wheelbase, v.Chassis.TrackWidth, v.Chassis.MountHeight),
		Suspension: vehicle.SuspensionParams{
			RestLength:      v.Suspension.RestLength,
			Travel:          v.Suspension.SpringTravel,
			SpringStiffness: v.Suspension.SpringStiffness,
			DamperStiffness: v.Suspension.DamperStiffness,
			WheelRadius:     v.Suspension.WheelRadius,
		},
		FrontAntiRoll:  v.AntiRoll.FrontStiffness,
		RearAntiRoll:   v.AntiRoll.RearStiffness,
		FrontAxleShare: v.Weight.FrontAxleShare,
		Gravity:        c.Physics.Gravity,
		LoadModel:      loadModel,
		DrivenAxle:     axle,
		Drive: vehicle.DriveParams{
			GearRatio:   v.Drivetrain.GearRatio,
			Efficiency:  v.Drivetrain.Efficiency,
			WheelRadius: v.Suspension.WheelRadius,
		},
		Tire: vehicle.TireParams{
			FrictionCoefficient: v.Tire.FrictionCoefficient,
			LateralStiffness:    v.Tire.LateralStiffness,
			RollingResistance:   v.Tire.RollingResistance,
		},
	}
}

// At returns the throttle held at time t: the value of the last key at or
// before t, or zero before the first key.
func (s ThrottleSchedule) At(t float64) float64 {
	v := 0.0
	for _, key := range s {
		if key.Time > t {
			break
		}
		v = key.Value
	}
	return v
}

// ThrottleAt returns the kart's scheduled throttle at time t.
func (k KartConfig) ThrottleAt(t float64) float64 {
	return k.Throttle.At(t)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Clone returns a validated deep copy of c.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return Parse(data)
}

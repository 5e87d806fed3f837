package main

import (
	"github.com/pthm-cable/kart/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of suspension parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "spring_stiffness", Path: "vehicle.suspension.spring_stiffness", Min: 5000, Max: 60000, Default: 20000},
			{Name: "damper_stiffness", Path: "vehicle.suspension.damper_stiffness", Min: 500, Max: 10000, Default: 3500},
			{Name: "front_anti_roll", Path: "vehicle.anti_roll.front_stiffness", Min: 0, Max: 20000, Default: 8000},
			{Name: "rear_anti_roll", Path: "vehicle.anti_roll.rear_stiffness", Min: 0, Max: 20000, Default: 6000},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Vehicle.Suspension.SpringStiffness = clamped[0]
	cfg.Vehicle.Suspension.DamperStiffness = clamped[1]
	cfg.Vehicle.AntiRoll.FrontStiffness = clamped[2]
	cfg.Vehicle.AntiRoll.RearStiffness = clamped[3]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Vehicle.Suspension.SpringStiffness,
		cfg.Vehicle.Suspension.DamperStiffness,
		cfg.Vehicle.AntiRoll.FrontStiffness,
		cfg.Vehicle.AntiRoll.RearStiffness,
	}
}

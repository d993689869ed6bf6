package main

import (
	"github.com/pthm-cable/convect/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // CSV column and log name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Starting point of the search

	set func(*config.Config, float64)
	get func(*config.Config) float64
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "convection_strength", Path: "convection.strength", Min: 0, Max: 5, Default: 1.0,
				set: func(c *config.Config, v float64) { c.Convection.Strength = v },
				get: func(c *config.Config) float64 { return c.Convection.Strength }},
			{Name: "buoyancy", Path: "convection.buoyancy", Min: 0, Max: 0.2, Default: 0.02,
				set: func(c *config.Config, v float64) { c.Convection.Buoyancy = v },
				get: func(c *config.Config) float64 { return c.Convection.Buoyancy }},
			{Name: "temperature_diffusion", Path: "convection.temperature_diffusion", Min: 0, Max: 0.05, Default: 0.005,
				set: func(c *config.Config, v float64) { c.Convection.TemperatureDiffusion = v },
				get: func(c *config.Config) float64 { return c.Convection.TemperatureDiffusion }},
			{Name: "damping", Path: "physics.damping", Min: 0.85, Max: 0.999, Default: 0.98,
				set: func(c *config.Config, v float64) { c.Physics.Damping = v },
				get: func(c *config.Config) float64 { return c.Physics.Damping }},
			{Name: "obstacle_force", Path: "obstacle.force", Min: 0, Max: 5, Default: 1.5,
				set: func(c *config.Config, v float64) { c.Obstacle.Force = v },
				get: func(c *config.Config) float64 { return c.Obstacle.Force }},
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
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}

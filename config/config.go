// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Domain      DomainConfig      `yaml:"domain"`
	Basic       BasicConfig       `yaml:"basic"`
	Initial     InitialConfig     `yaml:"initial"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Convection  ConvectionConfig  `yaml:"convection"`
	Pointer     PointerConfig     `yaml:"pointer"`
	Boundary    BoundaryConfig    `yaml:"boundary"`
	Temperature TemperatureConfig `yaml:"temperature"`
	Wind        WindConfig        `yaml:"wind"`
	Gravity     GravityConfig     `yaml:"gravity"`
	Vortex      VortexConfig      `yaml:"vortex"`
	Obstacle    ObstacleConfig    `yaml:"obstacle"`
	Scroll      ScrollConfig      `yaml:"scroll"`
	Palette     PaletteConfig     `yaml:"palette"`
	Layers      []LayerConfig     `yaml:"layers"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// DomainConfig holds the confinement rectangle, centred on the origin.
type DomainConfig struct {
	Width  float64 `yaml:"width"`  // 0 = use screen width
	Height float64 `yaml:"height"` // 0 = use screen height
}

// BasicConfig holds per-field basics. Size, opacity and color are render-only.
type BasicConfig struct {
	Count     int     `yaml:"count"`
	Size      float64 `yaml:"size"`
	Speed     float64 `yaml:"speed"`
	Opacity   float64 `yaml:"opacity"`
	Color     string  `yaml:"color"`
	ColorMode string  `yaml:"color_mode"` // static, cycle_a, cycle_b
}

// InitialConfig controls how a fresh ensemble is distributed.
type InitialConfig struct {
	Policy         string  `yaml:"policy"`          // fill_domain, ring_near_obstacle, clusters
	Spread         float64 `yaml:"spread"`          // positional jitter as a fraction of sampled radius
	ClusterCount   int     `yaml:"cluster_count"`   // clusters policy only
	ClusterRadius  float64 `yaml:"cluster_radius"`  // clusters policy only
	Velocity       float64 `yaml:"velocity"`        // radial-outward launch speed
	VelocityJitter float64 `yaml:"velocity_jitter"` // uniform noise per axis
	Seed           int64   `yaml:"seed"`            // 0 = time-based
}

// PhysicsConfig holds integration and noise parameters.
type PhysicsConfig struct {
	DT              float64 `yaml:"dt"`
	Damping         float64 `yaml:"damping"`
	Turbulence      float64 `yaml:"turbulence"`
	TurbulenceScale float64 `yaml:"turbulence_scale"`
}

// ConvectionConfig holds the orbital/radial convection and buoyancy parameters.
type ConvectionConfig struct {
	Strength             float64 `yaml:"strength"`
	SpeedX               float64 `yaml:"speed_x"`
	SpeedY               float64 `yaml:"speed_y"`
	ScaleX               float64 `yaml:"scale_x"`
	ScaleY               float64 `yaml:"scale_y"`
	Buoyancy             float64 `yaml:"buoyancy"`
	TemperatureDiffusion float64 `yaml:"temperature_diffusion"`
}

// PointerConfig holds pointer interaction parameters.
type PointerConfig struct {
	Radius float64 `yaml:"radius"`
	Force  float64 `yaml:"force"`
	Heat   float64 `yaml:"heat"`
}

// BoundaryConfig holds domain wall parameters.
type BoundaryConfig struct {
	Damping   float64 `yaml:"damping"`
	Padding   float64 `yaml:"padding"`
	Roundness float64 `yaml:"roundness"` // 0 = rectangle, >0 = corner radius
}

// TemperatureConfig holds wall temperature response.
type TemperatureConfig struct {
	CoolingRate float64 `yaml:"cooling_rate"` // multiplier on top wall contact
	HeatingRate float64 `yaml:"heating_rate"` // multiplier on bottom wall contact
}

// WindConfig holds the uniform wind force.
type WindConfig struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Variation float64 `yaml:"variation"`
}

// GravityConfig holds the range-limited gravity force.
type GravityConfig struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Range float64 `yaml:"range"`
}

// VortexConfig holds the central vortex.
type VortexConfig struct {
	Strength float64 `yaml:"strength"`
	Radius   float64 `yaml:"radius"`
}

// ObstacleConfig holds the circular repulsive obstacle.
type ObstacleConfig struct {
	Enabled bool    `yaml:"enabled"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Radius  float64 `yaml:"radius"`
	Force   float64 `yaml:"force"`
	Heat    float64 `yaml:"heat"`
}

// ScrollConfig holds scroll-to-force coupling.
type ScrollConfig struct {
	InertiaStrength float64 `yaml:"inertia_strength"`
	InertiaDamping  float64 `yaml:"inertia_damping"`
	InertiaMax      float64 `yaml:"inertia_max"`
}

// PaletteConfig holds the endpoints for cycling color modes.
type PaletteConfig struct {
	CycleSeconds float64   `yaml:"cycle_seconds"`
	CycleA       [2]string `yaml:"cycle_a"`
	CycleB       [2]string `yaml:"cycle_b"`
}

// LayerConfig describes one independent ensemble drawn in the same scene.
// Zero values fall back to the basic section.
type LayerConfig struct {
	Name      string  `yaml:"name"`
	Count     int     `yaml:"count"`
	Size      float64 `yaml:"size"`
	Speed     float64 `yaml:"speed"`
	Opacity   float64 `yaml:"opacity"`
	Color     string  `yaml:"color"`
	ColorMode string  `yaml:"color_mode"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	CoverageGrid        int     `yaml:"coverage_grid"` // cells per axis for coverage stats
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	DomainW32 float32 // Effective domain width as float32
	DomainH32 float32 // Effective domain height as float32
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
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Clone returns a deep copy, so callers can tweak values without touching
// the global configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Layers = append([]LayerConfig(nil), c.Layers...)
	return &cp
}

// Recompute refreshes derived values after fields were edited in place.
func (c *Config) Recompute() {
	c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Domain defaults to screen size if not specified
	domainW := c.Domain.Width
	if domainW == 0 {
		domainW = float64(c.Screen.Width)
	}
	domainH := c.Domain.Height
	if domainH == 0 {
		domainH = float64(c.Screen.Height)
	}
	c.Derived.DomainW32 = float32(domainW)
	c.Derived.DomainH32 = float32(domainH)

	if len(c.Layers) == 0 {
		c.Layers = []LayerConfig{{Name: "main"}}
	}
}

// Validate reports values the simulation cannot work with. The physics core
// does not check its inputs, so this is the one place bad user files get caught.
func (c *Config) Validate() error {
	var errs []error
	if c.Basic.Count < 0 {
		errs = append(errs, fmt.Errorf("basic.count must be >= 0, got %d", c.Basic.Count))
	}
	if c.Obstacle.Radius < 0 {
		errs = append(errs, fmt.Errorf("obstacle.radius must be >= 0, got %g", c.Obstacle.Radius))
	}
	if c.Derived.DomainW32 <= 0 || c.Derived.DomainH32 <= 0 {
		errs = append(errs, fmt.Errorf("domain must have positive size, got %gx%g", c.Derived.DomainW32, c.Derived.DomainH32))
	}
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be > 0, got %g", c.Physics.DT))
	}
	for i, l := range c.Layers {
		if l.Count < 0 {
			errs = append(errs, fmt.Errorf("layers[%d].count must be >= 0, got %d", i, l.Count))
		}
	}
	switch c.Initial.Policy {
	case "fill_domain", "ring_near_obstacle", "clusters":
	default:
		errs = append(errs, fmt.Errorf("initial.policy %q is not one of fill_domain, ring_near_obstacle, clusters", c.Initial.Policy))
	}
	return errors.Join(errs...)
}

// LayerCount returns the particle count of layer i, falling back to basic.count.
func (c *Config) LayerCount(i int) int {
	if n := c.Layers[i].Count; n > 0 {
		return n
	}
	return c.Basic.Count
}

// LayerSpeed returns the integration speed of layer i, falling back to basic.speed.
func (c *Config) LayerSpeed(i int) float64 {
	if s := c.Layers[i].Speed; s > 0 {
		return s
	}
	return c.Basic.Speed
}

// LayerStyle returns the render-only settings of layer i with fallbacks applied.
func (c *Config) LayerStyle(i int) (size, opacity float64, color, mode string) {
	l := c.Layers[i]
	size, opacity, color, mode = l.Size, l.Opacity, l.Color, l.ColorMode
	if size == 0 {
		size = c.Basic.Size
	}
	if opacity == 0 {
		opacity = c.Basic.Opacity
	}
	if color == "" {
		color = c.Basic.Color
	}
	if mode == "" {
		mode = c.Basic.ColorMode
	}
	return size, opacity, color, mode
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

package field

import (
	"github.com/pthm-cable/convect/config"
)

// ReferenceFPS is the frame rate the integration constant is tuned for.
// Step advances positions by velocity × speed × ReferenceFPS once per call.
const ReferenceFPS = 60

// Domain is the confinement rectangle, centred on the origin with y up.
type Domain struct {
	Width, Height float32
}

// HalfExtents returns half the width and height.
func (d Domain) HalfExtents() (float32, float32) {
	return d.Width / 2, d.Height / 2
}

// Params is the per-frame parameter set, cached as float32 for the hot loop.
// It may change between frames; Count and ObstacleRadius changes require a
// rebuild (see NeedsRebuild).
type Params struct {
	Count  int
	Speed  float32
	Domain Domain
	Init   InitOptions

	Damping         float32
	Turbulence      float32
	TurbulenceScale float32

	ConvectionStrength   float32
	ConvectionSpeedX     float32
	ConvectionSpeedY     float32
	ConvectionScaleX     float32
	ConvectionScaleY     float32
	Buoyancy             float32
	TemperatureDiffusion float32

	MouseRadius float32
	MouseForce  float32
	MouseHeat   float32

	BoundaryDamping   float32
	BoundaryPadding   float32
	BoundaryRoundness float32

	CoolingRate float32
	HeatingRate float32

	WindX, WindY  float32
	WindVariation float32

	GravityX, GravityY float32
	GravityRange       float32

	VortexStrength float32
	VortexRadius   float32

	ObstacleEnabled bool
	ObstacleX       float32
	ObstacleY       float32
	ObstacleRadius  float32
	ObstacleForce   float32
	ObstacleHeat    float32
}

// ParamsFrom builds the parameters of one layer from cfg.
func ParamsFrom(cfg *config.Config, layer int) Params {
	return Params{
		Count:  cfg.LayerCount(layer),
		Speed:  float32(cfg.LayerSpeed(layer)),
		Domain: Domain{Width: cfg.Derived.DomainW32, Height: cfg.Derived.DomainH32},
		Init: InitOptions{
			Policy:         Policy(cfg.Initial.Policy),
			Spread:         float32(cfg.Initial.Spread),
			ClusterCount:   cfg.Initial.ClusterCount,
			ClusterRadius:  float32(cfg.Initial.ClusterRadius),
			Velocity:       float32(cfg.Initial.Velocity),
			VelocityJitter: float32(cfg.Initial.VelocityJitter),
			Padding:        float32(cfg.Boundary.Padding),
			Roundness:      float32(cfg.Boundary.Roundness),
		},

		Damping:         float32(cfg.Physics.Damping),
		Turbulence:      float32(cfg.Physics.Turbulence),
		TurbulenceScale: float32(cfg.Physics.TurbulenceScale),

		ConvectionStrength:   float32(cfg.Convection.Strength),
		ConvectionSpeedX:     float32(cfg.Convection.SpeedX),
		ConvectionSpeedY:     float32(cfg.Convection.SpeedY),
		ConvectionScaleX:     float32(cfg.Convection.ScaleX),
		ConvectionScaleY:     float32(cfg.Convection.ScaleY),
		Buoyancy:             float32(cfg.Convection.Buoyancy),
		TemperatureDiffusion: float32(cfg.Convection.TemperatureDiffusion),

		MouseRadius: float32(cfg.Pointer.Radius),
		MouseForce:  float32(cfg.Pointer.Force),
		MouseHeat:   float32(cfg.Pointer.Heat),

		BoundaryDamping:   float32(cfg.Boundary.Damping),
		BoundaryPadding:   float32(cfg.Boundary.Padding),
		BoundaryRoundness: float32(cfg.Boundary.Roundness),

		CoolingRate: float32(cfg.Temperature.CoolingRate),
		HeatingRate: float32(cfg.Temperature.HeatingRate),

		WindX:         float32(cfg.Wind.X),
		WindY:         float32(cfg.Wind.Y),
		WindVariation: float32(cfg.Wind.Variation),

		GravityX:     float32(cfg.Gravity.X),
		GravityY:     float32(cfg.Gravity.Y),
		GravityRange: float32(cfg.Gravity.Range),

		VortexStrength: float32(cfg.Vortex.Strength),
		VortexRadius:   float32(cfg.Vortex.Radius),

		ObstacleEnabled: cfg.Obstacle.Enabled,
		ObstacleX:       float32(cfg.Obstacle.X),
		ObstacleY:       float32(cfg.Obstacle.Y),
		ObstacleRadius:  float32(cfg.Obstacle.Radius),
		ObstacleForce:   float32(cfg.Obstacle.Force),
		ObstacleHeat:    float32(cfg.Obstacle.Heat),
	}
}

// NeedsRebuild reports whether moving from prev to next requires discarding
// the ensemble. Only count and obstacle radius changes do; every other tweak
// applies on the next Step, and spawn options on the next rebuild.
func NeedsRebuild(prev, next Params) bool {
	return prev.Count != next.Count || prev.ObstacleRadius != next.ObstacleRadius
}

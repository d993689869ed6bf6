package field

import (
	"github.com/pthm-cable/convect/input"
)

// Force constants. These are tuning values for the look of the effect.
const (
	orbitalGain        = 0.1
	radialGain         = 0.01
	coreInwardGain     = 0.02
	coreInwardStart    = 0.6 // fraction of obstacle radius where the inward pull begins
	multiScaleGain     = 0.008
	mediumScaleWeight  = 0.5
	convectionJitter   = 0.01
	ObstacleSoftness   = 0.7 // effective obstacle radius as a fraction of the nominal one
	obstacleForceGain  = 0.3
	obstacleSwirlRatio = 0.5
)

// applyForces accumulates every per-particle contribution into the velocity
// and temperature of particle i, reading the frame-start position.
func (e *Ensemble) applyForces(i int, p *Params, in *input.Snapshot, halfH float32) {
	x := e.Positions[3*i]
	y := e.Positions[3*i+1]
	vx := e.Velocities[2*i]
	vy := e.Velocities[2*i+1]
	temp := e.Temperatures[i]

	// Buoyancy
	vy += (temp - 0.5) * p.Buoyancy

	// Convection
	cx, cy := e.convection(x, y, p)
	vx += cx
	vy += cy

	// Temperature relaxes toward hot at the bottom, cold at the top
	if halfH > 0 {
		heightFactor := (y + halfH) / (2 * halfH)
		temp += (1 - heightFactor - temp) * p.TemperatureDiffusion
	}

	// Pointer repulsion and heating
	if in.Pointer.Active && p.MouseRadius > 0 {
		dx := x - in.Pointer.X
		dy := y - in.Pointer.Y
		dist := sqrtf(dx*dx + dy*dy)
		if dist < p.MouseRadius && dist > 0 {
			f := (p.MouseRadius - dist) / p.MouseRadius * p.MouseForce
			vx += dx / dist * f
			vy += dy / dist * f
			temp = minf(1, temp+p.MouseHeat)
		}
	}

	// Obstacle repulsion with swirl and heating
	if p.ObstacleEnabled && p.ObstacleRadius > 0 {
		eff := p.ObstacleRadius * ObstacleSoftness
		dx := x - p.ObstacleX
		dy := y - p.ObstacleY
		dist := sqrtf(dx*dx + dy*dy)
		if dist < eff && dist > 0 {
			nx, ny := dx/dist, dy/dist
			mag := sqrtf((eff-dist)/eff) * p.ObstacleForce * obstacleForceGain
			swirl := mag * obstacleSwirlRatio
			vx += nx*mag - ny*swirl
			vy += ny*mag + nx*swirl
			temp = minf(1, temp+p.ObstacleHeat)
		}
	}

	centerDist := sqrtf(x*x + y*y)

	// Gravity, fading out with distance from the centre
	if (p.GravityX != 0 || p.GravityY != 0) && p.GravityRange > 0 && centerDist < p.GravityRange {
		falloff := maxf(0, 1-centerDist/p.GravityRange)
		vx += p.GravityX * falloff
		vy += p.GravityY * falloff
	}

	// Wind
	vx += p.WindX
	vy += p.WindY
	if p.WindVariation != 0 {
		vx += (e.rng.Float32() - 0.5) * p.WindVariation
		vy += (e.rng.Float32() - 0.5) * p.WindVariation
	}

	// Vortex around the origin
	if p.VortexStrength > 0 && p.VortexRadius > 0 && centerDist < p.VortexRadius && centerDist > 0 {
		f := (1 - centerDist/p.VortexRadius) * p.VortexStrength
		vx += -y / centerDist * f
		vy += x / centerDist * f
	}

	// Scroll inertia, identical for every particle
	vx += in.ScrollX
	vy += in.ScrollY

	e.Velocities[2*i] = vx
	e.Velocities[2*i+1] = vy
	e.Temperatures[i] = temp
}

// convection returns the orbital, radial and multi-scale flow at (x, y).
func (e *Ensemble) convection(x, y float32, p *Params) (float32, float32) {
	dist := sqrtf(x*x + y*y)
	if dist <= 0 {
		return 0, 0
	}
	s := p.ConvectionStrength
	t := e.time
	cosA, sinA := x/dist, y/dist

	// Orbital
	fx := -sinA * s * orbitalGain
	fy := cosA * s * orbitalGain

	// Radial breathing, with a pull back toward the core outside the obstacle
	radial := sinf(t*p.ConvectionSpeedX+dist*p.ConvectionScaleX) * radialGain * s
	if p.ObstacleEnabled && p.ObstacleRadius > 0 {
		radial -= maxf(0, (dist-p.ObstacleRadius*coreInwardStart)/p.ObstacleRadius) * coreInwardGain
	}
	fx += cosA * radial
	fy += sinA * radial

	// Large and medium scale eddies
	largeX := sinf(t*p.ConvectionSpeedX+y*p.ConvectionScaleY) * cosf(t*p.ConvectionSpeedY*0.7+x*p.ConvectionScaleX)
	largeY := cosf(t*p.ConvectionSpeedY+x*p.ConvectionScaleX) * sinf(t*p.ConvectionSpeedX*0.6+y*p.ConvectionScaleY)
	mediumX := sinf(t*p.ConvectionSpeedX*1.7+y*p.ConvectionScaleY*3) * cosf(x*p.ConvectionScaleX*2.5)
	mediumY := cosf(t*p.ConvectionSpeedY*1.3+x*p.ConvectionScaleX*3) * sinf(y*p.ConvectionScaleY*2.5)
	w := multiScaleGain * s
	fx += (largeX + mediumX*mediumScaleWeight) * w
	fy += (largeY + mediumY*mediumScaleWeight) * w

	if s != 0 {
		fx += (e.rng.Float32() - 0.5) * convectionJitter * s
		fy += (e.rng.Float32() - 0.5) * convectionJitter * s
	}

	return fx, fy
}

// Package field implements the convection particle field: a fixed-size
// ensemble advanced once per frame under a stack of force fields and
// confined to a rectangular or rounded domain.
//
// Coordinates are centred on the domain with y pointing up. The top wall
// cools particles and the bottom wall heats them; buoyancy lifts hot ones.
package field

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/spatial/r2"
)

// Policy names an initial distribution.
type Policy string

const (
	// PolicyFillDomain spreads particles from just inside the obstacle out to the domain edge.
	PolicyFillDomain Policy = "fill_domain"
	// PolicyRingNearObstacle spawns a tight ring hugging the obstacle.
	PolicyRingNearObstacle Policy = "ring_near_obstacle"
	// PolicyClusters spawns Gaussian blobs around randomly placed centres.
	PolicyClusters Policy = "clusters"
)

// InitOptions controls how Build distributes a fresh ensemble.
type InitOptions struct {
	Policy         Policy
	Spread         float32 // max positional jitter as a fraction of the sampled radius
	ClusterCount   int
	ClusterRadius  float32
	Velocity       float32 // radial-outward launch speed
	VelocityJitter float32 // uniform noise per axis in [-jitter, jitter]

	// Spawn region: the domain shrunk by Padding with corners rounded by
	// Roundness, matching what Resolve enforces.
	Padding   float32
	Roundness float32
}

const (
	maxSpawnAttempts = 16
	spawnPullback    = 0.9 // radial shrink applied after every attempt fails
)

// Ensemble owns the per-particle arrays. They are allocated once and mutated
// in place every frame; the count never changes.
type Ensemble struct {
	// Positions holds x, y, z per particle (z is always 0). Renderers read it
	// directly and must not write to it.
	Positions []float32
	// Velocities holds vx, vy per particle.
	Velocities []float32
	// Temperatures holds one scalar per particle, practically within [0, 1].
	Temperatures []float32

	count          int
	obstacleRadius float32
	time           float32
	rng            *rand.Rand

	// Strided views over the arrays for the blas32 passes
	posX, posY blas32.Vector
	velX, velY blas32.Vector
	vel        blas32.Vector
}

// New builds an ensemble from p. Equivalent to Build with p's fields.
func New(p Params, rng *rand.Rand) *Ensemble {
	return Build(p.Count, p.ObstacleRadius, p.Domain, p.Init, rng)
}

// Build allocates and initializes an ensemble. The result depends only on its
// arguments and the state of rng.
func Build(count int, obstacleRadius float32, domain Domain, opts InitOptions, rng *rand.Rand) *Ensemble {
	if count < 0 {
		count = 0
	}
	e := &Ensemble{
		Positions:      make([]float32, 3*count),
		Velocities:     make([]float32, 2*count),
		Temperatures:   make([]float32, count),
		count:          count,
		obstacleRadius: obstacleRadius,
		rng:            rng,
	}
	e.bindVectors()

	hw, hh := domain.HalfExtents()
	minR, maxR := ringBounds(opts.Policy, obstacleRadius, hw, hh)
	region := newSpawnRegion(hw, hh, opts.Padding, opts.Roundness)

	var centers [][2]float32
	if opts.Policy == PolicyClusters && opts.ClusterCount > 0 {
		centers = make([][2]float32, opts.ClusterCount)
		for c := range centers {
			x, y := e.spawn(region, func() (float32, float32) { return e.sampleRing(minR, maxR, 0) })
			centers[c] = [2]float32{x, y}
		}
	}

	sample := func() (float32, float32) { return e.sampleRing(minR, maxR, opts.Spread) }
	if centers != nil {
		sample = func() (float32, float32) { return e.sampleCluster(centers, opts.ClusterRadius) }
	}

	for i := 0; i < count; i++ {
		x, y := e.spawn(region, sample)

		e.Positions[3*i] = x
		e.Positions[3*i+1] = y
		e.Positions[3*i+2] = 0

		vx, vy := e.launchDirection(x, y)
		e.Velocities[2*i] = vx*opts.Velocity + e.uniform(opts.VelocityJitter)
		e.Velocities[2*i+1] = vy*opts.Velocity + e.uniform(opts.VelocityJitter)

		e.Temperatures[i] = e.rng.Float32()
	}

	return e
}

// spawnRegion is the open interior a fresh particle must start in.
type spawnRegion struct {
	ehw, ehh       float32
	innerX, innerY float32
	cr             float32
}

func newSpawnRegion(hw, hh, padding, roundness float32) spawnRegion {
	ehw := maxf(hw-padding, 0)
	ehh := maxf(hh-padding, 0)
	cr := maxf(minf(roundness, minf(ehw, ehh)), 0)
	return spawnRegion{ehw: ehw, ehh: ehh, innerX: ehw - cr, innerY: ehh - cr, cr: cr}
}

// contains reports whether (x, y) lies strictly inside the region, so a
// freshly spawned particle never starts on a wall.
func (r spawnRegion) contains(x, y float32) bool {
	ax, ay := absf(x), absf(y)
	if ax >= r.ehw || ay >= r.ehh {
		return false
	}
	if r.cr > 0 && ax > r.innerX && ay > r.innerY {
		dx, dy := ax-r.innerX, ay-r.innerY
		return dx*dx+dy*dy < r.cr*r.cr
	}
	return true
}

// spawn draws from sample until a point lands inside the region. When every
// attempt misses, the last point is pulled toward the origin until it fits.
func (e *Ensemble) spawn(r spawnRegion, sample func() (float32, float32)) (float32, float32) {
	var x, y float32
	for attempt := 0; attempt < maxSpawnAttempts; attempt++ {
		x, y = sample()
		if r.contains(x, y) {
			return x, y
		}
	}
	if r.ehw <= 0 || r.ehh <= 0 {
		return 0, 0
	}
	for !r.contains(x, y) {
		x *= spawnPullback
		y *= spawnPullback
	}
	return x, y
}

// ringBounds returns the radial sampling window for a policy.
func ringBounds(policy Policy, obstacleRadius, hw, hh float32) (float32, float32) {
	extent := maxf(hw, hh)
	if obstacleRadius <= 0 {
		// No obstacle to ring around: use the inner part of the domain
		return extent * 0.1, extent
	}
	switch policy {
	case PolicyRingNearObstacle:
		return obstacleRadius, obstacleRadius * 1.3
	default:
		minR := obstacleRadius * 0.6
		maxR := extent
		if maxR < minR {
			maxR = minR
		}
		return minR, maxR
	}
}

// sampleRing draws a point at a Gaussian-windowed radius in [minR, maxR]
// with up to spread×radius jitter per axis.
func (e *Ensemble) sampleRing(minR, maxR, spread float32) (float32, float32) {
	angle := e.rng.Float64() * 2 * math.Pi

	mid := float64(minR+maxR) / 2
	sigma := float64(maxR-minR) / 4
	r := float32(mid + e.boxMuller()*sigma)
	r = clampf(r, minR, maxR)

	jx := e.uniform(spread * r)
	jy := e.uniform(spread * r)

	return float32(math.Cos(angle))*r + jx, float32(math.Sin(angle))*r + jy
}

// sampleCluster draws a point from a Gaussian blob around a random centre.
func (e *Ensemble) sampleCluster(centers [][2]float32, radius float32) (float32, float32) {
	c := centers[e.rng.Intn(len(centers))]
	sigma := float64(radius) / 2
	return c[0] + float32(e.boxMuller()*sigma), c[1] + float32(e.boxMuller()*sigma)
}

// boxMuller returns a standard normal sample.
func (e *Ensemble) boxMuller() float64 {
	u1 := e.rng.Float64()
	for u1 == 0 {
		u1 = e.rng.Float64()
	}
	u2 := e.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// launchDirection is the unit vector from the origin through (x, y), or a
// random direction when the point sits exactly on the origin.
func (e *Ensemble) launchDirection(x, y float32) (float32, float32) {
	d := sqrtf(x*x + y*y)
	if d > 0 {
		return x / d, y / d
	}
	a := e.rng.Float64() * 2 * math.Pi
	return float32(math.Cos(a)), float32(math.Sin(a))
}

// uniform returns a sample in [-amp, amp].
func (e *Ensemble) uniform(amp float32) float32 {
	if amp == 0 {
		return 0
	}
	return (e.rng.Float32()*2 - 1) * amp
}

// bindVectors points the blas32 views at the backing arrays.
func (e *Ensemble) bindVectors() {
	n := e.count
	e.vel = blas32.Vector{N: 2 * n, Inc: 1, Data: e.Velocities}
	if n == 0 {
		return
	}
	e.posX = blas32.Vector{N: n, Inc: 3, Data: e.Positions}
	e.posY = blas32.Vector{N: n, Inc: 3, Data: e.Positions[1:]}
	e.velX = blas32.Vector{N: n, Inc: 2, Data: e.Velocities}
	e.velY = blas32.Vector{N: n, Inc: 2, Data: e.Velocities[1:]}
}

// Count returns the number of particles.
func (e *Ensemble) Count() int {
	return e.count
}

// ObstacleRadius returns the obstacle radius the ensemble was built for.
func (e *Ensemble) ObstacleRadius() float32 {
	return e.obstacleRadius
}

// Time returns the accumulated simulation time in seconds.
func (e *Ensemble) Time() float32 {
	return e.time
}

// Position returns the position of particle i.
func (e *Ensemble) Position(i int) (x, y float32) {
	return e.Positions[3*i], e.Positions[3*i+1]
}

// Velocity returns the velocity of particle i.
func (e *Ensemble) Velocity(i int) (vx, vy float32) {
	return e.Velocities[2*i], e.Velocities[2*i+1]
}

// SetParticle overwrites the state of particle i.
func (e *Ensemble) SetParticle(i int, x, y, vx, vy, temperature float32) {
	e.Positions[3*i] = x
	e.Positions[3*i+1] = y
	e.Positions[3*i+2] = 0
	e.Velocities[2*i] = vx
	e.Velocities[2*i+1] = vy
	e.Temperatures[i] = temperature
}

// SnapshotPositions returns a copy of all positions, for one-shot export.
func (e *Ensemble) SnapshotPositions() []r2.Vec {
	out := make([]r2.Vec, e.count)
	for i := range out {
		out[i] = r2.Vec{X: float64(e.Positions[3*i]), Y: float64(e.Positions[3*i+1])}
	}
	return out
}

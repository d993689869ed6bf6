package field

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/convect/config"
	"github.com/pthm-cable/convect/input"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

// quietParams returns default parameters with every optional force switched
// off, so individual tests can turn on exactly what they exercise.
func quietParams(count int) Params {
	p := ParamsFrom(config.Cfg(), 0)
	p.Count = count
	p.Domain = Domain{Width: 800, Height: 600}
	p.Init.VelocityJitter = 0
	p.Turbulence = 0
	p.ConvectionStrength = 0
	p.Buoyancy = 0
	p.TemperatureDiffusion = 0
	p.WindX, p.WindY, p.WindVariation = 0, 0, 0
	p.GravityX, p.GravityY = 0, 0
	p.VortexStrength = 0
	p.ObstacleEnabled = false
	p.BoundaryPadding = 0
	p.BoundaryRoundness = 0
	return p
}

func TestBuildArrayLengths(t *testing.T) {
	for _, n := range []int{0, 1, 7, 1000} {
		e := Build(n, 300, Domain{Width: 800, Height: 600}, InitOptions{Policy: PolicyFillDomain}, rand.New(rand.NewSource(1)))
		assert.Equal(t, n, e.Count())
		assert.Len(t, e.Positions, 3*n)
		assert.Len(t, e.Velocities, 2*n)
		assert.Len(t, e.Temperatures, n)
	}
}

func TestBuildDeterministic(t *testing.T) {
	p := ParamsFrom(config.Cfg(), 0)
	p.Count = 500

	a := New(p, rand.New(rand.NewSource(42)))
	b := New(p, rand.New(rand.NewSource(42)))

	assert.Equal(t, a.Positions, b.Positions)
	assert.Equal(t, a.Velocities, b.Velocities)
	assert.Equal(t, a.Temperatures, b.Temperatures)
}

func TestBuildInitialState(t *testing.T) {
	domain := Domain{Width: 800, Height: 600}
	hw, hh := domain.HalfExtents()
	e := Build(2000, 300, domain, InitOptions{Policy: PolicyFillDomain, Spread: 0.1, Velocity: 0.5}, rand.New(rand.NewSource(3)))

	for i := 0; i < e.Count(); i++ {
		x, y := e.Position(i)
		require.Less(t, absf(x), hw, "particle %d", i)
		require.Less(t, absf(y), hh, "particle %d", i)
		require.Zero(t, e.Positions[3*i+2], "particle %d z", i)
		require.GreaterOrEqual(t, e.Temperatures[i], float32(0))
		require.LessOrEqual(t, e.Temperatures[i], float32(1))

		// Without jitter the launch velocity is radial-outward at the configured speed
		vx, vy := e.Velocity(i)
		require.InDelta(t, 0.5, sqrtf(vx*vx+vy*vy), 1e-4, "particle %d launch speed", i)
		if sqrtf(x*x+y*y) > 0 {
			require.Greater(t, vx*x+vy*y, float32(0), "particle %d launched inward", i)
		}
	}
}

// A fresh ensemble starts strictly inside the padded domain, so no particle
// sits on a wall line and the first Resolve has nothing to do.
func TestBuildSpawnsInsidePaddedDomain(t *testing.T) {
	tests := []struct {
		name      string
		domain    Domain
		opts      InitOptions
		roundness float32
	}{
		{"wide fill domain", Domain{Width: 1280, Height: 720}, InitOptions{Policy: PolicyFillDomain, Spread: 0.1}, 0},
		{"tall fill domain", Domain{Width: 600, Height: 1400}, InitOptions{Policy: PolicyFillDomain, Spread: 0.1}, 0},
		{"rounded corners", Domain{Width: 1280, Height: 720}, InitOptions{Policy: PolicyFillDomain, Spread: 0.1}, 120},
		{"ring larger than domain", Domain{Width: 500, Height: 300}, InitOptions{Policy: PolicyRingNearObstacle}, 0},
		{"clusters", Domain{Width: 1280, Height: 720}, InitOptions{Policy: PolicyClusters, ClusterCount: 4, ClusterRadius: 150}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := quietParams(10000)
			p.Domain = tt.domain
			p.ObstacleRadius = 300
			p.BoundaryPadding = 5
			p.BoundaryRoundness = tt.roundness
			p.Init = tt.opts
			p.Init.Padding = p.BoundaryPadding
			p.Init.Roundness = p.BoundaryRoundness

			e := New(p, rand.New(rand.NewSource(1)))

			hw, hh := p.Domain.HalfExtents()
			ehw, ehh := hw-p.BoundaryPadding, hh-p.BoundaryPadding
			onWall := 0
			for i := 0; i < e.Count(); i++ {
				x, y := e.Position(i)
				require.LessOrEqual(t, absf(x), ehw, "particle %d outside padded domain", i)
				require.LessOrEqual(t, absf(y), ehh, "particle %d outside padded domain", i)
				if absf(x) == ehw || absf(y) == ehh {
					onWall++
				}
			}
			assert.Less(t, onWall, e.Count()/100, "particles spawned on a wall line")

			assert.Zero(t, e.Resolve(p), "fresh ensemble should need no boundary correction")
		})
	}
}

// The long axis of a non-square domain still gets populated.
func TestBuildFillsLongAxis(t *testing.T) {
	domain := Domain{Width: 1280, Height: 720}
	e := Build(10000, 300, domain, InitOptions{Policy: PolicyFillDomain, Spread: 0.1, Padding: 5}, rand.New(rand.NewSource(1)))

	far := 0
	for i := 0; i < e.Count(); i++ {
		if x, _ := e.Position(i); absf(x) > 500 {
			far++
		}
	}
	assert.Greater(t, far, e.Count()/50)
}

func TestBuildPolicies(t *testing.T) {
	domain := Domain{Width: 2000, Height: 2000}
	const radius = 300

	tests := []struct {
		name       string
		opts       InitOptions
		minR, maxR float32
	}{
		{"ring near obstacle", InitOptions{Policy: PolicyRingNearObstacle}, radius, radius * 1.3},
		{"fill domain", InitOptions{Policy: PolicyFillDomain}, radius * 0.6, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Build(1000, radius, domain, tt.opts, rand.New(rand.NewSource(9)))
			for i := 0; i < e.Count(); i++ {
				x, y := e.Position(i)
				r := sqrtf(x*x + y*y)
				require.GreaterOrEqual(t, r, tt.minR-1e-3, "particle %d", i)
				require.LessOrEqual(t, r, tt.maxR+1e-3, "particle %d", i)
			}
		})
	}
}

func TestBuildClusters(t *testing.T) {
	domain := Domain{Width: 2000, Height: 2000}
	opts := InitOptions{Policy: PolicyClusters, ClusterCount: 3, ClusterRadius: 20}
	e := Build(600, 300, domain, opts, rand.New(rand.NewSource(5)))

	// Tight clusters keep the spread of positions well below the domain size
	distinct := map[[2]int]bool{}
	for i := 0; i < e.Count(); i++ {
		x, y := e.Position(i)
		distinct[[2]int{int(x / 200), int(y / 200)}] = true
	}
	assert.LessOrEqual(t, len(distinct), 12, "clustered particles occupy too many coarse cells")
}

func TestBuildZeroObstacleRadius(t *testing.T) {
	e := Build(200, 0, Domain{Width: 800, Height: 600}, InitOptions{Policy: PolicyRingNearObstacle}, rand.New(rand.NewSource(2)))
	spreadOut := false
	for i := 0; i < e.Count(); i++ {
		x, y := e.Position(i)
		if sqrtf(x*x+y*y) > 1 {
			spreadOut = true
		}
	}
	assert.True(t, spreadOut, "expected particles away from the origin when obstacle radius is zero")
}

func TestStepEmptyEnsemble(t *testing.T) {
	p := quietParams(0)
	e := New(p, rand.New(rand.NewSource(1)))
	assert.Zero(t, e.Step(p, input.Snapshot{}, 0.016))
	assert.Greater(t, e.Time(), float32(0), "time should advance even with no particles")
}

func TestBoundaryContainment(t *testing.T) {
	p := ParamsFrom(config.Cfg(), 0)
	p.Count = 1000
	p.Domain = Domain{Width: 800, Height: 600}
	p.Speed = 0.5 // fast enough to slam into the walls
	e := New(p, rand.New(rand.NewSource(7)))

	hw, hh := p.Domain.HalfExtents()
	limX := hw - p.BoundaryPadding
	limY := hh - p.BoundaryPadding

	for step := 0; step < 200; step++ {
		e.Step(p, input.Snapshot{}, 0.016)
		for i := 0; i < e.Count(); i++ {
			x, y := e.Position(i)
			require.LessOrEqual(t, absf(x), limX+1e-3, "step %d: particle %d escaped", step, i)
			require.LessOrEqual(t, absf(y), limY+1e-3, "step %d: particle %d escaped", step, i)
		}
	}
}

func TestBoundaryReflectionSign(t *testing.T) {
	p := quietParams(1)
	p.BoundaryPadding = 5
	e := New(p, rand.New(rand.NewSource(1)))
	hw, _ := p.Domain.HalfExtents()

	e.SetParticle(0, hw+12, 0, 3, 0, 0.5)
	assert.Equal(t, 1, e.Resolve(p))

	x, _ := e.Position(0)
	vx, _ := e.Velocity(0)
	assert.Equal(t, hw-p.BoundaryPadding, x)
	assert.LessOrEqual(t, vx, float32(0))
	assert.InDelta(t, -3*p.BoundaryDamping, vx, 1e-5)

	// Already moving inward on the left wall: still pointing inward afterwards
	e.SetParticle(0, -hw-1, 0, 2, 0, 0.5)
	e.Resolve(p)
	vx, _ = e.Velocity(0)
	assert.GreaterOrEqual(t, vx, float32(0), "left wall")
}

// Scenario: a particle at the exact top wall moving up is cooled and sent back down.
func TestBoundaryTopCools(t *testing.T) {
	p := quietParams(1)
	p.BoundaryPadding = 5
	p.CoolingRate = 0.9
	e := New(p, rand.New(rand.NewSource(1)))
	_, hh := p.Domain.HalfExtents()

	const before = 0.6
	e.SetParticle(0, 0, hh-p.BoundaryPadding, 0, 1.5, before)
	e.Resolve(p)

	assert.InDelta(t, before*0.9, e.Temperatures[0], 1e-6)
	_, vy := e.Velocity(0)
	assert.LessOrEqual(t, vy, float32(0))
}

func TestBoundaryBottomHeatClamped(t *testing.T) {
	p := quietParams(1)
	p.HeatingRate = 1.1
	e := New(p, rand.New(rand.NewSource(1)))
	_, hh := p.Domain.HalfExtents()

	e.SetParticle(0, 0, -hh-3, 0, -1, 0.95)
	e.Resolve(p)

	assert.LessOrEqual(t, e.Temperatures[0], float32(1))
	_, vy := e.Velocity(0)
	assert.GreaterOrEqual(t, vy, float32(0))
}

func TestBoundaryRoundedCorner(t *testing.T) {
	p := quietParams(1)
	p.BoundaryRoundness = 50
	e := New(p, rand.New(rand.NewSource(1)))
	hw, hh := p.Domain.HalfExtents()

	// Just inside the bounding box but outside the top-right corner arc
	cx, cy := hw-50, hh-50
	e.SetParticle(0, hw-1, hh-1, 2, 2, 0.5)
	require.Equal(t, 1, e.Resolve(p), "expected corner contact")

	x, y := e.Position(0)
	dx, dy := x-cx, y-cy
	assert.InDelta(t, 50*cornerInset, sqrtf(dx*dx+dy*dy), 1e-3)

	// Velocity was outward along the normal, so it must now point inward
	vx, vy := e.Velocity(0)
	assert.Less(t, vx*dx+vy*dy, float32(0), "velocity still points out of the corner")
	assert.Less(t, e.Temperatures[0], float32(0.5), "upper corner should cool")

	// A point inside the arc is untouched
	e.SetParticle(0, cx+10, cy+10, 1, 1, 0.5)
	assert.Zero(t, e.Resolve(p))
}

func TestRoundedContainment(t *testing.T) {
	p := ParamsFrom(config.Cfg(), 0)
	p.Count = 1000
	p.Domain = Domain{Width: 800, Height: 600}
	p.Speed = 0.5
	p.BoundaryRoundness = 80
	e := New(p, rand.New(rand.NewSource(11)))

	hw, hh := p.Domain.HalfExtents()
	for step := 0; step < 200; step++ {
		e.Step(p, input.Snapshot{}, 0.016)
		for i := 0; i < e.Count(); i++ {
			x, y := e.Position(i)
			require.LessOrEqual(t, absf(x), hw-p.BoundaryPadding+1e-3, "step %d: particle %d escaped", step, i)
			require.LessOrEqual(t, absf(y), hh-p.BoundaryPadding+1e-3, "step %d: particle %d escaped", step, i)
		}
	}
}

// With every force off, each particle's speed never grows from one frame to
// the next and decays toward zero.
func TestDampingConvergence(t *testing.T) {
	p := quietParams(100)
	p.Damping = 0.9
	e := New(p, rand.New(rand.NewSource(4)))

	speeds := func() []float32 {
		s := make([]float32, e.Count())
		for i := range s {
			vx, vy := e.Velocity(i)
			s[i] = sqrtf(vx*vx + vy*vy)
		}
		return s
	}

	prev := speeds()
	for step := 0; step < 300; step++ {
		e.Step(p, input.Snapshot{}, 0.016)
		cur := speeds()
		for i := range cur {
			require.LessOrEqual(t, cur[i], prev[i]+1e-7, "step %d: particle %d sped up", step, i)
		}
		prev = cur
	}

	for i, s := range prev {
		assert.Less(t, s, float32(1e-6), "particle %d still moving", i)
	}
}

// One step with only damping: displacement is bounded by the launch speed.
// Forces read frame-start positions and integration happens once, so the
// bound is exact rather than approximate.
func TestScenarioDampingOnlyDisplacement(t *testing.T) {
	p := quietParams(100)
	p.ObstacleRadius = 300
	e := New(p, rand.New(rand.NewSource(8)))

	before := append([]float32(nil), e.Positions...)
	e.Step(p, input.Snapshot{}, 0.016)

	limit := float64(p.Init.Velocity*p.Speed*ReferenceFPS) * (1 + 1e-4)
	for i := 0; i < e.Count(); i++ {
		dx := float64(e.Positions[3*i] - before[3*i])
		dy := float64(e.Positions[3*i+1] - before[3*i+1])
		assert.LessOrEqual(t, math.Hypot(dx, dy), limit, "particle %d", i)
	}
}

// Particles inside the soft obstacle radius are pushed outward.
func TestScenarioObstacleRepels(t *testing.T) {
	p := quietParams(10)
	p.ObstacleEnabled = true
	p.ObstacleRadius = 300
	p.Domain = Domain{Width: 2000, Height: 2000}
	e := New(p, rand.New(rand.NewSource(1)))

	r := p.ObstacleRadius * 0.5
	for i := 0; i < e.Count(); i++ {
		a := float64(i) / float64(e.Count()) * 2 * math.Pi
		e.SetParticle(i, r*float32(math.Cos(a)), r*float32(math.Sin(a)), 0, 0, 0.5)
	}

	e.Step(p, input.Snapshot{}, 0.016)

	for i := 0; i < e.Count(); i++ {
		a := float64(i) / float64(e.Count()) * 2 * math.Pi
		vx, vy := e.Velocity(i)
		dot := float64(vx)*math.Cos(a) + float64(vy)*math.Sin(a)
		assert.Greater(t, dot, 0.0, "particle %d not pushed away from obstacle", i)
		assert.Greater(t, e.Temperatures[i], float32(0.5), "particle %d not heated by obstacle", i)
	}
}

func TestPointerRepelsAndHeats(t *testing.T) {
	p := quietParams(1)
	p.MouseRadius = 50
	p.MouseHeat = 0.8
	e := New(p, rand.New(rand.NewSource(1)))
	e.SetParticle(0, 10, 0, 0, 0, 0.5)

	in := input.Snapshot{Pointer: input.Pointer{X: 0, Y: 0, Active: true}}
	e.Step(p, in, 0.016)

	vx, _ := e.Velocity(0)
	assert.Greater(t, vx, float32(0))
	assert.Equal(t, float32(1), e.Temperatures[0], "temperature should clamp to 1")

	// Inactive pointer does nothing
	e.SetParticle(0, 10, 0, 0, 0, 0.5)
	in.Pointer.Active = false
	e.Step(p, in, 0.016)
	vx, _ = e.Velocity(0)
	assert.Zero(t, vx, "inactive pointer moved particle")
}

func TestScrollInertiaShiftsEveryParticle(t *testing.T) {
	p := quietParams(5)
	p.Damping = 1
	p.Domain = Domain{Width: 4000, Height: 4000}
	e := New(p, rand.New(rand.NewSource(1)))
	for i := 0; i < e.Count(); i++ {
		e.SetParticle(i, float32(i*10), 0, 0, 0, 0.5)
	}

	e.Step(p, input.Snapshot{ScrollX: 0.2, ScrollY: -0.1}, 0.016)

	for i := 0; i < e.Count(); i++ {
		vx, vy := e.Velocity(i)
		assert.InDelta(t, 0.2, vx, 1e-6, "particle %d", i)
		assert.InDelta(t, -0.1, vy, 1e-6, "particle %d", i)
	}
}

func TestDegenerateDistancesStayFinite(t *testing.T) {
	p := ParamsFrom(config.Cfg(), 0)
	p.Count = 3
	p.Domain = Domain{Width: 800, Height: 600}
	p.VortexStrength = 1
	p.GravityY = -0.1
	p.ObstacleEnabled = true
	e := New(p, rand.New(rand.NewSource(1)))

	// Exactly on the obstacle centre, the pointer and the vortex centre
	for i := 0; i < e.Count(); i++ {
		e.SetParticle(i, 0, 0, 0, 0, 0.5)
	}
	in := input.Snapshot{Pointer: input.Pointer{X: 0, Y: 0, Active: true}}

	for step := 0; step < 10; step++ {
		e.Step(p, in, 0.016)
	}

	for _, arr := range [][]float32{e.Positions, e.Velocities, e.Temperatures} {
		for _, v := range arr {
			require.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0),
				"non-finite state after stepping particles at force centres")
		}
	}
}

func TestTemperatureDiffusionDirection(t *testing.T) {
	p := quietParams(2)
	p.TemperatureDiffusion = 0.5
	e := New(p, rand.New(rand.NewSource(1)))
	_, hh := p.Domain.HalfExtents()

	e.SetParticle(0, 0, hh*0.9, 0, 0, 0.5)  // near the top
	e.SetParticle(1, 0, -hh*0.9, 0, 0, 0.5) // near the bottom
	e.Step(p, input.Snapshot{}, 0.016)

	assert.Less(t, e.Temperatures[0], float32(0.5), "top particle warmed")
	assert.Greater(t, e.Temperatures[1], float32(0.5), "bottom particle cooled")
}

func TestNeedsRebuild(t *testing.T) {
	base := ParamsFrom(config.Cfg(), 0)

	changed := base
	changed.Damping = 0.5
	changed.ConvectionStrength = 3
	assert.False(t, NeedsRebuild(base, changed), "physics tweak should not require a rebuild")

	changed = base
	changed.Count++
	assert.True(t, NeedsRebuild(base, changed), "count change should require a rebuild")

	changed = base
	changed.ObstacleRadius *= 2
	assert.True(t, NeedsRebuild(base, changed), "obstacle radius change should require a rebuild")
}

func TestSnapshotPositionsIsCopy(t *testing.T) {
	p := quietParams(4)
	e := New(p, rand.New(rand.NewSource(1)))

	snap := e.SnapshotPositions()
	require.Len(t, snap, 4)
	x, y := e.Position(2)
	assert.Equal(t, float64(x), snap[2].X)
	assert.Equal(t, float64(y), snap[2].Y)

	snap[2].X = 12345
	x2, _ := e.Position(2)
	assert.NotEqual(t, float32(12345), x2, "snapshot aliases live positions")
}

func BenchmarkStep(b *testing.B) {
	p := ParamsFrom(config.Cfg(), 0)
	e := New(p, rand.New(rand.NewSource(1)))
	in := input.Snapshot{Pointer: input.Pointer{X: 100, Y: 50, Active: true}}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		e.Step(p, in, 0.016)
	}
}

package field

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/convect/input"
)

// Step advances the ensemble by one frame and returns the number of wall
// contacts resolved. dt drives the convection oscillators; positions advance
// by velocity × speed × ReferenceFPS regardless of dt.
//
// All forces read the positions as they were at the start of the frame,
// then positions are integrated once and confined to the domain.
func (e *Ensemble) Step(p Params, in input.Snapshot, dt float32) int {
	e.time += dt
	if e.count == 0 {
		return 0
	}

	_, halfH := p.Domain.HalfExtents()
	for i := 0; i < e.count; i++ {
		e.applyForces(i, &p, &in, halfH)
	}

	blas32.Scal(p.Damping, e.vel)

	if amp := p.Turbulence * p.TurbulenceScale; amp != 0 {
		for j := range e.Velocities {
			e.Velocities[j] += (e.rng.Float32() - 0.5) * amp
		}
	}

	e.integrate(p.Speed)

	return e.Resolve(p)
}

// integrate moves every particle by its velocity.
func (e *Ensemble) integrate(speed float32) {
	if e.count == 0 {
		return
	}
	alpha := speed * ReferenceFPS
	blas32.Axpy(alpha, e.velX, e.posX)
	blas32.Axpy(alpha, e.velY, e.posY)
}

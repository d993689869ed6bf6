package field

const (
	cornerInset        = 0.95 // fraction of the corner radius a corner hit is pushed back to
	cornerPerturbation = 0.01 // peak-to-peak velocity noise added on corner hits
)

// Resolve confines every particle to the domain, reflecting velocity and
// applying wall temperature effects. It returns the number of wall contacts.
//
// Positions that are NaN or infinite are not sanitized here; the force
// evaluation guards every division so they never arise.
func (e *Ensemble) Resolve(p Params) int {
	hw, hh := p.Domain.HalfExtents()
	ehw := hw - p.BoundaryPadding
	ehh := hh - p.BoundaryPadding

	contacts := 0
	if p.BoundaryRoundness <= 0 {
		for i := 0; i < e.count; i++ {
			contacts += e.resolveRect(i, ehw, ehh, &p)
		}
		return contacts
	}

	cr := minf(p.BoundaryRoundness, minf(ehw, ehh))
	if cr < 0 {
		cr = 0
	}
	innerX := ehw - cr
	innerY := ehh - cr
	for i := 0; i < e.count; i++ {
		x := e.Positions[3*i]
		y := e.Positions[3*i+1]
		if absf(x) > innerX && absf(y) > innerY {
			contacts += e.resolveCorner(i, signf(x)*innerX, signf(y)*innerY, cr, &p)
			continue
		}
		contacts += e.resolveRect(i, ehw, ehh, &p)
	}
	return contacts
}

// resolveRect clamps particle i to the rectangle [-ehw, ehw] × [-ehh, ehh].
// Reflected velocity always points back inward.
func (e *Ensemble) resolveRect(i int, ehw, ehh float32, p *Params) int {
	contacts := 0
	xi, yi := 3*i, 3*i+1
	vxi, vyi := 2*i, 2*i+1

	if x := e.Positions[xi]; x >= ehw {
		e.Positions[xi] = ehw
		e.Velocities[vxi] = -absf(e.Velocities[vxi]) * p.BoundaryDamping
		contacts++
	} else if x <= -ehw {
		e.Positions[xi] = -ehw
		e.Velocities[vxi] = absf(e.Velocities[vxi]) * p.BoundaryDamping
		contacts++
	}

	if y := e.Positions[yi]; y >= ehh {
		// Top wall cools
		e.Positions[yi] = ehh
		e.Velocities[vyi] = -absf(e.Velocities[vyi]) * p.BoundaryDamping
		e.Temperatures[i] *= p.CoolingRate
		contacts++
	} else if y <= -ehh {
		// Bottom wall heats
		e.Positions[yi] = -ehh
		e.Velocities[vyi] = absf(e.Velocities[vyi]) * p.BoundaryDamping
		e.Temperatures[i] = minf(1, e.Temperatures[i]*p.HeatingRate)
		contacts++
	}

	return contacts
}

// resolveCorner pushes particle i back inside the quarter circle of radius cr
// centred on (cx, cy) if it has left it.
func (e *Ensemble) resolveCorner(i int, cx, cy, cr float32, p *Params) int {
	xi, yi := 3*i, 3*i+1
	dx := e.Positions[xi] - cx
	dy := e.Positions[yi] - cy
	dist := sqrtf(dx*dx + dy*dy)
	if dist <= cr || dist == 0 {
		return 0
	}

	nx, ny := dx/dist, dy/dist
	e.Positions[xi] = cx + nx*cr*cornerInset
	e.Positions[yi] = cy + ny*cr*cornerInset

	vx := e.Velocities[2*i]
	vy := e.Velocities[2*i+1]
	if dot := vx*nx + vy*ny; dot > 0 {
		vx -= 2 * dot * nx
		vy -= 2 * dot * ny
	}
	vx += (e.rng.Float32() - 0.5) * cornerPerturbation
	vy += (e.rng.Float32() - 0.5) * cornerPerturbation
	e.Velocities[2*i] = vx * p.BoundaryDamping
	e.Velocities[2*i+1] = vy * p.BoundaryDamping

	if cy > 0 {
		e.Temperatures[i] *= p.CoolingRate
	} else {
		e.Temperatures[i] = minf(1, e.Temperatures[i]*p.HeatingRate)
	}
	return 1
}

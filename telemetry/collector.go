package telemetry

import (
	"math"

	"github.com/pthm-cable/convect/field"
)

// hotThreshold splits particles into hot and cold for the convection profile.
const hotThreshold = 0.5

// Collector accumulates boundary events of one layer within time windows and
// produces FieldStats.
type Collector struct {
	layer               string
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32
	grid                int

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	wallContacts int

	// Scratch buffers reused across flushes
	speeds   []float64
	temps    []float64
	occupied []bool
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
// grid: cells per axis for the coverage measure
func NewCollector(layer string, windowDurationSec float64, dt float32, grid int) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	if grid < 1 {
		grid = 1
	}

	return &Collector{
		layer:               layer,
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		grid:                grid,
		occupied:            make([]bool, grid*grid),
	}
}

// RecordContacts adds the wall contacts of one step.
func (c *Collector) RecordContacts(n int) {
	c.wallContacts += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a FieldStats from the ensemble's current state and resets
// counters for the next window.
func (c *Collector) Flush(currentTick int32, e *field.Ensemble, p field.Params) FieldStats {
	n := e.Count()
	stats := FieldStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),
		Layer:           c.layer,
		Count:           n,
		WallContacts:    c.wallContacts,
	}

	windowTicks := currentTick - c.windowStartTick
	if windowTicks > 0 {
		stats.ContactsPerSec = float64(c.wallContacts) / (float64(windowTicks) * float64(c.dt))
	}

	c.speeds = c.speeds[:0]
	c.temps = c.temps[:0]
	var hotY, coldY float64
	var hot, cold int
	for i := 0; i < n; i++ {
		vx, vy := e.Velocity(i)
		c.speeds = append(c.speeds, math.Hypot(float64(vx), float64(vy)))

		t := float64(e.Temperatures[i])
		c.temps = append(c.temps, t)

		_, y := e.Position(i)
		if t >= hotThreshold {
			hotY += float64(y)
			hot++
		} else {
			coldY += float64(y)
			cold++
		}
	}
	if hot > 0 {
		stats.HotMeanY = hotY / float64(hot)
	}
	if cold > 0 {
		stats.ColdMeanY = coldY / float64(cold)
	}

	stats.SpeedMean, stats.SpeedStd, stats.SpeedP10, stats.SpeedP50, stats.SpeedP90 = ComputeDistribution(c.speeds)
	stats.TempMean, stats.TempStd, _, _, _ = ComputeDistribution(c.temps)
	stats.Coverage, stats.Escaped = c.coverage(e, p)

	// Reset for next window
	c.windowStartTick = currentTick
	c.wallContacts = 0

	return stats
}

// coverage bins positions into a grid over the padded domain and returns the
// fraction of occupied cells plus the number of particles outside it.
func (c *Collector) coverage(e *field.Ensemble, p field.Params) (float64, int) {
	hw, hh := p.Domain.HalfExtents()
	ehw := float64(hw - p.BoundaryPadding)
	ehh := float64(hh - p.BoundaryPadding)
	if ehw <= 0 || ehh <= 0 {
		return 0, 0
	}

	for i := range c.occupied {
		c.occupied[i] = false
	}

	const tolerance = 1e-3
	escaped := 0
	filled := 0
	g := c.grid
	for i := 0; i < e.Count(); i++ {
		x, y := e.Position(i)
		fx, fy := float64(x), float64(y)
		if math.Abs(fx) > ehw+tolerance || math.Abs(fy) > ehh+tolerance {
			escaped++
			continue
		}
		cx := int((fx + ehw) / (2 * ehw) * float64(g))
		cy := int((fy + ehh) / (2 * ehh) * float64(g))
		cx = min(max(cx, 0), g-1)
		cy = min(max(cy, 0), g-1)
		if !c.occupied[cy*g+cx] {
			c.occupied[cy*g+cx] = true
			filled++
		}
	}

	return float64(filled) / float64(g*g), escaped
}

// Coverage reports the occupied fraction of a grid×grid tiling of the
// confinement region, for callers that only need the one number.
func Coverage(e *field.Ensemble, p field.Params, grid int) float64 {
	c := NewCollector("", 1, 1, grid)
	cov, _ := c.coverage(e, p)
	return cov
}

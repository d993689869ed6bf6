package telemetry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/convect/config"
	"github.com/pthm-cable/convect/field"
	"github.com/pthm-cable/convect/input"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func testParams(count int) field.Params {
	p := field.ParamsFrom(config.Cfg(), 0)
	p.Count = count
	p.Domain = field.Domain{Width: 400, Height: 400}
	p.BoundaryPadding = 0
	return p
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector("main", 1.0, 0.1, 4)

	assert.False(t, c.ShouldFlush(5))
	assert.True(t, c.ShouldFlush(10))

	p := testParams(10)
	e := field.New(p, rand.New(rand.NewSource(1)))
	c.RecordContacts(3)
	c.RecordContacts(2)

	stats := c.Flush(10, e, p)
	assert.Equal(t, "main", stats.Layer)
	assert.Equal(t, 10, stats.Count)
	assert.Equal(t, 5, stats.WallContacts)
	assert.InDelta(t, 5.0, stats.ContactsPerSec, 1e-6)
	assert.InDelta(t, 1.0, stats.SimTimeSec, 1e-6)

	// Counters reset and the next window starts where the last ended
	assert.False(t, c.ShouldFlush(15))
	next := c.Flush(20, e, p)
	assert.Equal(t, 0, next.WallContacts)
	assert.Equal(t, int32(10), next.WindowStartTick)
}

func TestCollectorCoverage(t *testing.T) {
	p := testParams(4)
	e := field.New(p, rand.New(rand.NewSource(1)))

	// All particles in one corner cell of a 2x2 grid
	for i := 0; i < e.Count(); i++ {
		e.SetParticle(i, -150, -150, 0, 0, 0.5)
	}
	assert.InDelta(t, 0.25, Coverage(e, p, 2), 1e-9)

	// One per quadrant
	e.SetParticle(1, 150, -150, 0, 0, 0.5)
	e.SetParticle(2, -150, 150, 0, 0, 0.5)
	e.SetParticle(3, 150, 150, 0, 0, 0.5)
	assert.InDelta(t, 1.0, Coverage(e, p, 2), 1e-9)
}

func TestCollectorCountsEscaped(t *testing.T) {
	p := testParams(3)
	e := field.New(p, rand.New(rand.NewSource(1)))
	e.SetParticle(0, 0, 0, 0, 0, 0.5)
	e.SetParticle(1, 500, 0, 0, 0, 0.5)
	e.SetParticle(2, 0, -500, 0, 0, 0.5)

	stats := NewCollector("main", 1, 0.1, 8).Flush(10, e, p)
	assert.Equal(t, 2, stats.Escaped)
}

func TestCollectorConvectionProfile(t *testing.T) {
	p := testParams(2)
	e := field.New(p, rand.New(rand.NewSource(1)))
	e.SetParticle(0, 0, 100, 0, 0, 0.9)
	e.SetParticle(1, 0, -50, 0, 0, 0.1)

	stats := NewCollector("main", 1, 0.1, 8).Flush(10, e, p)
	assert.InDelta(t, 100, stats.HotMeanY, 1e-6)
	assert.InDelta(t, -50, stats.ColdMeanY, 1e-6)
	assert.InDelta(t, 0.5, stats.TempMean, 1e-6)
}

// A long run never lets particles out of the padded domain.
func TestCollectorNoEscapesAfterRun(t *testing.T) {
	p := testParams(500)
	p.BoundaryPadding = 5
	p.Speed = 0.3
	e := field.New(p, rand.New(rand.NewSource(2)))
	c := NewCollector("main", 1, 0.1, 16)

	for tick := int32(1); tick <= 300; tick++ {
		c.RecordContacts(e.Step(p, input.Snapshot{}, 0.016))
	}

	stats := c.Flush(300, e, p)
	require.Equal(t, 0, stats.Escaped)
	assert.Greater(t, stats.Coverage, 0.0)
	assert.Greater(t, stats.WallContacts, 0)
}

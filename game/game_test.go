package game

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/convect/config"
	"github.com/pthm-cable/convect/field"
	"github.com/pthm-cable/convect/input"
	"github.com/pthm-cable/convect/telemetry"
)

func init() {
	config.MustInit("")
}

func testConfig(layers ...config.LayerConfig) *config.Config {
	cfg := config.Cfg().Clone()
	cfg.Basic.Count = 200
	if len(layers) > 0 {
		cfg.Layers = layers
	}
	cfg.Recompute()
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	opts.Config = cfg
	opts.Headless = true
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	g, err := NewGameWithOptions(opts)
	require.NoError(t, err)
	t.Cleanup(g.Unload)
	return g
}

func TestHeadlessRunAdvancesTicks(t *testing.T) {
	g := newTestGame(t, testConfig(), Options{StepsPerUpdate: 3})

	g.UpdateHeadless()
	g.UpdateHeadless()

	assert.Equal(t, int32(6), g.Tick())
	require.Len(t, g.Layers(), 1)
	assert.InDelta(t, 6*g.Config().Derived.DT32, g.Layers()[0].Ensemble.Time(), 1e-5)
}

func TestLayersFallBackToBasic(t *testing.T) {
	cfg := testConfig(config.LayerConfig{Name: "a"}, config.LayerConfig{Name: "b", Count: 50, ColorMode: "cycle_b"})
	g := newTestGame(t, cfg, Options{})

	layers := g.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, "a", layers[0].Name)
	assert.Equal(t, 200, layers[0].Ensemble.Count())
	assert.Equal(t, 50, layers[1].Ensemble.Count())
	assert.Equal(t, "cycle_b", string(layers[1].Palette.Mode()))
}

func TestStatsCallbackPerLayer(t *testing.T) {
	cfg := testConfig(config.LayerConfig{Name: "a"}, config.LayerConfig{Name: "b"})

	var got []telemetry.FieldStats
	g := newTestGame(t, cfg, Options{
		StatsWindowSec: 0.1, // 6 ticks
		StatsCallback:  func(s telemetry.FieldStats) { got = append(got, s) },
	})

	for i := 0; i < 6; i++ {
		g.UpdateHeadless()
	}

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Layer)
	assert.Equal(t, "b", got[1].Layer)
	for _, s := range got {
		assert.Equal(t, int32(6), s.WindowEndTick)
		assert.Equal(t, 200, s.Count)
		assert.Zero(t, s.Escaped)
		assert.Greater(t, s.Coverage, 0.0)
	}
}

func TestApplyConfigRebuildsOnlyWhenNeeded(t *testing.T) {
	g := newTestGame(t, testConfig(), Options{})
	before := g.Layers()[0].Ensemble

	next := g.Config().Clone()
	next.Physics.Damping = 0.9
	require.NoError(t, g.ApplyConfig(next))
	assert.Same(t, before, g.Layers()[0].Ensemble, "damping applies in place")
	assert.InDelta(t, 0.9, g.Layers()[0].Params.Damping, 1e-6)

	next = g.Config().Clone()
	next.Basic.Count = 120
	require.NoError(t, g.ApplyConfig(next))
	assert.NotSame(t, before, g.Layers()[0].Ensemble)
	assert.Equal(t, 120, g.Layers()[0].Ensemble.Count())

	rebuilt := g.Layers()[0].Ensemble
	next = g.Config().Clone()
	next.Obstacle.Radius = 100
	require.NoError(t, g.ApplyConfig(next))
	assert.NotSame(t, rebuilt, g.Layers()[0].Ensemble)
}

func TestApplyConfigLayerCountChange(t *testing.T) {
	g := newTestGame(t, testConfig(), Options{})

	next := g.Config().Clone()
	next.Layers = append(next.Layers, config.LayerConfig{Name: "extra", Count: 10})
	require.NoError(t, g.ApplyConfig(next))

	require.Len(t, g.Layers(), 2)
	assert.Equal(t, 10, g.Layers()[1].Ensemble.Count())

	g.UpdateHeadless()
	assert.Equal(t, int32(1), g.Tick())
}

func TestApplyConfigRejectsInvalid(t *testing.T) {
	g := newTestGame(t, testConfig(), Options{})
	before := g.Layers()[0].Ensemble

	next := g.Config().Clone()
	next.Basic.Count = -1
	assert.Error(t, g.ApplyConfig(next))
	assert.Same(t, before, g.Layers()[0].Ensemble)
	assert.Equal(t, 200, g.Config().Basic.Count)
}

func TestSameSeedSameRun(t *testing.T) {
	a := newTestGame(t, testConfig(), Options{Seed: 42})
	b := newTestGame(t, testConfig(), Options{Seed: 42})

	for i := 0; i < 30; i++ {
		a.UpdateHeadless()
		b.UpdateHeadless()
	}
	assert.Equal(t, a.Layers()[0].Ensemble.Positions, b.Layers()[0].Ensemble.Positions)
}

func TestParallelStepMatchesSequential(t *testing.T) {
	const perLayer = 2100 // two layers exceed parallelThreshold
	cfg := testConfig(config.LayerConfig{Name: "a", Count: perLayer}, config.LayerConfig{Name: "b", Count: perLayer})
	g := newTestGame(t, cfg, Options{Seed: 3})
	require.GreaterOrEqual(t, g.particleCount(), parallelThreshold)

	// Reference ensembles stepped one by one with the same seeds
	refs := make([]*field.Ensemble, 2)
	params := make([]field.Params, 2)
	for i := range refs {
		params[i] = field.ParamsFrom(cfg, i)
		refs[i] = field.New(params[i], rand.New(rand.NewSource(3+int64(i))))
	}

	dt := cfg.Derived.DT32
	for step := 0; step < 10; step++ {
		g.UpdateHeadless()
		for i, e := range refs {
			e.Step(params[i], input.Snapshot{}, dt)
		}
	}

	for i, l := range g.Layers() {
		assert.Equal(t, refs[i].Positions, l.Ensemble.Positions, "layer %s", l.Name)
	}
}

func TestPointerEventsReachStep(t *testing.T) {
	g := newTestGame(t, testConfig(), Options{})

	g.Adapter().PointerMove(0, input.KindMouse, 12, -8)
	g.UpdateHeadless()

	assert.True(t, g.frame.Pointer.Active)
	assert.Equal(t, float32(12), g.frame.Pointer.X)
	assert.Equal(t, float32(-8), g.frame.Pointer.Y)
}

func TestExportPositions(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(config.LayerConfig{Name: "a", Count: 5}, config.LayerConfig{Name: "b", Count: 3})
	g := newTestGame(t, cfg, Options{ExportDir: dir, Seed: 9})
	g.UpdateHeadless()

	path, err := g.ExportPositions()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "positions_1.json"), path)

	snap, err := telemetry.LoadPositions(path)
	require.NoError(t, err)
	assert.Equal(t, int64(9), snap.Seed)
	require.Len(t, snap.Layers, 2)
	assert.Len(t, snap.Layers[0].Positions, 5)
	assert.Len(t, snap.Layers[1].Positions, 3)

	x, y := g.Layers()[1].Ensemble.Position(2)
	assert.Equal(t, float64(x), snap.Layers[1].Positions[2].X)
	assert.Equal(t, float64(y), snap.Layers[1].Positions[2].Y)
}

func TestOutputDirWritesCSV(t *testing.T) {
	dir := t.TempDir()
	g, err := NewGameWithOptions(Options{
		Config:         testConfig(),
		Headless:       true,
		Seed:           1,
		OutputDir:      dir,
		StatsWindowSec: 0.05,
	})
	require.NoError(t, err)

	for i := 0; i < 9; i++ {
		g.UpdateHeadless()
	}
	g.Unload()

	data, err := os.ReadFile(filepath.Join(dir, "field.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4) // header + 3 windows
	assert.True(t, strings.HasPrefix(lines[0], "window_end,"))

	_, err = os.Stat(filepath.Join(dir, "perf.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}

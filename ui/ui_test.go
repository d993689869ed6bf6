package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/convect/config"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	assert.True(t, reg.IsEnabled(OverlayBounds))
	assert.False(t, reg.IsEnabled(OverlayTuning))
	assert.Equal(t, []string{"visual", "panels"}, reg.Categories())
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	assert.True(t, reg.Toggle(OverlayStats))
	assert.True(t, reg.Toggle(OverlayTuning))
	assert.False(t, reg.IsEnabled(OverlayStats), "tuning and stats share the same screen area")

	assert.False(t, reg.Toggle(OverlayTuning))
	assert.Empty(t, reg.ByCategory("nope"))
	assert.False(t, reg.Toggle("missing"))
}

func TestOverlayHandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, state, ok := reg.HandleKeyPress(rl.KeyO)
	require.True(t, ok)
	assert.Equal(t, OverlayObstacle, id)
	assert.True(t, state)
	assert.Contains(t, reg.EnabledOverlays(), OverlayObstacle)

	_, _, ok = reg.HandleKeyPress(rl.KeyZ)
	assert.False(t, ok)
}

func TestKeyActionsBindFieldKeys(t *testing.T) {
	panel := NewControlsPanel(0, 0, 200, DefaultKeyActions())

	for key, want := range map[int32]ActionID{
		rl.KeyE: ActionExport,
		rl.KeyC: ActionCopyCSV,
		rl.KeyS: ActionSaveConfig,
		rl.KeyR: ActionReseed,
	} {
		id, ok := panel.ActionForKey(key)
		require.True(t, ok, "key %d", key)
		assert.Equal(t, want, id)
	}

	// No action key may shadow an overlay toggle
	reg := NewOverlayRegistry()
	seen := map[int32]bool{}
	for _, a := range panel.Actions() {
		assert.False(t, seen[a.Key], "duplicate key for %s", a.ID)
		seen[a.Key] = true
		for _, cat := range reg.Categories() {
			for _, desc := range reg.ByCategory(cat) {
				assert.NotEqual(t, desc.Key, a.Key, "%s shadows overlay %s", a.ID, desc.ID)
			}
		}
	}

	_, ok := panel.ActionForKey(rl.KeyZ)
	assert.False(t, ok)
}

func TestTuningParamApply(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	params := DefaultTuningParams()
	byKey := map[string]TuningParam{}
	for _, p := range params {
		byKey[p.Section+"."+p.Key] = p
	}

	damping := byKey["physics.damping"]
	assert.True(t, damping.Apply(cfg, 0.9))
	assert.Equal(t, 0.9, cfg.Physics.Damping)
	assert.False(t, damping.Apply(cfg, 0.9), "unchanged value")

	// Clamped to the slider range
	damping.Apply(cfg, 3)
	assert.Equal(t, 1.0, cfg.Physics.Damping)

	count := byKey["basic.count"]
	assert.True(t, count.Rebuild)
	count.Apply(cfg, 1234.6)
	assert.Equal(t, 1235, cfg.Basic.Count)

	assert.True(t, byKey["obstacle.radius"].Rebuild)
	assert.False(t, byKey["convection.strength"].Rebuild)
}

func TestTuningYAMLLoadsBack(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Convection.Strength = 2.5
	cfg.Basic.Count = 777

	out, err := TuningYAML(cfg, DefaultTuningParams())
	require.NoError(t, err)

	var overlay config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &overlay))
	assert.Equal(t, 2.5, overlay.Convection.Strength)
	assert.Equal(t, 777, overlay.Basic.Count)
	assert.Equal(t, cfg.Obstacle.Radius, overlay.Obstacle.Radius)
}

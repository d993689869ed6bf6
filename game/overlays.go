package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/field"
	"github.com/pthm-cable/convect/ui"
)

// overlayKeys are the keys bound in the overlay registry.
var overlayKeys = []int32{rl.KeyB, rl.KeyO, rl.KeyP, rl.KeyI, rl.KeyT, rl.KeyF}

// handleOverlayKeys processes overlay toggle keys.
func (g *Game) handleOverlayKeys() {
	for _, key := range overlayKeys {
		if !rl.IsKeyPressed(key) {
			continue
		}
		if id, enabled, ok := g.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", enabled)
		}
	}
}

// drawActiveOverlays renders world-space overlays.
func (g *Game) drawActiveOverlays() {
	cfg := g.cfg

	if g.overlays.IsEnabled(ui.OverlayBounds) {
		g.domain.DrawBounds(g.camera, cfg.Derived.DomainW32, cfg.Derived.DomainH32,
			float32(cfg.Boundary.Padding), float32(cfg.Boundary.Roundness))
	}

	if g.overlays.IsEnabled(ui.OverlayObstacle) && cfg.Obstacle.Enabled {
		g.domain.DrawObstacle(g.camera, float32(cfg.Obstacle.X), float32(cfg.Obstacle.Y),
			float32(cfg.Obstacle.Radius), field.ObstacleSoftness)
	}

	if g.overlays.IsEnabled(ui.OverlayPointer) && g.frame.Pointer.Active {
		g.domain.DrawPointer(g.camera, g.frame.Pointer.X, g.frame.Pointer.Y, float32(cfg.Pointer.Radius))
	}
}

// drawPanels renders screen-space panels.
func (g *Game) drawPanels() {
	if g.overlays.IsEnabled(ui.OverlayStats) {
		g.statsPanel.Draw(g.lastStats)
	}

	if g.overlays.IsEnabled(ui.OverlayTuning) {
		g.drawTuning()
	}

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		_, h := g.screenSize()
		g.perfPanel.SetPosition(10, h-150)
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	g.controlsPanel.Draw(g.overlays)
}

// drawTuning draws the tuning panel and applies its edits.
func (g *Game) drawTuning() {
	next := g.cfg.Clone()
	res := g.tuningPanel.Draw(next)

	if res.Changed {
		if err := g.ApplyConfig(next); err != nil {
			slog.Error("failed to apply tuning", "error", err)
		}
	}
	if res.Copy {
		frag, err := ui.TuningYAML(g.cfg, g.tuningPanel.Params())
		if err != nil {
			slog.Error("failed to render tuning yaml", "error", err)
			return
		}
		rl.SetClipboardText(frag)
		g.setStatus("tuning copied to clipboard")
	}
	if res.Save {
		g.saveConfig()
	}
}

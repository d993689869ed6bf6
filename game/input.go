package game

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/ui"
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	for _, a := range g.controlsPanel.Actions() {
		if rl.IsKeyPressed(a.Key) {
			g.runAction(a.ID)
		}
	}

	g.handleOverlayKeys()
	g.handleCameraInput()
}

// runAction performs a field action from the controls legend.
func (g *Game) runAction(id ui.ActionID) {
	switch id {
	case ui.ActionPause:
		g.paused = !g.paused
	case ui.ActionSlower:
		if g.stepsPerUpdate > 1 {
			g.stepsPerUpdate--
		}
	case ui.ActionFaster:
		if g.stepsPerUpdate < 10 {
			g.stepsPerUpdate++
		}
	case ui.ActionExport:
		g.exportPositions()
	case ui.ActionCopyCSV:
		g.copyPositions()
	case ui.ActionSaveConfig:
		g.saveConfig()
	case ui.ActionReseed:
		if err := g.Reseed(time.Now().UnixNano()); err != nil {
			slog.Error("failed to reseed", "error", err)
		}
	case ui.ActionControls:
		g.controlsPanel.Toggle()
	}
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	// World y points up
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, panSpeed)
	}

	// The plain wheel scrolls the field; Ctrl+wheel zooms
	if rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) {
		if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
			g.camera.ZoomBy(1.0 + wheelMove*0.1)
		}
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

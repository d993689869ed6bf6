package game

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/telemetry"
	"github.com/pthm-cable/convect/ui"
)

// Scene colours. The wall tints are kept dark so particles stay readable.
var (
	clearColor = rl.Color{R: 8, G: 10, B: 16, A: 255}
	hotWall    = rl.Color{R: 46, G: 20, B: 14, A: 255}
	coolWall   = rl.Color{R: 10, G: 18, B: 40, A: 255}
)

// controlsText is the key legend at the bottom of the screen.
const controlsText = "SPACE pause | ,/. speed | E export | C copy CSV | S save config | R reseed | H controls | Ctrl+wheel zoom"

// Draw renders the current frame and ends its perf sample.
func (g *Game) Draw() {
	g.perfCollector.StartPhase(telemetry.PhaseRender)

	rl.BeginDrawing()
	rl.ClearBackground(clearColor)

	simTime := float32(g.tick) * g.cfg.Derived.DT32
	g.background.Draw(simTime, g.camera)

	for _, l := range g.layers {
		c := rl.Color(l.Palette.At(float64(l.Ensemble.Time())))
		g.particles.Draw(l.Ensemble.Positions, g.camera, c, l.Size)
	}

	g.drawActiveOverlays()
	g.drawUI()

	rl.EndDrawing()

	g.perfCollector.EndTick()
}

// drawUI renders the HUD and panels.
func (g *Game) drawUI() {
	layers := make([]ui.LayerInfo, len(g.layers))
	for i, l := range g.layers {
		layers[i] = ui.LayerInfo{
			Name:  l.Name,
			Count: l.Ensemble.Count(),
			Color: rl.Color(l.Palette.At(float64(l.Ensemble.Time()))),
		}
	}

	status := ""
	if time.Now().Before(g.statusUntil) {
		status = g.status
	}
	if g.stepsPerUpdate > 1 {
		status = fmt.Sprintf("%dx %s", g.stepsPerUpdate, status)
	}

	g.hud.Draw(ui.HUDData{
		Title:         "Convection Field",
		Layers:        layers,
		Tick:          g.tick,
		FPS:           rl.GetFPS(),
		Paused:        g.paused,
		PointerActive: g.frame.Pointer.Active,
		ScrollX:       g.frame.ScrollX,
		ScrollY:       g.frame.ScrollY,
		Status:        status,
	})

	g.drawPanels()

	w, h := g.screenSize()
	g.hud.DrawControls(w, h, controlsText)
}

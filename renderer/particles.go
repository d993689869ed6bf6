// Package renderer provides rendering utilities.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/camera"
)

// ParticleRenderer draws an ensemble as small squares.
type ParticleRenderer struct {
	additive bool
}

// NewParticleRenderer creates a new particle renderer. With additive blending
// dense regions glow brighter.
func NewParticleRenderer(additive bool) *ParticleRenderer {
	return &ParticleRenderer{additive: additive}
}

// Draw renders particles from a flat x, y, z position buffer. The buffer is
// only read.
func (r *ParticleRenderer) Draw(positions []float32, cam *camera.Camera, color rl.Color, size float32) {
	if r.additive {
		rl.BeginBlendMode(rl.BlendAdditive)
		defer rl.EndBlendMode()
	}

	// Keep particles visible when zoomed far out
	px := size * cam.Zoom
	if px < 1 {
		px = 1
	}
	dim := rl.Vector2{X: px, Y: px}
	half := px / 2

	n := len(positions) / 3
	for i := 0; i < n; i++ {
		wx := positions[3*i]
		wy := positions[3*i+1]
		if !cam.IsVisible(wx, wy, size) {
			continue
		}
		sx, sy := cam.WorldToScreen(wx, wy)
		rl.DrawRectangleV(rl.Vector2{X: sx - half, Y: sy - half}, dim, color)
	}
}

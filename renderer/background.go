package renderer

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/camera"
)

//go:embed shaders/background.fs
var backgroundFS string

// BackgroundRenderer shades the domain with a faint gradient from the hot
// bottom wall to the cool top wall.
type BackgroundRenderer struct {
	shader        rl.Shader
	timeLoc       int32
	resolutionLoc int32
	cameraPosLoc  int32
	cameraZoomLoc int32
	worldSizeLoc  int32
	hotColorLoc   int32
	coldColorLoc  int32

	screenW, screenH float32
	hot, cold        [3]float32
	initialized      bool
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(screenW, screenH int32, hot, cold rl.Color) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: float32(screenW),
		screenH: float32(screenH),
		hot:     normalizeColor(hot),
		cold:    normalizeColor(cold),
	}
}

func normalizeColor(c rl.Color) [3]float32 {
	return [3]float32{float32(c.R) / 255.0, float32(c.G) / 255.0, float32(c.B) / 255.0}
}

// Init initializes the renderer (must be called after raylib window is created).
func (b *BackgroundRenderer) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory("", backgroundFS)
	b.timeLoc = rl.GetShaderLocation(b.shader, "time")
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.cameraPosLoc = rl.GetShaderLocation(b.shader, "cameraPos")
	b.cameraZoomLoc = rl.GetShaderLocation(b.shader, "cameraZoom")
	b.worldSizeLoc = rl.GetShaderLocation(b.shader, "worldSize")
	b.hotColorLoc = rl.GetShaderLocation(b.shader, "hotColor")
	b.coldColorLoc = rl.GetShaderLocation(b.shader, "coldColor")

	// Set static uniforms
	b.setResolution()
	rl.SetShaderValue(b.shader, b.hotColorLoc, b.hot[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(b.shader, b.coldColorLoc, b.cold[:], rl.ShaderUniformVec3)

	b.initialized = true
}

func (b *BackgroundRenderer) setResolution() {
	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{b.screenW, b.screenH}, rl.ShaderUniformVec2)
}

// Resize updates the screen dimensions.
func (b *BackgroundRenderer) Resize(screenW, screenH float32) {
	b.screenW, b.screenH = screenW, screenH
	if b.initialized {
		b.setResolution()
	}
}

// Draw renders the gradient for the current view.
func (b *BackgroundRenderer) Draw(time float32, cam *camera.Camera) {
	if !b.initialized {
		b.Init()
	}

	rl.BeginShaderMode(b.shader)

	rl.SetShaderValue(b.shader, b.timeLoc, []float32{time}, rl.ShaderUniformFloat)
	rl.SetShaderValue(b.shader, b.cameraPosLoc, []float32{cam.X, cam.Y}, rl.ShaderUniformVec2)
	rl.SetShaderValue(b.shader, b.cameraZoomLoc, []float32{cam.Zoom}, rl.ShaderUniformFloat)
	rl.SetShaderValue(b.shader, b.worldSizeLoc, []float32{cam.DomainW, cam.DomainH}, rl.ShaderUniformVec2)

	// Draw fullscreen quad
	rl.DrawRectangle(0, 0, int32(b.screenW), int32(b.screenH), rl.White)

	rl.EndShaderMode()
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}

package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/camera"
)

const arcSegments = 12

// DomainRenderer draws the confinement outline and the obstacle.
type DomainRenderer struct {
	Outline  rl.Color
	Obstacle rl.Color
}

// NewDomainRenderer creates a domain renderer with muted default colours.
func NewDomainRenderer() *DomainRenderer {
	return &DomainRenderer{
		Outline:  rl.Color{R: 80, G: 90, B: 110, A: 160},
		Obstacle: rl.Color{R: 255, G: 140, B: 60, A: 90},
	}
}

// DrawBounds outlines the region particles are confined to: the domain
// inset by padding, with corners of the given radius.
func (r *DomainRenderer) DrawBounds(cam *camera.Camera, width, height, padding, roundness float32) {
	ehw := width/2 - padding
	ehh := height/2 - padding
	if ehw <= 0 || ehh <= 0 {
		return
	}
	cr := roundness
	if cr > ehw {
		cr = ehw
	}
	if cr > ehh {
		cr = ehh
	}
	if cr < 0 {
		cr = 0
	}

	// Walk the outline counter-clockwise starting at the right edge
	pts := make([]rl.Vector2, 0, 4*(arcSegments+1)+1)
	corners := [4][3]float32{
		{ehw - cr, ehh - cr, 0},
		{-(ehw - cr), ehh - cr, math.Pi / 2},
		{-(ehw - cr), -(ehh - cr), math.Pi},
		{ehw - cr, -(ehh - cr), 3 * math.Pi / 2},
	}
	for _, c := range corners {
		for s := 0; s <= arcSegments; s++ {
			a := float64(c[2]) + float64(s)/arcSegments*math.Pi/2
			wx := c[0] + cr*float32(math.Cos(a))
			wy := c[1] + cr*float32(math.Sin(a))
			sx, sy := cam.WorldToScreen(wx, wy)
			pts = append(pts, rl.Vector2{X: sx, Y: sy})
			if cr == 0 {
				break
			}
		}
	}
	pts = append(pts, pts[0])

	for i := 1; i < len(pts); i++ {
		rl.DrawLineV(pts[i-1], pts[i], r.Outline)
	}
}

// DrawObstacle draws the obstacle's nominal radius as a ring and its
// effective radius as a faint disc.
func (r *DomainRenderer) DrawObstacle(cam *camera.Camera, x, y, radius, softness float32) {
	if radius <= 0 {
		return
	}
	sx, sy := cam.WorldToScreen(x, y)
	fill := r.Obstacle
	fill.A /= 3
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius*softness*cam.Zoom, fill)
	rl.DrawCircleLines(int32(sx), int32(sy), radius*cam.Zoom, r.Obstacle)
}

// DrawPointer draws the pointer interaction radius.
func (r *DomainRenderer) DrawPointer(cam *camera.Camera, x, y, radius float32) {
	sx, sy := cam.WorldToScreen(x, y)
	rl.DrawCircleLines(int32(sx), int32(sy), radius*cam.Zoom, rl.Color{R: 255, G: 255, B: 255, A: 70})
}

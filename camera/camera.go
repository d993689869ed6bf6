// Package camera provides a 2D camera system for viewport control.
package camera

// Camera controls the viewport into the field. World coordinates are centred
// on the domain with y pointing up; screen coordinates have y pointing down.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Domain dimensions, used to fit the view
	DomainW, DomainH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centred on the origin, zoomed so the whole domain fits.
func New(viewportW, viewportH, domainW, domainH float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		DomainW:   domainW,
		DomainH:   domainH,
		MaxZoom:   4.0,
	}
	c.FitDomain()
	return c
}

// fitZoom is the zoom at which the whole domain is just visible.
func (c *Camera) fitZoom() float32 {
	if c.DomainW <= 0 || c.DomainH <= 0 {
		return 1
	}
	zx := c.ViewportW / c.DomainW
	zy := c.ViewportH / c.DomainH
	if zy < zx {
		return zy
	}
	return zx
}

// FitDomain recentres the camera and picks the zoom that shows the full domain.
// Zooming out further than that is not allowed.
func (c *Camera) FitDomain() {
	c.X, c.Y = 0, 0
	c.MinZoom = c.fitZoom()
	if c.MaxZoom < c.MinZoom {
		c.MaxZoom = c.MinZoom
	}
	c.Zoom = c.MinZoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom()
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
}

// SetDomain changes the domain size and refits the view.
func (c *Camera) SetDomain(domainW, domainH float32) {
	if domainW == c.DomainW && domainH == c.DomainH {
		return
	}
	c.DomainW = domainW
	c.DomainH = domainH
	c.FitDomain()
}

// Pan moves the camera by the given delta in screen pixels. The centre stays
// within the domain.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X+dx/c.Zoom, -c.DomainW/2, c.DomainW/2)
	c.Y = clamp(c.Y-dy/c.Zoom, -c.DomainH/2, c.DomainH/2)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.FitDomain()
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
// Returns (minX, minY, maxX, maxY) in world coordinates.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

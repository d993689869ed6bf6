package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/camera"
	"github.com/pthm-cable/convect/input"
)

const (
	mouseID     = 0
	touchIDBase = 1 << 16 // keeps touch ids apart from the mouse

	// scrollStep is the virtual scroll distance of one wheel notch, in world units.
	scrollStep = 40
)

// pollSource turns raylib's polled mouse, touch and wheel state into
// pointer and scroll events in world coordinates.
type pollSource struct {
	cam *camera.Camera

	handlers map[int]input.Handler
	nextID   int

	mouseX, mouseY   float32
	mouseOnScreen    bool
	touches          map[int32]rl.Vector2
	scrollX, scrollY float32
}

func newPollSource(cam *camera.Camera) *pollSource {
	return &pollSource{
		cam:      cam,
		handlers: make(map[int]input.Handler),
		touches:  make(map[int32]rl.Vector2),
	}
}

// Subscribe registers h. The scroll estimator is primed with the current
// virtual scroll position.
func (s *pollSource) Subscribe(h input.Handler) func() {
	id := s.nextID
	s.nextID++
	s.handlers[id] = h
	h.ObserveScroll(s.scrollX, -s.scrollY)
	return func() { delete(s.handlers, id) }
}

// Poll reads the current raylib input state and dispatches events. Call once
// per frame from the window thread.
func (s *pollSource) Poll() {
	if len(s.handlers) == 0 {
		return
	}
	s.pollMouse()
	s.pollTouches()
	s.pollWheel()
}

func (s *pollSource) pollMouse() {
	onScreen := rl.IsCursorOnScreen()
	if !onScreen {
		if s.mouseOnScreen {
			s.each(func(h input.Handler) { h.PointerLeave(mouseID) })
		}
		s.mouseOnScreen = false
		return
	}
	s.mouseOnScreen = true

	pos := rl.GetMousePosition()
	wx, wy := s.cam.ScreenToWorld(pos.X, pos.Y)

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		s.each(func(h input.Handler) { h.PointerDown(mouseID, input.KindMouse, wx, wy) })
	}
	if wx != s.mouseX || wy != s.mouseY {
		s.mouseX, s.mouseY = wx, wy
		s.each(func(h input.Handler) { h.PointerMove(mouseID, input.KindMouse, wx, wy) })
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		s.each(func(h input.Handler) { h.PointerUp(mouseID) })
	}
}

func (s *pollSource) pollTouches() {
	seen := make(map[int32]bool, len(s.touches))
	n := rl.GetTouchPointCount()
	for i := int32(0); i < n; i++ {
		tid := rl.GetTouchPointId(i)
		pos := rl.GetTouchPosition(i)
		seen[tid] = true

		id := touchIDBase + int(tid)
		wx, wy := s.cam.ScreenToWorld(pos.X, pos.Y)
		prev, known := s.touches[tid]
		if !known {
			s.each(func(h input.Handler) { h.PointerDown(id, input.KindTouch, wx, wy) })
		}
		if !known || prev != pos {
			s.each(func(h input.Handler) { h.PointerMove(id, input.KindTouch, wx, wy) })
		}
		s.touches[tid] = pos
	}

	for tid := range s.touches {
		if seen[tid] {
			continue
		}
		id := touchIDBase + int(tid)
		s.each(func(h input.Handler) { h.PointerUp(id) })
		delete(s.touches, tid)
	}
}

// pollWheel integrates wheel motion into a virtual scroll position. Zooming
// with Ctrl held does not scroll.
func (s *pollSource) pollWheel() {
	if rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) {
		return
	}
	wheel := rl.GetMouseWheelMoveV()
	if wheel.X == 0 && wheel.Y == 0 {
		return
	}
	// Page-style offsets grow downward; world y points up
	s.scrollX -= wheel.X * scrollStep
	s.scrollY -= wheel.Y * scrollStep
	s.each(func(h input.Handler) { h.ObserveScroll(s.scrollX, -s.scrollY) })
}

func (s *pollSource) each(fn func(input.Handler)) {
	for _, h := range s.handlers {
		fn(h)
	}
}

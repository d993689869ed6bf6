// Package input turns host pointer and scroll events into the per-frame
// snapshot consumed by the particle field.
package input

import (
	"sync"
)

// Kind identifies the pointing device behind a pointer id.
type Kind uint8

const (
	KindMouse Kind = iota
	KindTouch
	KindPen
)

// Pointer is the pointer state seen by one frame, in world coordinates.
type Pointer struct {
	X, Y   float32
	Active bool
}

// Snapshot is the read-only input state for one frame. It is computed once
// per frame and shared by every layer so they never disagree.
type Snapshot struct {
	Pointer          Pointer
	ScrollX, ScrollY float32
}

// Handler receives host events. Adapter implements it.
type Handler interface {
	PointerDown(id int, kind Kind, x, y float32)
	PointerMove(id int, kind Kind, x, y float32)
	PointerUp(id int)
	PointerCancel(id int)
	PointerLeave(id int)
	ObserveScroll(x, y float32)
}

// EventSource is a host event stream a Handler can subscribe to.
type EventSource interface {
	Subscribe(h Handler) (unsubscribe func())
}

// snapEpsilon is the inertia magnitude below which a component snaps to zero.
const snapEpsilon = 1e-4

// Adapter collects pointer and scroll events and exposes them as snapshots.
// Events and snapshot reads may come from different goroutines.
type Adapter struct {
	mu sync.Mutex

	pointer Pointer
	engaged map[int]Kind
	// A hovering mouse stays active until it leaves; engaged pointers
	// activate on their first move and deactivate with the last release.
	hoverID      int
	hovering     bool
	engagedMoved bool

	inertiaX, inertiaY float32
	lastScrollX        float32
	lastScrollY        float32
	scrollPrimed       bool

	strength float32
	damping  float32
	limit    float32

	unsubs []func()
	closed bool
}

// NewAdapter creates an adapter with the given scroll coupling.
func NewAdapter(strength, damping, limit float32) *Adapter {
	return &Adapter{
		engaged:  make(map[int]Kind),
		strength: strength,
		damping:  damping,
		limit:    limit,
	}
}

// SetScrollParams updates scroll coupling without resetting inertia.
func (a *Adapter) SetScrollParams(strength, damping, limit float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.strength = strength
	a.damping = damping
	a.limit = limit
	a.inertiaX = clampAbs(a.inertiaX, limit)
	a.inertiaY = clampAbs(a.inertiaY, limit)
}

// Listen subscribes the adapter to src. The subscription is released by Close.
func (a *Adapter) Listen(src EventSource) {
	unsub := src.Subscribe(a)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		unsub()
		return
	}
	a.unsubs = append(a.unsubs, unsub)
}

// Close releases every subscription. Later events are ignored.
func (a *Adapter) Close() {
	a.mu.Lock()
	unsubs := a.unsubs
	a.unsubs = nil
	a.closed = true
	a.pointer = Pointer{}
	a.hovering, a.engagedMoved = false, false
	a.inertiaX, a.inertiaY = 0, 0
	a.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

// PointerDown engages a pointer. The pointer becomes active on the next move.
func (a *Adapter) PointerDown(id int, kind Kind, x, y float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.engaged[id] = kind
	a.pointer.X, a.pointer.Y = x, y
}

// PointerMove updates the position. A mouse is active unconditionally;
// touch and pen only while engaged.
func (a *Adapter) PointerMove(id int, kind Kind, x, y float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pointer.X, a.pointer.Y = x, y
	if kind == KindMouse {
		a.hoverID, a.hovering = id, true
	}
	if len(a.engaged) > 0 {
		a.engagedMoved = true
	}
	a.refreshActive()
}

// PointerUp releases a pointer.
func (a *Adapter) PointerUp(id int) { a.release(id) }

// PointerCancel releases a pointer the host gave up on.
func (a *Adapter) PointerCancel(id int) { a.release(id) }

// PointerLeave releases a pointer that left the surface. It is the only
// event that ends mouse hover.
func (a *Adapter) PointerLeave(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.hovering && a.hoverID == id {
		a.hovering = false
	}
	a.releaseLocked(id)
}

func (a *Adapter) release(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.releaseLocked(id)
}

func (a *Adapter) releaseLocked(id int) {
	delete(a.engaged, id)
	if len(a.engaged) == 0 {
		a.engagedMoved = false
	}
	a.refreshActive()
}

func (a *Adapter) refreshActive() {
	a.pointer.Active = a.hovering || a.engagedMoved
}

// ObserveScroll records a scroll position sample and adds the scaled
// velocity to the inertia. The first sample only primes the estimator.
func (a *Adapter) ObserveScroll(x, y float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if !a.scrollPrimed {
		a.lastScrollX, a.lastScrollY = x, y
		a.scrollPrimed = true
		return
	}
	vx := x - a.lastScrollX
	vy := y - a.lastScrollY
	a.lastScrollX, a.lastScrollY = x, y

	a.inertiaX = clampAbs(a.inertiaX+vx*a.strength, a.limit)
	a.inertiaY = clampAbs(a.inertiaY+vy*a.strength, a.limit)
}

// Tick decays scroll inertia. Call once per frame whether or not the host scrolled.
func (a *Adapter) Tick() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inertiaX = decay(a.inertiaX, a.damping)
	a.inertiaY = decay(a.inertiaY, a.damping)
}

// Snapshot returns the state for the current frame.
func (a *Adapter) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return Snapshot{}
	}
	return Snapshot{
		Pointer: a.pointer,
		ScrollX: a.inertiaX,
		ScrollY: a.inertiaY,
	}
}

func decay(v, damping float32) float32 {
	v *= damping
	if v < snapEpsilon && v > -snapEpsilon {
		return 0
	}
	return v
}

func clampAbs(v, limit float32) float32 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

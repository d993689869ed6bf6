// Package palette computes particle colours. Colour is presentation only and
// never feeds back into the simulation.
package palette

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Mode selects how a layer is coloured over time.
type Mode string

const (
	ModeStatic Mode = "static"
	ModeCycleA Mode = "cycle_a"
	ModeCycleB Mode = "cycle_b"
)

// ParseMode validates a mode name. The empty string means static.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeStatic:
		return ModeStatic, nil
	case ModeCycleA, ModeCycleB:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown color mode %q", s)
}

// Palette yields the colour of a layer at a point in time.
type Palette struct {
	mode    Mode
	base    colorful.Color
	from    colorful.Color
	to      colorful.Color
	period  float64
	opacity float64
}

// New builds a palette. base is used in static mode; cycleA and cycleB are
// the endpoints of the two cycling modes, swept back and forth every
// periodSec seconds.
func New(mode Mode, base string, opacity float64, cycleA, cycleB [2]string, periodSec float64) (*Palette, error) {
	p := &Palette{mode: mode, period: periodSec, opacity: clamp01(opacity)}

	var err error
	if p.base, err = colorful.Hex(base); err != nil {
		return nil, fmt.Errorf("base color: %w", err)
	}

	var ends [2]string
	switch mode {
	case ModeStatic:
		return p, nil
	case ModeCycleA:
		ends = cycleA
	case ModeCycleB:
		ends = cycleB
	default:
		return nil, fmt.Errorf("unknown color mode %q", mode)
	}

	if p.from, err = colorful.Hex(ends[0]); err != nil {
		return nil, fmt.Errorf("%s start: %w", mode, err)
	}
	if p.to, err = colorful.Hex(ends[1]); err != nil {
		return nil, fmt.Errorf("%s end: %w", mode, err)
	}
	return p, nil
}

// Mode returns the palette's mode.
func (p *Palette) Mode() Mode {
	return p.mode
}

// At returns the colour at time t seconds.
func (p *Palette) At(t float64) color.RGBA {
	c := p.base
	if p.mode != ModeStatic {
		c = p.from.BlendHcl(p.to, p.phase(t)).Clamped()
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: uint8(math.Round(p.opacity * 255))}
}

// phase maps t onto a triangle wave in [0, 1] so the cycle returns smoothly
// to its starting colour.
func (p *Palette) phase(t float64) float64 {
	if p.period <= 0 {
		return 0
	}
	f := math.Mod(t/p.period, 1)
	if f < 0 {
		f++
	}
	return 1 - math.Abs(2*f-1)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

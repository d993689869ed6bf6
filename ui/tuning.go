package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/convect/config"
)

// TuningParam is one live-editable configuration value.
type TuningParam struct {
	Section string // YAML section the value lives in
	Key     string // YAML key within the section
	Label   string
	Min     float64
	Max     float64
	Format  string
	Integer bool // round to a whole number
	Rebuild bool // changing it discards the ensemble
	Get     func(*config.Config) float64
	Set     func(*config.Config, float64)
}

// Apply clamps v to the slider range and writes it into cfg. It reports
// whether the stored value changed.
func (p TuningParam) Apply(cfg *config.Config, v float64) bool {
	v = math.Max(p.Min, math.Min(p.Max, v))
	if p.Integer {
		v = math.Round(v)
	}
	if v == p.Get(cfg) {
		return false
	}
	p.Set(cfg, v)
	return true
}

// DefaultTuningParams returns the sliders shown in the tuning panel.
func DefaultTuningParams() []TuningParam {
	return []TuningParam{
		{Section: "basic", Key: "speed", Label: "Speed", Min: 0.005, Max: 0.3, Format: "%.3f",
			Get: func(c *config.Config) float64 { return c.Basic.Speed },
			Set: func(c *config.Config, v float64) { c.Basic.Speed = v }},
		{Section: "basic", Key: "count", Label: "Particles", Min: 100, Max: 50000, Format: "%.0f", Integer: true, Rebuild: true,
			Get: func(c *config.Config) float64 { return float64(c.Basic.Count) },
			Set: func(c *config.Config, v float64) { c.Basic.Count = int(v) }},
		{Section: "physics", Key: "damping", Label: "Damping", Min: 0.8, Max: 1.0, Format: "%.3f",
			Get: func(c *config.Config) float64 { return c.Physics.Damping },
			Set: func(c *config.Config, v float64) { c.Physics.Damping = v }},
		{Section: "physics", Key: "turbulence", Label: "Turbulence", Min: 0, Max: 0.05, Format: "%.4f",
			Get: func(c *config.Config) float64 { return c.Physics.Turbulence },
			Set: func(c *config.Config, v float64) { c.Physics.Turbulence = v }},
		{Section: "convection", Key: "strength", Label: "Convection", Min: 0, Max: 5, Format: "%.2f",
			Get: func(c *config.Config) float64 { return c.Convection.Strength },
			Set: func(c *config.Config, v float64) { c.Convection.Strength = v }},
		{Section: "convection", Key: "buoyancy", Label: "Buoyancy", Min: 0, Max: 0.2, Format: "%.3f",
			Get: func(c *config.Config) float64 { return c.Convection.Buoyancy },
			Set: func(c *config.Config, v float64) { c.Convection.Buoyancy = v }},
		{Section: "obstacle", Key: "radius", Label: "Obstacle R", Min: 0, Max: 600, Format: "%.0f", Integer: true, Rebuild: true,
			Get: func(c *config.Config) float64 { return c.Obstacle.Radius },
			Set: func(c *config.Config, v float64) { c.Obstacle.Radius = v }},
		{Section: "boundary", Key: "roundness", Label: "Roundness", Min: 0, Max: 300, Format: "%.0f", Integer: true,
			Get: func(c *config.Config) float64 { return c.Boundary.Roundness },
			Set: func(c *config.Config, v float64) { c.Boundary.Roundness = v }},
	}
}

// TuningYAML renders the tuned values as a config fragment that can be
// pasted into a config file.
func TuningYAML(cfg *config.Config, params []TuningParam) (string, error) {
	sections := map[string]map[string]any{}
	for _, p := range params {
		if sections[p.Section] == nil {
			sections[p.Section] = map[string]any{}
		}
		v := p.Get(cfg)
		if p.Integer {
			sections[p.Section][p.Key] = int(v)
		} else {
			sections[p.Section][p.Key] = v
		}
	}
	out, err := yaml.Marshal(sections)
	if err != nil {
		return "", fmt.Errorf("marshaling tuning fragment: %w", err)
	}
	return string(out), nil
}

// TuningResult reports what the user changed during one Draw.
type TuningResult struct {
	Changed bool // any value changed
	Rebuild bool // a changed value requires rebuilding the ensembles
	Save    bool // save button pressed
	Copy    bool // copy button pressed
}

// TuningPanel renders raygui sliders bound to configuration values.
type TuningPanel struct {
	renderer *Renderer
	params   []TuningParam
	x, y     int32
	width    int32
}

// NewTuningPanel creates a tuning panel with the default parameters.
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		params:   DefaultTuningParams(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Params returns the panel's parameters.
func (t *TuningPanel) Params() []TuningParam {
	return t.params
}

// Draw renders the panel and applies slider edits to cfg.
func (t *TuningPanel) Draw(cfg *config.Config) TuningResult {
	var res TuningResult

	r := t.renderer
	padding := r.Theme.Padding
	rowHeight := int32(24)
	height := padding*3 + r.Theme.LineHeight + int32(len(t.params))*rowHeight + 30

	r.DrawPanel(t.x, t.y, t.width, height)

	y := t.y + padding
	rl.DrawText("Tuning", t.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	sliderX := float32(t.x + padding + r.Theme.LabelWidth)
	sliderW := float32(t.width - padding*2 - r.Theme.LabelWidth - 60)

	for _, p := range t.params {
		rl.DrawText(p.Label, t.x+padding, y+4, r.Theme.FontSize, r.Theme.LabelColor)

		cur := p.Get(cfg)
		next := gui.SliderBar(
			rl.Rectangle{X: sliderX, Y: float32(y), Width: sliderW, Height: 18},
			"", "",
			float32(cur), float32(p.Min), float32(p.Max),
		)
		if float64(next) != float64(float32(cur)) && p.Apply(cfg, float64(next)) {
			res.Changed = true
			if p.Rebuild {
				res.Rebuild = true
			}
		}

		rl.DrawText(fmt.Sprintf(p.Format, p.Get(cfg)), int32(sliderX+sliderW)+6, y+4, r.Theme.FontSize, r.Theme.ValueColor)
		y += rowHeight
	}

	y += 6
	if gui.Button(rl.Rectangle{X: float32(t.x + padding), Y: float32(y), Width: 110, Height: 24}, "Copy YAML") {
		res.Copy = true
	}
	if gui.Button(rl.Rectangle{X: float32(t.x + padding + 120), Y: float32(y), Width: 110, Height: 24}, "Save [S]") {
		res.Save = true
	}

	return res
}

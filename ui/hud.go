package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/telemetry"
)

// LayerInfo summarizes one layer for the HUD.
type LayerInfo struct {
	Name  string
	Count int
	Color rl.Color
}

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Layers        []LayerInfo
	Tick          int32
	FPS           int32
	Paused        bool
	PointerActive bool
	ScrollX       float32
	ScrollY       float32
	Status        string // transient message, e.g. after an export
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	x := int32(10)
	for _, l := range data.Layers {
		rl.DrawRectangle(x, 38, 10, 10, l.Color)
		label := fmt.Sprintf("%s: %d", l.Name, l.Count)
		rl.DrawText(label, x+14, 35, 16, rl.LightGray)
		x += 14 + rl.MeasureText(label, 16) + 16
	}

	pointer := "off"
	if data.PointerActive {
		pointer = "on"
	}
	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Pointer: %s | Scroll: %+.2f, %+.2f", data.Tick, data.FPS, pointer, data.ScrollX, data.ScrollY),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	if data.Status != "" {
		statusText += " | " + data.Status
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// fieldStatsSections describes the stats panel layout for one layer.
var fieldStatsSections = []SectionDescriptor{
	{
		ID: "motion",
		Fields: []FieldDescriptor{
			{ID: "count", Label: "Particles", Widget: WidgetText, Format: "%.0f",
				Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).Count) }},
			{ID: "speed_mean", Label: "Speed", Widget: WidgetText,
				TextGetter: func(d any) string {
					s := d.(telemetry.FieldStats)
					return fmt.Sprintf("%.3f +/- %.3f", s.SpeedMean, s.SpeedStd)
				}},
			{ID: "speed_pct", Label: "p10/50/90", Widget: WidgetText,
				TextGetter: func(d any) string {
					s := d.(telemetry.FieldStats)
					return fmt.Sprintf("%.3f / %.3f / %.3f", s.SpeedP10, s.SpeedP50, s.SpeedP90)
				}},
		},
	},
	{
		ID: "heat",
		Fields: []FieldDescriptor{
			{ID: "temp_mean", Label: "Temp", Widget: WidgetBar,
				Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).TempMean) }},
			{ID: "hot_cold", Label: "Hot/cold y", Widget: WidgetText,
				TextGetter: func(d any) string {
					s := d.(telemetry.FieldStats)
					return fmt.Sprintf("%+.0f / %+.0f", s.HotMeanY, s.ColdMeanY)
				}},
		},
	},
	{
		ID: "bounds",
		Fields: []FieldDescriptor{
			{ID: "coverage", Label: "Coverage", Widget: WidgetBar,
				Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).Coverage) }},
			{ID: "contacts", Label: "Contacts/s", Widget: WidgetText, Format: "%.1f",
				Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).ContactsPerSec) }},
			{ID: "escaped", Label: "Escaped", Widget: WidgetText, Format: "%.0f",
				Visible: func(d any) bool { return d.(telemetry.FieldStats).Escaped > 0 },
				Getter:  func(d any) float32 { return float32(d.(telemetry.FieldStats).Escaped) }},
		},
	},
}

// StatsPanel renders the latest window stats of every layer.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the panel. stats holds one entry per layer; layers with no
// completed window yet are skipped.
func (p *StatsPanel) Draw(stats []telemetry.FieldStats) {
	r := p.renderer
	padding := r.Theme.Padding
	inner := p.width - padding*2

	height := padding*2 + r.Theme.LineHeight
	for _, s := range stats {
		if s.WindowEndTick == 0 {
			continue
		}
		height += r.Theme.LineHeight
		for _, sd := range fieldStatsSections {
			height += r.SectionHeight(sd, s)
		}
	}

	r.DrawPanel(p.x, p.y, p.width, height)
	y := p.y + padding
	rl.DrawText("Field Stats", p.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, s := range stats {
		if s.WindowEndTick == 0 {
			continue
		}
		y = r.DrawSectionHeader(p.x+padding, y, fmt.Sprintf("%s @ %.0fs", s.Layer, s.SimTimeSec))
		for _, sd := range fieldStatsSections {
			y = r.DrawSection(p.x+padding, y, sd, s, inner)
		}
	}
}

// PerfPanel renders frame phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s", stats.AvgTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	phases := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		phases = append(phases, name)
	}
	sort.Slice(phases, func(i, j int) bool { return stats.PhaseAvg[phases[i]] > stats.PhaseAvg[phases[j]] })

	for _, name := range phases {
		pct := stats.PhasePct[name]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ActionID identifies a keyboard action on the field.
type ActionID string

// Field actions.
const (
	ActionPause      ActionID = "pause"
	ActionSlower     ActionID = "slower"
	ActionFaster     ActionID = "faster"
	ActionExport     ActionID = "export"
	ActionCopyCSV    ActionID = "copy_csv"
	ActionSaveConfig ActionID = "save_config"
	ActionReseed     ActionID = "reseed"
	ActionControls   ActionID = "controls"
)

// KeyAction binds a key to a field action. The legend and the input handler
// read the same list, so the panel always shows the live bindings.
type KeyAction struct {
	ID       ActionID
	Name     string
	Key      int32
	KeyLabel string
}

// DefaultKeyActions returns the field bindings in legend order.
func DefaultKeyActions() []KeyAction {
	return []KeyAction{
		{ID: ActionPause, Name: "Pause", Key: rl.KeySpace, KeyLabel: "Space"},
		{ID: ActionSlower, Name: "Fewer steps/frame", Key: rl.KeyComma, KeyLabel: ","},
		{ID: ActionFaster, Name: "More steps/frame", Key: rl.KeyPeriod, KeyLabel: "."},
		{ID: ActionExport, Name: "Export positions", Key: rl.KeyE, KeyLabel: "E"},
		{ID: ActionCopyCSV, Name: "Copy positions CSV", Key: rl.KeyC, KeyLabel: "C"},
		{ID: ActionSaveConfig, Name: "Save tuned config", Key: rl.KeyS, KeyLabel: "S"},
		{ID: ActionReseed, Name: "Reseed layers", Key: rl.KeyR, KeyLabel: "R"},
		{ID: ActionControls, Name: "This panel", Key: rl.KeyH, KeyLabel: "H"},
	}
}

// ControlsPanel renders the key legend: field actions first, then the
// overlay toggles with their current state.
type ControlsPanel struct {
	renderer *Renderer
	actions  []KeyAction
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a controls panel listing actions.
func NewControlsPanel(x, y, width int32, actions []KeyAction) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		actions:  actions,
		x:        x,
		y:        y,
		width:    width,
	}
}

// Actions returns the bound field actions.
func (c *ControlsPanel) Actions() []KeyAction {
	return c.actions
}

// ActionForKey returns the action bound to key, if any.
func (c *ControlsPanel) ActionForKey(key int32) (ActionID, bool) {
	for _, a := range c.actions {
		if a.Key == key {
			return a.ID, true
		}
	}
	return "", false
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel and returns the y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	keyColor := rl.Color{R: 150, G: 150, B: 150, A: 255}

	categories := overlays.Categories()
	lines := len(c.actions) + 1
	for _, cat := range categories {
		lines += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(lines)*lineHeight + padding*3 + lineHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Controls", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	rl.DrawText("Field", c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	y += lineHeight
	for _, a := range c.actions {
		rl.DrawText(a.Name, c.x+padding+14, y, r.Theme.FontSize, r.Theme.LabelColor)
		drawKeyLabel(c.x+padding, y, c.width-padding*2, a.KeyLabel, r.Theme.FontSize, keyColor)
		y += lineHeight
	}
	y += 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}

		y += 4
	}

	return y
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)
	drawKeyLabel(x, y, width, desc.KeyLabel, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
}

// drawKeyLabel right-aligns "[label]" within width.
func drawKeyLabel(x, y, width int32, label string, fontSize int32, color rl.Color) {
	if label == "" {
		return
	}
	keyText := fmt.Sprintf("[%s]", label)
	keyWidth := rl.MeasureText(keyText, fontSize)
	rl.DrawText(keyText, x+width-keyWidth, y, fontSize, color)
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Overlays"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}

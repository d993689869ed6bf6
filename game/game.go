// Package game wires the particle field, input, rendering and telemetry into
// a frame loop that runs with a window or headless.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/camera"
	"github.com/pthm-cable/convect/config"
	"github.com/pthm-cable/convect/field"
	"github.com/pthm-cable/convect/input"
	"github.com/pthm-cable/convect/palette"
	"github.com/pthm-cable/convect/renderer"
	"github.com/pthm-cable/convect/telemetry"
	"github.com/pthm-cable/convect/ui"
)

// Options configures a Game.
type Options struct {
	Config         *config.Config // nil = copy of the global config
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // CSV logs and config snapshot; empty disables
	ExportDir      string  // position exports; empty = OutputDir or "exports"
	SaveConfigPath string  // where the S key writes the config
	Headless       bool
	StepsPerUpdate int

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.FieldStats)
}

// Layer is one independent ensemble drawn in the shared scene.
type Layer struct {
	Name     string
	Ensemble *field.Ensemble
	Params   field.Params
	Palette  *palette.Palette
	Size     float32

	rng       *rand.Rand
	collector *telemetry.Collector
	contacts  int // wall contacts of the last step
}

func (l *Layer) step(snap input.Snapshot, dt float32) {
	l.contacts = l.Ensemble.Step(l.Params, snap, dt)
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	seed int64

	layers []*Layer
	pool   *stepPool

	// Input
	adapter *input.Adapter
	events  *pollSource
	frame   input.Snapshot // snapshot used by the last step

	// Rendering (nil when headless)
	camera        *camera.Camera
	background    *renderer.BackgroundRenderer
	particles     *renderer.ParticleRenderer
	domain        *renderer.DomainRenderer
	hud           *ui.HUD
	statsPanel    *ui.StatsPanel
	perfPanel     *ui.PerfPanel
	controlsPanel *ui.ControlsPanel
	tuningPanel   *ui.TuningPanel
	overlays      *ui.OverlayRegistry

	// Telemetry
	perfCollector  *telemetry.PerfCollector
	outputManager  *telemetry.OutputManager
	lastStats      []telemetry.FieldStats
	statsCallback  func(telemetry.FieldStats)
	statsWindowSec float64

	// State
	tick           int32
	paused         bool
	headless       bool
	logStats       bool
	stepsPerUpdate int
	exportDir      string
	saveConfigPath string
	status         string
	statusUntil    time.Time

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game. In graphical mode the raylib window must
// already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg().Clone()
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = opts.OutputDir
	}
	if exportDir == "" {
		exportDir = "exports"
	}
	savePath := opts.SaveConfigPath
	if savePath == "" {
		savePath = filepath.Join(opts.OutputDir, "config_tuned.yaml")
	}

	g := &Game{
		cfg:            cfg,
		seed:           opts.Seed,
		adapter:        input.NewAdapter(float32(cfg.Scroll.InertiaStrength), float32(cfg.Scroll.InertiaDamping), float32(cfg.Scroll.InertiaMax)),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		statsCallback:  opts.StatsCallback,
		statsWindowSec: statsWindow,
		headless:       opts.Headless,
		logStats:       opts.LogStats,
		stepsPerUpdate: steps,
		exportDir:      exportDir,
		saveConfigPath: savePath,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
	}

	if err := g.buildLayers(); err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("setting up output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if !opts.Headless {
		g.camera = camera.New(g.screenWidth, g.screenHeight, cfg.Derived.DomainW32, cfg.Derived.DomainH32)
		g.background = renderer.NewBackgroundRenderer(int32(g.screenWidth), int32(g.screenHeight), hotWall, coolWall)
		g.particles = renderer.NewParticleRenderer(true)
		g.domain = renderer.NewDomainRenderer()
		g.hud = ui.NewHUD()
		g.statsPanel = ui.NewStatsPanel(int32(g.screenWidth)-300, 10, 290)
		g.perfPanel = ui.NewPerfPanel(10, 100)
		g.controlsPanel = ui.NewControlsPanel(10, 100, 220, ui.DefaultKeyActions())
		g.tuningPanel = ui.NewTuningPanel(int32(g.screenWidth)-360, 10, 350)
		g.overlays = ui.NewOverlayRegistry()

		g.events = newPollSource(g.camera)
		g.adapter.Listen(g.events)
	}

	g.logLayers("field initialized")
	return g, nil
}

// buildLayers creates one layer per configured entry, discarding any
// existing ones.
func (g *Game) buildLayers() error {
	cfg := g.cfg
	layers := make([]*Layer, len(cfg.Layers))
	for i := range cfg.Layers {
		l, err := g.newLayer(i)
		if err != nil {
			return err
		}
		layers[i] = l
	}

	if g.pool != nil {
		g.pool.stop()
	}
	g.layers = layers
	g.pool = newStepPool(len(layers))
	g.lastStats = make([]telemetry.FieldStats, len(layers))
	return nil
}

// newLayer builds layer i. Each layer gets its own RNG so layers can be
// stepped concurrently and stay reproducible.
func (g *Game) newLayer(i int) (*Layer, error) {
	cfg := g.cfg
	name := cfg.Layers[i].Name
	if name == "" {
		name = fmt.Sprintf("layer%d", i)
	}

	pal, size, err := layerStyle(cfg, i)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}

	p := field.ParamsFrom(cfg, i)
	rng := rand.New(rand.NewSource(g.seed + int64(i)))
	return &Layer{
		Name:      name,
		Ensemble:  field.New(p, rng),
		Params:    p,
		Palette:   pal,
		Size:      size,
		rng:       rng,
		collector: telemetry.NewCollector(name, g.statsWindowSec, cfg.Derived.DT32, cfg.Telemetry.CoverageGrid),
	}, nil
}

// layerStyle resolves the render-only settings of layer i.
func layerStyle(cfg *config.Config, i int) (*palette.Palette, float32, error) {
	size, opacity, color, modeName := cfg.LayerStyle(i)
	mode, err := palette.ParseMode(modeName)
	if err != nil {
		return nil, 0, err
	}
	pal, err := palette.New(mode, color, opacity, cfg.Palette.CycleA, cfg.Palette.CycleB, cfg.Palette.CycleSeconds)
	if err != nil {
		return nil, 0, err
	}
	return pal, float32(size), nil
}

// ApplyConfig switches to cfg. Layers whose count or obstacle radius changed
// are rebuilt; every other change applies on the next step. A different
// number of layers rebuilds everything.
func (g *Game) ApplyConfig(cfg *config.Config) error {
	cfg.Recompute()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	g.cfg = cfg
	g.adapter.SetScrollParams(float32(cfg.Scroll.InertiaStrength), float32(cfg.Scroll.InertiaDamping), float32(cfg.Scroll.InertiaMax))
	if g.camera != nil && (g.camera.DomainW != cfg.Derived.DomainW32 || g.camera.DomainH != cfg.Derived.DomainH32) {
		g.camera.SetDomain(cfg.Derived.DomainW32, cfg.Derived.DomainH32)
	}

	if len(cfg.Layers) != len(g.layers) {
		if err := g.buildLayers(); err != nil {
			return err
		}
		g.logLayers("layers rebuilt")
		return nil
	}

	rebuilt := false
	for i, l := range g.layers {
		next := field.ParamsFrom(cfg, i)
		pal, size, err := layerStyle(cfg, i)
		if err != nil {
			return fmt.Errorf("layer %q: %w", l.Name, err)
		}
		l.Palette, l.Size = pal, size

		if field.NeedsRebuild(l.Params, next) {
			l.Ensemble = field.New(next, l.rng)
			rebuilt = true
		}
		l.Params = next
	}
	if rebuilt {
		g.logLayers("layers rebuilt")
	}
	return nil
}

// Reseed rebuilds every layer from a new seed.
func (g *Game) Reseed(seed int64) error {
	g.seed = seed
	if err := g.buildLayers(); err != nil {
		return err
	}
	g.logLayers("layers reseeded")
	return nil
}

// Update runs one graphical frame of input and simulation. Draw ends the
// frame's perf sample.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.perfCollector.StartTick()
	g.perfCollector.StartPhase(telemetry.PhaseInput)

	g.handleResize()
	g.events.Poll()
	g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless runs StepsPerUpdate simulation ticks without any raylib calls.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.perfCollector.StartTick()
		g.perfCollector.StartPhase(telemetry.PhaseInput)
		g.simulationStep()
		g.perfCollector.EndTick()
	}
}

// simulationStep advances every layer by one frame. All layers see the same
// input snapshot.
func (g *Game) simulationStep() {
	snap := g.adapter.Snapshot()
	g.adapter.Tick()
	g.frame = snap

	g.perfCollector.StartPhase(telemetry.PhaseStep)
	g.stepLayers(snap, g.cfg.Derived.DT32)
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	for _, l := range g.layers {
		l.collector.RecordContacts(l.contacts)
	}
	g.flushTelemetry()
}

// Unload releases resources and closes output files.
func (g *Game) Unload() {
	g.adapter.Close()
	if g.background != nil {
		g.background.Unload()
	}
	if g.pool != nil {
		g.pool.stop()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the number of simulation steps taken.
func (g *Game) Tick() int32 {
	return g.tick
}

// Layers returns the current layers.
func (g *Game) Layers() []*Layer {
	return g.layers
}

// Config returns the configuration the game is running with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Adapter returns the input adapter, e.g. for feeding synthetic events.
func (g *Game) Adapter() *input.Adapter {
	return g.adapter
}

// setStatus shows a transient message in the HUD.
func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusUntil = time.Now().Add(3 * time.Second)
}

// screenSize returns the window size as int32.
func (g *Game) screenSize() (int32, int32) {
	return int32(g.screenWidth), int32(g.screenHeight)
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.background.Resize(w, h)
	g.statsPanel = ui.NewStatsPanel(int32(w)-300, 10, 290)
	g.tuningPanel = ui.NewTuningPanel(int32(w)-360, 10, 350)
}

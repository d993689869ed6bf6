package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/config"
	"github.com/pthm-cable/convect/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	exportDir := flag.String("export-dir", "", "Directory for position exports (empty = output dir or ./exports)")
	saveConfig := flag.String("save-config", "", "Where the S key saves the config (empty = config_tuned.yaml in output dir)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = initial.seed from config, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	exportOnExit := flag.Bool("export-on-exit", false, "Write a position export when the run ends")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Initial.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Build game options
	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		ExportDir:      *exportDir,
		SaveConfigPath: *saveConfig,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if err := run(opts, cfg, *maxTicks, *exportOnExit); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(opts game.Options, cfg *config.Config, maxTicks int, exportOnExit bool) error {
	if !opts.Headless {
		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Convection Field")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	}

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	if opts.Headless {
		// Headless mode - pure CPU simulation, no raylib needed
		slog.Info("starting headless simulation",
			"seed", opts.Seed,
			"max_ticks", maxTicks,
			"steps_per_update", opts.StepsPerUpdate,
		)

		// Without a tick limit there is no natural end
		for maxTicks <= 0 || int(g.Tick()) < maxTicks {
			g.UpdateHeadless()
		}
		slog.Info("max ticks reached", "tick", g.Tick())
	} else {
		for !rl.WindowShouldClose() {
			g.Update()
			g.Draw()

			if maxTicks > 0 && int(g.Tick()) >= maxTicks {
				break
			}
		}
	}

	if exportOnExit {
		if _, err := g.ExportPositions(); err != nil {
			return err
		}
	}
	return nil
}

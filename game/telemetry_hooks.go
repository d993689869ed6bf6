package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/convect/telemetry"
)

// flushTelemetry flushes every layer whose stats window is complete.
func (g *Game) flushTelemetry() {
	flushed := false
	for i, l := range g.layers {
		if !l.collector.ShouldFlush(g.tick) {
			continue
		}
		stats := l.collector.Flush(g.tick, l.Ensemble, l.Params)
		g.lastStats[i] = stats
		flushed = true

		// Call stats callback if provided
		if g.statsCallback != nil {
			g.statsCallback(stats)
		}

		// Log stats if enabled (console output)
		if g.logStats {
			stats.LogStats()
		}

		if stats.Escaped > 0 {
			slog.Warn("particles outside confinement", "layer", l.Name, "escaped", stats.Escaped, "tick", g.tick)
		}

		if err := g.outputManager.WriteField(stats); err != nil {
			slog.Error("failed to write field stats", "error", err)
		}
	}
	if !flushed {
		return
	}

	perfStats := g.perfCollector.Stats()
	if g.logStats {
		perfStats.LogStats()
	}
	if err := g.outputManager.WritePerf(perfStats, g.tick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// positionSnapshot copies the positions of every layer.
func (g *Game) positionSnapshot() *telemetry.PositionSnapshot {
	snap := &telemetry.PositionSnapshot{
		Version:      telemetry.SnapshotVersion,
		Seed:         g.seed,
		Tick:         g.tick,
		DomainWidth:  g.cfg.Derived.DomainW32,
		DomainHeight: g.cfg.Derived.DomainH32,
	}
	for _, l := range g.layers {
		snap.Layers = append(snap.Layers, telemetry.NewLayerPositions(l.Name, l.Ensemble.SnapshotPositions()))
	}
	return snap
}

// ExportPositions writes the current positions to the export directory.
func (g *Game) ExportPositions() (string, error) {
	path, err := telemetry.SavePositions(g.positionSnapshot(), g.exportDir)
	if err != nil {
		return "", err
	}
	slog.Info("positions exported", "path", path, "tick", g.tick, "particles", g.particleCount())
	return path, nil
}

// exportPositions handles the export key.
func (g *Game) exportPositions() {
	path, err := g.ExportPositions()
	if err != nil {
		slog.Error("failed to export positions", "error", err)
		g.setStatus("export failed")
		return
	}
	g.setStatus("exported " + path)
}

// copyPositions puts a CSV of the current positions on the clipboard.
func (g *Game) copyPositions() {
	csv, err := telemetry.PositionsCSV(g.positionSnapshot())
	if err != nil {
		slog.Error("failed to render positions csv", "error", err)
		g.setStatus("copy failed")
		return
	}
	rl.SetClipboardText(csv)
	g.setStatus(fmt.Sprintf("copied %d positions", g.particleCount()))
}

// saveConfig writes the running configuration.
func (g *Game) saveConfig() {
	if err := g.cfg.WriteYAML(g.saveConfigPath); err != nil {
		slog.Error("failed to save config", "path", g.saveConfigPath, "error", err)
		g.setStatus("save failed")
		return
	}
	slog.Info("config saved", "path", g.saveConfigPath)
	g.setStatus("saved " + g.saveConfigPath)
}

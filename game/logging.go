package game

import (
	"log/slog"
)

// logLayers logs the layer set after it was built or rebuilt.
func (g *Game) logLayers(msg string) {
	attrs := make([]any, 0, len(g.layers)+2)
	attrs = append(attrs, "seed", g.seed)
	for _, l := range g.layers {
		attrs = append(attrs, slog.Group(l.Name,
			"count", l.Ensemble.Count(),
			"speed", l.Params.Speed,
			"policy", string(l.Params.Init.Policy),
			"color_mode", string(l.Palette.Mode()),
		))
	}
	slog.Info(msg, attrs...)
}

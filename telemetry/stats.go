package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FieldStats holds aggregated statistics of one layer for a time window.
type FieldStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Layer           string  `csv:"layer"`
	Count           int     `csv:"count"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Temperature distribution
	TempMean float64 `csv:"temp_mean"`
	TempStd  float64 `csv:"temp_std"`

	// Vertical position of hot and cold particles, showing convection cells
	HotMeanY  float64 `csv:"hot_mean_y"`
	ColdMeanY float64 `csv:"cold_mean_y"`

	// Boundary activity during window
	WallContacts   int     `csv:"wall_contacts"`
	ContactsPerSec float64 `csv:"contacts_per_sec"`

	// Fraction of coverage grid cells holding at least one particle
	Coverage float64 `csv:"coverage"`

	// Particles found outside the confinement region; always 0 unless broken
	Escaped int `csv:"escaped"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, std, and percentiles of values.
// values is sorted in place.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	switch len(values) {
	case 0:
		return 0, 0, 0, 0, 0
	case 1:
		v := values[0]
		return v, 0, v, v, v
	}

	mean, std = stat.MeanStdDev(values, nil)

	sort.Float64s(values)
	p10 = Percentile(values, 0.10)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("layer", s.Layer),
		slog.Int("count", s.Count),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("temp_mean", s.TempMean),
		slog.Float64("temp_std", s.TempStd),
		slog.Float64("hot_mean_y", s.HotMeanY),
		slog.Float64("cold_mean_y", s.ColdMeanY),
		slog.Int("wall_contacts", s.WallContacts),
		slog.Float64("contacts_per_sec", s.ContactsPerSec),
		slog.Float64("coverage", s.Coverage),
		slog.Int("escaped", s.Escaped),
	)
}

// LogStats logs the window stats using slog. Escaped particles raise the
// record to a warning.
func (s FieldStats) LogStats() {
	attrs := []any{
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"layer", s.Layer,
		"count", s.Count,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"temp_mean", s.TempMean,
		"hot_mean_y", s.HotMeanY,
		"cold_mean_y", s.ColdMeanY,
		"wall_contacts", s.WallContacts,
		"coverage", s.Coverage,
		"escaped", s.Escaped,
	}
	if s.Escaped > 0 {
		slog.Warn("stats", attrs...)
		return
	}
	slog.Info("stats", attrs...)
}

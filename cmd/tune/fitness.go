package main

import (
	"sync"

	"github.com/pthm-cable/convect/config"
	"github.com/pthm-cable/convect/game"
	"github.com/pthm-cable/convect/telemetry"
)

// escapePenalty is added to the fitness of a run that let particles leave
// the confinement region. Coverage is at most 1, so this always dominates.
const escapePenalty = 1.0

// warmupWindows are skipped when averaging coverage, while the initial
// distribution is still settling.
const warmupWindows = 1

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu           sync.Mutex
	lastCoverage float64 // mean coverage from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, statsWindow float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: statsWindow,
	}
}

// LastCoverage returns the mean coverage from the most recent evaluation.
func (fe *FitnessEvaluator) LastCoverage() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastCoverage
}

// runResult holds the results from a single simulation run.
type runResult struct {
	coverage float64 // mean coverage over post-warmup windows
	escaped  int
	err      error
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// the negated mean coverage over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalCoverage float64
	penalty := 0.0
	for _, r := range results {
		if r.err != nil {
			// An unusable parameter set scores worst
			return escapePenalty
		}
		totalCoverage += r.coverage
		if r.escaped > 0 {
			penalty = escapePenalty
		}
	}
	mean := totalCoverage / float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastCoverage = mean
	fe.mu.Unlock()

	return -mean + penalty
}

// runSimulation executes a single headless simulation run.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.FieldStats
	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.FieldStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return runResult{err: err}
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}

	return summarize(windows, g)
}

// summarize averages coverage over the post-warmup windows, falling back to
// the final state when the run was too short to complete one.
func summarize(windows []telemetry.FieldStats, g *game.Game) runResult {
	var r runResult
	for _, w := range windows {
		r.escaped += w.Escaped
	}

	if len(windows) > warmupWindows {
		var sum float64
		for _, w := range windows[warmupWindows:] {
			sum += w.Coverage
		}
		r.coverage = sum / float64(len(windows)-warmupWindows)
		return r
	}

	layers := g.Layers()
	if len(layers) == 0 {
		return r
	}
	grid := g.Config().Telemetry.CoverageGrid
	var sum float64
	for _, l := range layers {
		sum += telemetry.Coverage(l.Ensemble, l.Params, grid)
	}
	r.coverage = sum / float64(len(layers))
	return r
}

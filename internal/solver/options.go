package solver

import "time"

// Algorithm selects the optimization strategy for a run.
type Algorithm string

const (
	AlgorithmGenetic         Algorithm = "genetic"
	AlgorithmNearestNeighbor Algorithm = "nearest_neighbor"
	AlgorithmSavings         Algorithm = "savings"
	AlgorithmSweep           Algorithm = "sweep"
	AlgorithmHybrid          Algorithm = "hybrid"
)

// Options control a single optimization run.
//
// Start from DefaultOptions and override what you need: Optimize fills zero
// numeric fields and an empty Algorithm from the defaults, while boolean
// flags are taken exactly as given.
type Options struct {
	Algorithm Algorithm

	// Wall-clock budget for the whole run. The genetic loop polls it once
	// per generation and returns its best-so-far solution when exceeded.
	MaxComputationTime time.Duration

	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	ElitismRate    float64

	// RandomSeed makes genetic runs reproducible. Zero seeds from the clock.
	RandomSeed int64

	PrioritizeTimeWindows bool
	PrioritizeCost        bool
	BalanceRoutes         bool
	MinimizeVehicles      bool
	GreenRouting          bool

	// AllowViolations is advisory: the engine always records violations on
	// the affected routes and leaves enforcement to the caller.
	AllowViolations bool

	// ConsiderTraffic is forwarded to the matrix provider. ConsiderWeather
	// is reserved for weather-aware providers; the built-in haversine
	// matrix ignores both.
	ConsiderTraffic bool
	ConsiderWeather bool
}

// DefaultOptions returns the documented defaults: a genetic run of 500
// generations over a population of 100 within a 60 second budget, with
// time-window priority and route balancing enabled.
func DefaultOptions() Options {
	return Options{
		Algorithm:             AlgorithmGenetic,
		MaxComputationTime:    60 * time.Second,
		PopulationSize:        100,
		Generations:           500,
		MutationRate:          0.01,
		CrossoverRate:         0.85,
		ElitismRate:           0.1,
		PrioritizeTimeWindows: true,
		BalanceRoutes:         true,
	}
}

// normalized fills zero fields from the defaults without touching booleans.
func (o Options) normalized() Options {
	def := DefaultOptions()

	if o.Algorithm == "" {
		o.Algorithm = def.Algorithm
	}
	if o.MaxComputationTime <= 0 {
		o.MaxComputationTime = def.MaxComputationTime
	}
	if o.PopulationSize <= 0 {
		o.PopulationSize = def.PopulationSize
	}
	if o.Generations <= 0 {
		o.Generations = def.Generations
	}
	if o.MutationRate <= 0 {
		o.MutationRate = def.MutationRate
	}
	if o.CrossoverRate <= 0 {
		o.CrossoverRate = def.CrossoverRate
	}
	if o.ElitismRate <= 0 {
		o.ElitismRate = def.ElitismRate
	}

	return o
}

package solver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
	"fleet-route-optimizer/internal/metrics"
)

// Optimizer runs the full optimization pipeline: validate, build the
// distance matrix, dispatch to the selected algorithm, refine with local
// search, post-process into an OptimizationResult.
//
// The zero value is usable: a nil logger is silent, nil metrics record
// nothing and a zero Matrix option builds the in-memory haversine matrix.
// All run state is local to Optimize, so one Optimizer may serve many
// concurrent calls.
type Optimizer struct {
	Log     *slog.Logger
	Metrics *metrics.OptimizerMetrics

	// Matrix customizes distance matrix construction, e.g. to plug in an
	// external routing provider. The provider's ConsiderTraffic flag is
	// overridden per run from Options.
	Matrix matrix.BuildOptions
}

// Optimize assigns locations to vehicle routes under capacity, time-window
// and driver-hour constraints.
//
// Constraint breaches never fail the run; they are collected per route. A
// run that exhausts its time budget returns its best-so-far solution.
// Locations that cannot be placed are reported in Unassigned.
func (o *Optimizer) Optimize(
	ctx context.Context,
	locations []domain.Location,
	vehicles []domain.Vehicle,
	drivers []domain.Driver,
	opts Options,
) (*domain.OptimizationResult, error) {
	start := time.Now()

	log := o.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := validateInput(locations, vehicles, drivers); err != nil {
		o.Metrics.ObserveRun(string(opts.Algorithm), "invalid_input", time.Since(start))
		return nil, err
	}

	opts = opts.normalized()

	switch opts.Algorithm {
	case AlgorithmGenetic, AlgorithmNearestNeighbor, AlgorithmSavings, AlgorithmSweep, AlgorithmHybrid:
	default:
		o.Metrics.ObserveRun(string(opts.Algorithm), "unknown_algorithm", time.Since(start))
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, opts.Algorithm)
	}

	buildOpts := o.Matrix
	buildOpts.ConsiderTraffic = opts.ConsiderTraffic
	if buildOpts.Log == nil {
		buildOpts.Log = log
	}

	m, err := matrix.Build(ctx, locations, vehicles, buildOpts)
	if err != nil {
		o.Metrics.ObserveRun(string(opts.Algorithm), "matrix_error", time.Since(start))
		return nil, fmt.Errorf("optimize routes: %w", err)
	}

	log.Debug("distance matrix ready",
		"points", m.Size(),
		"algorithm", string(opts.Algorithm),
		"locations", len(locations),
		"vehicles", len(vehicles),
	)

	deadline := start.Add(opts.MaxComputationTime)

	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var (
		routes      []domain.OptimizedRoute
		iterations  int
		improvement *float64
	)

	switch opts.Algorithm {
	case AlgorithmNearestNeighbor:
		routes = nearestNeighborRoutes(locations, vehicles, drivers, m, opts)
	case AlgorithmSavings:
		routes = savingsRoutes(locations, vehicles, drivers, m, opts)
	case AlgorithmSweep:
		routes = sweepRoutes(locations, vehicles, drivers, m, opts)
	case AlgorithmGenetic:
		routes, iterations = runGenetic(ctx, locations, vehicles, drivers, m, opts, opts.Generations, deadline, rng, log)
	case AlgorithmHybrid:
		routes, iterations, improvement = runHybrid(ctx, locations, vehicles, drivers, m, opts, deadline, rng, log)
	}

	routes = improveRoutes(routes, vehicles, drivers, m, opts)

	result := assembleResult(locations, routes, opts, iterations, improvement, time.Since(start))

	log.Info("optimization finished",
		"algorithm", result.Algorithm,
		"routes", len(result.Routes),
		"unassigned", len(result.Unassigned),
		"total_cost", result.TotalCost,
		"total_distance_km", result.TotalDistanceKm,
		"iterations", result.Iterations,
		"duration", result.ComputationTime,
	)
	o.Metrics.ObserveRun(result.Algorithm, "ok", result.ComputationTime)
	o.Metrics.ObserveSolution(result.Iterations, len(result.Unassigned))

	return result, nil
}

// assembleResult post-processes the final route set: route identities, a
// stable route order, the unassigned remainder, and aggregate totals
// recomputed from scratch rather than trusted from the sub-algorithm.
func assembleResult(
	locations []domain.Location,
	routes []domain.OptimizedRoute,
	opts Options,
	iterations int,
	improvement *float64,
	elapsed time.Duration,
) *domain.OptimizationResult {
	for i := range routes {
		routes[i].RouteID = uuid.NewString()
	}

	sort.SliceStable(routes, func(i, j int) bool {
		if !routes[i].StartAt.Equal(routes[j].StartAt) {
			return routes[i].StartAt.Before(routes[j].StartAt)
		}
		return routes[i].VehicleID < routes[j].VehicleID
	})

	assigned := make(map[string]struct{})
	for i := range routes {
		for _, stop := range routes[i].Stops {
			assigned[stop.Location.LocationID] = struct{}{}
		}
	}

	// Every input location ends up on exactly one side of the split.
	unassigned := make([]domain.Location, 0)
	for _, loc := range locations {
		if _, ok := assigned[loc.LocationID]; !ok {
			unassigned = append(unassigned, loc)
		}
	}

	result := &domain.OptimizationResult{
		Routes:          routes,
		Unassigned:      unassigned,
		Algorithm:       string(opts.Algorithm),
		Iterations:      iterations,
		ComputationTime: elapsed,
		Improvement:     improvement,
	}

	for i := range routes {
		r := &routes[i]
		result.TotalCost += r.TotalCost
		result.TotalDistanceKm += r.TotalDistanceKm
		result.TotalDurationMin += r.TotalDurationMin
		result.AvgUtilization += r.Utilization
	}
	if len(routes) > 0 {
		result.AvgUtilization /= float64(len(routes))
	}

	return result
}

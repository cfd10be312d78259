package solver

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
)

// runHybrid keeps the better of a nearest-neighbor baseline and an
// independent, shortened genetic run. When the genetic side wins, the
// relative cost improvement over the baseline is reported.
func runHybrid(
	ctx context.Context,
	locations []domain.Location,
	vehicles []domain.Vehicle,
	drivers []domain.Driver,
	m *matrix.Matrix,
	opts Options,
	deadline time.Time,
	rng *rand.Rand,
	log *slog.Logger,
) ([]domain.OptimizedRoute, int, *float64) {
	baseline := nearestNeighborRoutes(locations, vehicles, drivers, m, opts)
	baselineCost := routesCost(baseline)

	// A quarter of the configured generations keeps the refinement cheap
	// relative to a full genetic run.
	generations := opts.Generations / 4
	if generations < 50 {
		generations = 50
	}

	evolved, executed := runGenetic(ctx, locations, vehicles, drivers, m, opts, generations, deadline, rng, log)
	evolvedCost := routesCost(evolved)

	if evolvedCost < baselineCost {
		improvement := 0.0
		if baselineCost > 0 {
			improvement = (baselineCost - evolvedCost) / baselineCost * 100
		}
		log.Debug("hybrid kept genetic result",
			"baseline_cost", baselineCost,
			"genetic_cost", evolvedCost,
			"improvement_pct", improvement,
		)
		return evolved, executed, &improvement
	}

	log.Debug("hybrid kept nearest-neighbor baseline",
		"baseline_cost", baselineCost,
		"genetic_cost", evolvedCost,
	)
	return baseline, executed, nil
}

func routesCost(routes []domain.OptimizedRoute) float64 {
	total := 0.0
	for i := range routes {
		total += routes[i].TotalCost
	}
	return total
}

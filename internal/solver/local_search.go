package solver

import (
	"slices"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
)

// localSearchMaxPasses bounds the improvement loop; in practice 2-opt
// converges in a handful of passes.
const localSearchMaxPasses = 100

// improveRoutes runs 2-opt over every route until a full pass yields no
// improvement or the pass limit is reached. Routes are treated
// independently; cross-route exchanges are not attempted. Reordered routes
// are re-finalized so stop times, costs and violations match the new
// sequence.
func improveRoutes(
	routes []domain.OptimizedRoute,
	vehicles []domain.Vehicle,
	drivers []domain.Driver,
	m *matrix.Matrix,
	opts Options,
) []domain.OptimizedRoute {
	if len(routes) == 0 {
		return routes
	}

	vehicleByID := make(map[string]domain.Vehicle, len(vehicles))
	for _, v := range vehicles {
		vehicleByID[v.VehicleID] = v
	}
	driverByID := make(map[string]domain.Driver, len(drivers))
	for _, d := range drivers {
		driverByID[d.DriverID] = d
	}

	out := slices.Clone(routes)

	for pass := 0; pass < localSearchMaxPasses; pass++ {
		improvedAny := false

		for i := range out {
			improved, changed := twoOptRoute(out[i], vehicleByID[out[i].VehicleID], driverByID[out[i].DriverID], m, opts)
			if changed {
				out[i] = improved
				improvedAny = true
			}
		}

		if !improvedAny {
			break
		}
	}

	return out
}

// twoOptRoute tries every segment reversal on one route, keeping each
// reversal that strictly shortens the matrix-recomputed distance. It
// reports whether the stop order changed.
func twoOptRoute(
	route domain.OptimizedRoute,
	vehicle domain.Vehicle,
	driver domain.Driver,
	m *matrix.Matrix,
	opts Options,
) (domain.OptimizedRoute, bool) {
	if len(route.Stops) < 2 {
		return route, false
	}

	seq := make([]domain.Location, len(route.Stops))
	for i, s := range route.Stops {
		seq[i] = s.Location
	}

	startID := vehicle.StartLocation.LocationID
	endID := ""
	if vehicle.EndLocation != nil {
		endID = vehicle.EndLocation.LocationID
	}

	const eps = 1e-9
	improved := false

	for i := 0; i < len(seq)-1; i++ {
		for j := i + 1; j < len(seq); j++ {
			before := sequenceDistance(m, startID, seq, endID)
			reverseSegment(seq, i, j)
			after := sequenceDistance(m, startID, seq, endID)

			if after < before-eps {
				improved = true
			} else {
				reverseSegment(seq, i, j)
			}
		}
	}

	if !improved {
		return route, false
	}
	return finalizeRoute(vehicle, driver, seq, m, opts), true
}

// sequenceDistance sums matrix distances over start -> seq... -> optional end.
func sequenceDistance(m *matrix.Matrix, startID string, seq []domain.Location, endID string) float64 {
	total := 0.0
	prev := startID
	for _, loc := range seq {
		total += m.DistanceKm(prev, loc.LocationID)
		prev = loc.LocationID
	}
	if endID != "" {
		total += m.DistanceKm(prev, endID)
	}
	return total
}

func reverseSegment(seq []domain.Location, i, j int) {
	for i < j {
		seq[i], seq[j] = seq[j], seq[i]
		i++
		j--
	}
}

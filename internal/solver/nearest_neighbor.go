package solver

import (
	"math"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
)

// nearestNeighborRoutes builds one route per vehicle with a greedy
// nearest-neighbor walk.
//
// Each vehicle repeatedly takes the closest unvisited location that still
// fits its remaining capacity. The algorithm minimizes immediate travel
// distance at each step and does not attempt global optimization; the
// design prioritizes determinism and simplicity, which is also what makes
// it a useful baseline and population seed. Locations no vehicle can take
// are left for the caller to report as unassigned.
func nearestNeighborRoutes(
	locations []domain.Location,
	vehicles []domain.Vehicle,
	drivers []domain.Driver,
	m *matrix.Matrix,
	opts Options,
) []domain.OptimizedRoute {
	remaining := make(map[string]domain.Location, len(locations))
	order := make([]string, 0, len(locations))
	for _, loc := range locations {
		remaining[loc.LocationID] = loc
		order = append(order, loc.LocationID)
	}

	routes := make([]domain.OptimizedRoute, 0, len(vehicles))

	for vi, vehicle := range vehicles {
		if len(remaining) == 0 {
			break
		}
		driver := drivers[vi%len(drivers)]

		currentID := vehicle.StartLocation.LocationID
		capacityLeft := vehicle.Capacity
		seq := make([]domain.Location, 0, len(remaining))

		for {
			bestID := ""
			minDistance := math.MaxFloat64

			// Greedy step: scan in input order so equal distances break
			// deterministically, first-found minimum wins.
			for _, id := range order {
				loc, ok := remaining[id]
				if !ok {
					continue
				}
				if loc.Demand > capacityLeft {
					continue
				}
				if d := m.DistanceKm(currentID, id); d < minDistance {
					minDistance = d
					bestID = id
				}
			}

			if bestID == "" {
				break
			}

			loc := remaining[bestID]
			seq = append(seq, loc)
			capacityLeft -= loc.Demand
			delete(remaining, bestID)
			currentID = bestID
		}

		if len(seq) == 0 {
			continue
		}
		routes = append(routes, finalizeRoute(vehicle, driver, seq, m, opts))
	}

	return routes
}

// nearestNeighborOrder returns all locations chained by greedy proximity
// from the first vehicle's depot, ignoring capacity. Used to seed genetic
// populations with a plausible ordering.
func nearestNeighborOrder(locations []domain.Location, vehicles []domain.Vehicle, m *matrix.Matrix) []int {
	n := len(locations)
	orderOut := make([]int, 0, n)
	visited := make([]bool, n)

	currentID := ""
	if len(vehicles) > 0 {
		currentID = vehicles[0].StartLocation.LocationID
	}

	for len(orderOut) < n {
		best := -1
		minDistance := math.MaxFloat64
		for i := 0; i < n; i++ {
			if visited[i] {
				continue
			}
			if d := m.DistanceKm(currentID, locations[i].LocationID); d < minDistance {
				minDistance = d
				best = i
			}
		}
		if best < 0 {
			break
		}
		visited[best] = true
		orderOut = append(orderOut, best)
		currentID = locations[best].LocationID
	}

	return orderOut
}

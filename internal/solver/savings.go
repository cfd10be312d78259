package solver

import (
	"sort"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
)

type savingsPair struct {
	i, j   int
	amount float64
}

// savingsRoutes builds routes with Clarke-Wright savings construction.
//
// Savings are computed against the first vehicle's depot: merging i and j
// into one route saves d(depot,i) + d(depot,j) - d(i,j). Starting from one
// route per location, merges are applied in descending savings order while
// both endpoints are still route ends and the combined demand fits the
// largest vehicle. The merged clusters are then matched to vehicles
// first-fit, largest cluster first.
func savingsRoutes(
	locations []domain.Location,
	vehicles []domain.Vehicle,
	drivers []domain.Driver,
	m *matrix.Matrix,
	opts Options,
) []domain.OptimizedRoute {
	n := len(locations)
	depotID := vehicles[0].StartLocation.LocationID

	maxCapacity := 0.0
	for _, v := range vehicles {
		if v.Capacity > maxCapacity {
			maxCapacity = v.Capacity
		}
	}

	// One route per location to start.
	seqs := make([][]int, n)
	routeOf := make([]int, n)
	for i := 0; i < n; i++ {
		seqs[i] = []int{i}
		routeOf[i] = i
	}

	pairs := make([]savingsPair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := m.DistanceKm(depotID, locations[i].LocationID) +
				m.DistanceKm(depotID, locations[j].LocationID) -
				m.DistanceKm(locations[i].LocationID, locations[j].LocationID)
			pairs = append(pairs, savingsPair{i: i, j: j, amount: s})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].amount > pairs[b].amount })

	demand := func(seq []int) float64 {
		total := 0.0
		for _, li := range seq {
			total += locations[li].Demand
		}
		return total
	}

	for _, p := range pairs {
		// Sorted descending, so the first non-positive saving ends the merge phase.
		if p.amount <= 0 {
			break
		}

		ri, rj := routeOf[p.i], routeOf[p.j]
		if ri == rj {
			continue
		}

		si, sj := seqs[ri], seqs[rj]
		if demand(si)+demand(sj) > maxCapacity {
			continue
		}

		// Merge only across route ends so interior stops keep their order.
		var merged []int
		switch {
		case si[len(si)-1] == p.i && sj[0] == p.j:
			merged = append(append(make([]int, 0, len(si)+len(sj)), si...), sj...)
		case sj[len(sj)-1] == p.j && si[0] == p.i:
			merged = append(append(make([]int, 0, len(si)+len(sj)), sj...), si...)
		case si[0] == p.i && sj[0] == p.j:
			merged = append(reversedInts(si), sj...)
		case si[len(si)-1] == p.i && sj[len(sj)-1] == p.j:
			merged = append(append(make([]int, 0, len(si)+len(sj)), si...), reversedInts(sj)...)
		default:
			continue
		}

		seqs[ri] = merged
		seqs[rj] = nil
		for _, li := range merged {
			routeOf[li] = ri
		}
	}

	// Surviving clusters, heaviest first so big clusters claim big vehicles.
	clusters := make([][]int, 0, n)
	for _, seq := range seqs {
		if len(seq) > 0 {
			clusters = append(clusters, seq)
		}
	}
	sort.SliceStable(clusters, func(a, b int) bool {
		da, db := demand(clusters[a]), demand(clusters[b])
		if da != db {
			return da > db
		}
		return clusters[a][0] < clusters[b][0]
	})

	routes := make([]domain.OptimizedRoute, 0, len(clusters))
	usedVehicle := make([]bool, len(vehicles))

	for _, cluster := range clusters {
		need := demand(cluster)
		for vi, vehicle := range vehicles {
			if usedVehicle[vi] || vehicle.Capacity < need {
				continue
			}
			usedVehicle[vi] = true

			seq := make([]domain.Location, len(cluster))
			for k, li := range cluster {
				seq[k] = locations[li]
			}
			routes = append(routes, finalizeRoute(vehicle, drivers[vi%len(drivers)], seq, m, opts))
			break
		}
	}

	return routes
}

func reversedInts(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

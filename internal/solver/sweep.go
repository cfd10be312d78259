package solver

import (
	"math"
	"sort"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
)

// sweepRoutes builds routes by angular sweep clustering.
//
// Locations are ordered by polar angle around the first vehicle's depot and
// assigned to vehicles in that order, rolling to the next vehicle whenever
// capacity runs out. Intra-cluster stop order is the angular order; the
// local search pass tightens it afterwards.
func sweepRoutes(
	locations []domain.Location,
	vehicles []domain.Vehicle,
	drivers []domain.Driver,
	m *matrix.Matrix,
	opts Options,
) []domain.OptimizedRoute {
	depot := vehicles[0].StartLocation.Coordinates

	type angled struct {
		loc   domain.Location
		angle float64
	}

	byAngle := make([]angled, 0, len(locations))
	for _, loc := range locations {
		byAngle = append(byAngle, angled{
			loc:   loc,
			angle: math.Atan2(loc.Coordinates.Lat-depot.Lat, loc.Coordinates.Lon-depot.Lon),
		})
	}

	sort.SliceStable(byAngle, func(i, j int) bool {
		if byAngle[i].angle != byAngle[j].angle {
			return byAngle[i].angle < byAngle[j].angle
		}
		return byAngle[i].loc.LocationID < byAngle[j].loc.LocationID
	})

	ordered := make([]domain.Location, len(byAngle))
	for i, a := range byAngle {
		ordered[i] = a.loc
	}

	return splitByCapacity(ordered, vehicles, drivers, m, opts)
}

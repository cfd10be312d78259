package solver

import (
	"fmt"
	"time"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
	"fleet-route-optimizer/internal/ports"
)

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// travelMinutes returns the driving time for a leg. A vehicle that declares
// an average speed overrides the matrix estimate, which assumes the default
// speed.
func travelMinutes(leg ports.Leg, vehicle domain.Vehicle) float64 {
	if vehicle.SpeedKmh > 0 {
		return leg.DistanceKm / vehicle.SpeedKmh * 60
	}
	return leg.DurationMin
}

// finalizeRoute turns an ordered location sequence into a costed route for
// one vehicle and driver. It is the single place a raw sequence becomes an
// OptimizedRoute: construction heuristics, genetic fitness evaluation and
// local search all go through it.
//
// The function is deterministic and never mutates its inputs.
func finalizeRoute(
	vehicle domain.Vehicle,
	driver domain.Driver,
	seq []domain.Location,
	m *matrix.Matrix,
	opts Options,
) domain.OptimizedRoute {
	route := domain.OptimizedRoute{
		VehicleID: vehicle.VehicleID,
		DriverID:  driver.DriverID,
		StartAt:   vehicle.AvailableFrom,
		Stops:     make([]domain.RouteStop, 0, len(seq)),
	}

	clock := vehicle.AvailableFrom
	currentID := vehicle.StartLocation.LocationID

	var distanceKm, durationMin, load, tolls float64
	var driveSinceBreak float64

	for i, loc := range seq {
		leg := m.Leg(currentID, loc.LocationID)
		travel := travelMinutes(leg, vehicle)

		// Insert the mandated break before driving past the driver's limit.
		if driver.BreakAfterHours > 0 && driver.BreakMinutes > 0 &&
			driveSinceBreak+travel > driver.BreakAfterHours*60 {
			clock = clock.Add(minutes(driver.BreakMinutes))
			durationMin += driver.BreakMinutes
			driveSinceBreak = 0
		}

		clock = clock.Add(minutes(travel))
		arrive := clock
		clock = clock.Add(minutes(loc.ServiceMinutes))

		distanceKm += leg.DistanceKm
		durationMin += travel + loc.ServiceMinutes
		driveSinceBreak += travel
		load += loc.Demand
		tolls += leg.TollCost

		route.Stops = append(route.Stops, domain.RouteStop{
			Location:    loc,
			Sequence:    i + 1,
			ArriveAt:    arrive,
			DepartAt:    clock,
			DistanceKm:  distanceKm,
			DurationMin: durationMin,
			Load:        load,
		})

		currentID = loc.LocationID
	}

	// Return leg to the end depot, counted in totals but not a stop.
	if vehicle.EndLocation != nil && len(seq) > 0 {
		leg := m.Leg(currentID, vehicle.EndLocation.LocationID)
		travel := travelMinutes(leg, vehicle)

		clock = clock.Add(minutes(travel))
		distanceKm += leg.DistanceKm
		durationMin += travel
		tolls += leg.TollCost
	}

	route.EndAt = clock
	route.TotalDistanceKm = distanceKm
	route.TotalDurationMin = durationMin

	route.Costs = domain.CostBreakdown{
		Fuel:     distanceKm / 100 * vehicle.FuelPerHundredKm * domain.FuelPricePerLiter,
		Vehicle:  vehicle.FixedCost + vehicle.CostPerKm*distanceKm,
		Driver:   durationMin / 60 * vehicle.CostPerHour,
		Tolls:    tolls,
		CarbonKg: distanceKm / 100 * vehicle.FuelPerHundredKm * domain.CO2KgPerLiter,
	}
	route.TotalCost = route.Costs.Fuel + route.Costs.Vehicle + route.Costs.Driver + route.Costs.Tolls

	if vehicle.Capacity > 0 {
		route.Utilization = load / vehicle.Capacity * 100
	}

	route.Violations = detectViolations(vehicle, driver, route.Stops, durationMin, load)

	return route
}

// detectViolations collects every constraint breach on a finalized route.
// Checks run in a fixed order and never short-circuit: time windows, then
// driver hours, then capacity, then capability coverage.
func detectViolations(
	vehicle domain.Vehicle,
	driver domain.Driver,
	stops []domain.RouteStop,
	durationMin float64,
	load float64,
) []domain.RouteViolation {
	var out []domain.RouteViolation

	for _, stop := range stops {
		w := stop.Location.Window
		if w == nil {
			continue
		}

		if stop.ArriveAt.Before(w.Start) {
			out = append(out, domain.RouteViolation{
				Kind:       domain.ViolationTimeWindow,
				Severity:   domain.SeverityWarning,
				LocationID: stop.Location.LocationID,
				Message: fmt.Sprintf(
					"early arrival at %q: %s is before window start %s",
					stop.Location.LocationID,
					stop.ArriveAt.Format(time.RFC3339),
					w.Start.Format(time.RFC3339),
				),
			})
		} else if !stop.ArriveAt.Before(w.End) {
			out = append(out, domain.RouteViolation{
				Kind:       domain.ViolationTimeWindow,
				Severity:   domain.SeverityError,
				LocationID: stop.Location.LocationID,
				Message: fmt.Sprintf(
					"late arrival at %q: %s is past window end %s",
					stop.Location.LocationID,
					stop.ArriveAt.Format(time.RFC3339),
					w.End.Format(time.RFC3339),
				),
			})
		}
	}

	if driver.MaxShiftHours > 0 && durationMin/60 > driver.MaxShiftHours {
		severity := domain.SeverityError
		if driver.AllowOvertime {
			severity = domain.SeverityWarning
		}
		out = append(out, domain.RouteViolation{
			Kind:     domain.ViolationDriverHours,
			Severity: severity,
			Message: fmt.Sprintf(
				"route duration %.1fh exceeds driver %q shift limit %.1fh",
				durationMin/60, driver.DriverID, driver.MaxShiftHours,
			),
		})
	}

	if load > vehicle.Capacity {
		out = append(out, domain.RouteViolation{
			Kind:     domain.ViolationCapacity,
			Severity: domain.SeverityError,
			Message: fmt.Sprintf(
				"load %.1f exceeds vehicle %q capacity %.1f",
				load, vehicle.VehicleID, vehicle.Capacity,
			),
		})
	}

	for _, stop := range stops {
		if !vehicle.CanServe(stop.Location) {
			out = append(out, domain.RouteViolation{
				Kind:       domain.ViolationCapability,
				Severity:   domain.SeverityError,
				LocationID: stop.Location.LocationID,
				Message: fmt.Sprintf(
					"vehicle %q lacks capabilities required by %q",
					vehicle.VehicleID, stop.Location.LocationID,
				),
			})
		}
	}

	return out
}

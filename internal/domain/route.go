package domain

import "time"

// Fuel price assumed by the cost model, per liter.
const FuelPricePerLiter = 1.50

// Kilograms of CO2 released per liter of fuel burned.
const CO2KgPerLiter = 2.31

type ViolationKind string

const (
	ViolationTimeWindow  ViolationKind = "time_window"
	ViolationCapacity    ViolationKind = "capacity"
	ViolationDriverHours ViolationKind = "driver_hours"
	ViolationCapability  ViolationKind = "capability"
	ViolationOther       ViolationKind = "other"
)

type ViolationSeverity string

const (
	SeverityWarning ViolationSeverity = "warning"
	SeverityError   ViolationSeverity = "error"
)

// A single constraint breach detected while finalizing a route.
// Violations are reported, never thrown: a route carrying violations is still
// returned so the caller can decide whether to accept it.
type RouteViolation struct {
	Kind       ViolationKind
	Severity   ViolationSeverity
	LocationID string
	Message    string
}

// Represents a single stop in an optimized route.
// Distance, duration and load are cumulative from the start of the route;
// duration includes service time at visited stops.
type RouteStop struct {
	Location    Location
	Sequence    int
	ArriveAt    time.Time
	DepartAt    time.Time
	DistanceKm  float64
	DurationMin float64
	Load        float64
}

// Cost components of a single route, in the same currency unit as the
// vehicle cost fields. CarbonKg is informational and not part of TotalCost.
type CostBreakdown struct {
	Fuel     float64
	Vehicle  float64
	Driver   float64
	Tolls    float64
	CarbonKg float64
}

// Represents the costed route for a single vehicle and driver.
// An OptimizedRoute is the output of the optimization engine and is
// immutable planning data with no side effects.
type OptimizedRoute struct {
	RouteID          string
	VehicleID        string
	DriverID         string
	Stops            []RouteStop
	TotalDistanceKm  float64
	TotalDurationMin float64
	TotalCost        float64
	Utilization      float64
	StartAt          time.Time
	EndAt            time.Time
	Violations       []RouteViolation
	Costs            CostBreakdown
}

// ViolationCount returns the number of violations of the given severity.
func (r *OptimizedRoute) ViolationCount(sev ViolationSeverity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

// Aggregate outcome of a single optimization run. Unassigned lists the
// locations no route serves; leaving locations unassigned is a normal
// outcome, not an error.
type OptimizationResult struct {
	Routes           []OptimizedRoute
	Unassigned       []Location
	TotalDistanceKm  float64
	TotalDurationMin float64
	TotalCost        float64
	AvgUtilization   float64
	Algorithm        string
	Iterations       int
	ComputationTime  time.Duration
	Improvement      *float64
}

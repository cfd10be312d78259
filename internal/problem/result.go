package problem

import (
	"time"

	"fleet-route-optimizer/internal/domain"
)

// Result is the JSON shape written for an optimization run.
type Result struct {
	Routes           []Route      `json:"routes"`
	Unassigned       []Unassigned `json:"unassigned_locations"`
	TotalDistanceKm  float64      `json:"total_distance_km"`
	TotalDurationMin float64      `json:"total_duration_min"`
	TotalCost        float64      `json:"total_cost"`
	AvgUtilization   float64      `json:"avg_utilization_pct"`
	Algorithm        string       `json:"algorithm"`
	Iterations       int          `json:"iterations"`
	ComputationMs    int64        `json:"computation_ms"`
	ImprovementPct   *float64     `json:"improvement_pct,omitempty"`
}

type Route struct {
	RouteID          string      `json:"route_id"`
	VehicleID        string      `json:"vehicle_id"`
	DriverID         string      `json:"driver_id"`
	Stops            []Stop      `json:"stops"`
	TotalDistanceKm  float64     `json:"total_distance_km"`
	TotalDurationMin float64     `json:"total_duration_min"`
	TotalCost        float64     `json:"total_cost"`
	UtilizationPct   float64     `json:"utilization_pct"`
	StartAt          time.Time   `json:"start_at"`
	EndAt            time.Time   `json:"end_at"`
	Costs            Costs       `json:"costs"`
	Violations       []Violation `json:"violations,omitempty"`
}

type Stop struct {
	LocationID  string    `json:"location_id"`
	Name        string    `json:"name,omitempty"`
	Sequence    int       `json:"sequence"`
	ArriveAt    time.Time `json:"arrive_at"`
	DepartAt    time.Time `json:"depart_at"`
	DistanceKm  float64   `json:"distance_km"`
	DurationMin float64   `json:"duration_min"`
	Load        float64   `json:"load"`
}

type Costs struct {
	Fuel     float64 `json:"fuel"`
	Vehicle  float64 `json:"vehicle"`
	Driver   float64 `json:"driver"`
	Tolls    float64 `json:"tolls"`
	CarbonKg float64 `json:"carbon_kg"`
}

type Violation struct {
	Kind       string `json:"kind"`
	Severity   string `json:"severity"`
	LocationID string `json:"location_id,omitempty"`
	Message    string `json:"message"`
}

type Unassigned struct {
	LocationID string `json:"location_id"`
	Name       string `json:"name,omitempty"`
}

func FromResult(r *domain.OptimizationResult) Result {
	out := Result{
		Routes:           make([]Route, 0, len(r.Routes)),
		Unassigned:       make([]Unassigned, 0, len(r.Unassigned)),
		TotalDistanceKm:  r.TotalDistanceKm,
		TotalDurationMin: r.TotalDurationMin,
		TotalCost:        r.TotalCost,
		AvgUtilization:   r.AvgUtilization,
		Algorithm:        r.Algorithm,
		Iterations:       r.Iterations,
		ComputationMs:    r.ComputationTime.Milliseconds(),
		ImprovementPct:   r.Improvement,
	}

	for _, route := range r.Routes {
		out.Routes = append(out.Routes, fromRoute(route))
	}
	for _, loc := range r.Unassigned {
		out.Unassigned = append(out.Unassigned, Unassigned{
			LocationID: loc.LocationID,
			Name:       loc.Name,
		})
	}

	return out
}

func fromRoute(r domain.OptimizedRoute) Route {
	route := Route{
		RouteID:          r.RouteID,
		VehicleID:        r.VehicleID,
		DriverID:         r.DriverID,
		Stops:            make([]Stop, 0, len(r.Stops)),
		TotalDistanceKm:  r.TotalDistanceKm,
		TotalDurationMin: r.TotalDurationMin,
		TotalCost:        r.TotalCost,
		UtilizationPct:   r.Utilization,
		StartAt:          r.StartAt,
		EndAt:            r.EndAt,
		Costs: Costs{
			Fuel:     r.Costs.Fuel,
			Vehicle:  r.Costs.Vehicle,
			Driver:   r.Costs.Driver,
			Tolls:    r.Costs.Tolls,
			CarbonKg: r.Costs.CarbonKg,
		},
	}

	for _, s := range r.Stops {
		route.Stops = append(route.Stops, Stop{
			LocationID:  s.Location.LocationID,
			Name:        s.Location.Name,
			Sequence:    s.Sequence,
			ArriveAt:    s.ArriveAt,
			DepartAt:    s.DepartAt,
			DistanceKm:  s.DistanceKm,
			DurationMin: s.DurationMin,
			Load:        s.Load,
		})
	}

	for _, v := range r.Violations {
		route.Violations = append(route.Violations, Violation{
			Kind:       string(v.Kind),
			Severity:   string(v.Severity),
			LocationID: v.LocationID,
			Message:    v.Message,
		})
	}

	return route
}

package domain

import "time"

// Represents a vehicle available for route assignment.
// Cost fields feed the route cost model; FuelPerHundredKm is the consumption
// rate in liters per 100 km. Capability tags must cover the requirements of
// every location served by the vehicle.
type Vehicle struct {
	VehicleID        string
	Capacity         float64
	MaxVolume        float64
	MaxWeight        float64
	FixedCost        float64
	CostPerKm        float64
	CostPerHour      float64
	FuelPerHundredKm float64
	SpeedKmh         float64
	AvailableFrom    time.Time
	AvailableUntil   time.Time
	StartLocation    Location
	EndLocation      *Location
	Capabilities     []string
}

// CanServe reports whether the vehicle's capability tags cover every
// requirement of the location.
func (v Vehicle) CanServe(loc Location) bool {
	if len(loc.Requirements) == 0 {
		return true
	}

	tags := make(map[string]struct{}, len(v.Capabilities))
	for _, c := range v.Capabilities {
		tags[c] = struct{}{}
	}

	for _, r := range loc.Requirements {
		if _, ok := tags[r]; !ok {
			return false
		}
	}
	return true
}

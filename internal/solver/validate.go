package solver

import (
	"fmt"

	"fleet-route-optimizer/internal/domain"
)

// validateInput rejects input the engine cannot work with.
// It fails fast on the first problem found, before any matrix or route
// computation happens.
func validateInput(locations []domain.Location, vehicles []domain.Vehicle, drivers []domain.Driver) error {
	if len(locations) == 0 {
		return fmt.Errorf("%w: at least one location is required", ErrInvalidInput)
	}
	if len(vehicles) == 0 {
		return fmt.Errorf("%w: at least one vehicle is required", ErrInvalidInput)
	}
	if len(drivers) == 0 {
		return fmt.Errorf("%w: at least one driver is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(locations))
	for i, loc := range locations {
		if loc.LocationID == "" {
			return fmt.Errorf("%w: location %d has no id", ErrInvalidInput, i)
		}
		if _, ok := seen[loc.LocationID]; ok {
			return fmt.Errorf("%w: duplicate location id %q", ErrInvalidInput, loc.LocationID)
		}
		seen[loc.LocationID] = struct{}{}

		if lat := loc.Coordinates.Lat; lat < -90 || lat > 90 {
			return fmt.Errorf("%w: location %q latitude %v out of range", ErrInvalidInput, loc.LocationID, lat)
		}
		if lon := loc.Coordinates.Lon; lon < -180 || lon > 180 {
			return fmt.Errorf("%w: location %q longitude %v out of range", ErrInvalidInput, loc.LocationID, lon)
		}
	}

	for i, v := range vehicles {
		if v.VehicleID == "" {
			return fmt.Errorf("%w: vehicle %d has no id", ErrInvalidInput, i)
		}
		if v.Capacity <= 0 {
			return fmt.Errorf("%w: vehicle %q capacity must be positive", ErrInvalidInput, v.VehicleID)
		}
		if v.StartLocation.LocationID == "" {
			return fmt.Errorf("%w: vehicle %q has no start location", ErrInvalidInput, v.VehicleID)
		}
	}

	for i, d := range drivers {
		if d.DriverID == "" {
			return fmt.Errorf("%w: driver %d has no id", ErrInvalidInput, i)
		}
	}

	return nil
}

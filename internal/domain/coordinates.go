package domain

import "math"

// Mean Earth radius in kilometers, used for great-circle distances.
const EarthRadiusKm = 6371.0

// Fallback travel speed when a vehicle does not declare one.
const DefaultSpeedKmh = 50.0

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// DistanceKm returns the haversine great-circle distance to other, in kilometers.
func (c Coordinates) DistanceKm(other Coordinates) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// TravelMinutes estimates driving time to other at the given speed.
// Non-positive speeds fall back to DefaultSpeedKmh.
func (c Coordinates) TravelMinutes(other Coordinates, speedKmh float64) float64 {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	return c.DistanceKm(other) / speedKmh * 60
}

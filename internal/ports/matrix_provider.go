package ports

import (
	"context"

	"fleet-route-optimizer/internal/domain"
)

// Travel distance, duration and toll cost between two locations.
// One Leg is one cell of the distance matrix.
type Leg struct {
	DistanceKm  float64
	DurationMin float64
	TollCost    float64
}

// Contract for retrieving travel legs from an external routing source.
// Implementations return one row of the matrix per call: origin to many
// destinations, keyed by destination location id.
type MatrixProvider interface {
	// Return legs from one origin to many destinations. The traffic flag is
	// advisory; providers without traffic data ignore it.
	Legs(ctx context.Context, origin domain.Location, destinations []domain.Location, traffic bool) (map[string]Leg, error)
}

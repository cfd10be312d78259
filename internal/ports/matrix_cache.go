package ports

import "context"

// Port: a boundary for persisting computed travel legs between runs.
// Keys are location id pairs; implementations decide storage and expiry.
type MatrixCache interface {
	// Fetch cached legs for one origin and multiple destinations.
	// Missing destinations are simply absent from the returned map.
	GetMany(ctx context.Context, originID string, destinationIDs []string) (map[string]Leg, error)

	// Store legs for a single origin.
	PutMany(ctx context.Context, originID string, legs map[string]Leg) error
}

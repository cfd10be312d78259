package matrix

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/ports"
)

// Travel legs between every pair of known points, keyed by location id.
// A Matrix is immutable once built and safe for concurrent reads.
type Matrix struct {
	legs map[string]ports.Leg
	n    int
}

func legKey(fromID, toID string) string { return fromID + "|" + toID }

// Leg returns the travel leg between two location ids.
// Same-id pairs and unknown pairs return a zero leg, never an error.
func (m *Matrix) Leg(fromID, toID string) ports.Leg {
	if m == nil || fromID == toID {
		return ports.Leg{}
	}
	return m.legs[legKey(fromID, toID)]
}

// DistanceKm returns the travel distance between two location ids.
func (m *Matrix) DistanceKm(fromID, toID string) float64 {
	return m.Leg(fromID, toID).DistanceKm
}

// DurationMin returns the travel time in minutes between two location ids.
func (m *Matrix) DurationMin(fromID, toID string) float64 {
	return m.Leg(fromID, toID).DurationMin
}

// Size returns the number of distinct points covered by the matrix.
func (m *Matrix) Size() int { return m.n }

// Options for building a Matrix. The zero value computes haversine legs
// with travel times at the default speed.
type BuildOptions struct {
	// Provider, when set, supplies legs from an external routing source
	// instead of the haversine estimate.
	Provider ports.MatrixProvider

	// ConsiderTraffic is forwarded to the provider. The haversine path
	// ignores it.
	ConsiderTraffic bool

	Log *slog.Logger
}

// Build computes travel legs between all locations and vehicle depots.
// Points are deduplicated by location id so vehicles sharing a depot do not
// inflate the matrix. The default path is a pure function of the inputs:
// haversine distances and durations at DefaultSpeedKmh, zero tolls.
func Build(ctx context.Context, locations []domain.Location, vehicles []domain.Vehicle, opts BuildOptions) (*Matrix, error) {
	points := collectPoints(locations, vehicles)

	m := &Matrix{
		legs: make(map[string]ports.Leg, len(points)*len(points)),
		n:    len(points),
	}

	if opts.Provider == nil {
		for i, from := range points {
			for j, to := range points {
				if i == j {
					continue
				}
				km := from.Coordinates.DistanceKm(to.Coordinates)
				m.legs[legKey(from.LocationID, to.LocationID)] = ports.Leg{
					DistanceKm:  km,
					DurationMin: km / domain.DefaultSpeedKmh * 60,
				}
			}
		}
		return m, nil
	}

	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// One provider call per origin row keeps external request counts linear
	// in the number of points.
	for i, from := range points {
		destinations := make([]domain.Location, 0, len(points)-1)
		for j, to := range points {
			if i == j {
				continue
			}
			destinations = append(destinations, to)
		}

		row, err := opts.Provider.Legs(ctx, from, destinations, opts.ConsiderTraffic)
		if err != nil {
			return nil, fmt.Errorf("build matrix: legs from %q: %w", from.LocationID, err)
		}

		for _, to := range destinations {
			leg, ok := row[to.LocationID]
			if !ok {
				return nil, fmt.Errorf(
					"build matrix: provider returned no leg from %q to %q",
					from.LocationID, to.LocationID,
				)
			}
			m.legs[legKey(from.LocationID, to.LocationID)] = leg
		}

		log.Debug("matrix row fetched", "origin", from.LocationID, "destinations", len(destinations))
	}

	return m, nil
}

// collectPoints dedupes locations and vehicle depots by id, preserving
// first-seen order with depots first.
func collectPoints(locations []domain.Location, vehicles []domain.Vehicle) []domain.Location {
	seen := make(map[string]struct{}, len(locations)+2*len(vehicles))
	points := make([]domain.Location, 0, len(locations)+2*len(vehicles))

	add := func(loc domain.Location) {
		if loc.LocationID == "" {
			return
		}
		if _, ok := seen[loc.LocationID]; ok {
			return
		}
		seen[loc.LocationID] = struct{}{}
		points = append(points, loc)
	}

	for _, v := range vehicles {
		add(v.StartLocation)
		if v.EndLocation != nil {
			add(*v.EndLocation)
		}
	}
	for _, loc := range locations {
		add(loc)
	}

	return points
}

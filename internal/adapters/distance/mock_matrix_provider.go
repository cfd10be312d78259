package distance

import (
	"context"
	"fmt"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/ports"
)

type MockPair struct {
	From, To string
	Km       float64
	Minutes  float64
}

type MockMatrixProvider struct {
	m map[string]ports.Leg

	// Calls counts Legs invocations, letting tests assert cache hits.
	Calls int
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	m := make(map[string]ports.Leg, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = ports.Leg{DistanceKm: p.Km, DurationMin: p.Minutes}
	}
	return &MockMatrixProvider{m: m}
}

func (p *MockMatrixProvider) Legs(
	ctx context.Context,
	origin domain.Location,
	destinations []domain.Location,
	traffic bool,
) (map[string]ports.Leg, error) {
	p.Calls++

	out := make(map[string]ports.Leg, len(destinations))
	for _, d := range destinations {
		r, ok := p.m[origin.LocationID+"|"+d.LocationID]
		if !ok {
			return nil, fmt.Errorf("missing pair %q -> %q", origin.LocationID, d.LocationID)
		}
		out[d.LocationID] = r
	}

	return out, nil
}

package domain

import (
	"math"
	"testing"
)

func TestCoordinatesDistanceKm(t *testing.T) {
	// build test data: Berlin -> Munich, roughly 504 km great-circle
	berlin := Coordinates{Lat: 52.5200, Lon: 13.4050}
	munich := Coordinates{Lat: 48.1351, Lon: 11.5820}

	got := berlin.DistanceKm(munich)
	if math.Abs(got-504) > 5 {
		t.Fatalf("DistanceKm = %.1f, want ~504", got)
	}

	// symmetry
	back := munich.DistanceKm(berlin)
	if math.Abs(got-back) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", got, back)
	}

	// zero distance to itself
	if d := berlin.DistanceKm(berlin); d != 0 {
		t.Errorf("self distance = %v, want 0", d)
	}
}

func TestCoordinatesTravelMinutes(t *testing.T) {
	a := Coordinates{Lat: 0, Lon: 0}
	b := Coordinates{Lat: 0, Lon: 1}

	km := a.DistanceKm(b)

	got := a.TravelMinutes(b, 100)
	want := km / 100 * 60
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("TravelMinutes(100) = %v, want %v", got, want)
	}

	// zero speed falls back to the default
	got = a.TravelMinutes(b, 0)
	want = km / DefaultSpeedKmh * 60
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("TravelMinutes(0) = %v, want %v", got, want)
	}
}

func TestVehicleCanServe(t *testing.T) {
	v := Vehicle{
		VehicleID:    "v1",
		Capabilities: []string{"refrigerated", "liftgate"},
	}

	if !v.CanServe(Location{LocationID: "a"}) {
		t.Error("location without requirements should always be servable")
	}
	if !v.CanServe(Location{LocationID: "b", Requirements: []string{"refrigerated"}}) {
		t.Error("covered requirement rejected")
	}
	if v.CanServe(Location{LocationID: "c", Requirements: []string{"hazmat"}}) {
		t.Error("uncovered requirement accepted")
	}
}

func TestPriorityRank(t *testing.T) {
	order := []Priority{PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Fatalf("%s should rank before %s", order[i-1], order[i])
		}
	}

	if Priority("").Rank() != PriorityNormal.Rank() {
		t.Error("unknown priority should rank as normal")
	}
}

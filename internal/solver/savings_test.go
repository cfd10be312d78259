package solver

import (
	"testing"

	"fleet-route-optimizer/internal/domain"
)

func TestSavingsMergesNearbyStops(t *testing.T) {
	depot := testLoc("depot", 0, 0, 0)
	e1 := testLoc("e1", 0, 1.0, 40)
	e2 := testLoc("e2", 0, 1.1, 40)
	w1 := testLoc("w1", 0, -1.0, 40)
	w2 := testLoc("w2", 0, -1.1, 40)

	locations := []domain.Location{e1, e2, w1, w2}
	vehicles := []domain.Vehicle{
		testVehicle("v1", 100, depot),
		testVehicle("v2", 100, depot),
	}
	drivers := []domain.Driver{{DriverID: "d1"}}

	m := haversineMatrix(t, locations, vehicles)
	routes := savingsRoutes(locations, vehicles, drivers, m, DefaultOptions())

	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d: %v", len(routes), routeStopIDs(routes))
	}

	// east stops ride together, west stops ride together
	for _, r := range routes {
		east := 0
		for _, s := range r.Stops {
			if s.Location.LocationID == "e1" || s.Location.LocationID == "e2" {
				east++
			}
		}
		if east != 0 && east != 2 {
			t.Errorf("route mixes sides of the depot: %v", routeStopIDs(routes))
		}
	}
}

func TestSavingsRespectsCapacityWhenMerging(t *testing.T) {
	depot := testLoc("depot", 0, 0, 0)
	e1 := testLoc("e1", 0, 1.0, 60)
	e2 := testLoc("e2", 0, 1.1, 60)

	locations := []domain.Location{e1, e2}
	vehicles := []domain.Vehicle{
		testVehicle("v1", 100, depot),
		testVehicle("v2", 100, depot),
	}
	drivers := []domain.Driver{{DriverID: "d1"}}

	m := haversineMatrix(t, locations, vehicles)
	routes := savingsRoutes(locations, vehicles, drivers, m, DefaultOptions())

	// 120 combined demand cannot merge, so each stop keeps its own vehicle
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	for i, r := range routes {
		if len(r.Stops) != 1 {
			t.Errorf("route %d has %d stops, want 1", i, len(r.Stops))
		}
		if n := r.ViolationCount(domain.SeverityError); n != 0 {
			t.Errorf("route %d has %d errors, want 0", i, n)
		}
	}
}

func TestSavingsAssignsLargestClusterFirst(t *testing.T) {
	depot := testLoc("depot", 0, 0, 0)
	e1 := testLoc("e1", 0, 1.0, 30)
	e2 := testLoc("e2", 0, 1.1, 30)
	e3 := testLoc("e3", 0, 1.2, 30)
	far := testLoc("far", 0, -3.0, 50)

	locations := []domain.Location{e1, e2, e3, far}
	vehicles := []domain.Vehicle{
		testVehicle("v1", 60, depot),
		testVehicle("v2", 100, depot),
	}
	drivers := []domain.Driver{{DriverID: "d1"}, {DriverID: "d2"}}

	m := haversineMatrix(t, locations, vehicles)
	routes := savingsRoutes(locations, vehicles, drivers, m, DefaultOptions())

	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d: %v", len(routes), routeStopIDs(routes))
	}

	// the 90-demand east chain needs the big vehicle, far gets the small one
	byVehicle := map[string]domain.OptimizedRoute{}
	for _, r := range routes {
		byVehicle[r.VehicleID] = r
	}

	big, ok := byVehicle["v2"]
	if !ok || len(big.Stops) != 3 {
		t.Fatalf("v2 should carry the 3-stop cluster, got %v", routeStopIDs(routes))
	}
	if big.DriverID != "d2" {
		t.Errorf("v2 paired with %s, want d2", big.DriverID)
	}

	small, ok := byVehicle["v1"]
	if !ok || len(small.Stops) != 1 || small.Stops[0].Location.LocationID != "far" {
		t.Fatalf("v1 should carry just far, got %v", routeStopIDs(routes))
	}
	if small.DriverID != "d1" {
		t.Errorf("v1 paired with %s, want d1", small.DriverID)
	}
}

func TestSavingsLeavesOversizedClustersUnrouted(t *testing.T) {
	depot := testLoc("depot", 0, 0, 0)
	huge := testLoc("huge", 0, 1, 500)

	locations := []domain.Location{huge}
	vehicles := []domain.Vehicle{testVehicle("v1", 100, depot)}
	drivers := []domain.Driver{{DriverID: "d1"}}

	m := haversineMatrix(t, locations, vehicles)
	routes := savingsRoutes(locations, vehicles, drivers, m, DefaultOptions())

	if len(routes) != 0 {
		t.Fatalf("expected no routes for an oversized location, got %d", len(routes))
	}
}

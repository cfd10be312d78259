package solver

import (
	"sort"
	"testing"
	"time"

	"fleet-route-optimizer/internal/domain"
)

func TestTwoOptUncrossesRoute(t *testing.T) {
	depot := testLoc("depot", 0, 0, 0)
	a := testLoc("a", 0, 1, 10)
	b := testLoc("b", 0, 2, 10)
	c := testLoc("c", 0, 3, 10)

	vehicle := testVehicle("v1", 100, depot)
	driver := domain.Driver{DriverID: "d1"}
	drivers := []domain.Driver{driver}

	m := haversineMatrix(t, []domain.Location{a, b, c}, []domain.Vehicle{vehicle})

	// visit the middle stop first, which doubles back twice
	crossed := finalizeRoute(vehicle, driver, []domain.Location{b, a, c}, m, DefaultOptions())

	improved := improveRoutes([]domain.OptimizedRoute{crossed}, []domain.Vehicle{vehicle}, drivers, m, DefaultOptions())

	got := routeStopIDs(improved)[0]
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stop order = %v, want %v", got, want)
		}
	}

	wantDist := m.DistanceKm("depot", "a") + m.DistanceKm("a", "b") + m.DistanceKm("b", "c")
	if !almostEqual(improved[0].TotalDistanceKm, wantDist) {
		t.Errorf("distance = %v, want %v", improved[0].TotalDistanceKm, wantDist)
	}
}

func TestTwoOptReversesTwoStopRoute(t *testing.T) {
	depot := testLoc("depot", 0, 0, 0)
	a := testLoc("a", 0, 1, 10)
	b := testLoc("b", 0, 2, 10)

	vehicle := testVehicle("v1", 100, depot)
	driver := domain.Driver{DriverID: "d1"}

	m := haversineMatrix(t, []domain.Location{a, b}, []domain.Vehicle{vehicle})

	backwards := finalizeRoute(vehicle, driver, []domain.Location{b, a}, m, DefaultOptions())
	improved := improveRoutes([]domain.OptimizedRoute{backwards}, []domain.Vehicle{vehicle}, []domain.Driver{driver}, m, DefaultOptions())

	got := routeStopIDs(improved)[0]
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("stop order = %v, want [a b]", got)
	}
}

func TestTwoOptNeverLengthensRoutes(t *testing.T) {
	depot := testLoc("depot", 48.1, 11.5, 0)
	locations := []domain.Location{
		testLoc("l1", 48.15, 11.46, 10),
		testLoc("l2", 48.08, 11.61, 10),
		testLoc("l3", 48.21, 11.55, 10),
		testLoc("l4", 48.12, 11.39, 10),
		testLoc("l5", 48.05, 11.52, 10),
		testLoc("l6", 48.18, 11.66, 10),
	}
	vehicles := []domain.Vehicle{
		testVehicle("v1", 40, depot),
		testVehicle("v2", 40, depot),
	}
	drivers := []domain.Driver{{DriverID: "d1"}}

	m := haversineMatrix(t, locations, vehicles)
	before := sweepRoutes(locations, vehicles, drivers, m, DefaultOptions())
	after := improveRoutes(before, vehicles, drivers, m, DefaultOptions())

	if len(after) != len(before) {
		t.Fatalf("route count changed: %d -> %d", len(before), len(after))
	}
	for i := range after {
		if after[i].TotalDistanceKm > before[i].TotalDistanceKm+1e-9 {
			t.Errorf("route %d got longer: %v -> %v", i, before[i].TotalDistanceKm, after[i].TotalDistanceKm)
		}
	}
}

func TestTwoOptPreservesStopSets(t *testing.T) {
	depot := testLoc("depot", 48.1, 11.5, 0)
	locations := []domain.Location{
		testLoc("l1", 48.15, 11.46, 10),
		testLoc("l2", 48.08, 11.61, 10),
		testLoc("l3", 48.21, 11.55, 10),
		testLoc("l4", 48.12, 11.39, 10),
	}
	vehicles := []domain.Vehicle{testVehicle("v1", 100, depot)}
	drivers := []domain.Driver{{DriverID: "d1"}}

	m := haversineMatrix(t, locations, vehicles)
	before := nearestNeighborRoutes(locations, vehicles, drivers, m, DefaultOptions())
	after := improveRoutes(before, vehicles, drivers, m, DefaultOptions())

	for i := range after {
		b, a := routeStopIDs(before)[i], routeStopIDs(after)[i]
		sort.Strings(b)
		sort.Strings(a)
		if len(b) != len(a) {
			t.Fatalf("route %d stop count changed: %v vs %v", i, b, a)
		}
		for j := range b {
			if b[j] != a[j] {
				t.Fatalf("route %d stop set changed: %v vs %v", i, b, a)
			}
		}
	}
}

func TestTwoOptRefinalizesSchedule(t *testing.T) {
	depot := testLoc("depot", 0, 0, 0)
	a := testLoc("a", 0, 1, 10)
	b := testLoc("b", 0, 2, 10)

	vehicle := testVehicle("v1", 100, depot)
	driver := domain.Driver{DriverID: "d1"}

	m := fixedMatrix(t, legMap{
		"depot|a": leg(10, 10),
		"depot|b": leg(20, 20),
		"a|b":     leg(10, 10),
		"b|a":     leg(10, 10),
	}, []domain.Location{a, b}, []domain.Vehicle{vehicle})

	backwards := finalizeRoute(vehicle, driver, []domain.Location{b, a}, m, DefaultOptions())
	improved := improveRoutes([]domain.OptimizedRoute{backwards}, []domain.Vehicle{vehicle}, []domain.Driver{driver}, m, DefaultOptions())

	r := improved[0]
	if got := routeStopIDs(improved)[0]; got[0] != "a" || got[1] != "b" {
		t.Fatalf("stop order = %v, want [a b]", got)
	}

	// arrival times match the new order, not the old one
	if !r.Stops[0].ArriveAt.Equal(testDay.Add(10 * time.Minute)) {
		t.Errorf("arrival at a = %v, want %v", r.Stops[0].ArriveAt, testDay.Add(10*time.Minute))
	}
	if !r.Stops[1].ArriveAt.Equal(testDay.Add(20 * time.Minute)) {
		t.Errorf("arrival at b = %v, want %v", r.Stops[1].ArriveAt, testDay.Add(20*time.Minute))
	}
	if !almostEqual(r.TotalDistanceKm, 20) {
		t.Errorf("distance = %v, want 20", r.TotalDistanceKm)
	}
}

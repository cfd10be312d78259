package solver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
	"fleet-route-optimizer/internal/metrics"
	"fleet-route-optimizer/internal/ports"
)

var allAlgorithms = []Algorithm{
	AlgorithmNearestNeighbor,
	AlgorithmSavings,
	AlgorithmSweep,
	AlgorithmGenetic,
	AlgorithmHybrid,
}

// quickOpts keeps genetic runs small and reproducible in tests.
func quickOpts(alg Algorithm) Options {
	opts := DefaultOptions()
	opts.Algorithm = alg
	opts.PopulationSize = 20
	opts.Generations = 40
	opts.MaxComputationTime = 5 * time.Second
	opts.RandomSeed = 42
	return opts
}

// countingProvider fails the test fixture contract if called; used to show
// validation short-circuits before matrix construction.
type countingProvider struct {
	calls int
}

func (p *countingProvider) Legs(_ context.Context, _ domain.Location, destinations []domain.Location, _ bool) (map[string]ports.Leg, error) {
	p.calls++
	out := make(map[string]ports.Leg, len(destinations))
	for _, d := range destinations {
		out[d.LocationID] = ports.Leg{}
	}
	return out, nil
}

func TestOptimizeSingleStop(t *testing.T) {
	depot := testLoc("depot", 52.5, 13.4, 0)
	stop := testLoc("a", 52.52, 13.41, 10)

	for _, alg := range allAlgorithms {
		t.Run(string(alg), func(t *testing.T) {
			var o Optimizer
			res, err := o.Optimize(context.Background(),
				[]domain.Location{stop},
				[]domain.Vehicle{testVehicle("v1", 100, depot)},
				[]domain.Driver{{DriverID: "d1"}},
				quickOpts(alg),
			)
			if err != nil {
				t.Fatalf("optimize: %v", err)
			}

			if len(res.Routes) != 1 {
				t.Fatalf("routes = %d, want 1", len(res.Routes))
			}
			r := res.Routes[0]
			if len(r.Stops) != 1 || r.Stops[0].Location.LocationID != "a" {
				t.Errorf("stops = %v, want just a", routeStopIDs(res.Routes))
			}
			if len(r.Violations) != 0 {
				t.Errorf("violations = %v, want none", r.Violations)
			}
			if r.RouteID == "" {
				t.Error("route id not assigned")
			}
			if len(res.Unassigned) != 0 {
				t.Errorf("unassigned = %v, want none", res.Unassigned)
			}
			if res.Algorithm != string(alg) {
				t.Errorf("algorithm = %q, want %q", res.Algorithm, alg)
			}
			if res.ComputationTime <= 0 {
				t.Errorf("computation time = %v, want > 0", res.ComputationTime)
			}
		})
	}
}

func TestOptimizeSplitsOverCapacity(t *testing.T) {
	depot := testLoc("depot", 52.5, 13.4, 0)
	a := testLoc("a", 52.52, 13.41, 60)
	b := testLoc("b", 52.54, 13.38, 60)

	var o Optimizer
	res, err := o.Optimize(context.Background(),
		[]domain.Location{a, b},
		[]domain.Vehicle{testVehicle("v1", 100, depot), testVehicle("v2", 100, depot)},
		[]domain.Driver{{DriverID: "d1"}},
		quickOpts(AlgorithmNearestNeighbor),
	)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	if len(res.Routes) != 2 {
		t.Fatalf("routes = %v, want a split across both vehicles", routeStopIDs(res.Routes))
	}
	if len(res.Unassigned) != 0 {
		t.Fatalf("unassigned = %v, want none", res.Unassigned)
	}
	for _, r := range res.Routes {
		for _, v := range r.Violations {
			if v.Kind == domain.ViolationCapacity {
				t.Errorf("unexpected capacity violation on %s: %+v", r.VehicleID, v)
			}
		}
	}

	// routes come back in stable vehicle order
	if res.Routes[0].VehicleID > res.Routes[1].VehicleID {
		t.Errorf("route order = %s, %s; want sorted", res.Routes[0].VehicleID, res.Routes[1].VehicleID)
	}
}

func TestOptimizePastWindowFlagsError(t *testing.T) {
	depot := testLoc("depot", 52.5, 13.4, 0)
	missed := testLoc("missed", 52.52, 13.41, 10)
	missed.Window = &domain.TimeWindow{
		Start: testDay.Add(-3 * time.Hour),
		End:   testDay.Add(-2 * time.Hour),
	}

	var o Optimizer
	res, err := o.Optimize(context.Background(),
		[]domain.Location{missed},
		[]domain.Vehicle{testVehicle("v1", 100, depot)},
		[]domain.Driver{{DriverID: "d1"}},
		quickOpts(AlgorithmNearestNeighbor),
	)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	found := false
	for _, v := range res.Routes[0].Violations {
		if v.Kind == domain.ViolationTimeWindow && v.Severity == domain.SeverityError {
			found = true
		}
	}
	if !found {
		t.Errorf("violations = %v, want a time_window error", res.Routes[0].Violations)
	}
}

func TestOptimizeRejectsEmptyVehicles(t *testing.T) {
	provider := &countingProvider{}
	o := Optimizer{Matrix: matrix.BuildOptions{Provider: provider}}

	res, err := o.Optimize(context.Background(),
		[]domain.Location{testLoc("a", 52.52, 13.41, 10)},
		nil,
		[]domain.Driver{{DriverID: "d1"}},
		quickOpts(AlgorithmNearestNeighbor),
	)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if provider.calls != 0 {
		t.Errorf("matrix provider called %d times before validation failure", provider.calls)
	}
}

func TestOptimizeHybridMatchesOrBeatsNearestNeighbor(t *testing.T) {
	depot := testLoc("depot", 0, 0, 0)
	locations := []domain.Location{
		testLoc("a", 0, 1, 10),
		testLoc("b", 0, 2, 10),
		testLoc("c", 0, 3, 10),
	}
	vehicle := testVehicle("v1", 100, depot)
	vehicle.CostPerKm = 1
	vehicles := []domain.Vehicle{vehicle}
	drivers := []domain.Driver{{DriverID: "d1"}}

	var o Optimizer
	nn, err := o.Optimize(context.Background(), locations, vehicles, drivers, quickOpts(AlgorithmNearestNeighbor))
	if err != nil {
		t.Fatalf("nearest neighbor: %v", err)
	}
	hybrid, err := o.Optimize(context.Background(), locations, vehicles, drivers, quickOpts(AlgorithmHybrid))
	if err != nil {
		t.Fatalf("hybrid: %v", err)
	}

	if hybrid.TotalCost > nn.TotalCost+1e-9 {
		t.Errorf("hybrid cost %v exceeds nearest neighbor cost %v", hybrid.TotalCost, nn.TotalCost)
	}
	if hybrid.Improvement != nil && *hybrid.Improvement < 0 {
		t.Errorf("improvement = %v, want >= 0", *hybrid.Improvement)
	}
}

func TestOptimizeEveryLocationLandsExactlyOnce(t *testing.T) {
	depot := testLoc("depot", 48.1, 11.5, 0)
	locations := []domain.Location{
		testLoc("l1", 48.15, 11.46, 30),
		testLoc("l2", 48.08, 11.61, 40),
		testLoc("huge", 48.21, 11.55, 500),
		testLoc("l4", 48.12, 11.39, 20),
		testLoc("l5", 48.05, 11.52, 50),
	}
	vehicles := []domain.Vehicle{
		testVehicle("v1", 100, depot),
		testVehicle("v2", 100, depot),
	}
	drivers := []domain.Driver{{DriverID: "d1"}}

	for _, alg := range allAlgorithms {
		t.Run(string(alg), func(t *testing.T) {
			var o Optimizer
			res, err := o.Optimize(context.Background(), locations, vehicles, drivers, quickOpts(alg))
			if err != nil {
				t.Fatalf("optimize: %v", err)
			}

			counts := map[string]int{}
			for _, ids := range routeStopIDs(res.Routes) {
				for _, id := range ids {
					counts[id]++
				}
			}
			for _, loc := range res.Unassigned {
				counts[loc.LocationID]++
			}

			for _, loc := range locations {
				if counts[loc.LocationID] != 1 {
					t.Errorf("location %s placed %d times", loc.LocationID, counts[loc.LocationID])
				}
			}

			hugeAssigned := false
			for _, ids := range routeStopIDs(res.Routes) {
				for _, id := range ids {
					if id == "huge" {
						hugeAssigned = true
					}
				}
			}
			if hugeAssigned {
				t.Error("oversized location was assigned to a route")
			}
		})
	}
}

func TestOptimizeRespectsCapacity(t *testing.T) {
	depot := testLoc("depot", 48.1, 11.5, 0)
	locations := []domain.Location{
		testLoc("l1", 48.15, 11.46, 30),
		testLoc("l2", 48.08, 11.61, 40),
		testLoc("l3", 48.21, 11.55, 25),
		testLoc("l4", 48.12, 11.39, 20),
	}
	vehicles := []domain.Vehicle{
		testVehicle("v1", 60, depot),
		testVehicle("v2", 60, depot),
		testVehicle("v3", 60, depot),
	}
	drivers := []domain.Driver{{DriverID: "d1"}}

	capacityOf := map[string]float64{}
	for _, v := range vehicles {
		capacityOf[v.VehicleID] = v.Capacity
	}

	for _, alg := range allAlgorithms {
		t.Run(string(alg), func(t *testing.T) {
			var o Optimizer
			res, err := o.Optimize(context.Background(), locations, vehicles, drivers, quickOpts(alg))
			if err != nil {
				t.Fatalf("optimize: %v", err)
			}

			for _, r := range res.Routes {
				if len(r.Stops) == 0 {
					continue
				}
				load := r.Stops[len(r.Stops)-1].Load
				if load > capacityOf[r.VehicleID] && r.ViolationCount(domain.SeverityError) == 0 {
					t.Errorf("route %s load %v over capacity %v without a violation", r.VehicleID, load, capacityOf[r.VehicleID])
				}
				for _, v := range r.Violations {
					if v.Kind == domain.ViolationCapacity {
						t.Errorf("capacity violation on %s: %+v", r.VehicleID, v)
					}
				}
			}
		})
	}
}

func TestOptimizeUnknownAlgorithm(t *testing.T) {
	depot := testLoc("depot", 52.5, 13.4, 0)

	var o Optimizer
	_, err := o.Optimize(context.Background(),
		[]domain.Location{testLoc("a", 52.52, 13.41, 10)},
		[]domain.Vehicle{testVehicle("v1", 100, depot)},
		[]domain.Driver{{DriverID: "d1"}},
		quickOpts("simulated_annealing"),
	)
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("err = %v, want ErrUnknownAlgorithm", err)
	}
}

func TestOptimizeFillsDefaults(t *testing.T) {
	depot := testLoc("depot", 52.5, 13.4, 0)

	var o Optimizer
	res, err := o.Optimize(context.Background(),
		[]domain.Location{testLoc("a", 52.52, 13.41, 10)},
		[]domain.Vehicle{testVehicle("v1", 100, depot)},
		[]domain.Driver{{DriverID: "d1"}},
		Options{RandomSeed: 7, PopulationSize: 10, Generations: 30, MaxComputationTime: 5 * time.Second},
	)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	if res.Algorithm != string(AlgorithmGenetic) {
		t.Errorf("algorithm = %q, want genetic by default", res.Algorithm)
	}
	if res.Iterations < 1 {
		t.Errorf("iterations = %d, want at least one generation", res.Iterations)
	}
	if res.Improvement != nil {
		t.Errorf("improvement = %v, want nil outside hybrid runs", *res.Improvement)
	}
}

func TestOptimizeRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := Optimizer{Metrics: metrics.New(reg)}

	depot := testLoc("depot", 52.5, 13.4, 0)
	_, err := o.Optimize(context.Background(),
		[]domain.Location{testLoc("a", 52.52, 13.41, 10)},
		[]domain.Vehicle{testVehicle("v1", 100, depot)},
		[]domain.Driver{{DriverID: "d1"}},
		quickOpts(AlgorithmNearestNeighbor),
	)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	n, err := testutil.GatherAndCount(reg, "optimizer_runs_total", "optimizer_run_duration_seconds", "optimizer_unassigned_locations")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Error("no optimizer metrics recorded")
	}
}

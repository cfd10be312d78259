package solver

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"sort"
	"time"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
)

const (
	// tournamentSize is the number of individuals competing per selection.
	tournamentSize = 5

	// staleLimit stops the run after this many generations without a new
	// best fitness.
	staleLimit = 50
)

// A candidate solution: a permutation of location indices plus its decoded
// routes and fitness (lower is better). Chromosomes live for one run only
// and are never shared across runs.
type chromosome struct {
	genes      []int
	fitness    float64
	routes     []domain.OptimizedRoute
	violations int
}

func (c chromosome) clone() chromosome {
	c.genes = slices.Clone(c.genes)
	return c
}

type geneticSolver struct {
	locations []domain.Location
	vehicles  []domain.Vehicle
	drivers   []domain.Driver
	m         *matrix.Matrix
	opts      Options
	rng       *rand.Rand
	log       *slog.Logger
}

// runGenetic evolves permutations of location indices and returns the best
// decoded routes along with the number of generations executed.
//
// The loop terminates on whichever comes first: the generation limit, the
// wall-clock deadline, a cancelled context, or staleLimit generations
// without improvement. Timeouts are not errors; the best-so-far solution is
// returned.
func runGenetic(
	ctx context.Context,
	locations []domain.Location,
	vehicles []domain.Vehicle,
	drivers []domain.Driver,
	m *matrix.Matrix,
	opts Options,
	generations int,
	deadline time.Time,
	rng *rand.Rand,
	log *slog.Logger,
) ([]domain.OptimizedRoute, int) {
	g := &geneticSolver{
		locations: locations,
		vehicles:  vehicles,
		drivers:   drivers,
		m:         m,
		opts:      opts,
		rng:       rng,
		log:       log,
	}

	pop := g.initialPopulation()
	best := g.fittest(pop).clone()

	executed := 0
	stale := 0

	for gen := 0; gen < generations; gen++ {
		// Cooperative budget check, once per generation.
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		pop = g.nextGeneration(pop)
		executed++

		if genBest := g.fittest(pop); genBest.fitness < best.fitness {
			best = genBest.clone()
			stale = 0
		} else {
			stale++
			if stale >= staleLimit {
				break
			}
		}

		if executed%50 == 0 {
			g.log.Debug("generation summary",
				"generation", executed,
				"best_fitness", best.fitness,
				"avg_fitness", averageFitness(pop),
			)
		}
	}

	return best.routes, executed
}

// initialPopulation seeds 30% random shuffles, 30% nearest-neighbor
// orderings and 40% priority orderings. Mutation diversifies the identical
// seeded individuals over the first generations.
func (g *geneticSolver) initialPopulation() []chromosome {
	size := g.opts.PopulationSize
	n := len(g.locations)

	identity := make([]int, n)
	for i := range identity {
		identity[i] = i
	}

	nnOrder := nearestNeighborOrder(g.locations, g.vehicles, g.m)
	priorityOrder := g.priorityOrder()

	randomCount := size * 30 / 100
	nnCount := size * 30 / 100

	pop := make([]chromosome, 0, size)
	for i := 0; i < size; i++ {
		var genes []int
		switch {
		case i < randomCount:
			genes = slices.Clone(identity)
			g.rng.Shuffle(n, func(a, b int) { genes[a], genes[b] = genes[b], genes[a] })
		case i < randomCount+nnCount:
			genes = slices.Clone(nnOrder)
		default:
			genes = slices.Clone(priorityOrder)
		}

		c := chromosome{genes: genes}
		g.evaluate(&c)
		pop = append(pop, c)
	}

	return pop
}

// priorityOrder sorts location indices urgent-first, ties broken by the
// earliest time-window start, then input order.
func (g *geneticSolver) priorityOrder() []int {
	order := make([]int, len(g.locations))
	for i := range order {
		order[i] = i
	}

	windowStart := func(i int) int64 {
		if w := g.locations[i].Window; w != nil {
			return w.Start.UnixNano()
		}
		return math.MaxInt64
	}

	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := g.locations[order[a]].Priority.Rank(), g.locations[order[b]].Priority.Rank()
		if ra != rb {
			return ra < rb
		}
		return windowStart(order[a]) < windowStart(order[b])
	})

	return order
}

// evaluate decodes the permutation into routes and scores it.
func (g *geneticSolver) evaluate(c *chromosome) {
	ordered := make([]domain.Location, len(c.genes))
	for i, gi := range c.genes {
		ordered[i] = g.locations[gi]
	}

	routes := splitByCapacity(ordered, g.vehicles, g.drivers, g.m, g.opts)

	var totalDistance, totalCost, totalCarbon, utilizationSum float64
	var errs, warnings int
	distances := make([]float64, 0, len(routes))

	for i := range routes {
		r := &routes[i]
		totalDistance += r.TotalDistanceKm
		totalCost += r.TotalCost
		totalCarbon += r.Costs.CarbonKg
		utilizationSum += r.Utilization
		errs += r.ViolationCount(domain.SeverityError)
		warnings += r.ViolationCount(domain.SeverityWarning)
		distances = append(distances, r.TotalDistanceKm)
	}

	fitness := totalDistance
	if g.opts.PrioritizeCost {
		fitness = totalCost
	}

	fitness += 10000 * float64(errs)
	fitness += 1000 * float64(warnings)

	if g.opts.BalanceRoutes {
		fitness += 0.1 * variance(distances)
	}
	if len(routes) > 0 {
		fitness -= 10 * (utilizationSum / float64(len(routes)))
	}
	if g.opts.MinimizeVehicles {
		fitness += 5000 * float64(len(routes))
	}
	if g.opts.GreenRouting {
		fitness += 100 * totalCarbon
	}

	c.routes = routes
	c.fitness = fitness
	c.violations = errs + warnings
}

// nextGeneration keeps the elite unchanged and fills the rest with
// tournament-selected, crossed-over, occasionally mutated offspring.
func (g *geneticSolver) nextGeneration(pop []chromosome) []chromosome {
	size := len(pop)

	sort.SliceStable(pop, func(i, j int) bool { return pop[i].fitness < pop[j].fitness })

	elite := int(math.Round(g.opts.ElitismRate * float64(size)))
	if elite > size {
		elite = size
	}

	next := make([]chromosome, 0, size)
	next = append(next, pop[:elite]...)

	for len(next) < size {
		p1 := g.tournament(pop)
		p2 := g.tournament(pop)

		var genes1, genes2 []int
		if g.rng.Float64() < g.opts.CrossoverRate {
			genes1, genes2 = g.crossover(p1.genes, p2.genes)
		} else {
			genes1 = slices.Clone(p1.genes)
			genes2 = slices.Clone(p2.genes)
		}

		for _, genes := range [][]int{genes1, genes2} {
			if len(next) >= size {
				break
			}
			if g.rng.Float64() < g.opts.MutationRate {
				g.mutate(genes)
			}

			c := chromosome{genes: genes}
			g.evaluate(&c)
			next = append(next, c)
		}
	}

	return next
}

// tournament returns the fittest of tournamentSize random individuals,
// drawn with replacement.
func (g *geneticSolver) tournament(pop []chromosome) *chromosome {
	best := &pop[g.rng.Intn(len(pop))]
	for i := 1; i < tournamentSize; i++ {
		c := &pop[g.rng.Intn(len(pop))]
		if c.fitness < best.fitness {
			best = c
		}
	}
	return best
}

// crossover applies order crossover (OX): each child keeps a random
// contiguous segment from one parent and fills the rest in donor order.
func (g *geneticSolver) crossover(a, b []int) ([]int, []int) {
	n := len(a)
	if n < 2 {
		return slices.Clone(a), slices.Clone(b)
	}

	start := g.rng.Intn(n)
	end := g.rng.Intn(n)
	if start > end {
		start, end = end, start
	}

	return oxChild(a, b, start, end), oxChild(b, a, start, end)
}

func oxChild(primary, donor []int, start, end int) []int {
	n := len(primary)
	child := make([]int, n)
	used := make([]bool, n)

	for i := range child {
		child[i] = -1
	}
	for i := start; i <= end; i++ {
		child[i] = primary[i]
		used[primary[i]] = true
	}

	di := 0
	for i := 0; i < n; i++ {
		if child[i] != -1 {
			continue
		}
		for used[donor[di]] {
			di++
		}
		child[i] = donor[di]
		used[donor[di]] = true
	}

	return child
}

// mutate applies one of swap, inversion or scramble with equal probability.
func (g *geneticSolver) mutate(genes []int) {
	n := len(genes)
	if n < 2 {
		return
	}

	switch g.rng.Intn(3) {
	case 0: // swap two random positions
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		genes[i], genes[j] = genes[j], genes[i]
	case 1: // reverse a random segment
		i, j := g.randomSegment(n)
		for i < j {
			genes[i], genes[j] = genes[j], genes[i]
			i++
			j--
		}
	default: // shuffle a random segment
		i, j := g.randomSegment(n)
		g.rng.Shuffle(j-i+1, func(a, b int) {
			genes[i+a], genes[i+b] = genes[i+b], genes[i+a]
		})
	}
}

func (g *geneticSolver) randomSegment(n int) (int, int) {
	i := g.rng.Intn(n)
	j := g.rng.Intn(n)
	if i > j {
		i, j = j, i
	}
	return i, j
}

func (g *geneticSolver) fittest(pop []chromosome) *chromosome {
	best := &pop[0]
	for i := range pop {
		if pop[i].fitness < best.fitness {
			best = &pop[i]
		}
	}
	return best
}

func averageFitness(pop []chromosome) float64 {
	if len(pop) == 0 {
		return 0
	}
	sum := 0.0
	for i := range pop {
		sum += pop[i].fitness
	}
	return sum / float64(len(pop))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	out := 0.0
	for _, v := range values {
		out += (v - mean) * (v - mean)
	}
	return out / float64(len(values))
}

// splitByCapacity decodes an ordered location sequence into routes: fill
// the current vehicle until the next location would not fit, then roll to
// the next one. The walk never returns to an earlier vehicle, so locations
// left over after the last vehicle are dropped; the caller reports them as
// unassigned.
func splitByCapacity(
	ordered []domain.Location,
	vehicles []domain.Vehicle,
	drivers []domain.Driver,
	m *matrix.Matrix,
	opts Options,
) []domain.OptimizedRoute {
	routes := make([]domain.OptimizedRoute, 0, len(vehicles))

	vi := 0
	var seq []domain.Location
	var load float64

	flush := func() {
		if len(seq) == 0 {
			return
		}
		routes = append(routes, finalizeRoute(vehicles[vi], drivers[vi%len(drivers)], seq, m, opts))
	}

	for _, loc := range ordered {
		for vi < len(vehicles) && load+loc.Demand > vehicles[vi].Capacity {
			flush()
			vi++
			seq = nil
			load = 0
		}
		if vi >= len(vehicles) {
			break
		}
		seq = append(seq, loc)
		load += loc.Demand
	}
	if vi < len(vehicles) {
		flush()
	}

	return routes
}

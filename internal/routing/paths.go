package routing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/skyroute/internal/apperr"
)

// DefaultMaxHops is the hop ceiling used when a query does not set one.
const DefaultMaxHops = 3

// Path is an airport sequence of length >= 2. No flight has been chosen
// for its legs yet.
type Path []string

// String renders the path as "SVO-LED-KZN".
func (p Path) String() string {
	return strings.Join(p, "-")
}

// Hops returns the number of legs in the path.
func (p Path) Hops() int {
	if len(p) < 2 {
		return 0
	}
	return len(p) - 1
}

// CityResolver maps a city name to its airport codes.
type CityResolver interface {
	Airports(city string) []string
}

// CityMap is the plain map form of a CityResolver.
type CityMap map[string][]string

// Airports implements CityResolver.
func (m CityMap) Airports(city string) []string {
	return m[city]
}

// Enumerator runs temporally causal breadth-first searches over a Graph.
// The zero value has no expansion budget and searches airport pairs one
// after another.
type Enumerator struct {
	// MaxExpansions bounds the number of dequeued states per airport
	// pair. Zero means unbounded.
	MaxExpansions int
	// Workers is the number of airport pairs searched concurrently.
	// Values below 2 search sequentially.
	Workers int
}

// FindPaths enumerates airport paths between two cities with the zero
// Enumerator.
func FindPaths(g *Graph, cities CityResolver, originCity, destCity string, maxHops int) ([]Path, error) {
	return Enumerator{}.FindPaths(context.Background(), g, cities, originCity, destCity, maxHops)
}

// FindPaths resolves both cities and searches every origin x destination
// airport pair, skipping pairs where both sides are the same airport.
// Results are concatenated in pair order and, within a pair, in order of
// discovery, so the output is stable across runs.
func (e Enumerator) FindPaths(ctx context.Context, g *Graph, cities CityResolver, originCity, destCity string, maxHops int) ([]Path, error) {
	origins := cities.Airports(originCity)
	if len(origins) == 0 {
		return nil, &apperr.UnknownCityError{City: originCity}
	}
	dests := cities.Airports(destCity)
	if len(dests) == 0 {
		return nil, &apperr.UnknownCityError{City: destCity}
	}
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}

	var pairs []leg
	for _, o := range origins {
		for _, d := range dests {
			if o == d {
				continue
			}
			pairs = append(pairs, leg{o, d})
		}
	}

	found := make([][]Path, len(pairs))
	grp, gctx := errgroup.WithContext(ctx)
	if e.Workers > 1 {
		grp.SetLimit(e.Workers)
	} else {
		grp.SetLimit(1)
	}
	for i, p := range pairs {
		grp.Go(func() error {
			paths, err := e.search(gctx, g, p.from, p.to, maxHops)
			if err != nil {
				return fmt.Errorf("routing: %s->%s: %w", p.from, p.to, err)
			}
			found[i] = paths
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	var out []Path
	for _, paths := range found {
		out = append(out, paths...)
	}
	return out, nil
}

// searchState is one frontier entry: where we are, when we got there and
// how. A zero arrival means nothing has been flown yet.
type searchState struct {
	airport string
	arrival time.Time
	path    Path
}

type visitKey struct {
	airport string
	arrival int64
	started bool
}

func keyOf(s searchState) visitKey {
	if s.arrival.IsZero() {
		return visitKey{airport: s.airport}
	}
	return visitKey{airport: s.airport, arrival: s.arrival.UnixNano(), started: true}
}

// search runs the BFS for one airport pair. A flight may be taken only if
// it departs strictly after the previous arrival; the layover minimum is
// left to EvaluatePath. Reaching dest records the path and does not
// enqueue it. States already holding maxHops legs are not expanded.
func (e Enumerator) search(ctx context.Context, g *Graph, origin, dest string, maxHops int) ([]Path, error) {
	if !g.HasAirport(origin) || !g.HasAirport(dest) {
		return nil, nil
	}

	start := searchState{airport: origin, path: Path{origin}}
	visited := map[visitKey]struct{}{keyOf(start): {}}
	queue := []searchState{start}
	recorded := make(map[string]struct{})

	var out []Path
	expansions := 0
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]

		expansions++
		if e.MaxExpansions > 0 && expansions > e.MaxExpansions {
			return nil, apperr.ErrSearchBudgetExceeded
		}

		if cur.path.Hops() >= maxHops {
			continue
		}

		for _, f := range g.Departures(cur.airport) {
			if !cur.arrival.IsZero() && !f.Departure.After(cur.arrival) {
				continue
			}

			next := make(Path, len(cur.path), len(cur.path)+1)
			copy(next, cur.path)
			next = append(next, f.Destination)

			if f.Destination == dest {
				key := next.String()
				if _, dup := recorded[key]; !dup {
					recorded[key] = struct{}{}
					out = append(out, next)
				}
				continue
			}

			st := searchState{airport: f.Destination, arrival: f.Arrival, path: next}
			k := keyOf(st)
			if _, seen := visited[k]; seen {
				continue
			}
			visited[k] = struct{}{}
			queue = append(queue, st)
		}
	}

	return out, nil
}

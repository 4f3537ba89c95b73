// Package routing implements the itinerary search core: a time-filtered
// flight multigraph, temporally causal path enumeration, per-path
// aggregation and multi-criteria selection.
//
// All types here are immutable after construction and safe to share
// between concurrent searches.
package routing

import (
	"time"

	"github.com/starford/skyroute/internal/models"
)

// leg identifies an ordered airport pair.
type leg struct {
	from, to string
}

// Graph is a directed multigraph of airports connected by flights.
// Outgoing flights and parallel flights on a leg are kept in insertion
// order, which is the enumeration order the aggregator relies on.
type Graph struct {
	cutoff  time.Time
	nodes   []string
	known   map[string]struct{}
	flights []models.Flight
	byID    map[string]int
	out     map[string][]int
	legs    map[leg][]int
}

// BuildGraph keeps the flights departing at or after cutoff and links
// their airports. A flight ID seen twice replaces the earlier edge in
// place. The input slice is not modified.
func BuildGraph(records []models.Flight, cutoff time.Time) *Graph {
	g := &Graph{
		cutoff: cutoff,
		known:  make(map[string]struct{}),
		byID:   make(map[string]int),
		out:    make(map[string][]int),
		legs:   make(map[leg][]int),
	}

	for _, f := range records {
		if f.Departure.Before(cutoff) {
			continue
		}
		g.addNode(f.Origin)
		g.addNode(f.Destination)

		if i, ok := g.byID[f.ID]; ok && g.flights[i].Origin == f.Origin && g.flights[i].Destination == f.Destination {
			g.flights[i] = f
			continue
		} else if ok {
			g.removeEdge(i)
		}

		i := len(g.flights)
		g.flights = append(g.flights, f)
		g.byID[f.ID] = i
		g.out[f.Origin] = append(g.out[f.Origin], i)
		k := leg{f.Origin, f.Destination}
		g.legs[k] = append(g.legs[k], i)
	}

	return g
}

func (g *Graph) addNode(code string) {
	if _, ok := g.known[code]; ok {
		return
	}
	g.known[code] = struct{}{}
	g.nodes = append(g.nodes, code)
}

// removeEdge unlinks edge i from the adjacency lists. The slot in
// g.flights stays allocated but is no longer reachable.
func (g *Graph) removeEdge(i int) {
	f := g.flights[i]
	g.out[f.Origin] = without(g.out[f.Origin], i)
	k := leg{f.Origin, f.Destination}
	g.legs[k] = without(g.legs[k], i)
	delete(g.byID, f.ID)
}

func without(idx []int, i int) []int {
	out := make([]int, 0, len(idx))
	for _, j := range idx {
		if j != i {
			out = append(out, j)
		}
	}
	return out
}

// Cutoff returns the departure instant the graph was built from.
func (g *Graph) Cutoff() time.Time {
	return g.cutoff
}

// HasAirport reports whether code is a node of the graph.
func (g *Graph) HasAirport(code string) bool {
	_, ok := g.known[code]
	return ok
}

// Airports returns the nodes in first-seen order.
func (g *Graph) Airports() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// EdgeCount returns the number of flights in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.byID)
}

// Departures returns the flights leaving code in insertion order.
func (g *Graph) Departures(code string) []models.Flight {
	return g.collect(g.out[code])
}

// Flights returns the parallel flights from -> to in insertion order.
func (g *Graph) Flights(from, to string) []models.Flight {
	return g.collect(g.legs[leg{from, to}])
}

func (g *Graph) collect(idx []int) []models.Flight {
	if len(idx) == 0 {
		return nil
	}
	out := make([]models.Flight, len(idx))
	for n, i := range idx {
		out[n] = g.flights[i]
	}
	return out
}

package routing

import (
	"time"

	"github.com/starford/skyroute/internal/models"
)

// DefaultMinLayover is the ground time required between connecting flights
// when a query does not set one.
const DefaultMinLayover = time.Hour

// EvaluatePath picks one flight per leg of path and aggregates the result.
//
// For every leg the first parallel flight in graph order is taken whose
// departure is at or after the previous arrival plus minLayover; on the
// first leg any flight qualifies. It is the first qualifying flight, not
// the earliest or the cheapest one. If some leg has no qualifying flight
// the path is infeasible and ok is false.
func EvaluatePath(g *Graph, path Path, minLayover time.Duration) (it models.Itinerary, ok bool) {
	if len(path) < 2 {
		return models.Itinerary{}, false
	}

	segments := make([]models.Segment, 0, path.Hops())
	var (
		total    float64
		duration time.Duration
		prev     time.Time
	)
	for i := 0; i+1 < len(path); i++ {
		f, found := firstConnecting(g.Flights(path[i], path[i+1]), i == 0, prev, minLayover)
		if !found {
			return models.Itinerary{}, false
		}
		segments = append(segments, models.Segment{
			FlightID:  f.ID,
			FlightNo:  f.Number,
			From:      f.Origin,
			To:        f.Destination,
			Departure: f.Departure,
			Arrival:   f.Arrival,
			Price:     f.Fare,
		})
		total += f.Fare
		duration += f.Duration()
		prev = f.Arrival
	}

	return models.Itinerary{
		Path:          append([]string(nil), path...),
		Segments:      segments,
		TotalPrice:    total,
		TotalDuration: duration,
		Transfers:     len(path) - 2,
	}, true
}

func firstConnecting(flights []models.Flight, first bool, prevArrival time.Time, minLayover time.Duration) (models.Flight, bool) {
	for _, f := range flights {
		if first || !f.Departure.Before(prevArrival.Add(minLayover)) {
			return f, true
		}
	}
	return models.Flight{}, false
}

// EvaluatePaths aggregates every path and drops the infeasible ones,
// keeping input order.
func EvaluatePaths(g *Graph, paths []Path, minLayover time.Duration) []models.Itinerary {
	out := make([]models.Itinerary, 0, len(paths))
	for _, p := range paths {
		if it, ok := EvaluatePath(g, p, minLayover); ok {
			out = append(out, it)
		}
	}
	return out
}

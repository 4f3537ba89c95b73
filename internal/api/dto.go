package api

import (
	"time"

	"github.com/starford/skyroute/internal/catalog"
	"github.com/starford/skyroute/internal/models"
	"github.com/starford/skyroute/internal/planner"
)

// CitiesResponse lists every city with its airports.
type CitiesResponse struct {
	Cities []catalog.City `json:"cities" validate:"required"`
}

// SegmentDTO is one flight of an itinerary.
type SegmentDTO struct {
	FlightID  string    `json:"flight_id" example:"1185"`
	FlightNo  string    `json:"flight_no" example:"PG0134"`
	From      string    `json:"from" example:"DME"`
	To        string    `json:"to" example:"BTK"`
	Departure time.Time `json:"departure"`
	Arrival   time.Time `json:"arrival"`
	Price     float64   `json:"price" example:"6300"`
}

// ItineraryDTO is a feasible route. Durations are in minutes.
type ItineraryDTO struct {
	Path            []string     `json:"path" example:"DME,BTK"`
	Segments        []SegmentDTO `json:"segments"`
	TotalPrice      float64      `json:"total_price" example:"6300"`
	DurationMinutes int64        `json:"total_duration_minutes" example:"330"`
	Duration        string       `json:"total_duration" example:"5h30m"`
	Transfers       int          `json:"transfers" example:"0"`
}

// BestRoutesDTO holds the three selected routes.
type BestRoutesDTO struct {
	Cheapest       *ItineraryDTO `json:"cheapest"`
	Fastest        *ItineraryDTO `json:"fastest"`
	LeastTransfers *ItineraryDTO `json:"least_transfers"`
}

// RouteResponse is the result of GET /api/routes.
type RouteResponse struct {
	SearchID   string         `json:"search_id"`
	From       string         `json:"from" example:"Moscow"`
	To         string         `json:"to" example:"Kazan"`
	Departure  time.Time      `json:"departure"`
	MaxHops    int            `json:"max_hops" example:"3"`
	MinLayover string         `json:"min_layover" example:"1h0m0s"`
	Outcome    string         `json:"outcome" example:"found" enums:"found,empty_graph,no_feasible_path"`
	Candidates int            `json:"candidates" example:"4"`
	Feasible   int            `json:"feasible" example:"3"`
	Best       *BestRoutesDTO `json:"best,omitempty"`
	TookMillis float64        `json:"took_ms"`
}

func newItineraryDTO(it *models.Itinerary) *ItineraryDTO {
	if it == nil {
		return nil
	}
	out := &ItineraryDTO{
		Path:            it.Path,
		Segments:        make([]SegmentDTO, 0, len(it.Segments)),
		TotalPrice:      it.TotalPrice,
		DurationMinutes: int64(it.TotalDuration / time.Minute),
		Duration:        it.TotalDuration.String(),
		Transfers:       it.Transfers,
	}
	for _, s := range it.Segments {
		out.Segments = append(out.Segments, SegmentDTO(s))
	}
	return out
}

// NewRouteResponse converts a planner result to its wire shape.
func NewRouteResponse(res *planner.Result) RouteResponse {
	out := RouteResponse{
		SearchID:   res.SearchID,
		From:       res.From,
		To:         res.To,
		Departure:  res.Departure,
		MaxHops:    res.MaxHops,
		MinLayover: res.MinLayover.String(),
		Outcome:    string(res.Outcome),
		Candidates: res.Candidates,
		Feasible:   len(res.Itineraries),
		TookMillis: float64(res.Took.Microseconds()) / 1000,
	}
	if res.Best != nil {
		out.Best = &BestRoutesDTO{
			Cheapest:       newItineraryDTO(res.Best.Cheapest),
			Fastest:        newItineraryDTO(res.Best.Fastest),
			LeastTransfers: newItineraryDTO(res.Best.LeastTransfers),
		}
	}
	return out
}

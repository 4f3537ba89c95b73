// Package models defines the domain types for Skyroute.
package models

import "time"

// Flight is one cleaned, scheduled flight. It is the edge payload of the
// routing graph and is never mutated once loaded.
type Flight struct {
	ID          string    `json:"flight_id"`
	Number      string    `json:"flight_no"`
	Origin      string    `json:"departure_airport"`
	Destination string    `json:"arrival_airport"`
	Departure   time.Time `json:"scheduled_departure"`
	Arrival     time.Time `json:"scheduled_arrival"`
	Fare        float64   `json:"amount"`
}

// Duration returns the scheduled block time of the flight.
func (f Flight) Duration() time.Duration {
	return f.Arrival.Sub(f.Departure)
}

// Airport describes an airport as seen by the ingestion layer.
type Airport struct {
	Code      string   `json:"code"`
	City      string   `json:"city"`
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
}

// Segment is one chosen flight of an itinerary.
type Segment struct {
	FlightID  string    `json:"flight_id"`
	FlightNo  string    `json:"flight_no"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Departure time.Time `json:"departure"`
	Arrival   time.Time `json:"arrival"`
	Price     float64   `json:"price"`
}

// Duration returns the flight time of the segment.
func (s Segment) Duration() time.Duration {
	return s.Arrival.Sub(s.Departure)
}

// Itinerary is the aggregate of a feasible airport path.
// TotalDuration sums segment flight times only; layovers are excluded.
type Itinerary struct {
	Path          []string      `json:"path"`
	Segments      []Segment     `json:"segments"`
	TotalPrice    float64       `json:"total_price"`
	TotalDuration time.Duration `json:"total_duration"`
	Transfers     int           `json:"transfers"`
}

// BestRoutes holds the winners of the three selection criteria.
// The same itinerary may occupy several slots.
type BestRoutes struct {
	Cheapest       *Itinerary `json:"cheapest"`
	Fastest        *Itinerary `json:"fastest"`
	LeastTransfers *Itinerary `json:"least_transfers"`
}

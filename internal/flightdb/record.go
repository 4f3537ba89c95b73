// Package flightdb loads flight records from the merged ticket summary,
// either straight from the SQLite travel database or from its CSV export,
// and normalizes them into models.Flight values.
package flightdb

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/starford/skyroute/internal/models"
)

// Record is one raw row of the flight ticket summary: a scheduled flight
// joined with its airports and one fare class.
type Record struct {
	FlightID             string
	FlightNo             string
	ScheduledDeparture   string
	ScheduledArrival     string
	DepartureAirport     string
	DepartureCity        string
	DepartureCoordinates string
	ArrivalAirport       string
	ArrivalCity          string
	ArrivalCoordinates   string
	FareConditions       string
	Amount               *float64
	TicketCount          int
}

// Dataset is the cleaned output of the ingestion layer.
type Dataset struct {
	Flights  []models.Flight
	Airports map[string]models.Airport
	// Cities maps an English city name to its sorted airport codes.
	Cities map[string][]string
	// Dropped counts rows rejected as malformed.
	Dropped int
}

type routeKey struct {
	from, to string
}

// Normalize turns raw rows into a Dataset. Naive timestamps are read in
// loc. Rows with missing airports, unparsable times or an arrival before
// departure are dropped. Missing fares are imputed with the mean fare of
// the same route, else the mean of all known fares. Several fare classes
// of one flight collapse into a single flight carrying the lowest fare.
func Normalize(rows []Record, loc *time.Location, logger *slog.Logger) *Dataset {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	ds := &Dataset{
		Airports: make(map[string]models.Airport),
		Cities:   make(map[string][]string),
	}

	type parsed struct {
		flight models.Flight
		fare   *float64
	}
	var (
		kept      []parsed
		routeSum  = make(map[routeKey]float64)
		routeN    = make(map[routeKey]int)
		globalSum float64
		globalN   int
	)

	for _, r := range rows {
		from := strings.TrimSpace(r.DepartureAirport)
		to := strings.TrimSpace(r.ArrivalAirport)
		if r.FlightID == "" || from == "" || to == "" {
			ds.Dropped++
			continue
		}
		dep, err := ParseTimestamp(r.ScheduledDeparture, loc)
		if err != nil {
			ds.Dropped++
			logger.Debug("flightdb: bad departure", slog.String("flight_id", r.FlightID), slog.String("error", err.Error()))
			continue
		}
		arr, err := ParseTimestamp(r.ScheduledArrival, loc)
		if err != nil || arr.Before(dep) {
			ds.Dropped++
			logger.Debug("flightdb: bad arrival", slog.String("flight_id", r.FlightID))
			continue
		}

		ds.addAirport(from, r.DepartureCity, r.DepartureCoordinates)
		ds.addAirport(to, r.ArrivalCity, r.ArrivalCoordinates)

		if r.Amount != nil {
			k := routeKey{from, to}
			routeSum[k] += *r.Amount
			routeN[k]++
			globalSum += *r.Amount
			globalN++
		}

		kept = append(kept, parsed{
			flight: models.Flight{
				ID:          r.FlightID,
				Number:      r.FlightNo,
				Origin:      from,
				Destination: to,
				Departure:   dep,
				Arrival:     arr,
			},
			fare: r.Amount,
		})
	}

	var globalMean float64
	if globalN > 0 {
		globalMean = globalSum / float64(globalN)
	}

	index := make(map[string]int, len(kept))
	for _, p := range kept {
		f := p.flight
		switch {
		case p.fare != nil:
			f.Fare = *p.fare
		case routeN[routeKey{f.Origin, f.Destination}] > 0:
			k := routeKey{f.Origin, f.Destination}
			f.Fare = routeSum[k] / float64(routeN[k])
		default:
			f.Fare = globalMean
		}

		if i, ok := index[f.ID]; ok {
			if f.Fare < ds.Flights[i].Fare {
				ds.Flights[i].Fare = f.Fare
			}
			continue
		}
		index[f.ID] = len(ds.Flights)
		ds.Flights = append(ds.Flights, f)
	}

	for city, codes := range ds.Cities {
		sort.Strings(codes)
		ds.Cities[city] = codes
	}

	return ds
}

func (ds *Dataset) addAirport(code, rawCity, rawCoords string) {
	if _, ok := ds.Airports[code]; ok {
		return
	}
	a := models.Airport{Code: code}
	if city, ok := ParseCityName(rawCity); ok {
		a.City = city
		ds.Cities[city] = append(ds.Cities[city], code)
	}
	if lon, lat, ok := ParseCoordinates(rawCoords); ok {
		a.Longitude, a.Latitude = &lon, &lat
	}
	ds.Airports[code] = a
}

// CityNames returns the known cities in alphabetical order.
func (ds *Dataset) CityNames() []string {
	out := make([]string, 0, len(ds.Cities))
	for c := range ds.Cities {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

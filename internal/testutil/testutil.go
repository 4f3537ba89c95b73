// Package testutil provides shared fixtures: a small flight summary that
// can be written as CSV or SQLite and loaded as a Dataset.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/skyroute/internal/flightdb"
)

// MSK is the fixed zone the fixture timestamps are written in.
var MSK = time.FixedZone("MSK", 3*3600)

// Day is the fixture's flight date at midnight MSK.
var Day = time.Date(2017, 8, 15, 0, 0, 0, 0, MSK)

var cityNames = map[string]string{
	"SVO": `{"en": "Moscow", "ru": "Москва"}`,
	"VKO": `{"en": "Moscow", "ru": "Москва"}`,
	"DME": `{"en": "Moscow", "ru": "Москва"}`,
	"LED": `{"en": "St. Petersburg", "ru": "Санкт-Петербург"}`,
	"KZN": `{"en": "Kazan", "ru": "Казань"}`,
	"AER": `{"en": "Sochi", "ru": "Сочи"}`,
}

func amount(v float64) *float64 { return &v }

func rec(id, no, from, to, dep, arr string, fare float64) flightdb.Record {
	return flightdb.Record{
		FlightID:           id,
		FlightNo:           no,
		ScheduledDeparture: "2017-08-15 " + dep + ":00+03",
		ScheduledArrival:   "2017-08-15 " + arr + ":00+03",
		DepartureAirport:   from,
		DepartureCity:      cityNames[from],
		ArrivalAirport:     to,
		ArrivalCity:        cityNames[to],
		FareConditions:     "Economy",
		Amount:             amount(fare),
		TicketCount:        1,
	}
}

// Records returns the fixture rows. Searching Moscow -> Kazan from
// midnight with a one hour layover yields four candidate paths, three of
// them feasible:
//
//	DME-AER-KZN  140  4h00  1 transfer   (cheapest)
//	SVO-LED-KZN  300  2h00  1 transfer
//	SVO-AER-KZN  infeasible, 30 minute layover
//	VKO-KZN      200  1h30  0 transfers  (fastest, fewest transfers)
func Records() []flightdb.Record {
	return []flightdb.Record{
		rec("1", "PG0101", "SVO", "LED", "10:00", "11:00", 100),
		rec("2", "PG0202", "VKO", "KZN", "11:30", "13:00", 200),
		rec("3", "PG0303", "LED", "KZN", "12:00", "13:00", 200),
		rec("4", "PG0404", "DME", "AER", "09:00", "11:00", 80),
		rec("5", "PG0505", "AER", "KZN", "12:30", "14:30", 60),
		rec("6", "PG0606", "SVO", "AER", "10:00", "12:00", 500),
		rec("7", "PG0707", "KZN", "SVO", "18:00", "19:30", 120),
	}
}

// Dataset returns the normalized fixture.
func Dataset() *flightdb.Dataset {
	return flightdb.Normalize(Records(), MSK, nil)
}

// WriteCSV writes rows as a summary CSV under dir and returns its path.
func WriteCSV(t *testing.T, dir string, rows []flightdb.Record) string {
	t.Helper()
	path := filepath.Join(dir, "flight_ticket_summary.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := flightdb.WriteCSV(f, rows); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestCSV writes the fixture to a temporary CSV file.
func TestCSV(t *testing.T) string {
	t.Helper()
	return WriteCSV(t, t.TempDir(), Records())
}

// TestSQLite writes the fixture flights into a temporary travel database.
func TestSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "travel.sqlite")
	db, err := flightdb.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var (
		airports []flightdb.AirportRow
		flights  []flightdb.FlightRow
		tickets  []flightdb.TicketFlightRow
	)
	for code, city := range cityNames {
		airports = append(airports, flightdb.AirportRow{Code: code, City: city})
	}
	for i, r := range Records() {
		id := int64(i + 1)
		flights = append(flights, flightdb.FlightRow{
			ID:                 id,
			Number:             r.FlightNo,
			ScheduledDeparture: r.ScheduledDeparture,
			ScheduledArrival:   r.ScheduledArrival,
			DepartureAirport:   r.DepartureAirport,
			ArrivalAirport:     r.ArrivalAirport,
		})
		tickets = append(tickets, flightdb.TicketFlightRow{
			TicketNo:       r.FlightNo + "-T",
			FlightID:       id,
			FareConditions: r.FareConditions,
			Amount:         *r.Amount,
		})
	}
	if err := db.Insert(context.Background(), airports, flights, tickets); err != nil {
		t.Fatal(err)
	}
	return path
}

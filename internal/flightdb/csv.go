package flightdb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Columns is the header of the flight ticket summary export.
var Columns = []string{
	"flight_id",
	"flight_no",
	"scheduled_departure",
	"scheduled_arrival",
	"departure_airport",
	"departure_city",
	"departure_coordinates",
	"arrival_airport",
	"arrival_city",
	"arrival_coordinates",
	"fare_conditions",
	"amount",
	"ticket_count",
}

var requiredColumns = []string{
	"flight_id",
	"scheduled_departure",
	"scheduled_arrival",
	"departure_airport",
	"arrival_airport",
}

// ReadCSV reads summary rows keyed by header name. Extra columns are
// ignored; the columns needed for routing must be present.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("flightdb: csv: missing header")
		}
		return nil, fmt.Errorf("flightdb: csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("flightdb: csv: missing column %q", name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flightdb: csv: %w", err)
		}
		rec := Record{
			FlightID:             field(row, "flight_id"),
			FlightNo:             field(row, "flight_no"),
			ScheduledDeparture:   field(row, "scheduled_departure"),
			ScheduledArrival:     field(row, "scheduled_arrival"),
			DepartureAirport:     field(row, "departure_airport"),
			DepartureCity:        field(row, "departure_city"),
			DepartureCoordinates: field(row, "departure_coordinates"),
			ArrivalAirport:       field(row, "arrival_airport"),
			ArrivalCity:          field(row, "arrival_city"),
			ArrivalCoordinates:   field(row, "arrival_coordinates"),
			FareConditions:       field(row, "fare_conditions"),
		}
		if v := field(row, "amount"); v != "" {
			if amount, err := strconv.ParseFloat(v, 64); err == nil {
				rec.Amount = &amount
			}
		}
		if v := field(row, "ticket_count"); v != "" {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				rec.TicketCount = int(n)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// WriteCSV writes rows with the Columns header.
func WriteCSV(w io.Writer, rows []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("flightdb: csv header: %w", err)
	}
	for _, r := range rows {
		amount := ""
		if r.Amount != nil {
			amount = strconv.FormatFloat(*r.Amount, 'f', -1, 64)
		}
		if err := cw.Write([]string{
			r.FlightID,
			r.FlightNo,
			r.ScheduledDeparture,
			r.ScheduledArrival,
			r.DepartureAirport,
			r.DepartureCity,
			r.DepartureCoordinates,
			r.ArrivalAirport,
			r.ArrivalCity,
			r.ArrivalCoordinates,
			r.FareConditions,
			amount,
			strconv.Itoa(r.TicketCount),
		}); err != nil {
			return fmt.Errorf("flightdb: csv row %s: %w", r.FlightID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

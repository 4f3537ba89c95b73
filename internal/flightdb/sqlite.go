package flightdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// schemaSQL is the subset of the travel database the summary query reads.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS airports_data (
	airport_code TEXT PRIMARY KEY,
	airport_name TEXT NOT NULL DEFAULT '',
	city         TEXT NOT NULL DEFAULT '',
	coordinates  TEXT NOT NULL DEFAULT '',
	timezone     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS flights (
	flight_id           INTEGER PRIMARY KEY,
	flight_no           TEXT NOT NULL,
	scheduled_departure TEXT NOT NULL,
	scheduled_arrival   TEXT NOT NULL,
	departure_airport   TEXT NOT NULL,
	arrival_airport     TEXT NOT NULL,
	status              TEXT NOT NULL DEFAULT 'Scheduled'
);

CREATE TABLE IF NOT EXISTS ticket_flights (
	ticket_no       TEXT NOT NULL,
	flight_id       INTEGER NOT NULL,
	fare_conditions TEXT NOT NULL,
	amount          NUMERIC NOT NULL,
	PRIMARY KEY (ticket_no, flight_id)
);

CREATE INDEX IF NOT EXISTS idx_ticket_flights_flight ON ticket_flights(flight_id);
`

// summarySQL joins every flight with its airports and, per fare class,
// the fare amount and number of tickets sold.
const summarySQL = `
WITH schedule AS (
	SELECT
		f.flight_id,
		f.flight_no,
		f.scheduled_departure,
		f.scheduled_arrival,
		f.departure_airport,
		dep.city        AS departure_city,
		dep.coordinates AS departure_coordinates,
		f.arrival_airport,
		arr.city        AS arrival_city,
		arr.coordinates AS arrival_coordinates
	FROM flights AS f
	LEFT JOIN airports_data AS dep ON f.departure_airport = dep.airport_code
	LEFT JOIN airports_data AS arr ON f.arrival_airport = arr.airport_code
),
fares AS (
	SELECT flight_id, fare_conditions, amount, COUNT(*) AS ticket_count
	FROM ticket_flights
	GROUP BY flight_id, fare_conditions, amount
)
SELECT
	s.flight_id,
	s.flight_no,
	s.scheduled_departure,
	s.scheduled_arrival,
	s.departure_airport,
	s.departure_city,
	s.departure_coordinates,
	s.arrival_airport,
	s.arrival_city,
	s.arrival_coordinates,
	fa.fare_conditions,
	fa.amount,
	fa.ticket_count
FROM schedule AS s
LEFT JOIN fares AS fa ON s.flight_id = fa.flight_id
ORDER BY s.flight_id, fa.fare_conditions
`

// DB wraps a travel database connection.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite travel database and makes sure the
// tables read by the summary query exist.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("flightdb: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("flightdb: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("flightdb: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Summary runs the flight ticket summary query.
func (db *DB) Summary(ctx context.Context) ([]Record, error) {
	rows, err := db.conn.QueryContext(ctx, summarySQL)
	if err != nil {
		return nil, fmt.Errorf("flightdb: summary: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r                  Record
			depCity, depCoords sql.NullString
			arrCity, arrCoords sql.NullString
			fareConditions     sql.NullString
			amount             sql.NullFloat64
			ticketCount        sql.NullInt64
		)
		if err := rows.Scan(
			&r.FlightID, &r.FlightNo,
			&r.ScheduledDeparture, &r.ScheduledArrival,
			&r.DepartureAirport, &depCity, &depCoords,
			&r.ArrivalAirport, &arrCity, &arrCoords,
			&fareConditions, &amount, &ticketCount,
		); err != nil {
			return nil, fmt.Errorf("flightdb: scan summary: %w", err)
		}
		r.DepartureCity = depCity.String
		r.DepartureCoordinates = depCoords.String
		r.ArrivalCity = arrCity.String
		r.ArrivalCoordinates = arrCoords.String
		r.FareConditions = fareConditions.String
		if amount.Valid {
			v := amount.Float64
			r.Amount = &v
		}
		r.TicketCount = int(ticketCount.Int64)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AirportRow is a row of airports_data.
type AirportRow struct {
	Code        string
	Name        string
	City        string
	Coordinates string
	Timezone    string
}

// FlightRow is a row of flights.
type FlightRow struct {
	ID                 int64
	Number             string
	ScheduledDeparture string
	ScheduledArrival   string
	DepartureAirport   string
	ArrivalAirport     string
}

// TicketFlightRow is a row of ticket_flights.
type TicketFlightRow struct {
	TicketNo       string
	FlightID       int64
	FareConditions string
	Amount         float64
}

// Insert writes airports, flights and sold tickets in one transaction.
func (db *DB) Insert(ctx context.Context, airports []AirportRow, flights []FlightRow, tickets []TicketFlightRow) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("flightdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, a := range airports {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO airports_data (airport_code, airport_name, city, coordinates, timezone)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(airport_code) DO UPDATE SET
				airport_name = excluded.airport_name,
				city         = excluded.city,
				coordinates  = excluded.coordinates,
				timezone     = excluded.timezone
		`, a.Code, a.Name, a.City, a.Coordinates, a.Timezone); err != nil {
			return fmt.Errorf("flightdb: insert airport %s: %w", a.Code, err)
		}
	}
	for _, f := range flights {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO flights
				(flight_id, flight_no, scheduled_departure, scheduled_arrival, departure_airport, arrival_airport)
			VALUES (?, ?, ?, ?, ?, ?)
		`, f.ID, f.Number, f.ScheduledDeparture, f.ScheduledArrival, f.DepartureAirport, f.ArrivalAirport); err != nil {
			return fmt.Errorf("flightdb: insert flight %d: %w", f.ID, err)
		}
	}
	for _, t := range tickets {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO ticket_flights (ticket_no, flight_id, fare_conditions, amount)
			VALUES (?, ?, ?, ?)
		`, t.TicketNo, t.FlightID, t.FareConditions, t.Amount); err != nil {
			return fmt.Errorf("flightdb: insert ticket %s: %w", t.TicketNo, err)
		}
	}

	return tx.Commit()
}

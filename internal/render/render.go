// Package render formats search results for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/starford/skyroute/internal/catalog"
	"github.com/starford/skyroute/internal/models"
	"github.com/starford/skyroute/internal/planner"
)

const timeLayout = "2006-01-02 15:04 MST"

// Result writes the best routes of res, or a hint when there are none.
func Result(w io.Writer, res *planner.Result) error {
	p := &printer{w: w}
	p.printf("Routes from %s to %s departing after %s\n",
		res.From, res.To, res.Departure.Format(timeLayout))

	switch res.Outcome {
	case planner.OutcomeEmptyGraph:
		p.printf("\nNo flights depart after the requested time.\n")
		return p.err
	case planner.OutcomeNoFeasiblePath:
		p.printf("\nNo routes found. Try different cities or departure time.\n")
		return p.err
	}

	p.route("cheapest", res.Best.Cheapest)
	p.route("fastest", res.Best.Fastest)
	p.route("least transfers", res.Best.LeastTransfers)
	return p.err
}

// Cities writes one city per line with its airport codes.
func Cities(w io.Writer, cities []catalog.City) error {
	p := &printer{w: w}
	for _, c := range cities {
		p.printf("%s (%s)\n", c.Name, strings.Join(c.Airports, ", "))
	}
	return p.err
}

// Duration formats d as hours and minutes, e.g. "2h05m".
func Duration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%dh%02dm", h, m)
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) route(title string, it *models.Itinerary) {
	if it == nil {
		return
	}
	p.printf("\n%s ROUTE: %s\n", strings.ToUpper(title), strings.Join(it.Path, " -> "))
	p.printf("  Total price: $%.2f\n", it.TotalPrice)
	p.printf("  Total duration: %s\n", Duration(it.TotalDuration))
	p.printf("  Transfers: %d\n", it.Transfers)
	p.printf("\n  Flight segments:\n")
	for i, s := range it.Segments {
		p.printf("  %d. %s -> %s (%s)\n", i+1, s.From, s.To, s.FlightNo)
		p.printf("     Departure: %s\n", s.Departure.Format(timeLayout))
		p.printf("     Arrival: %s\n", s.Arrival.Format(timeLayout))
		p.printf("     Price: $%.2f\n", s.Price)
	}
}

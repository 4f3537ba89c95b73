package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/skyroute/internal/apperr"
	"github.com/starford/skyroute/internal/flightdb"
)

// ParseDeparture builds the search cutoff from a date ("YYYY-MM-DD" or
// "today") and a clock time ("HH:MM", "HH:MM:SS" or "now"). An empty date
// means today. An empty clock means now for today and midnight for any
// other date. A full timestamp in date wins over clock.
func ParseDeparture(date, clock string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	if len(date) > len("2006-01-02") {
		t, err := flightdb.ParseTimestamp(date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: departure: %v", apperr.ErrInvalidQuery, err)
		}
		return t, nil
	}

	today := date == "" || strings.EqualFold(date, "today")
	if today {
		date = now.Format("2006-01-02")
	}
	switch {
	case strings.EqualFold(clock, "now"), clock == "" && today:
		clock = now.Format("15:04:05")
	case clock == "":
		clock = "00:00"
	}
	t, err := flightdb.ParseTimestamp(date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: departure %q %q", apperr.ErrInvalidQuery, date, clock)
	}
	return t, nil
}

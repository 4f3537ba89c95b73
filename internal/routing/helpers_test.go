package routing

import (
	"testing"
	"time"

	"github.com/starford/skyroute/internal/models"
)

var day = time.Date(2017, 8, 15, 0, 0, 0, 0, time.FixedZone("MSK", 3*3600))

// at returns day at hh:mm.
func at(hh, mm int) time.Time {
	return day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

func flight(id, from, to string, dep, arr time.Time, fare float64) models.Flight {
	return models.Flight{
		ID:          id,
		Number:      "PG" + id,
		Origin:      from,
		Destination: to,
		Departure:   dep,
		Arrival:     arr,
		Fare:        fare,
	}
}

func samePaths(t *testing.T, got []Path, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

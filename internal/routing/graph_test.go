package routing

import (
	"testing"

	"github.com/starford/skyroute/internal/models"
)

func TestBuildGraph_FiltersByCutoff(t *testing.T) {
	records := []models.Flight{
		flight("1", "SVO", "LED", at(6, 0), at(7, 30), 100),
		flight("2", "SVO", "LED", at(10, 0), at(11, 30), 120),
		flight("3", "LED", "KZN", at(8, 0), at(10, 0), 90),
	}
	g := BuildGraph(records, at(8, 0))

	if g.EdgeCount() != 2 {
		t.Fatalf("edges = %d, want 2", g.EdgeCount())
	}
	for _, f := range g.Departures("SVO") {
		if f.Departure.Before(g.Cutoff()) {
			t.Errorf("flight %s departs before cutoff", f.ID)
		}
	}
	if len(records) != 3 || records[0].ID != "1" {
		t.Error("input records were modified")
	}
}

func TestBuildGraph_ParallelEdgesKeepOrder(t *testing.T) {
	g := BuildGraph([]models.Flight{
		flight("20", "SVO", "LED", at(12, 0), at(13, 0), 200),
		flight("10", "SVO", "LED", at(9, 0), at(10, 0), 100),
		flight("30", "SVO", "KZN", at(9, 0), at(10, 30), 150),
	}, day)

	got := g.Flights("SVO", "LED")
	if len(got) != 2 {
		t.Fatalf("parallel flights = %d, want 2", len(got))
	}
	if got[0].ID != "20" || got[1].ID != "10" {
		t.Errorf("order = [%s %s], want [20 10]", got[0].ID, got[1].ID)
	}
	if n := len(g.Departures("SVO")); n != 3 {
		t.Errorf("departures = %d, want 3", n)
	}
}

func TestBuildGraph_NodesAreIdempotent(t *testing.T) {
	g := BuildGraph([]models.Flight{
		flight("1", "SVO", "LED", at(9, 0), at(10, 0), 1),
		flight("2", "LED", "SVO", at(11, 0), at(12, 0), 1),
		flight("3", "SVO", "LED", at(13, 0), at(14, 0), 1),
	}, day)

	airports := g.Airports()
	if len(airports) != 2 || airports[0] != "SVO" || airports[1] != "LED" {
		t.Errorf("airports = %v, want [SVO LED]", airports)
	}
}

func TestBuildGraph_DuplicateIDReplaces(t *testing.T) {
	g := BuildGraph([]models.Flight{
		flight("1", "SVO", "LED", at(9, 0), at(10, 0), 100),
		flight("2", "SVO", "LED", at(11, 0), at(12, 0), 300),
		flight("1", "SVO", "LED", at(9, 0), at(10, 0), 250),
	}, day)

	if g.EdgeCount() != 2 {
		t.Fatalf("edges = %d, want 2", g.EdgeCount())
	}
	got := g.Flights("SVO", "LED")
	if len(got) != 2 || got[0].ID != "1" || got[0].Fare != 250 {
		t.Errorf("edges = %+v, want flight 1 first with fare 250", got)
	}
}

func TestBuildGraph_DuplicateIDOnOtherLeg(t *testing.T) {
	g := BuildGraph([]models.Flight{
		flight("1", "SVO", "LED", at(9, 0), at(10, 0), 100),
		flight("1", "SVO", "KZN", at(9, 0), at(10, 30), 100),
	}, day)

	if g.EdgeCount() != 1 {
		t.Fatalf("edges = %d, want 1", g.EdgeCount())
	}
	if len(g.Flights("SVO", "LED")) != 0 {
		t.Error("stale SVO-LED edge kept")
	}
	if len(g.Flights("SVO", "KZN")) != 1 {
		t.Error("SVO-KZN edge missing")
	}
}

func TestBuildGraph_Empty(t *testing.T) {
	g := BuildGraph([]models.Flight{
		flight("1", "SVO", "LED", at(9, 0), at(10, 0), 100),
	}, at(12, 0))

	if g.EdgeCount() != 0 {
		t.Errorf("edges = %d, want 0", g.EdgeCount())
	}
	if g.HasAirport("SVO") {
		t.Error("filtered flight should not add nodes")
	}
}

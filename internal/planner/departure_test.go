package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/skyroute/internal/apperr"
)

func TestParseDeparture(t *testing.T) {
	msk := time.FixedZone("MSK", 3*3600)
	now := time.Date(2017, 8, 15, 9, 41, 7, 0, time.UTC)

	tests := []struct {
		name        string
		date, clock string
		want        time.Time
	}{
		{"defaults to now", "", "", time.Date(2017, 8, 15, 12, 41, 7, 0, msk)},
		{"today at clock", "today", "18:30", time.Date(2017, 8, 15, 18, 30, 0, 0, msk)},
		{"date at midnight", "2017-08-20", "", time.Date(2017, 8, 20, 0, 0, 0, 0, msk)},
		{"date and clock", "2017-08-20", "07:05", time.Date(2017, 8, 20, 7, 5, 0, 0, msk)},
		{"date now", "2017-08-20", "now", time.Date(2017, 8, 20, 12, 41, 7, 0, msk)},
		{"full timestamp", "2017-08-20T07:05:00Z", "23:00", time.Date(2017, 8, 20, 7, 5, 0, 0, time.UTC)},
		{"naive timestamp", "2017-08-20 07:05", "", time.Date(2017, 8, 20, 7, 5, 0, 0, msk)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDeparture(tt.date, tt.clock, now, msk)
			if err != nil {
				t.Fatalf("ParseDeparture: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDepartureInvalid(t *testing.T) {
	for _, in := range [][2]string{{"15.08.2017", ""}, {"2017-08-15", "25:99"}, {"next tuesday at noon", ""}} {
		_, err := ParseDeparture(in[0], in[1], time.Now(), time.UTC)
		if !errors.Is(err, apperr.ErrInvalidQuery) {
			t.Errorf("ParseDeparture(%q, %q) err = %v, want %v", in[0], in[1], err, apperr.ErrInvalidQuery)
		}
	}
}

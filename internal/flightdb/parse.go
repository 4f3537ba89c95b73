package flightdb

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseCityName extracts the English name from a localized city value
// such as {"en": "Moscow", "ru": "Москва"}. Single-quoted keys are
// accepted too. Values that are not a mapping, or lack "en", yield false.
func ParseCityName(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return "", false
	}
	var names map[string]any
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		if err := json.Unmarshal([]byte(strings.ReplaceAll(raw, "'", `"`)), &names); err != nil {
			return "", false
		}
	}
	en, ok := names["en"].(string)
	if !ok || en == "" {
		return "", false
	}
	return en, true
}

// ParseCoordinates reads "(lon, lat)" or "lon, lat".
func ParseCoordinates(raw string) (lon, lat float64, ok bool) {
	raw = strings.Trim(strings.TrimSpace(raw), "()")
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lon, lat, true
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z07",
	"2006-01-02 15:04Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses a database or CSV timestamp. Values carrying an
// offset keep it; naive values are interpreted in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("flightdb: empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("flightdb: unrecognised timestamp %q", raw)
}

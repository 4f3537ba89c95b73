package mcpserver

// SearchGuide describes how find_routes interprets its inputs and what
// it returns.
const SearchGuide = `# Skyroute Search Guide

## Inputs

- **from**, **to**: city names as listed by ` + "`list_cities`" + `. Matching ignores
  case and extra spaces. A city covers all of its airports (Moscow is SVO, DME and VKO).
- **date**: ` + "`YYYY-MM-DD`" + `, ` + "`today`" + `, or a full timestamp such as
  ` + "`2017-08-15T10:00:00+03:00`" + `. Defaults to today.
- **time**: ` + "`HH:MM`" + ` or ` + "`now`" + `. Defaults to now for today and to midnight for other dates.
  Times without an offset are read in the server's configured timezone.
- **max_hops**: maximum number of flights in a route (1 to 8). Defaults to the server setting, usually 3.
- **min_layover_minutes**: minimum time between landing and the next departure. Defaults to 60.

## How routes are found

1. Only flights departing at or after the requested time are considered.
2. Every flight in a route departs strictly after the previous one lands.
3. Between two flights there must be at least the minimum layover. When several
   flights serve the same leg, the first listed one that connects is used.
4. Total duration counts time in the air only; layovers are not included.

## Result

- **outcome**: ` + "`found`" + `, ` + "`empty_graph`" + ` (no flights after the requested time) or
  ` + "`no_feasible_path`" + ` (no route connects within the limits).
- **candidates**: number of airport paths explored before layover checks.
- **best.cheapest**, **best.fastest**, **best.least_transfers**: the winning routes. One
  route may win several categories; ties go to the route found first.
- Each route lists its segments with flight number, times and price.
`

// Package catalog keeps the loaded flight dataset in memory, resolves
// city names to airports and caches routing graphs per cutoff instant.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/starford/skyroute/internal/apperr"
	"github.com/starford/skyroute/internal/flightdb"
	"github.com/starford/skyroute/internal/models"
	"github.com/starford/skyroute/internal/routing"
)

// City is a city name with its airport codes.
type City struct {
	Name     string   `json:"name"`
	Airports []string `json:"airports"`
}

// graphCache holds routing graphs keyed by snapshot version and cutoff.
type graphCache = ristretto.Cache[string, *routing.Graph]

// newGraphCache bounds the cache to size graphs. Admission is best-effort:
// ristretto may reject a new graph in favour of more frequently used ones.
func newGraphCache(size int) (*graphCache, error) {
	return ristretto.NewCache(&ristretto.Config[string, *routing.Graph]{
		NumCounters: int64(size) * 10,
		MaxCost:     int64(size),
		BufferItems: 64,

		IgnoreInternalCost: true,
	})
}

// Snapshot is an immutable view of one loaded dataset.
type Snapshot struct {
	Version  uint64
	LoadedAt time.Time
	Flights  []models.Flight
	Airports map[string]models.Airport

	cities map[string][]string
	names  []string
	lookup map[string]string
	// graphs is owned by the Catalog and outlives the snapshot, so a
	// search still holding a replaced snapshot can keep using it.
	graphs *graphCache
}

func newSnapshot(ds *flightdb.Dataset, version uint64, graphs *graphCache) *Snapshot {
	s := &Snapshot{
		Version:  version,
		LoadedAt: time.Now(),
		Flights:  ds.Flights,
		Airports: ds.Airports,
		cities:   ds.Cities,
		names:    ds.CityNames(),
		lookup:   make(map[string]string, len(ds.Cities)),
		graphs:   graphs,
	}
	for name := range ds.Cities {
		s.lookup[Fold(name)] = name
	}
	return s
}

// Fold normalizes a city name for case- and space-insensitive matching.
func Fold(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// CityName returns the canonical spelling of name, matched case-insensitively.
func (s *Snapshot) CityName(name string) (string, bool) {
	canonical, ok := s.lookup[Fold(name)]
	return canonical, ok
}

// AirportsOf implements routing.CityResolver on canonical or loosely
// spelled city names.
func (s *Snapshot) AirportsOf(city string) []string {
	if canonical, ok := s.CityName(city); ok {
		return s.cities[canonical]
	}
	return nil
}

// Cities lists every city in alphabetical order.
func (s *Snapshot) Cities() []City {
	out := make([]City, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, City{Name: name, Airports: append([]string(nil), s.cities[name]...)})
	}
	return out
}

// Graph returns the routing graph for cutoff, building it on a cache miss.
// A built graph is offered to the cache but may not be admitted.
func (s *Snapshot) Graph(cutoff time.Time) (g *routing.Graph, cached bool) {
	key := strconv.FormatUint(s.Version, 10) + "@" + strconv.FormatInt(cutoff.UnixNano(), 10)
	if s.graphs != nil {
		if g, ok := s.graphs.Get(key); ok {
			return g, true
		}
	}
	g = routing.BuildGraph(s.Flights, cutoff)
	if s.graphs != nil {
		s.graphs.Set(key, g, 1)
	}
	return g, false
}

// resolver adapts a Snapshot to routing.CityResolver.
type resolver struct{ s *Snapshot }

func (r resolver) Airports(city string) []string { return r.s.AirportsOf(city) }

// Resolver returns the snapshot as a routing.CityResolver.
func (s *Snapshot) Resolver() routing.CityResolver {
	return resolver{s}
}

// Source loads a dataset. flightdb.Load matches it once bound to a path.
type Source func(ctx context.Context) (*flightdb.Dataset, error)

// FileSource reads the dataset at path with flightdb.Load.
func FileSource(path, format string, loc *time.Location, logger *slog.Logger) Source {
	return func(ctx context.Context) (*flightdb.Dataset, error) {
		return flightdb.Load(ctx, path, format, loc, logger)
	}
}

// ReloadFunc is called after every successful reload.
type ReloadFunc func(s *Snapshot)

// Catalog holds the current Snapshot and swaps it atomically on reload.
type Catalog struct {
	source   Source
	logger   *slog.Logger
	onReload ReloadFunc
	graphs   *graphCache

	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// New creates an empty catalog. Call Reload to load the first snapshot.
// cacheSize bounds the number of cached graphs; zero disables caching.
func New(source Source, cacheSize int, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{source: source, logger: logger}
	if cacheSize > 0 {
		graphs, err := newGraphCache(cacheSize)
		if err != nil {
			logger.Warn("catalog: graph cache disabled", slog.String("error", err.Error()))
		} else {
			c.graphs = graphs
		}
	}
	return c
}

// NewStatic creates a catalog already holding ds. Useful for tests and
// one-shot CLI runs.
func NewStatic(ds *flightdb.Dataset, cacheSize int) (*Catalog, error) {
	c := New(func(context.Context) (*flightdb.Dataset, error) { return ds, nil }, cacheSize, nil)
	if err := c.Reload(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// OnReload registers fn to run after each successful reload.
func (c *Catalog) OnReload(fn ReloadFunc) {
	c.onReload = fn
}

// Snapshot returns the current snapshot or ErrDatasetNotLoaded.
func (c *Catalog) Snapshot() (*Snapshot, error) {
	s := c.current.Load()
	if s == nil {
		return nil, apperr.ErrDatasetNotLoaded
	}
	return s, nil
}

// Ready reports whether a dataset has been loaded.
func (c *Catalog) Ready() bool {
	return c.current.Load() != nil
}

// Reload loads the source and replaces the current snapshot. On error the
// previous snapshot stays in place.
func (c *Catalog) Reload(ctx context.Context) error {
	ds, err := c.source(ctx)
	if err != nil {
		return fmt.Errorf("catalog: reload: %w", err)
	}
	s := newSnapshot(ds, c.version.Add(1), c.graphs)
	c.current.Store(s)

	c.logger.Info("catalog: reloaded",
		slog.Uint64("version", s.Version),
		slog.Int("flights", len(s.Flights)),
		slog.Int("cities", len(s.cities)))
	if c.onReload != nil {
		c.onReload(s)
	}
	return nil
}

// Close drops the current snapshot and releases the graph cache. It must
// not run while searches are still in flight.
func (c *Catalog) Close() {
	c.current.Store(nil)
	if c.graphs != nil {
		c.graphs.Close()
	}
}

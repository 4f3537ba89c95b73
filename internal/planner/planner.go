// Package planner runs route searches end to end: it validates a query,
// builds (or reuses) the routing graph for the cutoff, enumerates airport
// paths, aggregates them and picks the best routes.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/skyroute/internal/apperr"
	"github.com/starford/skyroute/internal/catalog"
	"github.com/starford/skyroute/internal/metrics"
	"github.com/starford/skyroute/internal/models"
	"github.com/starford/skyroute/internal/routing"
)

// MaxHopsLimit caps the hop ceiling a caller may request.
const MaxHopsLimit = 8

// Outcome classifies a search that completed without error.
type Outcome string

const (
	// OutcomeFound means at least one feasible itinerary exists.
	OutcomeFound Outcome = "found"
	// OutcomeEmptyGraph means no flight departs at or after the cutoff.
	OutcomeEmptyGraph Outcome = "empty_graph"
	// OutcomeNoFeasiblePath means no candidate path, or none satisfied the layover.
	OutcomeNoFeasiblePath Outcome = "no_feasible_path"
)

// Query is one route search request.
// Zero MaxHops and nil MinLayover fall back to the service defaults.
type Query struct {
	From       string
	To         string
	Departure  time.Time
	MaxHops    int
	MinLayover *time.Duration
}

// Validate checks the query shape. City existence is checked by Search.
func (q Query) Validate() error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.From, validation.Required),
		validation.Field(&q.To, validation.Required),
		validation.Field(&q.Departure, validation.Required),
		validation.Field(&q.MaxHops, validation.Min(0), validation.Max(MaxHopsLimit)),
		validation.Field(&q.MinLayover, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidQuery, err)
	}
	return nil
}

// Result is the outcome of a search.
type Result struct {
	SearchID    string             `json:"search_id"`
	From        string             `json:"from"`
	To          string             `json:"to"`
	Departure   time.Time          `json:"departure"`
	MaxHops     int                `json:"max_hops"`
	MinLayover  time.Duration      `json:"min_layover"`
	Outcome     Outcome            `json:"outcome"`
	Candidates  int                `json:"candidates"`
	Itineraries []models.Itinerary `json:"-"`
	Best        *models.BestRoutes `json:"best,omitempty"`
	Took        time.Duration      `json:"took"`
}

// Options are the service defaults and per-query budgets.
type Options struct {
	MaxHops       int
	MinLayover    time.Duration
	MaxExpansions int
	Timeout       time.Duration
	Workers       int
}

// Service runs searches against the current catalog snapshot.
type Service struct {
	cat      *catalog.Catalog
	opts     Options
	logger   *slog.Logger
	onSearch func(*Result)
}

// NewService creates a new route search service.
func NewService(cat *catalog.Catalog, opts Options, logger *slog.Logger) *Service {
	if opts.MaxHops <= 0 {
		opts.MaxHops = routing.DefaultMaxHops
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cat: cat, opts: opts, logger: logger}
}

// OnSearch registers fn to run after each successful search.
func (s *Service) OnSearch(fn func(*Result)) {
	s.onSearch = fn
}

// Cities lists the cities of the current dataset.
func (s *Service) Cities() ([]catalog.City, error) {
	snap, err := s.cat.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Cities(), nil
}

// Search finds the cheapest, fastest and least-transfer itineraries.
//
// Same-city and unknown-city queries fail before any graph work. An
// empty graph and an empty feasible set are reported through
// Result.Outcome, not as errors.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	res, err := s.search(ctx, q)
	took := time.Since(start)
	if err != nil {
		metrics.ObserveSearch("error", took, 0)
		return nil, err
	}
	res.Took = took
	metrics.ObserveSearch(string(res.Outcome), took, res.Candidates)

	s.logger.Info("planner: search done",
		slog.String("search_id", res.SearchID),
		slog.String("from", res.From),
		slog.String("to", res.To),
		slog.String("outcome", string(res.Outcome)),
		slog.Int("candidates", res.Candidates),
		slog.Int("feasible", len(res.Itineraries)),
		slog.Duration("took", took))

	if s.onSearch != nil {
		s.onSearch(res)
	}
	return res, nil
}

func (s *Service) search(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.cat.Snapshot()
	if err != nil {
		return nil, err
	}

	from, ok := snap.CityName(q.From)
	if !ok {
		if sameName(q.From, q.To) {
			return nil, apperr.ErrSameCity
		}
		return nil, &apperr.UnknownCityError{City: q.From}
	}
	to, ok := snap.CityName(q.To)
	if !ok {
		return nil, &apperr.UnknownCityError{City: q.To}
	}
	if from == to {
		return nil, apperr.ErrSameCity
	}

	res := &Result{
		SearchID:   uuid.NewString(),
		From:       from,
		To:         to,
		Departure:  q.Departure,
		MaxHops:    s.opts.MaxHops,
		MinLayover: s.opts.MinLayover,
	}
	if q.MaxHops > 0 {
		res.MaxHops = q.MaxHops
	}
	if q.MinLayover != nil {
		res.MinLayover = *q.MinLayover
	}

	g, hit := snap.Graph(q.Departure)
	metrics.ObserveGraphLookup(hit)
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		s.logger.Debug("planner: graph",
			slog.String("search_id", res.SearchID),
			slog.Time("cutoff", g.Cutoff()),
			slog.Int("airports", len(g.Airports())),
			slog.Int("flights", g.EdgeCount()),
			slog.Bool("cached", hit))
	}
	if g.EdgeCount() == 0 {
		res.Outcome = OutcomeEmptyGraph
		return res, nil
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	enum := routing.Enumerator{MaxExpansions: s.opts.MaxExpansions, Workers: s.opts.Workers}
	paths, err := enum.FindPaths(ctx, g, snap.Resolver(), from, to, res.MaxHops)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return nil, fmt.Errorf("planner: search cancelled: %w", err)
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %v", apperr.ErrSearchBudgetExceeded, err)
		}
		return nil, err
	}
	res.Candidates = len(paths)

	res.Itineraries = routing.EvaluatePaths(g, paths, res.MinLayover)
	best, ok := routing.SelectBest(res.Itineraries)
	if !ok {
		res.Outcome = OutcomeNoFeasiblePath
		return res, nil
	}
	res.Outcome = OutcomeFound
	res.Best = &best
	return res, nil
}

// sameName reports whether two raw city inputs name the same place,
// ignoring case and surrounding spaces.
func sameName(a, b string) bool {
	return catalog.Fold(a) == catalog.Fold(b)
}

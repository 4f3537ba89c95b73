package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/starford/skyroute/internal/apperr"
	"github.com/starford/skyroute/internal/planner"
)

// Handler holds API route handlers.
type Handler struct {
	svc *planner.Service
	loc *time.Location
	now func() time.Time
}

// NewHandler creates a new Handler. loc localizes departure times given
// without an offset.
func NewHandler(svc *planner.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, loc: loc, now: time.Now}
}

// ListCities handles GET /api/cities.
//
//	@Summary		List cities with their airports
//	@Tags			cities
//	@Produce		json
//	@Success		200	{object}	CitiesResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cities [get]
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.svc.Cities()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CitiesResponse{Cities: cities})
}

// FindRoutes handles GET /api/routes.
//
//	@Summary		Find the cheapest, fastest and least-transfer routes
//	@Tags			routes
//	@Produce		json
//	@Param			from		query		string	true	"Origin city"
//	@Param			to			query		string	true	"Destination city"
//	@Param			departure	query		string	false	"Earliest departure, YYYY-MM-DD[ HH:MM] or RFC 3339; defaults to now"
//	@Param			max_hops	query		int		false	"Maximum number of flights"
//	@Param			min_layover	query		string	false	"Minimum connection time, e.g. 45m"
//	@Success		200			{object}	RouteResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Failure		503			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/routes [get]
func (h *Handler) FindRoutes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := planner.Query{From: q.Get("from"), To: q.Get("to")}

	dep, err := planner.ParseDeparture(q.Get("departure"), "", h.now(), h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	query.Departure = dep

	if v := q.Get("max_hops"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("max_hops must be an integer"))
			return
		}
		query.MaxHops = n
	}
	if v := q.Get("min_layover"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("min_layover must be a duration such as 45m"))
			return
		}
		query.MinLayover = &d
	}

	res, err := h.svc.Search(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewRouteResponse(res))
}

// statusClientClosedRequest is the nginx status for a client that went away.
const statusClientClosedRequest = 499

// writeError maps service errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		slog.Debug("request cancelled", slog.String("path", r.URL.Path))
		w.WriteHeader(statusClientClosedRequest)
	case errors.Is(err, apperr.ErrUnknownCity):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrSameCity), errors.Is(err, apperr.ErrInvalidQuery):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrSearchBudgetExceeded):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrDatasetNotLoaded):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("dataset not loaded"))
	default:
		slog.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

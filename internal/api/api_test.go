package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/starford/skyroute/internal/catalog"
	"github.com/starford/skyroute/internal/planner"
	"github.com/starford/skyroute/internal/testutil"
)

// testEnv sets up a catalog over the fixture dataset and a router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) http.Handler {
	t.Helper()

	cat, err := catalog.NewStatic(testutil.Dataset(), 4)
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	t.Cleanup(cat.Close)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := planner.NewService(cat, planner.Options{MinLayover: time.Hour}, logger)
	return NewRouter(svc, testutil.MSK, authEnabled, token, sseHandler)
}

func routesURL(params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	return "/routes?" + v.Encode()
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListCities(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/cities")
	if w.Code != http.StatusOK {
		t.Fatalf("cities status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp CitiesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Cities) != 4 {
		t.Fatalf("cities = %d, want 4", len(resp.Cities))
	}
	moscow := resp.Cities[1]
	if moscow.Name != "Moscow" || len(moscow.Airports) != 3 {
		t.Errorf("cities[1] = %+v, want Moscow with 3 airports", moscow)
	}
}

func TestFindRoutes(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, routesURL(map[string]string{
		"from":      "Moscow",
		"to":        "kazan",
		"departure": "2017-08-15",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("routes status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Outcome != "found" {
		t.Fatalf("outcome = %q, want found", resp.Outcome)
	}
	if resp.To != "Kazan" {
		t.Errorf("to = %q, want Kazan", resp.To)
	}
	if resp.Candidates != 4 || resp.Feasible != 3 {
		t.Errorf("candidates/feasible = %d/%d, want 4/3", resp.Candidates, resp.Feasible)
	}
	if resp.SearchID == "" {
		t.Error("search_id is empty")
	}
	if got := resp.Best.Cheapest.TotalPrice; got != 140 {
		t.Errorf("cheapest price = %v, want 140", got)
	}
	if got := resp.Best.Fastest.DurationMinutes; got != 90 {
		t.Errorf("fastest duration = %d min, want 90", got)
	}
	if got := resp.Best.LeastTransfers.Transfers; got != 0 {
		t.Errorf("least transfers = %d, want 0", got)
	}
	if got := len(resp.Best.Cheapest.Segments); got != 2 {
		t.Errorf("cheapest segments = %d, want 2", got)
	}
}

func TestFindRoutes_Overrides(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, routesURL(map[string]string{
		"from":        "Moscow",
		"to":          "Kazan",
		"departure":   "2017-08-15 00:00",
		"max_hops":    "2",
		"min_layover": "0s",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("routes status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Feasible != 4 {
		t.Errorf("feasible = %d, want 4", resp.Feasible)
	}
	if resp.MaxHops != 2 || resp.MinLayover != "0s" {
		t.Errorf("max_hops/min_layover = %d/%s, want 2/0s", resp.MaxHops, resp.MinLayover)
	}
}

func TestFindRoutes_EmptyOutcomes(t *testing.T) {
	router := testEnv(t, "")

	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{"no flights after cutoff", map[string]string{"from": "Moscow", "to": "Kazan", "departure": "2017-08-16"}, "empty_graph"},
		{"no path", map[string]string{"from": "Kazan", "to": "St. Petersburg", "departure": "2017-08-15"}, "no_feasible_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, router, routesURL(tt.params))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			var resp RouteResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Outcome != tt.want {
				t.Errorf("outcome = %q, want %q", resp.Outcome, tt.want)
			}
			if resp.Best != nil {
				t.Errorf("best = %+v, want nil", resp.Best)
			}
		})
	}
}

func TestFindRoutes_Errors(t *testing.T) {
	router := testEnv(t, "")

	tests := []struct {
		name   string
		params map[string]string
		want   int
	}{
		{"unknown city", map[string]string{"from": "Atlantis", "to": "Kazan"}, http.StatusNotFound},
		{"same city", map[string]string{"from": "Moscow", "to": "moscow"}, http.StatusBadRequest},
		{"missing destination", map[string]string{"from": "Moscow"}, http.StatusBadRequest},
		{"bad departure", map[string]string{"from": "Moscow", "to": "Kazan", "departure": "tomorrow-ish"}, http.StatusBadRequest},
		{"bad max hops", map[string]string{"from": "Moscow", "to": "Kazan", "max_hops": "three"}, http.StatusBadRequest},
		{"max hops too large", map[string]string{"from": "Moscow", "to": "Kazan", "max_hops": "99"}, http.StatusBadRequest},
		{"bad layover", map[string]string{"from": "Moscow", "to": "Kazan", "min_layover": "an hour"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, router, routesURL(tt.params))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
			var body errResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("body = %s, want error message", w.Body.String())
			}
		})
	}
}

func TestFindRoutes_ClientGone(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	router := testEnv(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, routesURL(map[string]string{
		"from": "Moscow", "to": "Kazan", "departure": "2017-08-15",
	}), nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != statusClientClosedRequest {
		t.Errorf("status = %d, want %d", w.Code, statusClientClosedRequest)
	}
	if strings.Contains(logs.String(), "request failed") {
		t.Errorf("cancelled request logged as a failure: %s", logs.String())
	}
}

func TestNotLoaded(t *testing.T) {
	cat := catalog.New(nil, 0, nil)
	svc := planner.NewService(cat, planner.Options{}, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	router := NewRouter(svc, time.UTC, false, "", nil)

	for _, target := range []string{"/cities", "/routes?from=Moscow&to=Kazan"} {
		if w := get(t, router, target); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s = %d, want 503", target, w.Code)
		}
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/cities", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed cities = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	if w := get(t, router, "/cities"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/routes?from=Moscow&to=Kazan", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")

	if w := get(t, router, "/cities"); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret", blockingSSE)

	if w := get(t, router, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/kvwire/internal/testutil/testlog"
)

type fixedStats Stats

func (f fixedStats) Stats() Stats { return Stats(f) }

func TestHealthAndStatsRoutes(t *testing.T) {
	testlog.Start(t)
	a := Appear("kv-a", "127.0.0.1:0", nil, fixedStats{ActiveConnections: 2, TotalConnections: 5, Keys: 9})

	rr := httptest.NewRecorder()
	a.HTTPRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health status=%d body=%s", rr.Code, rr.Body.String())
	}
	var health map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" || health["node"] != "kv-a" {
		t.Fatalf("unexpected health body: %#v", health)
	}

	rr = httptest.NewRecorder()
	a.HTTPRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("stats status=%d", rr.Code)
	}
	var stats Stats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats != (Stats{ActiveConnections: 2, TotalConnections: 5, Keys: 9}) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStatsUnavailableWithoutSource(t *testing.T) {
	testlog.Start(t)
	a := Appear("kv-b", "127.0.0.1:0", []string{"http://example.test"}, nil)
	rr := httptest.NewRecorder()
	a.HTTPRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestMetricsRouteExposesKvwireSeries(t *testing.T) {
	testlog.Start(t)
	a := Appear("kv-c", "127.0.0.1:0", nil, fixedStats{})
	rr := httptest.NewRecorder()
	a.HTTPRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	rr = httptest.NewRecorder()
	a.HTTPRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "kvwire_http_requests_total") {
		t.Fatalf("expected kvwire_http_requests_total in metrics output")
	}
}
